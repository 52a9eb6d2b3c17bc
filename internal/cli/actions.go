package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ChuLiYu/hospital-ops/internal/facility"
	"github.com/ChuLiYu/hospital-ops/internal/shift"
	"github.com/ChuLiYu/hospital-ops/internal/textutil"
	"github.com/ChuLiYu/hospital-ops/internal/triage"
	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

// Actions are shared by the subcommands and the interactive menu. Each one
// performs a single facility operation and reports the outcome; rejections
// are printed, never returned.

func parseNumber(p *printer, op, field, s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		p.failure(op, fmt.Errorf("%w: %s %q is not a number", types.ErrInvalidInput, field, s))
		return 0, false
	}
	return n, true
}

// ============================================================================
// Admission
// ============================================================================

func admitPatient(f *facility.Facility, p *printer, name, condition string) {
	id, err := f.AdmitPatient(name, condition)
	if err != nil {
		p.failure("Admit patient", err)
		return
	}
	p.success("Patient %s admitted with ID %d", textutil.Clean(name), id)
}

func dischargePatient(f *facility.Facility, p *printer) {
	pt, err := f.DischargePatient()
	if err != nil {
		p.failure("Discharge patient", err)
		return
	}
	p.success("Patient %s (ID %d, %s) discharged", pt.Name, pt.ID, pt.Condition)
}

func findPatient(f *facility.Facility, p *printer, rawID string) {
	id, ok := parseNumber(p, "Find patient", "id", rawID)
	if !ok {
		return
	}
	pt, pos, err := f.FindPatient(id)
	if err != nil {
		p.failure("Find patient", err)
		return
	}
	p.success("Patient %d: %s, %s, position %d in queue", pt.ID, pt.Name, pt.Condition, pos)
}

func listPatients(f *facility.Facility, p *printer) {
	p.title("Admission queue (front to rear)")
	p.patients(f.Patients())
}

// ============================================================================
// Supply
// ============================================================================

func addSupply(f *facility.Facility, p *printer, name, rawQty, batch, expiry, notes string) {
	qty, ok := parseNumber(p, "Add supply", "quantity", rawQty)
	if !ok {
		return
	}
	id, err := f.AddSupply(name, qty, batch, expiry, notes)
	if err != nil {
		p.failure("Add supply", err)
		return
	}
	p.success("Supply %s x%d stocked with ID %d", textutil.Clean(name), qty, id)
}

func useSupply(f *facility.Facility, p *printer, rawAmount string) {
	amount, ok := parseNumber(p, "Use supply", "amount", rawAmount)
	if !ok {
		return
	}
	s, remaining, err := f.UseSupply(amount)
	if err != nil {
		p.failure("Use supply", err)
		return
	}
	if remaining == 0 {
		p.success("Used %d of %s (ID %d); batch used up and removed", amount, s.Name, s.ID)
		return
	}
	p.success("Used %d of %s (ID %d); %d left", amount, s.Name, s.ID, remaining)
}

func peekSupply(f *facility.Facility, p *printer) {
	s, err := f.PeekSupply()
	if err != nil {
		p.failure("Peek supply", err)
		return
	}
	p.success("Top of stock: %s x%d (ID %d, batch %s, expires %s)",
		s.Name, s.Quantity, s.ID, orDash(s.Batch), orDash(s.Expiry))
}

func listSupplies(f *facility.Facility, p *printer) {
	p.title("Supply stack (top to bottom)")
	p.supplies(f.Supplies())
}

// ============================================================================
// Dispatch
// ============================================================================

func registerAmbulance(f *facility.Facility, p *printer, vehicle, operator, notes string) {
	id, err := f.RegisterAmbulance(vehicle, operator, notes)
	if err != nil {
		p.failure("Register ambulance", err)
		return
	}
	p.success("Ambulance %s registered with ID %d", textutil.Clean(vehicle), id)
}

func rotateAmbulances(f *facility.Facility, p *printer) {
	head, err := f.RotateAmbulances()
	if err != nil {
		p.failure("Rotate ambulances", err)
		return
	}
	p.success("Rotation advanced; %s (ID %d, %s) is now on call", head.Vehicle, head.ID, head.Operator)
}

func assignShift(f *facility.Facility, p *printer, rawID, from, to string) {
	id, ok := parseNumber(p, "Assign shift", "id", rawID)
	if !ok {
		return
	}
	start, err := shift.ParseClock(from)
	if err != nil {
		p.failure("Assign shift", err)
		return
	}
	end, err := shift.ParseClock(to)
	if err != nil {
		p.failure("Assign shift", err)
		return
	}
	if err := f.AssignShift(id, start, end); err != nil {
		p.failure("Assign shift", err)
		return
	}
	p.success("Ambulance %d assigned shift %s", id, shift.Window{Start: start, End: end})
}

func refreshDuty(f *facility.Facility, p *printer, now time.Time) {
	onDuty, err := f.RefreshDuty()
	if err != nil {
		p.failure("Refresh duty", err)
		return
	}
	p.success("Duty refreshed at %s; %d ambulance(s) on duty", shift.FormatClock(shift.MinuteOfDay(now)), len(onDuty))
	if len(onDuty) > 0 {
		p.ambulances(onDuty)
	}
}

func removeAmbulance(f *facility.Facility, p *printer, rawID string) {
	id, ok := parseNumber(p, "Remove ambulance", "id", rawID)
	if !ok {
		return
	}
	if err := f.RemoveAmbulance(id); err != nil {
		p.failure("Remove ambulance", err)
		return
	}
	p.success("Ambulance %d removed from the rotation", id)
}

func listAmbulances(f *facility.Facility, p *printer, byShift bool) {
	if byShift {
		p.title("Ambulances by shift start")
		p.ambulances(f.AmbulancesByShift())
		return
	}
	p.title("Ambulance rotation (on call first)")
	p.ambulances(f.Ambulances())
}

// ============================================================================
// Triage
// ============================================================================

func logCase(f *facility.Facility, p *printer, subject, category, rawPriority string) {
	priority := 0
	if strings.TrimSpace(rawPriority) != "" {
		var ok bool
		if priority, ok = parseNumber(p, "Log case", "priority", rawPriority); !ok {
			return
		}
		if priority == 0 {
			p.failure("Log case", fmt.Errorf("%w: priority must be at least 1", types.ErrInvalidInput))
			return
		}
	}
	id, err := f.LogCase(subject, category, priority)
	if err != nil {
		p.failure("Log case", err)
		return
	}
	p.success("Case %d logged for %s (%s)", id, textutil.Clean(subject), textutil.Clean(category))
}

func processCase(f *facility.Facility, p *printer) {
	c, err := f.ProcessCase()
	if err != nil {
		p.failure("Process case", err)
		return
	}
	p.success("Processing case %d: %s, %s, priority %d", c.ID, c.Subject, c.Category, c.Priority)
}

func reprioritize(f *facility.Facility, p *printer, rawID, rawPriority string) {
	id, ok := parseNumber(p, "Reprioritize case", "id", rawID)
	if !ok {
		return
	}
	priority, ok := parseNumber(p, "Reprioritize case", "priority", rawPriority)
	if !ok {
		return
	}
	if err := f.Reprioritize(id, priority); err != nil {
		p.failure("Reprioritize case", err)
		return
	}
	p.success("Case %d now has priority %d", id, priority)
}

func findCases(f *facility.Facility, p *printer, subject, category string) {
	switch {
	case strings.TrimSpace(subject) != "":
		p.title(fmt.Sprintf("Cases for %s", textutil.Clean(subject)))
		p.cases(f.FindCasesBySubject(subject))
	case strings.TrimSpace(category) != "":
		p.title(fmt.Sprintf("Cases in %s", textutil.Clean(category)))
		p.cases(f.FindCasesByCategory(category))
	default:
		p.failure("Find cases", fmt.Errorf("%w: a subject or a category is required", types.ErrInvalidInput))
	}
}

func listCases(f *facility.Facility, p *printer) {
	p.title("Triage board (most urgent first)")
	p.cases(f.Cases())
}

func importPatients(f *facility.Facility, p *printer) {
	n, err := f.ImportPatients()
	if err != nil {
		p.failure("Import patients", err)
		return
	}
	p.success("%d waiting patient(s) imported into triage", n)
}

func listPresets(p *printer) {
	p.title("Preset categories")
	p.table("CATEGORY\tPRIORITY", func(tw io.Writer) {
		for _, pr := range triage.Presets() {
			fmt.Fprintf(tw, "%s\t%d\n", pr.Category, pr.Priority)
		}
	})
}

// ============================================================================
// Reporting
// ============================================================================

func showStatus(f *facility.Facility, p *printer, configPath string) {
	st := f.Status()

	p.title("Hospital Ops Status")
	p.line("Config: %s", configPath)
	p.table("ENGINE\tRECORDS\tCAPACITY\tNEXT ID\tFILE\tSTATE", func(tw io.Writer) {
		for _, e := range st.Engines {
			state := "ok"
			switch {
			case e.MemoryOnly:
				state = "memory only"
			case e.SaveFailed:
				state = "save failed"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\t%s\n",
				e.Engine, e.Records, capacityOf(e.Capacity), e.NextID, e.File, state)
		}
	})
	p.line("Supply units in stock: %d", st.SupplyUnits)
	p.line("Rotation: %s", st.RingState)
	if st.DutyHead != nil {
		p.line("On call: %s (ID %d, %s)", st.DutyHead.Vehicle, st.DutyHead.ID, st.DutyHead.Operator)
	}
	if st.MostUrgent != nil {
		c := st.MostUrgent
		p.line("Most urgent: case %d, %s, %s, priority %d", c.ID, c.Subject, c.Category, c.Priority)
	}
	if st.Session != "" {
		p.line("Journal: seq %d, session %s", st.JournalSeq, st.Session)
	} else {
		p.line("Journal: disabled")
	}
}

func showHistory(f *facility.Facility, p *printer, limit int) {
	events, err := f.History(limit)
	if err != nil {
		p.failure("History", err)
		return
	}
	if len(events) == 0 {
		p.empty("journal events")
		return
	}
	p.table("SEQ\tTIME\tEVENT\tENGINE\tRECORD\tDETAIL", func(tw io.Writer) {
		for _, e := range events {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", e.Seq,
				time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04:05"),
				e.Type, e.Engine, e.RecordID, e.Detail)
		}
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
