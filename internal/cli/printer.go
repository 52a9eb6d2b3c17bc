package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/ChuLiYu/hospital-ops/internal/shift"
	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

// printer writes command results. Colour is dropped automatically when the
// output is not a terminal.
type printer struct {
	w    io.Writer
	ok   *color.Color
	fail *color.Color
	head *color.Color
	dim  *color.Color
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:    w,
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		head: color.New(color.Bold),
		dim:  color.New(color.Faint),
	}
}

func (p *printer) success(format string, args ...any) {
	p.ok.Fprint(p.w, "✅ ")
	fmt.Fprintf(p.w, format+"\n", args...)
}

// failure prints a rejected operation with its taxonomy reason.
func (p *printer) failure(op string, err error) {
	p.fail.Fprintf(p.w, "❌ %s failed [%s]", op, types.Reason(err))
	fmt.Fprintf(p.w, ": %v\n", err)
}

func (p *printer) title(s string) {
	p.head.Fprintln(p.w, s)
}

func (p *printer) empty(what string) {
	p.dim.Fprintf(p.w, "No %s.\n", what)
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) prompt(label string) {
	fmt.Fprintf(p.w, "%s: ", label)
}

func (p *printer) table(header string, rows func(tw io.Writer)) {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	tw.Flush()
}

// ============================================================================
// Record listings
// ============================================================================

func (p *printer) patients(list []types.Patient) {
	if len(list) == 0 {
		p.empty("patients waiting")
		return
	}
	p.table("POS\tID\tNAME\tCONDITION", func(tw io.Writer) {
		for i, pt := range list {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", i+1, pt.ID, pt.Name, pt.Condition)
		}
	})
}

func (p *printer) supplies(list []types.Supply) {
	if len(list) == 0 {
		p.empty("supplies in stock")
		return
	}
	p.table("ID\tNAME\tQTY\tBATCH\tEXPIRY\tNOTES", func(tw io.Writer) {
		for _, s := range list {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", s.ID, s.Name, s.Quantity, s.Batch, s.Expiry, s.Notes)
		}
	})
}

func (p *printer) ambulances(list []types.Ambulance) {
	if len(list) == 0 {
		p.empty("ambulances registered")
		return
	}
	p.table("ID\tVEHICLE\tOPERATOR\tSHIFT\tDUTY\tNOTES", func(tw io.Writer) {
		for _, a := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				a.ID, a.Vehicle, a.Operator, shiftOf(a), dutyOf(a), a.Notes)
		}
	})
}

func (p *printer) cases(list []types.EmergencyCase) {
	if len(list) == 0 {
		p.empty("emergency cases")
		return
	}
	p.table("ID\tPRIORITY\tSUBJECT\tCATEGORY", func(tw io.Writer) {
		for _, c := range list {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", c.ID, c.Priority, c.Subject, c.Category)
		}
	})
}

func shiftOf(a types.Ambulance) string {
	return shift.Window{Start: a.ShiftStart, End: a.ShiftEnd}.String()
}

func dutyOf(a types.Ambulance) string {
	if a.OnDuty {
		return "on"
	}
	return "off"
}

func capacityOf(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}
