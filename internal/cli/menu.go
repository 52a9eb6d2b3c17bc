package cli

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChuLiYu/hospital-ops/internal/facility"
)

// menuEntry is one numbered choice. run returns false when input ran out.
type menuEntry struct {
	label string
	run   func(m *menu) bool
}

// menu is the interactive front end. It reads one answer per line and
// stops at "0" on the main screen or at end of input.
type menu struct {
	in *bufio.Scanner
	p  *printer
	f  *facility.Facility
	a  *app
}

func (a *app) buildMenuCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(f *facility.Facility, p *printer) {
				m := &menu{
					in: bufio.NewScanner(cmd.InOrStdin()),
					p:  p,
					f:  f,
					a:  a,
				}
				m.loop()
			})
		},
	}
}

func (m *menu) loop() {
	m.choose("Hospital Ops", "Exit", []menuEntry{
		{"Patient admission", func(m *menu) bool { return m.choose("Patient admission", "Back", m.patientEntries()) }},
		{"Medical supplies", func(m *menu) bool { return m.choose("Medical supplies", "Back", m.supplyEntries()) }},
		{"Ambulance dispatch", func(m *menu) bool { return m.choose("Ambulance dispatch", "Back", m.ambulanceEntries()) }},
		{"Emergency triage", func(m *menu) bool { return m.choose("Emergency triage", "Back", m.triageEntries()) }},
		{"Status", func(m *menu) bool { showStatus(m.f, m.p, m.a.configFile); return true }},
		{"History", func(m *menu) bool { showHistory(m.f, m.p, 20); return true }},
	})
	m.p.line("Goodbye.")
}

// choose shows entries until "0" is picked. It returns false at end of input.
func (m *menu) choose(title, zero string, entries []menuEntry) bool {
	for {
		m.p.line("")
		m.p.title("== " + title + " ==")
		for i, e := range entries {
			m.p.line("%d. %s", i+1, e.label)
		}
		m.p.line("0. %s", zero)

		answer, ok := m.ask("Choice")
		if !ok {
			return false
		}
		n, err := strconv.Atoi(answer)
		switch {
		case err != nil || n < 0 || n > len(entries):
			m.p.line("Invalid choice %q.", answer)
		case n == 0:
			return true
		default:
			if !entries[n-1].run(m) {
				return false
			}
		}
	}
}

func (m *menu) ask(label string) (string, bool) {
	m.p.prompt(label)
	if !m.in.Scan() {
		m.p.line("")
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// askAll prompts for each label in turn.
func (m *menu) askAll(labels ...string) ([]string, bool) {
	answers := make([]string, len(labels))
	for i, label := range labels {
		var ok bool
		if answers[i], ok = m.ask(label); !ok {
			return nil, false
		}
	}
	return answers, true
}

// ============================================================================
// Screens
// ============================================================================

func (m *menu) patientEntries() []menuEntry {
	return []menuEntry{
		{"Admit patient", func(m *menu) bool {
			v, ok := m.askAll("Name", "Condition")
			if ok {
				admitPatient(m.f, m.p, v[0], v[1])
			}
			return ok
		}},
		{"Discharge next patient", func(m *menu) bool { dischargePatient(m.f, m.p); return true }},
		{"Find patient by ID", func(m *menu) bool {
			v, ok := m.askAll("Patient ID")
			if ok {
				findPatient(m.f, m.p, v[0])
			}
			return ok
		}},
		{"List waiting patients", func(m *menu) bool { listPatients(m.f, m.p); return true }},
	}
}

func (m *menu) supplyEntries() []menuEntry {
	return []menuEntry{
		{"Add supply", func(m *menu) bool {
			v, ok := m.askAll("Name", "Quantity", "Batch", "Expiry (YYYY-MM-DD)", "Notes")
			if ok {
				addSupply(m.f, m.p, v[0], v[1], v[2], v[3], v[4])
			}
			return ok
		}},
		{"Use supply from top", func(m *menu) bool {
			v, ok := m.askAll("Amount")
			if ok {
				useSupply(m.f, m.p, v[0])
			}
			return ok
		}},
		{"Show top supply", func(m *menu) bool { peekSupply(m.f, m.p); return true }},
		{"List supplies", func(m *menu) bool { listSupplies(m.f, m.p); return true }},
	}
}

func (m *menu) ambulanceEntries() []menuEntry {
	return []menuEntry{
		{"Register ambulance", func(m *menu) bool {
			v, ok := m.askAll("Vehicle", "Operator", "Notes")
			if ok {
				registerAmbulance(m.f, m.p, v[0], v[1], v[2])
			}
			return ok
		}},
		{"Rotate duty", func(m *menu) bool { rotateAmbulances(m.f, m.p); return true }},
		{"Assign shift", func(m *menu) bool {
			v, ok := m.askAll("Ambulance ID", "Start (HH:MM)", "End (HH:MM)")
			if ok {
				assignShift(m.f, m.p, v[0], v[1], v[2])
			}
			return ok
		}},
		{"Refresh duty status", func(m *menu) bool { refreshDuty(m.f, m.p, m.a.now()); return true }},
		{"Remove ambulance", func(m *menu) bool {
			v, ok := m.askAll("Ambulance ID")
			if ok {
				removeAmbulance(m.f, m.p, v[0])
			}
			return ok
		}},
		{"List rotation", func(m *menu) bool { listAmbulances(m.f, m.p, false); return true }},
		{"List by shift start", func(m *menu) bool { listAmbulances(m.f, m.p, true); return true }},
	}
}

func (m *menu) triageEntries() []menuEntry {
	return []menuEntry{
		{"Log case", func(m *menu) bool {
			v, ok := m.askAll("Subject", "Category", "Priority (blank for preset)")
			if ok {
				logCase(m.f, m.p, v[0], v[1], v[2])
			}
			return ok
		}},
		{"Log preset case", func(m *menu) bool {
			listPresets(m.p)
			v, ok := m.askAll("Subject", "Category")
			if ok {
				logCase(m.f, m.p, v[0], v[1], "")
			}
			return ok
		}},
		{"Process most urgent case", func(m *menu) bool { processCase(m.f, m.p); return true }},
		{"Change priority", func(m *menu) bool {
			v, ok := m.askAll("Case ID", "New priority")
			if ok {
				reprioritize(m.f, m.p, v[0], v[1])
			}
			return ok
		}},
		{"Find by subject", func(m *menu) bool {
			v, ok := m.askAll("Subject")
			if ok {
				findCases(m.f, m.p, v[0], "")
			}
			return ok
		}},
		{"Find by category", func(m *menu) bool {
			v, ok := m.askAll("Category")
			if ok {
				findCases(m.f, m.p, "", v[0])
			}
			return ok
		}},
		{"Import waiting patients", func(m *menu) bool { importPatients(m.f, m.p); return true }},
		{"List cases", func(m *menu) bool { listCases(m.f, m.p); return true }},
	}
}
