// ============================================================================
// Hospital Ops CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra command tree over the facility coordinator
//
// Command Structure:
//   hospital-ops                          # Root command
//   ├── --config, -c                      # YAML config (default configs/default.yaml)
//   ├── --data-dir                        # Overrides HOSPITAL_OPS_DATA_DIR and data_dir
//   ├── patient admit|discharge|list|find
//   ├── supply add|use|peek|list
//   ├── ambulance register|rotate|shift|duty|remove|list
//   ├── triage log|process|list|find|reprioritize|import|presets
//   ├── status                            # Engine counts, next ids, file state
//   ├── history                           # Journal events
//   ├── metrics                           # Prometheus text exposition
//   └── menu                              # Interactive numbered menu
//
// Lifecycle of every command:
//   1. Load config (missing default file means built-in defaults)
//   2. Create the facility and Start it (loads all four data files)
//   3. Run one operation, or the menu loop
//   4. Close the facility (final save of every file, journal flush)
//
// Exit status:
//   Rejected operations print a failure line with the reason (Full, Empty,
//   NotFound, ...) and still exit 0. Only configuration and startup errors
//   make the process exit non-zero.
//
// Examples:
//   ./hospital-ops patient admit "John Doe" "Fractured wrist"
//   ./hospital-ops supply add Gauze 40 --batch B-17 --expiry 2026-01-31
//   ./hospital-ops ambulance shift 2 08:00 16:00
//   ./hospital-ops triage log "Jane Roe" "Heart Attack"
//   ./hospital-ops --data-dir /var/lib/hospital menu
//
// ============================================================================

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChuLiYu/hospital-ops/internal/facility"
)

// Version is reported by --version.
const Version = "1.0.0"

// app carries the persistent flags of one command tree.
type app struct {
	configFile string
	dataDir    string
	now        func() time.Time
}

// BuildCLI returns the root command.
func BuildCLI() *cobra.Command {
	return newApp(time.Now).rootCommand()
}

func newApp(now func() time.Time) *app {
	return &app{now: now}
}

func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hospital-ops",
		Short: "Hospital operations console",
		Long: `hospital-ops manages patient admission, medical supplies, ambulance
dispatch and emergency triage. Every change is written to flat files
in the data directory immediately.`,
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (overrides "+DataDirEnv+" and data_dir)")

	rootCmd.AddCommand(
		a.buildPatientCommand(),
		a.buildSupplyCommand(),
		a.buildAmbulanceCommand(),
		a.buildTriageCommand(),
		a.buildStatusCommand(),
		a.buildHistoryCommand(),
		a.buildMetricsCommand(),
		a.buildMenuCommand(),
	)
	return rootCmd
}

// run starts a facility, hands it to fn and closes it. Errors returned from
// here are configuration or startup errors.
func (a *app) run(cmd *cobra.Command, fn func(f *facility.Facility, p *printer)) error {
	cfg, err := loadConfig(a.configFile, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	f := facility.New(
		cfg.facilityConfig(resolveDataDir(a.dataDir, cfg)),
		facility.WithLogger(logger),
		facility.WithClock(a.now),
	)
	if err := f.Start(); err != nil {
		return fmt.Errorf("failed to start facility: %w", err)
	}

	fn(f, newPrinter(cmd.OutOrStdout()))

	if err := f.Close(); err != nil {
		logger.Warn("Final save incomplete", "error", err)
	}
	return nil
}

// ============================================================================
// patient
// ============================================================================

func (a *app) buildPatientCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Admission queue (first come, first served)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "admit NAME CONDITION",
			Short: "Add a patient to the rear of the queue",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(f *facility.Facility, p *printer) {
					admitPatient(f, p, args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "discharge",
			Short: "Remove the patient who has waited longest",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, dischargePatient)
			},
		},
		&cobra.Command{
			Use:   "find ID",
			Short: "Show a patient and their queue position",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(f *facility.Facility, p *printer) {
					findPatient(f, p, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List waiting patients, front first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, listPatients)
			},
		},
	)
	return cmd
}

// ============================================================================
// supply
// ============================================================================

func (a *app) buildSupplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supply",
		Short: "Medical supply stack (last in, first out)",
	}

	var batch, expiry, notes string
	addCmd := &cobra.Command{
		Use:   "add NAME QUANTITY",
		Short: "Put a batch on top of the stock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(f *facility.Facility, p *printer) {
				addSupply(f, p, args[0], args[1], batch, expiry, notes)
			})
		},
	}
	addCmd.Flags().StringVar(&batch, "batch", "", "batch number")
	addCmd.Flags().StringVar(&expiry, "expiry", "", "expiry date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&notes, "notes", "", "free-text notes")

	cmd.AddCommand(
		addCmd,
		&cobra.Command{
			Use:   "use AMOUNT",
			Short: "Consume units from the top batch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(f *facility.Facility, p *printer) {
					useSupply(f, p, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "peek",
			Short: "Show the top batch",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, peekSupply)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the stock, top first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, listSupplies)
			},
		},
	)
	return cmd
}

// ============================================================================
// ambulance
// ============================================================================

func (a *app) buildAmbulanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ambulance",
		Short: "Ambulance duty rotation",
	}

	var notes string
	registerCmd := &cobra.Command{
		Use:   "register VEHICLE OPERATOR",
		Short: "Add an ambulance at the end of the rotation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(f *facility.Facility, p *printer) {
				registerAmbulance(f, p, args[0], args[1], notes)
			})
		},
	}
	registerCmd.Flags().StringVar(&notes, "notes", "", "free-text notes")

	var byShift bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the rotation, on-call ambulance first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(f *facility.Facility, p *printer) {
				listAmbulances(f, p, byShift)
			})
		},
	}
	listCmd.Flags().BoolVar(&byShift, "by-shift", false, "order by shift start instead of rotation")

	cmd.AddCommand(
		registerCmd,
		&cobra.Command{
			Use:   "rotate",
			Short: "Hand duty to the next ambulance",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, rotateAmbulances)
			},
		},
		&cobra.Command{
			Use:   "shift ID FROM TO",
			Short: "Assign a duty window (HH:MM HH:MM, same day)",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(f *facility.Facility, p *printer) {
					assignShift(f, p, args[0], args[1], args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "duty",
			Short: "Recompute on-duty flags for the current time",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(f *facility.Facility, p *printer) {
					refreshDuty(f, p, a.now())
				})
			},
		},
		&cobra.Command{
			Use:   "remove ID",
			Short: "Take an ambulance out of the rotation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(f *facility.Facility, p *printer) {
					removeAmbulance(f, p, args[0])
				})
			},
		},
		listCmd,
	)
	return cmd
}

// ============================================================================
// triage
// ============================================================================

func (a *app) buildTriageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Emergency triage board (lowest priority number first)",
	}

	var priority string
	logCmd := &cobra.Command{
		Use:   "log SUBJECT CATEGORY",
		Short: "Log an emergency case",
		Long: `Log an emergency case. Without --priority the preset priority of the
category is used; see "triage presets".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(f *facility.Facility, p *printer) {
				logCase(f, p, args[0], args[1], priority)
			})
		},
	}
	logCmd.Flags().StringVarP(&priority, "priority", "p", "", "priority, 1 is most urgent")

	var subject, category string
	findCmd := &cobra.Command{
		Use:   "find",
		Short: "Find cases by subject or category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(f *facility.Facility, p *printer) {
				findCases(f, p, subject, category)
			})
		},
	}
	findCmd.Flags().StringVar(&subject, "subject", "", "subject name (case-insensitive)")
	findCmd.Flags().StringVar(&category, "category", "", "category (case-insensitive)")
	findCmd.MarkFlagsMutuallyExclusive("subject", "category")

	cmd.AddCommand(
		logCmd,
		&cobra.Command{
			Use:   "process",
			Short: "Take the most urgent case off the board",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, processCase)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List cases, most urgent first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, listCases)
			},
		},
		findCmd,
		&cobra.Command{
			Use:   "reprioritize ID PRIORITY",
			Short: "Change the priority of a case",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(f *facility.Facility, p *printer) {
					reprioritize(f, p, args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "import",
			Short: "Copy waiting patients onto the board",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, importPatients)
			},
		},
		&cobra.Command{
			Use:   "presets",
			Short: "Show preset categories and their priorities",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				listPresets(newPrinter(cmd.OutOrStdout()))
				return nil
			},
		},
	)
	return cmd
}

// ============================================================================
// status / history / metrics
// ============================================================================

func (a *app) buildStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show record counts, next ids and file state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(f *facility.Facility, p *printer) {
				showStatus(f, p, a.configFile)
			})
		},
	}
}

func (a *app) buildHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the mutation journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(f *facility.Facility, p *printer) {
				showHistory(f, p, limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of most recent events (0 = all)")
	return cmd
}

func (a *app) buildMetricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print metrics in the Prometheus text format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(f *facility.Facility, p *printer) {
				if err := f.WriteMetrics(cmd.OutOrStdout()); err != nil {
					p.failure("Metrics", err)
				}
			})
		},
	}
}
