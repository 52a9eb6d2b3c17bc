package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ChuLiYu/hospital-ops/internal/facility"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "configs/default.yaml"

// DataDirEnv overrides data_dir from the config file.
const DataDirEnv = "HOSPITAL_OPS_DATA_DIR"

// Config is the YAML configuration file.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`

	Admission struct {
		File     string `yaml:"file"`
		Capacity int    `yaml:"capacity"`
	} `yaml:"admission"`

	Supply struct {
		File string `yaml:"file"`
	} `yaml:"supply"`

	Dispatch struct {
		File string `yaml:"file"`
	} `yaml:"dispatch"`

	Triage struct {
		File           string `yaml:"file"`
		Capacity       int    `yaml:"capacity"`
		MaxPriority    int    `yaml:"max_priority"`
		ImportPriority int    `yaml:"import_priority"`
		AutoImport     bool   `yaml:"auto_import"`
	} `yaml:"triage"`

	Journal struct {
		Enabled bool   `yaml:"enabled"`
		File    string `yaml:"file"`
		Sync    bool   `yaml:"sync"`
	} `yaml:"journal"`
}

// defaultConfig mirrors facility.DefaultConfig. Keys missing from a file keep
// these values because the file is decoded on top of them.
func defaultConfig() *Config {
	d := facility.DefaultConfig()

	cfg := &Config{DataDir: d.DataDir, LogLevel: "info"}
	cfg.Admission.File = d.AdmissionFile
	cfg.Admission.Capacity = d.AdmissionCapacity
	cfg.Supply.File = d.SupplyFile
	cfg.Dispatch.File = d.DispatchFile
	cfg.Triage.File = d.TriageFile
	cfg.Triage.Capacity = d.TriageCapacity
	cfg.Triage.MaxPriority = d.MaxPriority
	cfg.Triage.ImportPriority = d.ImportPriority
	cfg.Triage.AutoImport = d.AutoImport
	cfg.Journal.Enabled = d.JournalEnabled
	cfg.Journal.File = d.JournalFile
	cfg.Journal.Sync = d.JournalSync
	return cfg
}

// loadConfig reads path over the defaults. A missing file is only an error
// when the path was named explicitly.
func loadConfig(path string, explicit bool) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Admission.Capacity <= 0:
		return fmt.Errorf("admission.capacity must be positive, got %d", c.Admission.Capacity)
	case c.Triage.Capacity <= 0:
		return fmt.Errorf("triage.capacity must be positive, got %d", c.Triage.Capacity)
	case c.Triage.MaxPriority < 0:
		return fmt.Errorf("triage.max_priority must not be negative, got %d", c.Triage.MaxPriority)
	case c.Triage.ImportPriority < 1:
		return fmt.Errorf("triage.import_priority must be at least 1, got %d", c.Triage.ImportPriority)
	case c.Triage.MaxPriority > 0 && c.Triage.ImportPriority > c.Triage.MaxPriority:
		return fmt.Errorf("triage.import_priority %d exceeds max_priority %d", c.Triage.ImportPriority, c.Triage.MaxPriority)
	}
	for key, name := range map[string]string{
		"admission.file": c.Admission.File,
		"supply.file":    c.Supply.File,
		"dispatch.file":  c.Dispatch.File,
		"triage.file":    c.Triage.File,
	} {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.File) == "" {
		return errors.New("journal.file must not be empty when the journal is enabled")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// resolveDataDir applies flag > environment > config > "data".
func resolveDataDir(flag string, cfg *Config) string {
	if flag != "" {
		return flag
	}
	if env := strings.TrimSpace(os.Getenv(DataDirEnv)); env != "" {
		return env
	}
	if cfg.DataDir != "" {
		return cfg.DataDir
	}
	return "data"
}

// facilityConfig converts the file layout into a facility.Config.
func (c *Config) facilityConfig(dataDir string) facility.Config {
	return facility.Config{
		DataDir:           dataDir,
		AdmissionFile:     c.Admission.File,
		AdmissionCapacity: c.Admission.Capacity,
		SupplyFile:        c.Supply.File,
		DispatchFile:      c.Dispatch.File,
		TriageFile:        c.Triage.File,
		TriageCapacity:    c.Triage.Capacity,
		MaxPriority:       c.Triage.MaxPriority,
		ImportPriority:    c.Triage.ImportPriority,
		AutoImport:        c.Triage.AutoImport,
		JournalEnabled:    c.Journal.Enabled,
		JournalFile:       c.Journal.File,
		JournalSync:       c.Journal.Sync,
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// newLogger builds the text logger handed to the facility.
func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := parseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
