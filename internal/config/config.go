package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type EmailConfig struct {
	Enabled    bool     `yaml:"enabled"`
	FromAddr   string   `yaml:"from_address"`
	Recipients []string `yaml:"recipients"`
	SMTPHost   string   `yaml:"smtp_host"`
	SMTPPort   int      `yaml:"smtp_port"`
}

type PathsConfig struct {
	BaseDir string `yaml:"base_dir"` // input/, output/, comparison_reports/, DataLoad/ live under this
	Roster  string `yaml:"roster"`   // operator master list CSV; default <base_dir>/assets/Active Operator List.csv
}

type LoaderConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type PolicyConfig struct {
	UrgentWindowDays  int `yaml:"urgent_window_days"`
	KeepSnapshotHours int `yaml:"keep_snapshot_hours"` // file-store pruning age
}

type Config struct {
	DatabaseURL string       `yaml:"database_url"` // empty: run on the XML file store
	Email       EmailConfig  `yaml:"email"`
	Paths       PathsConfig  `yaml:"paths"`
	Loader      LoaderConfig `yaml:"loader"`
	Policy      PolicyConfig `yaml:"policy"`
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Email: EmailConfig{
			SMTPPort: 25,
		},
		Paths: PathsConfig{
			BaseDir: "DriverLicenceReports",
		},
		Loader: LoaderConfig{
			Port: 2000,
		},
		Policy: PolicyConfig{
			UrgentWindowDays:  3,
			KeepSnapshotHours: 48,
		},
	}
}

// Load reads the YAML config at path, filling defaults for anything omitted.
// A missing file yields the defaults; DATABASE_URL in the environment always
// wins over the file.
func Load(path string) (Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return c, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if env := os.Getenv("DATABASE_URL"); env != "" {
		c.DatabaseURL = env
	}
	if c.Policy.UrgentWindowDays <= 0 {
		c.Policy.UrgentWindowDays = 3
	}
	if c.Policy.KeepSnapshotHours <= 0 {
		c.Policy.KeepSnapshotHours = 48
	}
	if c.Paths.Roster == "" {
		c.Paths.Roster = filepath.Join(c.Paths.BaseDir, "assets", "Active Operator List.csv")
	}
	if c.Email.Enabled {
		if c.Email.FromAddr == "" || len(c.Email.Recipients) == 0 || c.Email.SMTPHost == "" {
			return c, fmt.Errorf("email enabled but from_address, recipients or smtp_host missing")
		}
	}

	return c, nil
}

// InputDir is where the daily export is dropped
func (c Config) InputDir() string { return filepath.Join(c.Paths.BaseDir, "input") }

// OutputDir holds the dated snapshot files when no database is configured
func (c Config) OutputDir() string { return filepath.Join(c.Paths.BaseDir, "output") }

// ReportDir holds the rendered comparison reports
func (c Config) ReportDir() string { return filepath.Join(c.Paths.BaseDir, "comparison_reports") }

// BatchDir is the loader tool's drop directory
func (c Config) BatchDir() string { return filepath.Join(c.Paths.BaseDir, "DataLoad") }

// SMTPAddr returns host:port for the mail relay
func (c Config) SMTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Email.SMTPHost, c.Email.SMTPPort)
}

// SplitRecipients accepts the ";"/"," separated form older configs used
func SplitRecipients(raw string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' }) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
