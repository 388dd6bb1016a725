package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ICSConfig describes a single ICS subscription whose events are
// imported into the workspace calendar.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is stored on imported events as their source ID.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the UI.
	Name string `yaml:"name" json:"name"`
	// EventType is the event type assigned to imported events.
	EventType string `yaml:"event_type,omitempty" json:"event_type,omitempty"`
}

// SourceID returns ID, falling back to Name and then URL.
func (c ICSConfig) SourceID() string {
	switch {
	case c.ID != "":
		return c.ID
	case c.Name != "":
		return c.Name
	}
	return c.URL
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone that decides what "today" is and in
	// which imported events are converted to calendar dates.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is "sunday" (default) or "monday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// Language is the default UI language ("en" or "id") used when the
	// browser's Accept-Language matches nothing.
	Language string `yaml:"language" json:"language"`

	// Theme is the UI theme identifier, e.g. "emerald-light".
	Theme string `yaml:"theme" json:"theme"`

	// DataPath is the YAML file holding tasks, events and the activity log.
	DataPath string `yaml:"data_path" json:"data_path"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// re-importing ICS subscriptions.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HorizonDays / BackfillDays bound the recurrence expansion window
	// of imported feeds around today.
	HorizonDays  int `yaml:"horizon_days" json:"horizon_days"`
	BackfillDays int `yaml:"backfill_days" json:"backfill_days"`

	// LogLevel is "debug", "info" or "error"; LogEncoding is "console" or "json".
	LogLevel    string `yaml:"log_level" json:"log_level"`
	LogEncoding string `yaml:"log_encoding" json:"log_encoding"`

	// SnapshotPath is where --snapshot writes the calendar PNG that
	// /preview.png serves.
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen       = "127.0.0.1:8080"
	defaultTimezone     = "Asia/Jakarta"
	defaultDataPath     = "/var/lib/teamcal/workspace.yaml"
	defaultRefresh      = "*/15 * * * *"
	defaultHorizonDays  = 180
	defaultBackfillDays = 60
	defaultSnapshotPath = "/var/lib/teamcal/preview.png"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       defaultListen,
		Timezone:     defaultTimezone,
		WeekStart:    "sunday",
		Language:     "id",
		Theme:        "emerald-light",
		DataPath:     defaultDataPath,
		RefreshCron:  defaultRefresh,
		HorizonDays:  defaultHorizonDays,
		BackfillDays: defaultBackfillDays,
		LogLevel:     "info",
		LogEncoding:  "console",
		SnapshotPath: defaultSnapshotPath,
		ICS:          []ICSConfig{},
		BasicAuth:    nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	switch strings.ToLower(c.WeekStart) {
	case "monday":
		c.WeekStart = "monday"
	default:
		// Unknown value; fall back to sunday to match the grid's 0=Sunday columns.
		c.WeekStart = "sunday"
	}
	switch strings.ToLower(c.Language) {
	case "en", "id":
		c.Language = strings.ToLower(c.Language)
	default:
		c.Language = "id"
	}
	if c.Theme == "" {
		c.Theme = "emerald-light"
	}
	if c.DataPath == "" {
		c.DataPath = defaultDataPath
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaultHorizonDays
	}
	if c.BackfillDays < 0 {
		c.BackfillDays = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogEncoding != "json" {
		c.LogEncoding = "console"
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = defaultSnapshotPath
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
}

// WeekStartDay maps WeekStart to a time.Weekday.
func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// Location loads Timezone, falling back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, err
	}
	return loc, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data next to path and renames it into place so
// readers never observe a partially written file. The parent directory
// is created with 0700 and the file ends up 0600.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".teamcal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// Environment variables that override the file, so secrets can stay out
// of the YAML.
const (
	EnvListen            = "TEAMCAL_LISTEN"
	EnvTimezone          = "TEAMCAL_TIMEZONE"
	EnvDataPath          = "TEAMCAL_DATA_PATH"
	EnvLogLevel          = "TEAMCAL_LOG_LEVEL"
	EnvBasicAuthUsername = "TEAMCAL_BASIC_AUTH_USERNAME"
	EnvBasicAuthPassword = "TEAMCAL_BASIC_AUTH_PASSWORD"
)

// ApplyEnv loads an optional .env file from the working directory and
// applies the TEAMCAL_* overrides to c. Variables already set in the
// process environment win over .env entries.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load(".env")

	c.Listen = getString(EnvListen, c.Listen)
	c.Timezone = getString(EnvTimezone, c.Timezone)
	c.DataPath = getString(EnvDataPath, c.DataPath)
	c.LogLevel = getString(EnvLogLevel, c.LogLevel)

	user := getString(EnvBasicAuthUsername, "")
	pass := getString(EnvBasicAuthPassword, "")
	if user != "" || pass != "" {
		if c.BasicAuth == nil {
			c.BasicAuth = &BasicAuthConfig{}
		}
		c.BasicAuth.Username = getString(EnvBasicAuthUsername, c.BasicAuth.Username)
		c.BasicAuth.Password = getString(EnvBasicAuthPassword, c.BasicAuth.Password)
	}
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
