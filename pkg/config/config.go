// Package config loads and validates the roomsync configuration: the
// room list, the scheduling API endpoint and the sync window. Secrets
// never live in the file; the access key is read from the environment
// (optionally via a .env file), with viper layering env overrides on
// top of the YAML values.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/roomsync/roomsync/pkg/errors"
	"github.com/roomsync/roomsync/pkg/records"
)

// DefaultAccessKeyEnv is the environment variable consulted for the
// scheduling API access key when the file does not name one.
const DefaultAccessKeyEnv = "ROOMSYNC_ACCESS_KEY"

// Room is one synchronized room: a display name, the room identifier
// used by the scheduling API, and the mailbox whose calendar mirrors it.
type Room struct {
	Name       string `yaml:"name"`
	RoomNumber string `yaml:"roomNumber"`
	Mailbox    string `yaml:"mailbox"`
}

// Source configures the scheduling API.
type Source struct {
	BaseURL           string `yaml:"baseURL"`
	AccessKeyEnv      string `yaml:"accessKeyEnv"`
	InstitutionDomain string `yaml:"institutionDomain"`

	// AccessKey is resolved from the environment, never from the file.
	AccessKey string `yaml:"-"`
}

// WindowConfig bounds the sync window. Either explicit start and end
// dates, or a rolling horizon of DaysAhead days from today.
type WindowConfig struct {
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
	DaysAhead int    `yaml:"daysAhead"`
}

// Sync tunes concurrency and resilience. Retries is a pointer so an
// explicit zero in the file is distinguishable from the field being
// absent; use the Retries method to read it.
type Sync struct {
	RoomConcurrency int           `yaml:"roomConcurrency"`
	FetchWorkers    int           `yaml:"fetchWorkers"`
	CallTimeout     time.Duration `yaml:"callTimeout"`
	RunTimeout      time.Duration `yaml:"runTimeout"`
	Retries         *int          `yaml:"retries"`
	Timezone        string        `yaml:"timezone"`
}

// Config is the complete, validated configuration. It is an immutable
// value: constructors receive it and never mutate it.
type Config struct {
	Rooms  []Room       `yaml:"rooms"`
	Source Source       `yaml:"source"`
	Window WindowConfig `yaml:"window"`
	Sync   Sync         `yaml:"sync"`
}

const dateLayout = "2006-01-02"

const defaultRetries = 2

// Load reads the YAML file at path, applies environment overrides and
// resolves the access key. Any problem is a ConfigError: the run must
// not start on a broken configuration.
func Load(path string) (*Config, error) {
	// A .env file is optional; missing is fine.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("file", "reading "+path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewConfigError("file", "parsing "+path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.resolveAccessKey(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source.AccessKeyEnv == "" {
		c.Source.AccessKeyEnv = DefaultAccessKeyEnv
	}
	if c.Window.DaysAhead == 0 && c.Window.Start == "" {
		c.Window.DaysAhead = 7
	}
	if c.Sync.RoomConcurrency <= 0 {
		c.Sync.RoomConcurrency = 1
	}
	if c.Sync.FetchWorkers <= 0 {
		c.Sync.FetchWorkers = 4
	}
	if c.Sync.CallTimeout <= 0 {
		c.Sync.CallTimeout = 30 * time.Second
	}
	if c.Sync.Retries == nil {
		retries := defaultRetries
		c.Sync.Retries = &retries
	} else if *c.Sync.Retries < 0 {
		*c.Sync.Retries = 0
	}
	if c.Sync.Timezone == "" {
		c.Sync.Timezone = "UTC"
	}
}

// applyEnvOverrides layers ROOMSYNC_* environment variables over the
// file values via viper.
func (c *Config) applyEnvOverrides() {
	v := viper.New()
	v.SetEnvPrefix("roomsync")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if base := v.GetString("source_baseurl"); base != "" {
		c.Source.BaseURL = base
	}
	if domain := v.GetString("source_domain"); domain != "" {
		c.Source.InstitutionDomain = domain
	}
	if tz := v.GetString("timezone"); tz != "" {
		c.Sync.Timezone = tz
	}
}

func (c *Config) resolveAccessKey() error {
	c.Source.AccessKey = os.Getenv(c.Source.AccessKeyEnv)
	if c.Source.AccessKey == "" {
		return errors.NewConfigError("source",
			"environment variable "+c.Source.AccessKeyEnv+" not set",
			errors.ErrAccessKeyRequired)
	}
	return nil
}

// Validate checks the configuration's internal consistency.
func (c *Config) Validate() error {
	if len(c.Rooms) == 0 {
		return errors.NewConfigError("rooms", "no rooms configured", errors.ErrInvalidInput)
	}
	for _, room := range c.Rooms {
		if room.RoomNumber == "" || room.Mailbox == "" {
			return errors.NewConfigError("rooms",
				"room "+room.Name+" needs both roomNumber and mailbox",
				errors.ErrInvalidInput)
		}
	}
	if c.Source.BaseURL == "" {
		return errors.NewConfigError("source", "baseURL is required", errors.ErrInvalidInput)
	}

	window, err := c.ResolveWindow(time.Now())
	if err != nil {
		return err
	}
	if !window.Valid() {
		return errors.NewConfigError("window", "end is not after start", errors.ErrInvalidInput)
	}

	if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		return errors.NewConfigError("sync", "unknown timezone "+c.Sync.Timezone, err)
	}
	return nil
}

// ResolveWindow computes the concrete sync window. Explicit dates win;
// otherwise the window rolls from today's date for DaysAhead days.
func (c *Config) ResolveWindow(now time.Time) (records.Window, error) {
	loc, err := time.LoadLocation(c.Sync.Timezone)
	if err != nil {
		loc = time.UTC
	}

	if c.Window.Start != "" || c.Window.End != "" {
		start, err := time.ParseInLocation(dateLayout, c.Window.Start, loc)
		if err != nil {
			return records.Window{}, errors.NewConfigError("window", "parsing start date", err)
		}
		end, err := time.ParseInLocation(dateLayout, c.Window.End, loc)
		if err != nil {
			return records.Window{}, errors.NewConfigError("window", "parsing end date", err)
		}
		return records.Window{Start: start, End: end}, nil
	}

	year, month, day := now.In(loc).Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return records.Window{Start: start, End: start.AddDate(0, 0, c.Window.DaysAhead)}, nil
}

// Retries returns the retry budget for transient API failures. An
// explicit zero means no retries; an absent field means the default.
func (c *Config) Retries() int {
	if c.Sync.Retries == nil {
		return defaultRetries
	}
	return *c.Sync.Retries
}

// Location returns the configured timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Sync.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
