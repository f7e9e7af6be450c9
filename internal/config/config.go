package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danpilch/journeypal/internal/api/tfl"
	"github.com/danpilch/journeypal/internal/journey"
)

type TfLConfig struct {
	BaseURL               string        `yaml:"base_url"`
	UserAgent             string        `yaml:"user_agent"`
	Timeout               time.Duration `yaml:"timeout"`
	MaxRetries            uint64        `yaml:"max_retries"`
	CircuitBreakerTimeout time.Duration `yaml:"circuit_breaker_timeout"`
}

type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// JourneyConfig is a saved journey checked by the watch command.
type JourneyConfig struct {
	Name                     string        `yaml:"name"`
	From                     string        `yaml:"from"`
	To                       string        `yaml:"to"`
	Via                      string        `yaml:"via"`
	At                       string        `yaml:"at"`    // HHmm, first check
	Every                    time.Duration `yaml:"every"` // repeat interval, with until
	Until                    string        `yaml:"until"` // HHmm, last check
	Days                     []string      `yaml:"days"`  // e.g., ["monday", "wednesday", "friday"]
	NationalSearch           bool          `yaml:"national_search"`
	Time                     string        `yaml:"time"`
	TimeIs                   string        `yaml:"time_is"`
	JourneyPreference        string        `yaml:"journey_preference"`
	Modes                    []string      `yaml:"modes"`
	IncludeAlternativeRoutes bool          `yaml:"include_alternative_routes"`
}

// CheckTimeOn returns the check time on the same day as day.
func (j JourneyConfig) CheckTimeOn(day time.Time) (time.Time, error) {
	parsed, err := time.Parse("1504", j.At)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid check time %q: %w", j.At, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}

// CheckTimesOn returns every check slot on the same day as day: at, then
// every interval up to and including until. Without a repeat window it is
// just the single check time.
func (j JourneyConfig) CheckTimesOn(day time.Time) ([]time.Time, error) {
	first, err := j.CheckTimeOn(day)
	if err != nil {
		return nil, err
	}
	if j.Until == "" {
		if j.Every != 0 {
			return nil, fmt.Errorf("every %s needs an until time", j.Every)
		}
		return []time.Time{first}, nil
	}

	until, err := time.Parse("1504", j.Until)
	if err != nil {
		return nil, fmt.Errorf("invalid until time %q: %w", j.Until, err)
	}
	last := time.Date(day.Year(), day.Month(), day.Day(), until.Hour(), until.Minute(), 0, 0, day.Location())
	if last.Before(first) {
		return nil, fmt.Errorf("until %s is before at %s", j.Until, j.At)
	}
	if j.Every < time.Minute {
		return nil, fmt.Errorf("every must be at least 1m when until is set, got %s", j.Every)
	}

	var slots []time.Time
	for t := first; !t.After(last); t = t.Add(j.Every) {
		slots = append(slots, t)
	}
	return slots, nil
}

// IsActiveDay returns true if the given weekday is in the configured days list.
// If no days are configured, returns true (runs every day).
func (j JourneyConfig) IsActiveDay(weekday time.Weekday) bool {
	if len(j.Days) == 0 {
		return true
	}
	dayName := strings.ToLower(weekday.String())
	for _, d := range j.Days {
		if strings.ToLower(d) == dayName {
			return true
		}
	}
	return false
}

// Query builds the journey query for a check on the given date. The
// configured time, if any, is paired with that date.
func (j JourneyConfig) Query(on time.Time) journey.Query {
	q := journey.Query{
		From:                     j.From,
		To:                       j.To,
		Via:                      j.Via,
		NationalSearch:           j.NationalSearch,
		Time:                     j.Time,
		TimeIs:                   journey.TimeIs(j.TimeIs),
		Preference:               journey.Preference(j.JourneyPreference),
		Modes:                    j.Modes,
		IncludeAlternativeRoutes: j.IncludeAlternativeRoutes,
	}
	if j.Time != "" {
		q.Date = on.Format("20060102")
	}
	return q
}

type Config struct {
	TfL      TfLConfig       `yaml:"tfl"`
	Tracing  TracingConfig   `yaml:"tracing"`
	Journeys []JourneyConfig `yaml:"journeys"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		TfL: TfLConfig{
			BaseURL:               tfl.DefaultBaseURL,
			UserAgent:             tfl.DefaultUserAgent,
			Timeout:               30 * time.Second,
			MaxRetries:            2,
			CircuitBreakerTimeout: 60 * time.Second,
		},
		Tracing: TracingConfig{
			Endpoint: "localhost:4318",
			Insecure: true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	if c.TfL.BaseURL == "" {
		return fmt.Errorf("tfl: base_url is required")
	}
	if c.TfL.Timeout < 0 {
		return fmt.Errorf("tfl: timeout must not be negative")
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing: endpoint is required when tracing is enabled")
	}

	seen := make(map[string]bool)
	for i, j := range c.Journeys {
		if j.Name == "" {
			return fmt.Errorf("journeys[%d]: name is required", i)
		}
		if seen[j.Name] {
			return fmt.Errorf("journeys[%d]: duplicate name %q", i, j.Name)
		}
		seen[j.Name] = true

		if j.From == "" || j.To == "" || j.At == "" {
			return fmt.Errorf("journey %s: from, to, and at are required", j.Name)
		}
		if _, err := j.CheckTimesOn(time.Now()); err != nil {
			return fmt.Errorf("journey %s: %w", j.Name, err)
		}
		if err := j.Query(time.Now()).Validate(); err != nil {
			return fmt.Errorf("journey %s: %w", j.Name, err)
		}
	}

	return nil
}

// ClientConfig maps the tfl section onto the client configuration.
func (c *Config) ClientConfig(appKey string) tfl.Config {
	return tfl.Config{
		BaseURL:               c.TfL.BaseURL,
		AppKey:                appKey,
		UserAgent:             c.TfL.UserAgent,
		Timeout:               c.TfL.Timeout,
		MaxRetries:            c.TfL.MaxRetries,
		CircuitBreakerTimeout: c.TfL.CircuitBreakerTimeout,
	}
}
