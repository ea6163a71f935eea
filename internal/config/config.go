package config

import "time"

// Config is the root configuration for taskdeck.
type Config struct {
	Gateway  GatewayConfig  `json:"gateway"`
	Storage  StorageConfig  `json:"storage"`
	Events   EventsConfig   `json:"events"`
	Reminder ReminderConfig `json:"reminder"`
}

// GatewayConfig holds the local gateway server settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// StorageConfig selects and locates the key-value backend.
type StorageConfig struct {
	Backend string `json:"backend"` // "sqlite" or "memory"
	Path    string `json:"path"`    // database file; empty = <data>/taskdeck.db
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size"`
}

// ReminderConfig configures due-date reminder sweeps.
type ReminderConfig struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Cron    string   `json:"cron"`    // 5-field cron expression
	Horizon Duration `json:"horizon"` // how far ahead a task counts as due
}

// ReminderEnabled reports whether reminder sweeps should run. Unset means on.
func (c *Config) ReminderEnabled() bool {
	return c.Reminder.Enabled == nil || *c.Reminder.Enabled
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	// Remove quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
