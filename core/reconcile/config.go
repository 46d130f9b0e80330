package reconcile

import (
	"fmt"
	"time"
)

// Backends accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendSQL    = "sql"
	BackendObject = "object"
)

// Config is the sync section of the application configuration.
type Config struct {
	// KeyField names the machine identity field.
	KeyField string `mapstructure:"key_field" default:"ComputerName"`
	// Backend selects the store: memory, sql or object.
	Backend string `mapstructure:"backend" default:"memory"`
	// Sheet is the sheet name for the sql backend and the object name for the object backend.
	Sheet string `mapstructure:"sheet" default:"machines.csv"`
	// SchemaPolicy is grow or strict.
	SchemaPolicy string `mapstructure:"schema_policy" default:"grow"`
	// WriteIntervalMS paces row writes in milliseconds. Zero disables pacing.
	WriteIntervalMS int `mapstructure:"write_interval_ms" default:"0"`
	// HeaderBold, HeaderBackground and HeaderForeground style a new header row.
	HeaderBold       bool   `mapstructure:"header_bold" default:"true"`
	HeaderBackground string `mapstructure:"header_background" default:"#4A86E8"`
	HeaderForeground string `mapstructure:"header_foreground" default:"#FFFFFF"`
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQL, BackendObject:
	default:
		return fmt.Errorf("unknown sync backend %q", c.Backend)
	}
	switch SchemaPolicy(c.SchemaPolicy) {
	case "", SchemaGrow, SchemaStrict:
	default:
		return fmt.Errorf("unknown schema policy %q", c.SchemaPolicy)
	}
	if c.WriteIntervalMS < 0 {
		return fmt.Errorf("write interval must not be negative")
	}
	return nil
}

// Options converts the configuration into engine options.
func (c Config) Options() Options {
	return Options{
		KeyField:      c.KeyField,
		SchemaPolicy:  SchemaPolicy(c.SchemaPolicy),
		WriteInterval: time.Duration(c.WriteIntervalMS) * time.Millisecond,
		HeaderStyle: &HeaderStyle{
			Bold:       c.HeaderBold,
			Background: c.HeaderBackground,
			Foreground: c.HeaderForeground,
		},
	}.withDefaults()
}
