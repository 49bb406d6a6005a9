// Package config loads wftrack settings from a YAML file, WFTRACK_*
// environment variables and defaults.
package config

import (
	"fmt"
	"strings"
)

// Config is the complete wftrack configuration.
type Config struct {
	// LogLocation is the directory holding instance logs.
	LogLocation string `mapstructure:"log_location" yaml:"log_location"`
	// PersistenceConnectionString names the workflow store; only its
	// Initial Catalog is used.
	PersistenceConnectionString string `mapstructure:"persistence_connection_string" yaml:"persistence_connection_string"`
	// HostID overrides the "<machine>-<process>" writer id.
	HostID string `mapstructure:"host_id" yaml:"host_id"`

	Log   LogConfig   `mapstructure:"log" yaml:"log"`
	Index IndexConfig `mapstructure:"index" yaml:"index"`
}

// LogConfig configures the service logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// IndexConfig selects the secondary record index.
type IndexConfig struct {
	// Driver is one of none, memory, sqlite, postgres, redis, mongo.
	Driver string `mapstructure:"driver" yaml:"driver"`
	// DSN is a file path for sqlite, a connection string for postgres and a
	// URL for redis and mongo.
	DSN        string `mapstructure:"dsn" yaml:"dsn"`
	Prefix     string `mapstructure:"prefix" yaml:"prefix"`
	Database   string `mapstructure:"database" yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// Index drivers.
const (
	DriverNone     = "none"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

// ValidationError reports one invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks cfg and returns ValidationErrors when anything is wrong.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if strings.TrimSpace(c.LogLocation) == "" {
		add("log_location", c.LogLocation, "directory required")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", c.Log.Level, "must be one of: debug, info, warn, error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "auto", "text", "json":
	default:
		add("log.format", c.Log.Format, "must be one of: auto, text, json")
	}

	switch c.Index.Driver {
	case DriverNone, DriverMemory:
	case DriverSQLite, DriverPostgres, DriverRedis, DriverMongo:
		if c.Index.DSN == "" {
			add("index.dsn", c.Index.DSN, "required for driver "+c.Index.Driver)
		}
	default:
		add("index.driver", c.Index.Driver, "must be one of: none, memory, sqlite, postgres, redis, mongo")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
