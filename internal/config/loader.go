package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WFTRACK_INDEX_DRIVER.
const EnvPrefix = "WFTRACK"

// Loader reads configuration from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a loader with its own viper instance.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// NewLoaderWithViper creates a loader over v, so CLI flags bound to v take
// part in the lookup.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the configuration. Precedence, highest first: flags bound to
// the viper instance, WFTRACK_* environment variables, the config file
// (.wftrack.yaml in the working directory or ~/.config/wftrack), defaults.
// Load does not validate.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(".wftrack")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "wftrack"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// ConfigFile returns the config file path if one was read.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Every key gets a default so AutomaticEnv can see it during Unmarshal.
func (l *Loader) setDefaults() {
	l.v.SetDefault("log_location", "")
	l.v.SetDefault("persistence_connection_string", "")
	l.v.SetDefault("host_id", "")

	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")

	l.v.SetDefault("index.driver", DriverNone)
	l.v.SetDefault("index.dsn", "")
	l.v.SetDefault("index.prefix", "wftrack:")
	l.v.SetDefault("index.database", "wftrack")
	l.v.SetDefault("index.collection", "instances")
}

// Load is shorthand for NewLoader().WithConfigFile(path).Load() followed by
// Validate. An empty path searches the default locations.
func Load(path string) (*Config, error) {
	cfg, err := NewLoader().WithConfigFile(path).Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
