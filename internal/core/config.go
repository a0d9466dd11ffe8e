package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config contains the options for running a conformance vector table against
// the cipher.
type Config struct {
	// Full path to file to which logs will be written. Blank will write to stdout.
	LogFilePath string `mapstructure:"log_file_path"`
	// Minimum level of a log required to be written. Options: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	Vectors struct {
		// YAML vector table to check. Blank uses the built-in published table.
		File string `mapstructure:"file"`
		// Number of goroutines checking vectors concurrently.
		Workers int `mapstructure:"workers"`
		// How long a scheduled cipher stays cached for reuse by later vectors.
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"vectors"`
}

const envVarPrefix = "BLOWFISH"

// Flag names that override config keys when set on the command line.
var flagKeys = map[string]string{
	"log-level": "log_level",
	"vectors":   "vectors.file",
	"workers":   "vectors.workers",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_file_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("vectors.file", "")
	v.SetDefault("vectors.workers", 4)
	v.SetDefault("vectors.cache_ttl", 5*time.Minute)
}

// LoadConfig reads config.yaml from configPath (if there is one), layers
// environment variables and any flags in fs on top, and returns the result.
// A missing config file is not an error; defaults are used instead.
func LoadConfig(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.AddConfigPath(configPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(envVarPrefix)
	v.AutomaticEnv()

	// This allows us to set nested yaml config options through environment
	// variables. For example, vectors.workers can be set using: <envVarPrefix>_VECTORS_WORKERS
	for _, k := range v.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := v.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			return nil, fmt.Errorf("error binding %s to %s: %w", k, envVarPrefix+"_"+envVar, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config object: %w", err)
	}
	if config.Vectors.Workers < 1 {
		return nil, fmt.Errorf("vectors.workers must be at least 1, got %d", config.Vectors.Workers)
	}
	return config, nil
}
