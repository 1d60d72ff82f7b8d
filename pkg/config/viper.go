package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Options controls where Load looks for configuration.
type Options struct {
	// Path is searched before "." and "./config".
	Path string
	// Name is the config file name without extension.
	Name string
	// EnvPrefix, when set, restricts environment overrides to
	// PREFIX_SECTION_KEY variables.
	EnvPrefix string
}

// Load reads a YAML file and layers environment variables on top.
// A missing file is not an error: defaults and the environment still apply.
func Load(opts Options) (*viper.Viper, error) {
	v := viper.New()

	name := opts.Name
	if name == "" {
		name = "config"
	}
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	if opts.Path != "" {
		v.AddConfigPath(opts.Path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return v, nil
}

// GetEnv returns the environment variable or a default.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
