package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. PST_GENERAL_MAX_RETRIES
const EnvPrefix = "PST"

// Options controls where configuration is read from
type Options struct {
	// Path is an explicit config file. Empty means DefaultPath, which is
	// created with DefaultTOML when missing.
	Path string

	// Overrides are key=value pairs applied after file and environment
	Overrides []string
}

// DefaultPath returns <UserConfigDir>/pst/config.toml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(dir, "pst", "config.toml"), nil
}

// WriteDefault writes DefaultTOML to path. An existing file is only replaced
// when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultTOML), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load reads, layers and validates the configuration. It returns the
// snapshot and the path of the file it was read from.
func Load(opts Options) (*Config, string, error) {
	path := opts.Path
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, "", NewError(ErrorCodeLoad, "", "cannot locate config", err)
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := WriteDefault(path, false); err != nil {
				return nil, path, NewError(ErrorCodeLoad, "", "cannot create default config", err)
			}
		}
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, path, NewError(ErrorCodeLoad, "", fmt.Sprintf("failed to read %s", path), err)
	}

	cfg, err := finish(v, opts.Overrides)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse reads TOML configuration from r with the same layering as Load
func Parse(r io.Reader, overrides []string) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, NewError(ErrorCodeLoad, "", "failed to parse config", err)
	}
	return finish(v, overrides)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper, overrides []string) (*Config, error) {
	if err := ApplyOverrides(v, overrides); err != nil {
		return nil, NewError(ErrorCodeInvalidSetting, "", "invalid override", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, NewError(ErrorCodeLoad, "", "failed to decode config", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook lets max_file_size_mb be written as an integer, a float or a
// quoted string
func decimalHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case decimal.Decimal:
		return v, nil
	}
	return nil, fmt.Errorf("cannot use %T as a size", data)
}
