package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ParseKV parses a key=value pair, attempting type inference for the value
func ParseKV(kvPair string) (string, any, error) {
	parts := strings.SplitN(kvPair, "=", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("invalid format, expected key=value: %s", kvPair)
	}

	key := strings.TrimSpace(parts[0])
	if key == "" {
		return "", nil, fmt.Errorf("empty key in key=value pair")
	}

	valueStr := strings.TrimSpace(parts[1])

	// Integers first so "1" stays a number
	if intVal, err := strconv.Atoi(valueStr); err == nil {
		return key, intVal, nil
	}

	if floatVal, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return key, floatVal, nil
	}

	// Only explicit "true"/"false" become booleans
	if valueStr == "true" || valueStr == "false" {
		boolVal, _ := strconv.ParseBool(valueStr)
		return key, boolVal, nil
	}

	return key, valueStr, nil
}

// ApplyOverrides sets each key=value pair on v, highest precedence.
// Keys use dotted paths such as general.max_retries.
func ApplyOverrides(v *viper.Viper, overrides []string) error {
	for _, kv := range overrides {
		key, value, err := ParseKV(kv)
		if err != nil {
			return err
		}
		if strings.HasPrefix(key, "providers.") || key == "providers" {
			return fmt.Errorf("providers cannot be overridden with --set: %s", key)
		}
		v.Set(key, value)
	}
	return nil
}
