package helpers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/zinc-sig/pst/internal/config"
)

// ResolveConfigPath returns the config file to use. An explicit path has a
// leading ~ expanded; an empty one gives the default location.
func ResolveConfigPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return config.DefaultPath()
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
