package helpers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zinc-sig/pst/internal/config"
)

// PrintConfigInfo prints the config file and effective general settings in
// dry-run mode
func PrintConfigInfo(w io.Writer, path string, general config.General) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Configuration (DRY RUN)")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "File: %s\n", path)

	settings := map[string]any{
		"timeout_seconds":    general.TimeoutSeconds,
		"deadline_seconds":   general.DeadlineSeconds,
		"max_retries":        general.MaxRetries,
		"retry_delay_ms":     general.RetryDelayMs,
		"max_retry_delay_ms": general.MaxRetryDelayMs,
		"strip_exif":         general.StripExif,
		"auto_group":         general.AutoGroup,
		"randomize_names":    general.RandomizeNames,
	}
	jsonBytes, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "  %v\n", settings)
	} else {
		fmt.Fprintf(w, "%s\n", string(jsonBytes))
	}
}
