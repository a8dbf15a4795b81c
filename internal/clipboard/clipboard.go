// Package clipboard reads upload input from and copies result URLs to the
// system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/zinc-sig/pst/internal/upload"
)

var (
	// ErrEmpty is returned when the clipboard holds no text
	ErrEmpty = errors.New("clipboard is empty")

	// ErrUnsupported is returned when no clipboard utility is available
	ErrUnsupported = errors.New("clipboard is not available on this system")
)

// Backend is a text clipboard
type Backend interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type system struct{}

func (system) ReadAll() (string, error) {
	if !Supported() {
		return "", ErrUnsupported
	}
	return clipboard.ReadAll()
}

func (system) WriteAll(text string) error {
	if !Supported() {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// System returns the platform clipboard
func System() Backend {
	return system{}
}

// Supported reports whether the platform clipboard can be used
func Supported() bool {
	return !clipboard.Unsupported
}

// Read returns the clipboard text and a random .txt filename for it
func Read(b Backend) ([]byte, string, error) {
	text, err := b.ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read clipboard content: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, "", ErrEmpty
	}
	return []byte(text), upload.RandomName() + ".txt", nil
}

// Copy places url on the clipboard. Failures are logged and otherwise
// ignored.
func Copy(b Backend, url string, log *slog.Logger) bool {
	if err := b.WriteAll(url); err != nil {
		log.Warn("failed to copy URL to clipboard", "error", err)
		return false
	}
	log.Debug("copied URL to clipboard", "url", url)
	return true
}
