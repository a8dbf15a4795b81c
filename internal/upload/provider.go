package upload

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/zinc-sig/pst/internal/config"
)

// Kind is the content kind of a payload
type Kind int

const (
	KindText Kind = iota
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return config.KindText
	case KindBinary:
		return config.KindBinary
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses "text" or "binary"
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case config.KindText:
		return KindText, nil
	case config.KindBinary:
		return KindBinary, nil
	}
	return 0, fmt.Errorf("unknown content kind %q", s)
}

// Capabilities are the static limits used to filter candidates
type Capabilities struct {
	MaxSizeBytes int64
	Accepts      []Kind
}

// Allows reports whether a payload of the given size and kind fits
func (c Capabilities) Allows(size int64, kind Kind) bool {
	if c.MaxSizeBytes > 0 && size > c.MaxSizeBytes {
		return false
	}
	return slices.Contains(c.Accepts, kind)
}

// Success is the outcome of one successful upload attempt
type Success struct {
	Provider string
	URL      string
}

// Adapter is the uniform upload capability of one configured backend.
//
// Upload performs exactly one attempt. It must return promptly when ctx is
// done and must not retry internally; errors are *ProviderError values.
type Adapter interface {
	// Name returns the configured provider name
	Name() string

	// Capabilities returns the size and kind limits of the provider
	Capabilities() Capabilities

	// Upload sends the request payload and returns the public URL
	Upload(ctx context.Context, req *Request) (*Success, error)
}

// checkSize rejects payloads over the adapter limit. A forced provider
// bypasses candidate filtering, so adapters enforce their own limit.
func checkSize(name string, caps Capabilities, req *Request) error {
	if caps.MaxSizeBytes > 0 && req.Size() > caps.MaxSizeBytes {
		return NewError(name, ErrSizeExceeded,
			fmt.Sprintf("payload is %d bytes, limit is %d bytes", req.Size(), caps.MaxSizeBytes), nil)
	}
	return nil
}
