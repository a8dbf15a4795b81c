package upload

import (
	"fmt"
	"log/slog"

	"github.com/zinc-sig/pst/internal/config"
)

// DefaultUserAgent is sent by HTTP based adapters
const DefaultUserAgent = "pst/1.0"

// BuildOptions are shared settings for adapter construction
type BuildOptions struct {
	UserAgent      string
	RandomizeNames bool
	Logger         *slog.Logger
}

func (o BuildOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o BuildOptions) userAgent() string {
	if o.UserAgent != "" {
		return o.UserAgent
	}
	return DefaultUserAgent
}

// NewAdapter builds the adapter variant selected by the provider type.
// The set of variants is closed; unknown types are configuration errors.
func NewAdapter(p config.Provider, opts BuildOptions) (Adapter, error) {
	switch p.Type {
	case config.TypeHTTP:
		return newHTTPAdapter(p, opts)
	case config.TypeFtpSftp:
		return newFileTransferAdapter(p, opts)
	case config.TypeBunny:
		return newBunnyAdapter(p, opts)
	case config.TypeS3:
		return newMinioAdapter(p, opts)
	default:
		return nil, config.InvalidProvider(p.Name, fmt.Sprintf("unknown type %q", p.Type))
	}
}

// capabilitiesFor applies configured limits over adapter defaults
func capabilitiesFor(p config.Provider, defaultMax int64, defaultAccepts []Kind) (Capabilities, error) {
	caps := Capabilities{MaxSizeBytes: defaultMax, Accepts: defaultAccepts}
	if size := p.MaxSizeBytes(); size > 0 {
		caps.MaxSizeBytes = size
	}
	if len(p.Accepts) > 0 {
		kinds := make([]Kind, 0, len(p.Accepts))
		for _, s := range p.Accepts {
			k, err := ParseKind(s)
			if err != nil {
				return Capabilities{}, config.InvalidProvider(p.Name, err.Error())
			}
			kinds = append(kinds, k)
		}
		caps.Accepts = kinds
	}
	return caps, nil
}

func requireField(p config.Provider, field, value string) error {
	if value == "" {
		return config.InvalidProvider(p.Name, field+" is required")
	}
	return nil
}

var bothKinds = []Kind{KindText, KindBinary}

const mib = 1024 * 1024
