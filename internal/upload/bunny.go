package upload

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/zinc-sig/pst/internal/config"
)

const bunnyStorageHost = "storage.bunnycdn.com"

// BunnyAdapter stores the payload in a Bunny CDN storage zone
type BunnyAdapter struct {
	name      string
	caps      Capabilities
	baseURL   string // storage API base including the zone
	accessKey string
	prefix    string
	publicURL string
	randomize bool
	client    *resty.Client
	log       *slog.Logger
}

func newBunnyAdapter(p config.Provider, opts BuildOptions) (*BunnyAdapter, error) {
	for field, value := range map[string]string{
		"storage_zone": p.StorageZone,
		"access_key":   p.AccessKey,
		"public_url":   p.PublicURL,
	} {
		if err := requireField(p, field, value); err != nil {
			return nil, err
		}
	}
	caps, err := capabilitiesFor(p, 0, bothKinds)
	if err != nil {
		return nil, err
	}

	return &BunnyAdapter{
		name:      p.Name,
		caps:      caps,
		baseURL:   joinURL(bunnyEndpoint(p), p.StorageZone),
		accessKey: p.AccessKey,
		prefix:    strings.Trim(p.Prefix, "/"),
		publicURL: p.PublicURL,
		randomize: opts.RandomizeNames,
		client:    resty.New().SetHeader("User-Agent", opts.userAgent()).SetRetryCount(0),
		log:       opts.logger().With("provider", p.Name),
	}, nil
}

// bunnyEndpoint returns the storage API host. The default region uses the
// bare host; other regions are prefixed, for example ny.storage.bunnycdn.com.
func bunnyEndpoint(p config.Provider) string {
	if p.Endpoint != "" {
		return p.Endpoint
	}
	region := strings.ToLower(strings.TrimSpace(p.Region))
	if region == "" || region == "de" || region == "falkenstein" {
		return "https://" + bunnyStorageHost
	}
	return fmt.Sprintf("https://%s.%s", region, bunnyStorageHost)
}

// Name returns the provider name
func (a *BunnyAdapter) Name() string { return a.name }

// Capabilities returns the provider limits
func (a *BunnyAdapter) Capabilities() Capabilities { return a.caps }

// Upload PUTs the payload into the storage zone
func (a *BunnyAdapter) Upload(ctx context.Context, req *Request) (*Success, error) {
	if err := checkSize(a.name, a.caps, req); err != nil {
		return nil, err
	}

	remote := RemoteName(req, a.randomize)
	target := joinURL(a.baseURL, a.prefix, remote)
	a.log.Debug("storing object", "target", target, "size", req.Size())

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("AccessKey", a.accessKey).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(req.Body()).
		Put(target)
	if err != nil {
		return nil, Classify(a.name, err)
	}
	if !is2xx(resp.StatusCode()) {
		return nil, StatusError(a.name, resp.StatusCode(), resp.Header(), strings.TrimSpace(resp.String()))
	}

	return &Success{Provider: a.name, URL: joinURL(a.publicURL, a.prefix, remote)}, nil
}
