package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/zinc-sig/pst/internal/config"
)

// Supported services for the http provider type
const (
	Service0x0st   = "0x0st"
	ServicePasteRs = "paste_rs"
	ServiceUguu    = "uguu"
	ServiceX0at    = "x0at"
)

type httpService struct {
	endpoint string
	maxSize  int64
	accepts  []Kind
	send     func(r *resty.Request, req *Request, endpoint string) (*resty.Response, error)
	parse    func(endpoint string, resp *resty.Response) (string, error)
	ok       func(status int) bool
}

var httpServices = map[string]httpService{
	Service0x0st: {
		endpoint: "https://0x0.st",
		maxSize:  512 * mib,
		accepts:  []Kind{KindBinary},
		send:     sendMultipart("file", true),
		parse:    parsePlainURL,
		ok:       is2xx,
	},
	ServicePasteRs: {
		endpoint: "https://paste.rs",
		maxSize:  10 * mib,
		accepts:  []Kind{KindText},
		send:     sendRaw,
		parse:    parsePasteRs,
		ok: func(status int) bool {
			return status == http.StatusCreated || status == http.StatusPartialContent
		},
	},
	ServiceUguu: {
		endpoint: "https://uguu.se/upload",
		maxSize:  128 * mib,
		accepts:  bothKinds,
		send:     sendUguu,
		parse:    parseUguu,
		ok:       is2xx,
	},
	ServiceX0at: {
		endpoint: "https://x0.at",
		maxSize:  512 * mib,
		accepts:  bothKinds,
		send:     sendMultipart("file", false),
		parse:    parsePlainURL,
		ok:       is2xx,
	},
}

// HTTPServices returns the names of the built-in http services
func HTTPServices() []string {
	return []string{Service0x0st, ServicePasteRs, ServiceUguu, ServiceX0at}
}

// HTTPAdapter uploads to a public paste or file hosting service
type HTTPAdapter struct {
	name     string
	caps     Capabilities
	endpoint string
	service  httpService
	client   *resty.Client
	log      *slog.Logger
}

func newHTTPAdapter(p config.Provider, opts BuildOptions) (*HTTPAdapter, error) {
	service := p.Service
	if service == "" {
		service = p.Name
	}
	svc, ok := httpServices[service]
	if !ok {
		return nil, config.InvalidProvider(p.Name, fmt.Sprintf("unknown http service %q, expected one of %s",
			service, strings.Join(HTTPServices(), ", ")))
	}
	caps, err := capabilitiesFor(p, svc.maxSize, svc.accepts)
	if err != nil {
		return nil, err
	}
	endpoint := svc.endpoint
	if p.Endpoint != "" {
		endpoint = p.Endpoint
	}

	client := resty.New().
		SetHeader("User-Agent", opts.userAgent()).
		SetRetryCount(0)

	return &HTTPAdapter{
		name:     p.Name,
		caps:     caps,
		endpoint: endpoint,
		service:  svc,
		client:   client,
		log:      opts.logger().With("provider", p.Name),
	}, nil
}

// Name returns the provider name
func (a *HTTPAdapter) Name() string { return a.name }

// Capabilities returns the provider limits
func (a *HTTPAdapter) Capabilities() Capabilities { return a.caps }

// Upload posts the payload to the service and parses the returned URL
func (a *HTTPAdapter) Upload(ctx context.Context, req *Request) (*Success, error) {
	if err := checkSize(a.name, a.caps, req); err != nil {
		return nil, err
	}

	a.log.Debug("posting payload", "endpoint", a.endpoint, "size", req.Size(), "filename", req.Filename())
	resp, err := a.service.send(a.client.R().SetContext(ctx), req, a.endpoint)
	if err != nil {
		return nil, Classify(a.name, err)
	}
	if !a.service.ok(resp.StatusCode()) {
		return nil, StatusError(a.name, resp.StatusCode(), resp.Header(), strings.TrimSpace(resp.String()))
	}

	url, err := a.service.parse(a.endpoint, resp)
	if err != nil {
		return nil, NewError(a.name, ErrRemoteRejected, "unexpected response", err)
	}
	return &Success{Provider: a.name, URL: url}, nil
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}

func sendMultipart(field string, withExpires bool) func(*resty.Request, *Request, string) (*resty.Response, error) {
	return func(r *resty.Request, req *Request, endpoint string) (*resty.Response, error) {
		r.SetMultipartField(field, req.Filename(), ContentType(req), req.Body())
		if withExpires && req.Expires() != "" {
			hours, err := expiresHours(req.Expires())
			if err != nil {
				return nil, fmt.Errorf("invalid expiration: %w", err)
			}
			r.SetMultipartFormData(map[string]string{"expires": strconv.Itoa(hours)})
		}
		return r.Post(endpoint)
	}
}

func sendRaw(r *resty.Request, req *Request, endpoint string) (*resty.Response, error) {
	return r.
		SetHeader("Content-Type", "text/plain; charset=utf-8").
		SetBody(req.Body()).
		Post(endpoint)
}

func sendUguu(r *resty.Request, req *Request, endpoint string) (*resty.Response, error) {
	return r.
		SetQueryParam("output", "json").
		SetMultipartField("files[]", req.Filename(), ContentType(req), req.Body()).
		Post(endpoint)
}

func parsePlainURL(_ string, resp *resty.Response) (string, error) {
	body := strings.TrimSpace(resp.String())
	if !strings.HasPrefix(body, "http://") && !strings.HasPrefix(body, "https://") {
		return "", fmt.Errorf("response is not a URL: %q", truncate(body))
	}
	return body, nil
}

// parsePasteRs accepts a full URL or a bare paste id
func parsePasteRs(endpoint string, resp *resty.Response) (string, error) {
	body := strings.TrimSpace(resp.String())
	if body == "" {
		return "", fmt.Errorf("empty response body")
	}
	if strings.HasPrefix(body, "http://") || strings.HasPrefix(body, "https://") {
		return body, nil
	}
	return joinURL(endpoint, body), nil
}

type uguuResponse struct {
	Success bool `json:"success"`
	Files   []struct {
		URL string `json:"url"`
	} `json:"files"`
	Description string `json:"description"`
}

func parseUguu(_ string, resp *resty.Response) (string, error) {
	var out uguuResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if !out.Success {
		return "", fmt.Errorf("service reported failure: %s", out.Description)
	}
	if len(out.Files) == 0 || out.Files[0].URL == "" {
		return "", fmt.Errorf("response contains no file URL")
	}
	return out.Files[0].URL, nil
}

// expiresHours converts an expiration hint to whole hours. Bare integers
// are hours; Go durations such as "90m" or "24h" are rounded up.
func expiresHours(hint string) (int, error) {
	if n, err := strconv.Atoi(hint); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("expiration must be positive: %s", hint)
		}
		return n, nil
	}
	d, err := time.ParseDuration(hint)
	if err != nil {
		return 0, fmt.Errorf("expiration %q is neither hours nor a duration", hint)
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiration must be positive: %s", hint)
	}
	hours := int(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours, nil
}

func truncate(s string) string {
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
