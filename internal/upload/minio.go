package upload

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/zinc-sig/pst/internal/config"
)

// MinioAdapter stores the payload in an S3 compatible bucket
type MinioAdapter struct {
	name      string
	caps      Capabilities
	client    *minio.Client
	bucket    string
	prefix    string
	publicURL string
	randomize bool
	log       *slog.Logger
}

func newMinioAdapter(p config.Provider, opts BuildOptions) (*MinioAdapter, error) {
	for _, f := range []struct{ field, value string }{
		{"endpoint", p.Endpoint},
		{"access_key", p.AccessKey},
		{"secret_key", p.SecretKey},
		{"bucket", p.Bucket},
	} {
		if err := requireField(p, f.field, f.value); err != nil {
			return nil, err
		}
	}
	caps, err := capabilitiesFor(p, 0, bothKinds)
	if err != nil {
		return nil, err
	}

	host, secure := splitEndpoint(p.Endpoint, p.Secure)
	region := p.Region
	if region == "" {
		region = "us-east-1"
	}

	// Retries belong to the caller, so the client makes a single request
	client, err := minio.New(host, &minio.Options{
		Creds:      credentials.NewStaticV4(p.AccessKey, p.SecretKey, ""),
		Secure:     secure,
		Region:     region,
		MaxRetries: 1,
	})
	if err != nil {
		return nil, config.NewError(config.ErrorCodeInvalidProvider, p.Name,
			fmt.Sprintf("provider %q: cannot create s3 client", p.Name), err)
	}
	client.SetAppInfo("pst", strings.TrimPrefix(opts.userAgent(), "pst/"))

	publicURL := p.PublicURL
	if publicURL == "" {
		scheme := "https"
		if !secure {
			scheme = "http"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, host, p.Bucket)
	}

	return &MinioAdapter{
		name:      p.Name,
		caps:      caps,
		client:    client,
		bucket:    p.Bucket,
		prefix:    strings.Trim(p.Prefix, "/"),
		publicURL: publicURL,
		randomize: opts.RandomizeNames,
		log:       opts.logger().With("provider", p.Name),
	}, nil
}

// splitEndpoint strips an http or https scheme from endpoint. An explicit
// scheme decides TLS; otherwise the secure setting does, defaulting to on.
func splitEndpoint(endpoint string, secure *bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimRight(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimRight(strings.TrimPrefix(endpoint, "http://"), "/"), false
	}
	if secure != nil {
		return endpoint, *secure
	}
	return endpoint, true
}

// Name returns the provider name
func (m *MinioAdapter) Name() string { return m.name }

// Capabilities returns the provider limits
func (m *MinioAdapter) Capabilities() Capabilities { return m.caps }

// Upload puts the payload as one object and returns its public URL
func (m *MinioAdapter) Upload(ctx context.Context, req *Request) (*Success, error) {
	if err := checkSize(m.name, m.caps, req); err != nil {
		return nil, err
	}

	remote := RemoteName(req, m.randomize)
	objectName := remote
	if m.prefix != "" {
		objectName = m.prefix + "/" + remote
	}
	m.log.Debug("putting object", "bucket", m.bucket, "object", objectName, "size", req.Size())

	_, err := m.client.PutObject(ctx, m.bucket, objectName, req.Body(), req.Size(), minio.PutObjectOptions{
		ContentType: ContentType(req),
	})
	if err != nil {
		return nil, m.classify(err)
	}
	return &Success{Provider: m.name, URL: joinURL(m.publicURL, objectName)}, nil
}

func (m *MinioAdapter) classify(err error) *ProviderError {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return NewError(m.name, ErrAuthFailure, resp.Message, err)
	case "EntityTooLarge":
		return NewError(m.name, ErrSizeExceeded, resp.Message, err)
	case "SlowDown", "SlowDownWrite", "SlowDownRead":
		return NewError(m.name, ErrRateLimited, resp.Message, err)
	case "NoSuchBucket":
		return NewError(m.name, ErrRemoteRejected, fmt.Sprintf("bucket %s does not exist", m.bucket), err)
	}
	if resp.StatusCode != 0 && resp.StatusCode != http.StatusOK {
		pe := StatusError(m.name, resp.StatusCode, nil, resp.Message)
		pe.Err = err
		return pe
	}
	return Classify(m.name, err)
}
