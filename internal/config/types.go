package config

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Provider types. The set is closed; a new backend needs a new constant here
// and a matching constructor in the upload package.
const (
	TypeHTTP    = "http"
	TypeFtpSftp = "ftp_sftp"
	TypeBunny   = "bunny"
	TypeS3      = "s3"
)

// Content kinds accepted by a provider
const (
	KindText   = "text"
	KindBinary = "binary"
)

// Config is the immutable configuration snapshot for one process.
type Config struct {
	General        General          `mapstructure:"general"`
	Providers      []Provider       `mapstructure:"providers"`
	ProviderGroups map[string]Group `mapstructure:"provider_groups"`
}

// General holds settings shared by every provider
type General struct {
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	DeadlineSeconds int    `mapstructure:"deadline_seconds"`
	MaxRetries      int    `mapstructure:"max_retries"`
	RetryDelayMs    int    `mapstructure:"retry_delay_ms"`
	MaxRetryDelayMs int    `mapstructure:"max_retry_delay_ms"`
	CopyToClipboard bool   `mapstructure:"copy_to_clipboard"`
	StripExif       bool   `mapstructure:"strip_exif"`
	AutoGroup       bool   `mapstructure:"auto_group"`
	RandomizeNames  bool   `mapstructure:"randomize_names"`
	LogLevel        string `mapstructure:"log_level"`
}

// Provider is one [[providers]] entry. Protocol specific fields are flat;
// which of them matter depends on Type.
type Provider struct {
	Name          string          `mapstructure:"name"`
	Type          string          `mapstructure:"type"`
	Enabled       *bool           `mapstructure:"enabled"`
	Priority      int             `mapstructure:"priority"`
	MaxFileSizeMB decimal.Decimal `mapstructure:"max_file_size_mb"`
	Accepts       []string        `mapstructure:"accepts"`

	// http
	Service  string `mapstructure:"service"`
	Endpoint string `mapstructure:"endpoint"`

	// ftp_sftp
	Protocol         string `mapstructure:"protocol"`
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	SSHPrivateKey    string `mapstructure:"ssh_private_key"`
	SSHKeyPassphrase string `mapstructure:"ssh_key_passphrase"`
	KnownHosts       string `mapstructure:"known_hosts"`
	Directory        string `mapstructure:"directory"`
	DirectoryMode    string `mapstructure:"directory_mode"`

	// bunny and s3
	StorageZone string `mapstructure:"storage_zone"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	Region      string `mapstructure:"region"`
	Bucket      string `mapstructure:"bucket"`
	Prefix      string `mapstructure:"prefix"`
	Secure      *bool  `mapstructure:"secure"`

	PublicURL string `mapstructure:"public_url"`
}

// Group is a named ordered list of provider names
type Group struct {
	Providers []string `mapstructure:"providers"`
}

// IsEnabled reports whether the provider takes part in uploads.
// Providers are enabled unless the entry says otherwise.
func (p Provider) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

var bytesPerMB = decimal.NewFromInt(1024 * 1024)

// MaxSizeBytes converts max_file_size_mb to bytes. Zero means the adapter
// default applies.
func (p Provider) MaxSizeBytes() int64 {
	if p.MaxFileSizeMB.Sign() <= 0 {
		return 0
	}
	return p.MaxFileSizeMB.Mul(bytesPerMB).Floor().IntPart()
}

// AttemptTimeout returns the per-attempt timeout
func (g General) AttemptTimeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// Deadline returns the overall run deadline, zero when unbounded
func (g General) Deadline() time.Duration {
	return time.Duration(g.DeadlineSeconds) * time.Second
}

// RetryDelay returns the base delay between retries
func (g General) RetryDelay() time.Duration {
	return time.Duration(g.RetryDelayMs) * time.Millisecond
}

// MaxRetryDelay returns the cap applied to backoff delays
func (g General) MaxRetryDelay() time.Duration {
	return time.Duration(g.MaxRetryDelayMs) * time.Millisecond
}

// Provider looks up a provider entry by name
func (c *Config) Provider(name string) (Provider, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// Group looks up a provider group by name. Table keys are lowercased when
// the file is loaded, so names match case-insensitively.
func (c *Config) Group(name string) (Group, bool) {
	if g, ok := c.ProviderGroups[name]; ok {
		return g, true
	}
	g, ok := c.ProviderGroups[strings.ToLower(name)]
	return g, ok
}
