package config

import (
	"fmt"
	"strings"
)

// Validate checks the snapshot for malformed entries. Protocol specific
// fields are checked when adapters are built, so disabled placeholder
// entries never fail here.
func Validate(cfg *Config) error {
	g := cfg.General
	if g.TimeoutSeconds <= 0 {
		return NewError(ErrorCodeInvalidSetting, "general.timeout_seconds", "timeout_seconds must be positive", nil)
	}
	if g.DeadlineSeconds < 0 {
		return NewError(ErrorCodeInvalidSetting, "general.deadline_seconds", "deadline_seconds must not be negative", nil)
	}
	if g.MaxRetries < 0 {
		return NewError(ErrorCodeInvalidSetting, "general.max_retries", "max_retries must not be negative", nil)
	}
	if g.RetryDelayMs < 0 || g.MaxRetryDelayMs < 0 {
		return NewError(ErrorCodeInvalidSetting, "general.retry_delay_ms", "retry delays must not be negative", nil)
	}

	seen := make(map[string]bool, len(cfg.Providers))
	for i, p := range cfg.Providers {
		if strings.TrimSpace(p.Name) == "" {
			return InvalidProvider(fmt.Sprintf("#%d", i+1), "name is required")
		}
		if seen[p.Name] {
			return InvalidProvider(p.Name, "name is declared more than once")
		}
		seen[p.Name] = true

		switch p.Type {
		case TypeHTTP, TypeFtpSftp, TypeBunny, TypeS3:
		case "":
			return InvalidProvider(p.Name, "type is required")
		default:
			return InvalidProvider(p.Name, fmt.Sprintf("unknown type %q", p.Type))
		}

		if p.MaxFileSizeMB.Sign() < 0 {
			return InvalidProvider(p.Name, "max_file_size_mb must not be negative")
		}
		for _, kind := range p.Accepts {
			if kind != KindText && kind != KindBinary {
				return InvalidProvider(p.Name, fmt.Sprintf("unknown content kind %q in accepts", kind))
			}
		}
	}

	for name, group := range cfg.ProviderGroups {
		members := make(map[string]bool, len(group.Providers))
		for _, member := range group.Providers {
			if !seen[member] {
				return NewError(ErrorCodeUnknownProvider, member,
					fmt.Sprintf("provider group %q references undefined provider %q", name, member), nil)
			}
			if members[member] {
				return NewError(ErrorCodeInvalidSetting, "provider_groups."+name,
					fmt.Sprintf("provider group %q lists provider %q more than once", name, member), nil)
			}
			members[member] = true
		}
	}
	return nil
}
