package helpers

import (
	"log/slog"

	"github.com/zinc-sig/pst/internal/classify"
	"github.com/zinc-sig/pst/internal/config"
	"github.com/zinc-sig/pst/internal/exif"
	"github.com/zinc-sig/pst/internal/orchestrator"
	"github.com/zinc-sig/pst/internal/registry"
	"github.com/zinc-sig/pst/internal/retry"
	"github.com/zinc-sig/pst/internal/upload"
)

// UploadSetup is everything a run needs besides its input
type UploadSetup struct {
	Registry     *registry.Registry
	Policy       *retry.Policy
	Orchestrator *orchestrator.Orchestrator
}

// SetupOptions adjust the orchestrator for one invocation
type SetupOptions struct {
	StripExif bool
	AutoGroup bool
}

// NewRegistry builds an adapter for every enabled provider in cfg
func NewRegistry(cfg *config.Config, log *slog.Logger) (*registry.Registry, error) {
	return registry.New(cfg, registry.Builder(upload.BuildOptions{
		UserAgent:      upload.DefaultUserAgent,
		RandomizeNames: cfg.General.RandomizeNames,
		Logger:         log,
	}), log)
}

// SetupUpload builds the provider registry, the retry policy and the
// orchestrator from cfg
func SetupUpload(cfg *config.Config, opts SetupOptions, log *slog.Logger) (*UploadSetup, error) {
	reg, err := NewRegistry(cfg, log)
	if err != nil {
		return nil, err
	}

	policy := retry.NewPolicy(retry.FromGeneral(cfg.General), retry.WithLogger(log))

	orchOpts := []orchestrator.Option{
		orchestrator.WithDeadline(cfg.General.Deadline()),
		orchestrator.WithAutoGroup(opts.AutoGroup),
		orchestrator.WithLogger(log),
	}
	if opts.StripExif {
		orchOpts = append(orchOpts, orchestrator.WithTransform(StripExifTransform(log)))
	}

	return &UploadSetup{
		Registry:     reg,
		Policy:       policy,
		Orchestrator: orchestrator.New(reg, policy, orchOpts...),
	}, nil
}

// StripExifTransform removes EXIF metadata from image payloads
func StripExifTransform(log *slog.Logger) orchestrator.TransformFunc {
	return func(c classify.Classification, data []byte) ([]byte, error) {
		if !c.Image {
			return data, nil
		}
		stripped, removed, err := exif.Strip(data)
		if err != nil {
			return nil, err
		}
		if removed {
			log.Info("stripped EXIF metadata from image", "original_bytes", len(data), "stripped_bytes", len(stripped))
		}
		return stripped, nil
	}
}
