package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	cmdconfig "github.com/zinc-sig/pst/cmd/config"
	"github.com/zinc-sig/pst/cmd/helpers"
	"github.com/zinc-sig/pst/internal/classify"
	"github.com/zinc-sig/pst/internal/clipboard"
	"github.com/zinc-sig/pst/internal/config"
	"github.com/zinc-sig/pst/internal/logging"
	"github.com/zinc-sig/pst/internal/orchestrator"
	"github.com/zinc-sig/pst/internal/output"
	"github.com/zinc-sig/pst/internal/progress"
)

func runUpload(cmd *cobra.Command, args []string, opts *rootOptions) error {
	format, err := output.ParseFormat(opts.output.Format)
	if err != nil {
		return helpers.Exit(helpers.ExitInput, err)
	}

	file, err := helpers.ValidateInputFlags(opts.input, args)
	if err != nil {
		return helpers.Exit(helpers.ExitInput, err)
	}

	stdin := cmd.InOrStdin()
	payload, err := helpers.ReadInput(opts.input, file, helpers.InputSources{
		Stdin:           stdin,
		StdinIsTerminal: helpers.IsTerminal(stdin),
		Clipboard:       opts.clipboard,
	})
	if err != nil {
		return helpers.Exit(helpers.ExitInput, err)
	}

	cfg, path, err := loadConfig(&opts.config)
	if err != nil {
		return helpers.Exit(helpers.ExitConfig, err)
	}

	log, err := newLogger(cmd, &opts.config, cfg)
	if err != nil {
		return helpers.Exit(helpers.ExitInput, err)
	}
	log.Debug("loaded configuration", "path", path, "providers", len(cfg.Providers))

	setup, err := helpers.SetupUpload(cfg, helpers.SetupOptions{
		StripExif: cfg.General.StripExif && !opts.upload.NoExif && !payload.Redirect,
		AutoGroup: cfg.General.AutoGroup && !payload.Redirect,
	}, log)
	if err != nil {
		return helpers.Exit(helpers.ExitConfig, err)
	}

	in := orchestrator.Input{
		Payload:      payload.Data,
		Filename:     payload.Filename,
		ExplicitName: payload.ExplicitName,
		Expires:      opts.upload.Expires,
		Provider:     opts.upload.Provider,
		Group:        opts.upload.Group,
	}
	if payload.Redirect && in.Group == "" && in.Provider == "" && setup.Registry.HasGroup(classify.GroupPastes) {
		in.Group = classify.GroupPastes
	}

	printer := helpers.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.output.DryRun {
		plan, err := setup.Orchestrator.Plan(in)
		if err != nil {
			return helpers.Exit(helpers.CodeOf(err), err)
		}
		helpers.PrintConfigInfo(cmd.ErrOrStderr(), path, cfg.General)
		printer.PrintPlan(output.PlanDetails{
			Plan:           plan,
			Schedule:       setup.Policy.Config().Schedule(),
			AttemptTimeout: cfg.General.AttemptTimeout(),
			Deadline:       cfg.General.Deadline(),
		})
		return nil
	}

	if opts.upload.Progress {
		in.WrapBody = progress.Wrapper(cmd.ErrOrStderr())
	}

	res := setup.Orchestrator.Run(cmd.Context(), in)
	if err := printer.Print(res, format); err != nil {
		return helpers.Exit(helpers.ExitInput, err)
	}
	if !res.Succeeded() {
		return &helpers.ExitError{Code: helpers.CodeForReason(res.Err.Reason), Err: res.Err, Silent: true}
	}

	if (opts.upload.CopyToClipboard || cfg.General.CopyToClipboard) && opts.clipboard != nil {
		clipboard.Copy(opts.clipboard, res.URL, log)
	}
	return nil
}

func loadConfig(flags *cmdconfig.ConfigFlags) (*config.Config, string, error) {
	path := ""
	if flags.Path != "" {
		var err error
		if path, err = helpers.ResolveConfigPath(flags.Path); err != nil {
			return nil, "", err
		}
	}
	return config.Load(config.Options{Path: path, Overrides: flags.Set})
}

func newLogger(cmd *cobra.Command, flags *cmdconfig.ConfigFlags, cfg *config.Config) (*slog.Logger, error) {
	level := flags.LogLevel
	if level == "" {
		level = cfg.General.LogLevel
	}
	if level == "" {
		level = logging.DefaultLevel
	}
	log, err := logging.New(level, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return log, nil
}
