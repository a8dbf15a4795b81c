package cmd

import (
	"github.com/spf13/cobra"
	cmdconfig "github.com/zinc-sig/pst/cmd/config"
	"github.com/zinc-sig/pst/cmd/helpers"
)

func newProvidersCmd(flags *cmdconfig.ConfigFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured providers and groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return helpers.Exit(helpers.ExitConfig, err)
			}
			log, err := newLogger(cmd, flags, cfg)
			if err != nil {
				return helpers.Exit(helpers.ExitInput, err)
			}
			reg, err := helpers.NewRegistry(cfg, log)
			if err != nil {
				return helpers.Exit(helpers.ExitConfig, err)
			}
			helpers.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()).PrintProviders(cfg, reg)
			return nil
		},
	}
}
