package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	cmdconfig "github.com/zinc-sig/pst/cmd/config"
	"github.com/zinc-sig/pst/cmd/helpers"
	"github.com/zinc-sig/pst/internal/config"
)

func newConfigCmd(flags *cmdconfig.ConfigFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the location of the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := helpers.ResolveConfigPath(flags.Path)
			if err != nil {
				return helpers.Exit(helpers.ExitConfig, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := helpers.ResolveConfigPath(flags.Path)
			if err != nil {
				return helpers.Exit(helpers.ExitConfig, err)
			}
			if err := config.WriteDefault(path, force); err != nil {
				return helpers.Exit(helpers.ExitConfig, fmt.Errorf("%w (use --force to overwrite)", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	configCmd.AddCommand(initCmd)

	return configCmd
}
