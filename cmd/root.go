package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zinc-sig/pst/cmd/config"
	"github.com/zinc-sig/pst/cmd/helpers"
	"github.com/zinc-sig/pst/internal/clipboard"
)

type rootOptions struct {
	input     config.InputFlags
	upload    config.UploadFlags
	output    config.OutputFlags
	config    config.ConfigFlags
	clipboard clipboard.Backend
}

func newRootCmd(clip clipboard.Backend) *cobra.Command {
	opts := &rootOptions{clipboard: clip}

	rootCmd := &cobra.Command{
		Use:   "pst [FILE]",
		Short: "Upload files and pastes to the first provider that accepts them",
		Long: `pst uploads a file, the clipboard or piped stdin to one of the configured
providers and prints the resulting URL.

Providers are tried in priority order, or in the order of a provider group,
with retries on transient failures. Text goes to paste services, images and
other binaries to file hosts and storage backends.`,
		Example: `  pst notes.txt
  cat build.log | pst -g pastes
  pst -f photo.jpg -o json
  pst --redirect https://example.com/very/long/link
  pst -p bunny --dry-run archive.tar.gz`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, args, opts)
		},
	}

	helpers.SetupInputFlags(rootCmd, &opts.input)
	helpers.SetupUploadFlags(rootCmd, &opts.upload)
	helpers.SetupOutputFlags(rootCmd, &opts.output)
	helpers.SetupConfigFlags(rootCmd, &opts.config)

	rootCmd.AddCommand(newProvidersCmd(&opts.config))
	rootCmd.AddCommand(newConfigCmd(&opts.config))
	return rootCmd
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, newRootCmd(clipboard.System()), os.Stderr)
}

func execute(ctx context.Context, rootCmd *cobra.Command, errOut io.Writer) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return helpers.ExitOK
	}
	var exitErr *helpers.ExitError
	if !errors.As(err, &exitErr) || !exitErr.Silent {
		fmt.Fprintf(errOut, "Error: %v\n", err)
	}
	return helpers.CodeOf(err)
}
