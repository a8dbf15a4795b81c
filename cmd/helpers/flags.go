package helpers

import (
	"github.com/spf13/cobra"
	"github.com/zinc-sig/pst/cmd/config"
)

// SetupInputFlags adds input selection flags to a command
func SetupInputFlags(cmd *cobra.Command, cfg *config.InputFlags) {
	cmd.Flags().StringVarP(&cfg.File, "file", "f", "", "File to upload (alternatively pass it as the only argument)")
	cmd.Flags().BoolVarP(&cfg.Clipboard, "clipboard", "c", false, "Upload the clipboard contents")
	cmd.Flags().StringVarP(&cfg.Redirect, "redirect", "r", "", "Upload an HTML page redirecting to this http(s) URL")
	cmd.Flags().StringVarP(&cfg.Filename, "filename", "n", "", "Filename to use for the upload")
}

// SetupUploadFlags adds provider selection flags to a command
func SetupUploadFlags(cmd *cobra.Command, cfg *config.UploadFlags) {
	cmd.Flags().StringVarP(&cfg.Provider, "provider", "p", "", "Upload to this provider only")
	cmd.Flags().StringVarP(&cfg.Group, "group", "g", "", "Try the providers of this group in order")
	cmd.Flags().StringVarP(&cfg.Expires, "expires", "e", "", "Expiration hint, hours or a duration such as 24h")
	cmd.Flags().BoolVar(&cfg.NoExif, "no-exif", false, "Keep EXIF metadata in images")
	cmd.Flags().BoolVar(&cfg.Progress, "progress", false, "Show upload progress on stderr")
	cmd.Flags().BoolVar(&cfg.CopyToClipboard, "copy-to-clipboard", false, "Copy the resulting URL to the clipboard")
}

// SetupOutputFlags adds result formatting flags to a command
func SetupOutputFlags(cmd *cobra.Command, cfg *config.OutputFlags) {
	cmd.Flags().StringVarP(&cfg.Format, "output", "o", "url", "Output format: url, json, verbose")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Show the upload plan without uploading")
}

// SetupConfigFlags adds configuration flags shared by every command
func SetupConfigFlags(cmd *cobra.Command, cfg *config.ConfigFlags) {
	cmd.PersistentFlags().StringVar(&cfg.Path, "config", "", "Path to the config file (default <config dir>/pst/config.toml)")
	cmd.PersistentFlags().StringArrayVar(&cfg.Set, "set", nil, "Override a config value, key=value (can be used multiple times)")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
}
