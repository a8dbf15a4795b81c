package config

// InputFlags selects where the payload comes from
type InputFlags struct {
	File      string
	Clipboard bool
	Redirect  string
	Filename  string
}

// UploadFlags steer provider selection and payload handling
type UploadFlags struct {
	Provider        string
	Group           string
	Expires         string
	NoExif          bool
	Progress        bool
	CopyToClipboard bool
}

// OutputFlags control how the result is reported
type OutputFlags struct {
	Format string
	DryRun bool
}

// ConfigFlags locate and override the configuration file
type ConfigFlags struct {
	Path     string
	Set      []string
	LogLevel string
}
