package config

import "github.com/spf13/viper"

// DefaultTOML is written on first run when no config file exists
const DefaultTOML = `# pst configuration

[general]
timeout_seconds = 30
deadline_seconds = 300
max_retries = 3
retry_delay_ms = 1000
max_retry_delay_ms = 30000
copy_to_clipboard = false
strip_exif = true
auto_group = true
randomize_names = true
log_level = "warn"

# Providers are tried in ascending priority unless a group or a provider is
# requested. Equal priorities keep the order they are declared in.

[[providers]]
name = "ftp_sftp"
type = "ftp_sftp"
enabled = false
priority = 10
protocol = "sftp"
host = "ftp.example.com"
port = 22
username = "username"
password = "password"
ssh_private_key = "~/.ssh/id_rsa"
directory = "/public_html/uploads"
public_url = "https://cdn.example.com/uploads"
directory_mode = "create_if_missing"
max_file_size_mb = 1000

[[providers]]
name = "bunny"
type = "bunny"
enabled = false
priority = 20
storage_zone = "your-storage-zone"
access_key = "your-access-key"
public_url = "https://cdn.example.com/files"
max_file_size_mb = 500

[[providers]]
name = "0x0st"
type = "http"
service = "0x0st"
priority = 30
max_file_size_mb = 512

[[providers]]
name = "uguu"
type = "http"
service = "uguu"
priority = 40
max_file_size_mb = 128

[[providers]]
name = "paste_rs"
type = "http"
service = "paste_rs"
priority = 50
max_file_size_mb = 10

[[providers]]
name = "x0at"
type = "http"
service = "x0at"
priority = 60
max_file_size_mb = 512

# Group names are case-insensitive.
[provider_groups.files]
providers = ["ftp_sftp", "bunny", "0x0st", "uguu"]

[provider_groups.pastes]
providers = ["ftp_sftp", "bunny", "paste_rs", "x0at"]

[provider_groups.images]
providers = ["ftp_sftp", "bunny", "0x0st", "uguu"]
`

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.timeout_seconds", 30)
	v.SetDefault("general.deadline_seconds", 300)
	v.SetDefault("general.max_retries", 3)
	v.SetDefault("general.retry_delay_ms", 1000)
	v.SetDefault("general.max_retry_delay_ms", 30000)
	v.SetDefault("general.copy_to_clipboard", false)
	v.SetDefault("general.strip_exif", true)
	v.SetDefault("general.auto_group", true)
	v.SetDefault("general.randomize_names", true)
	v.SetDefault("general.log_level", "warn")
}
