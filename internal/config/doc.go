// Package config loads the mycoach configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/mycoach/config.toml (default)
//  3. If the config file doesn't exist, fall back to built-in defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. MYCOACH_SERVER_URL and MYCOACH_LOG_LEVEL override whatever was loaded
//
// # TOML Format
//
//	server_url = "http://192.168.1.100:8000"
//	connect_timeout = "15s"
//	read_timeout = "30s"
//	poll_interval = "10s"
//	log_file = "~/.local/state/mycoach/mycoach.log"
//	log_level = "info"
//
// Every field is optional. Durations use Go syntax. Tilde expansion is
// performed on log_file.
//
// server_url is only the fallback base. A URL saved from the settings screen
// lives in the prefs file and wins over it; the --server flag wins over both.
//
// # Error Handling
//
// A missing file is not an error. Unreadable files, invalid TOML and
// non-positive durations are returned as errors wrapped with "parse config".
package config
