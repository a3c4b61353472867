// Package prefs handles mycoach user preferences persistence.
// Preferences are stored in ~/.config/mycoach/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/mycoach/internal/config"
)

// Prefs holds user preferences edited from inside the app.
type Prefs struct {
	// ServerURL is the backend base URL chosen in settings. Empty means the
	// config file's server_url applies.
	ServerURL string `toml:"server_url,omitempty"`
	Theme     string `toml:"theme"`
}

const (
	defaultPrefsPath = "~/.config/mycoach/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path. It never fails: a missing,
// unreadable or malformed file yields defaults.
func Load(path string) Prefs {
	prefs := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}
	bytes, err := os.ReadFile(resolved)
	if err != nil {
		return prefs
	}
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{Theme: defaultTheme}
	}

	prefs.ServerURL = strings.TrimSpace(prefs.ServerURL)
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	return prefs
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// ResolveServerURL picks the base URL: flag, then saved preference, then
// the configured fallback.
func ResolveServerURL(flag string, p Prefs, cfg config.Config) string {
	for _, candidate := range []string{flag, p.ServerURL, cfg.ServerURL} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return config.DefaultServerURL
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.ExpandPath(defaultPrefsPath)
	}
	return config.ExpandPath(path)
}
