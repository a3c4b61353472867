package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/mycoach/internal/config"
	"github.com/five82/mycoach/internal/prefs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func bootstrapPaths(t *testing.T) (string, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvServerURL, "")
	t.Setenv(config.EnvLogLevel, "")
	dir := t.TempDir()
	return filepath.Join(dir, "config.toml"), filepath.Join(dir, "prefs.toml")
}

func TestBootstrapServerURLPrecedence(t *testing.T) {
	configPath, prefsPath := bootstrapPaths(t)
	writeFile(t, configPath, "server_url = \"http://config.local:8000\"\n")

	env, err := Bootstrap(Options{ConfigPath: configPath, PrefsPath: prefsPath})
	require.NoError(t, err)
	assert.Equal(t, "http://config.local:8000/", env.BaseURL())
	require.NoError(t, env.Close())

	writeFile(t, prefsPath, "server_url = \"http://prefs.local:9000\"\ntheme = \"Slate\"\n")
	env, err = Bootstrap(Options{ConfigPath: configPath, PrefsPath: prefsPath})
	require.NoError(t, err)
	assert.Equal(t, "http://prefs.local:9000/", env.BaseURL())
	assert.Equal(t, "Slate", env.Prefs.Theme)
	require.NoError(t, env.Close())

	env, err = Bootstrap(Options{ConfigPath: configPath, PrefsPath: prefsPath, ServerURL: "flag.local:7000"})
	require.NoError(t, err)
	assert.Equal(t, "http://flag.local:7000/", env.BaseURL())
	require.NoError(t, env.Close())
}

func TestBootstrapDefaultServerURL(t *testing.T) {
	configPath, prefsPath := bootstrapPaths(t)

	env, err := Bootstrap(Options{ConfigPath: configPath, PrefsPath: prefsPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	assert.Equal(t, config.DefaultServerURL+"/", env.BaseURL())
	assert.NotNil(t, env.API)
	assert.NotNil(t, env.Metrics)
}

func TestBootstrapRejectsBadInput(t *testing.T) {
	configPath, prefsPath := bootstrapPaths(t)

	_, err := Bootstrap(Options{ConfigPath: configPath, PrefsPath: prefsPath, ServerURL: "ftp://coach"})
	assert.ErrorContains(t, err, "configure server url")

	writeFile(t, configPath, "poll_interval = \"soon\"\n")
	_, err = Bootstrap(Options{ConfigPath: configPath, PrefsPath: prefsPath})
	assert.ErrorContains(t, err, "load config")
}

func TestSetServerURLSavesPreference(t *testing.T) {
	configPath, prefsPath := bootstrapPaths(t)
	env, err := Bootstrap(Options{ConfigPath: configPath, PrefsPath: prefsPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	generation := env.Transport.Generation()

	require.NoError(t, env.SetServerURL("  https://coach.example.com/api "))
	assert.Equal(t, "https://coach.example.com/api/", env.BaseURL())
	assert.Equal(t, generation+1, env.Transport.Generation())
	assert.Equal(t, "https://coach.example.com/api/", prefs.Load(prefsPath).ServerURL)

	err = env.SetServerURL("ftp://nope")
	require.Error(t, err)
	assert.Equal(t, "https://coach.example.com/api/", env.BaseURL(), "invalid URL leaves the transport alone")
}

func TestSetThemeKeepsServerURL(t *testing.T) {
	configPath, prefsPath := bootstrapPaths(t)
	env, err := Bootstrap(Options{ConfigPath: configPath, PrefsPath: prefsPath, ServerURL: "coach.local"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })

	require.NoError(t, env.SetServerURL("coach.local:8080"))
	require.NoError(t, env.SetTheme("Kanagawa"))

	saved := prefs.Load(prefsPath)
	assert.Equal(t, "Kanagawa", saved.Theme)
	assert.Equal(t, "http://coach.local:8080/", saved.ServerURL)
}
