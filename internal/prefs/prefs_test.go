package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/mycoach/internal/config"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load("")
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.ServerURL != "" {
		t.Fatalf("ServerURL = %q, want empty", p.ServerURL)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "mycoach")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := "server_url = \" http://10.0.0.9:8000 \"\ntheme = \"Slate\"\n"
	if err := os.WriteFile(filepath.Join(prefsDir, "prefs.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
	if p.ServerURL != "http://10.0.0.9:8000" {
		t.Fatalf("ServerURL = %q, want trimmed URL", p.ServerURL)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	p := Prefs{ServerURL: "https://coach.example.com/", Theme: "Kanagawa"}
	if err := Save(prefsFile, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if loaded := Load(prefsFile); loaded != p {
		t.Fatalf("Load = %#v, want %#v", loaded, p)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if p := Load(prefsFile); p.Theme != defaultTheme || p.ServerURL != "" {
		t.Fatalf("Load = %#v, want defaults", p)
	}
}

func TestResolveServerURL(t *testing.T) {
	cfg := config.Config{ServerURL: "http://config:8000"}

	tests := []struct {
		name string
		flag string
		pref string
		cfg  config.Config
		want string
	}{
		{"flag wins", "http://flag", "http://pref", cfg, "http://flag"},
		{"pref over config", "", "http://pref", cfg, "http://pref"},
		{"config fallback", " ", "", cfg, "http://config:8000"},
		{"built-in default", "", "", config.Config{}, config.DefaultServerURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveServerURL(tt.flag, Prefs{ServerURL: tt.pref}, tt.cfg)
			if got != tt.want {
				t.Fatalf("ResolveServerURL = %q, want %q", got, tt.want)
			}
		})
	}
}
