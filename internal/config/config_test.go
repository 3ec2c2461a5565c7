package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scriptsync.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `
server = "docs.example.com"
port = 11001
username = "admin"
principal = "main"
timeout_seconds = 30
script_root = "./scripts"

[[script]]
name = "crmExport"
category = "crm"
conflict_mode = false
encrypted = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server != "docs.example.com" || cfg.Port != 11001 {
		t.Errorf("server = %s:%d", cfg.Server, cfg.Port)
	}

	login := cfg.LoginData()
	if login.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", login.Timeout)
	}
	if login.Principal != "main" {
		t.Errorf("principal = %q", login.Principal)
	}

	s := cfg.Script("crmExport")
	if s.ConflictMode {
		t.Error("manifest override must disable conflict mode")
	}
	if s.Category != "crm" {
		t.Errorf("category = %q", s.Category)
	}

	other := cfg.Script("undeclared")
	if !other.ConflictMode {
		t.Error("conflict mode defaults to enabled")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeManifest(t, `
server = "docs.example.com"
principal = "main"
`)
	t.Setenv("SCRIPTSYNC_PRINCIPAL", "testing")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Principal != "testing" {
		t.Errorf("principal = %q, environment must win", cfg.Principal)
	}
}

func TestLoad_RequiresServerAndPrincipal(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{name: "no server", manifest: `principal = "main"`},
		{name: "no principal", manifest: `server = "docs.example.com"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.manifest)
			if _, err := Load(path); err == nil {
				t.Fatal("expected a configuration error")
			}
		})
	}
}

func TestLoad_CategoryRootDefaultsToScriptRoot(t *testing.T) {
	path := writeManifest(t, `
server = "docs.example.com"
principal = "main"
script_root = "/srv/scripts"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CategoryRoot != "/srv/scripts" {
		t.Errorf("category root = %q, want the script root", cfg.CategoryRoot)
	}
}
