package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentguard/agentguard/internal/arbiter"
)

func TestLoad_Defaults(t *testing.T) {
	home := filepath.Join(t.TempDir(), "state")
	t.Setenv(HomeEnv, home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Home != home {
		t.Errorf("home = %s, want %s", cfg.Home, home)
	}
	if cfg.Level != arbiter.LevelBalanced {
		t.Errorf("level = %s, want balanced", cfg.Level)
	}
	if cfg.AutoRegister {
		t.Error("auto-register must default off")
	}

	// Load creates the state home.
	if _, err := os.Stat(home); err != nil {
		t.Errorf("state home not created: %v", err)
	}
}

func TestLoadAndSave(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Level = arbiter.LevelStrict
	cfg.AutoRegister = true
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if again.Level != arbiter.LevelStrict {
		t.Errorf("level = %s, want strict", again.Level)
	}
	if !again.AutoRegister {
		t.Error("auto-register not persisted")
	}
}

func TestLoad_BadLevel(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)

	doc := `{"level": "paranoid"}`
	if err := os.WriteFile(filepath.Join(home, "config.json"), []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Error("unknown level should fail to load")
	}
}

func TestLoad_MalformedConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)

	if err := os.WriteFile(filepath.Join(home, "config.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Error("malformed config should fail to load")
	}
}

func TestPaths(t *testing.T) {
	cfg := &Config{Home: "/state"}
	if got := cfg.RegistryPath(); got != filepath.Join("/state", "registry.json") {
		t.Errorf("registry path = %s", got)
	}
	if got := cfg.AuditPath(); got != filepath.Join("/state", "audit.jsonl") {
		t.Errorf("audit path = %s", got)
	}
	if got := cfg.RulesDir(); got != filepath.Join("/state", "rules") {
		t.Errorf("rules dir = %s", got)
	}
}
