package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mirrorcli/mirror/internal/config"
)

func TestLoadCreatesAnnotatedDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Advisor.APIKeyEnv != config.DefaultAPIKeyEnv {
		t.Errorf("APIKeyEnv = %q, want %q", cfg.Advisor.APIKeyEnv, config.DefaultAPIKeyEnv)
	}
	if cfg.Pomodoro.WorkMinutes != config.DefaultWorkMinutes || cfg.Pomodoro.BreakMinutes != config.DefaultBreakMinutes {
		t.Errorf("pomodoro defaults = %+v", cfg.Pomodoro)
	}
	if cfg.Watch.InactivityMinutes != config.DefaultInactivityMinutes {
		t.Errorf("InactivityMinutes = %d, want %d", cfg.Watch.InactivityMinutes, config.DefaultInactivityMinutes)
	}

	home, _ := os.UserHomeDir()
	data, err := os.ReadFile(filepath.Join(home, ".mirror", "config.json"))
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty config template")
	}
	// The annotated template must parse back to the same defaults.
	cfg2, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg2 != cfg {
		t.Errorf("reloaded config %+v != %+v", cfg2, cfg)
	}
}

func TestLoadStripsCommentsAndFillsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".mirror")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	partial := `// header comment
{
  // only the model is set
  "advisor": {
    // indented comment inside an object
    "model": "gemini-2.5-pro"
  }
}
`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(partial), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Advisor.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", cfg.Advisor.Model)
	}
	if cfg.Advisor.APIKeyEnv != config.DefaultAPIKeyEnv {
		t.Errorf("APIKeyEnv = %q, want default", cfg.Advisor.APIKeyEnv)
	}
	if cfg.Pomodoro.WorkMinutes != config.DefaultWorkMinutes {
		t.Errorf("WorkMinutes = %d, want default", cfg.Pomodoro.WorkMinutes)
	}
	if cfg.Watch.InactivityMinutes != config.DefaultInactivityMinutes {
		t.Errorf("InactivityMinutes = %d, want default", cfg.Watch.InactivityMinutes)
	}
}

func TestAPIKeyEnvResolution(t *testing.T) {
	t.Setenv("MIRROR_TEST_KEY", "sk-123")
	a := config.AdvisorConfig{APIKeyEnv: "MIRROR_TEST_KEY"}
	if got := a.APIKey(); got != "sk-123" {
		t.Errorf("APIKey() = %q", got)
	}
	a = config.AdvisorConfig{}
	t.Setenv(config.DefaultAPIKeyEnv, "sk-default")
	if got := a.APIKey(); got != "sk-default" {
		t.Errorf("APIKey() fallback = %q", got)
	}
}
