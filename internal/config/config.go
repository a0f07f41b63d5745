package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration for mirror, stored in ~/.mirror/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Advisor  AdvisorConfig  `json:"advisor"`
	Pomodoro PomodoroConfig `json:"pomodoro"`
	Watch    WatchConfig    `json:"watch"`
}

// AdvisorConfig holds settings for the AI advisory endpoint.
type AdvisorConfig struct {
	// BaseURL is the generative API endpoint. Empty = the public Gemini API.
	BaseURL string `json:"base_url"`
	// Model is the model identifier used for all advisory calls.
	Model string `json:"model"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `json:"api_key_env"`
	// OAuth configures client-credentials auth for self-hosted gateways.
	// When TokenURL is set it takes precedence over the API key.
	OAuth OAuthConfig `json:"oauth"`
}

// OAuthConfig is an optional OAuth2 client-credentials grant.
type OAuthConfig struct {
	TokenURL     string `json:"token_url"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// PomodoroConfig holds default focus cycle lengths in minutes.
type PomodoroConfig struct {
	WorkMinutes  int `json:"work_minutes"`
	BreakMinutes int `json:"break_minutes"`
}

// WatchConfig tunes the background watch daemon.
type WatchConfig struct {
	// InactivityMinutes is how long a running task may sit without any
	// logged activity before the daemon flags it.
	InactivityMinutes int `json:"inactivity_minutes"`
}

const (
	// DefaultAPIKeyEnv is the environment variable consulted for the advisory key.
	DefaultAPIKeyEnv = "MIRROR_API_KEY"
	// DefaultWorkMinutes is the standard focus cycle length.
	DefaultWorkMinutes = 25
	// DefaultBreakMinutes is the standard recovery cycle length.
	DefaultBreakMinutes = 5
	// DefaultInactivityMinutes is how long a running task may idle before
	// the watch daemon raises an inertia alert.
	DefaultInactivityMinutes = 45
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Advisor: AdvisorConfig{
			APIKeyEnv: DefaultAPIKeyEnv,
		},
		Pomodoro: PomodoroConfig{
			WorkMinutes:  DefaultWorkMinutes,
			BreakMinutes: DefaultBreakMinutes,
		},
		Watch: WatchConfig{
			InactivityMinutes: DefaultInactivityMinutes,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// mirror configuration – ~/.mirror/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Edit this file to customise mirror behaviour.
{
  // ── AI advisory endpoint ─────────────────────────────────────────────────
  "advisor": {
    // Generative API base URL. Leave empty for the public Gemini API.
    "base_url": "",

    // Model identifier. Leave empty for the built-in default.
    "model": "",

    // Environment variable that holds the API key.
    "api_key_env": "MIRROR_API_KEY",

    // OAuth2 client-credentials grant for self-hosted gateways.
    // When token_url is set it takes precedence over the API key.
    "oauth": {
      "token_url": "",
      "client_id": "",
      "client_secret": ""
    }
  },

  // ── Focus cycles ─────────────────────────────────────────────────────────
  "pomodoro": {
    // Work cycle length in minutes.
    "work_minutes": 25,

    // Recovery cycle length in minutes.
    "break_minutes": 5
  },

  // ── Watch daemon ─────────────────────────────────────────────────────────
  "watch": {
    // Minutes a running task may sit idle before an inertia alert fires.
    "inactivity_minutes": 45
  }
}
`

// APIKey resolves the advisory API key from the configured environment variable.
func (a AdvisorConfig) APIKey() string {
	env := a.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	return os.Getenv(env)
}

// configFilePath returns the path to ~/.mirror/config.json.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".mirror", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.mirror/config.json, creating it with annotated defaults on
// first run. Lines starting with // are treated as comments and stripped
// before JSON parsing.
func Load() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return defaultConfig(), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.Advisor.APIKeyEnv == "" {
		cfg.Advisor.APIKeyEnv = DefaultAPIKeyEnv
	}
	if cfg.Pomodoro.WorkMinutes <= 0 {
		cfg.Pomodoro.WorkMinutes = DefaultWorkMinutes
	}
	if cfg.Pomodoro.BreakMinutes <= 0 {
		cfg.Pomodoro.BreakMinutes = DefaultBreakMinutes
	}
	if cfg.Watch.InactivityMinutes <= 0 {
		cfg.Watch.InactivityMinutes = DefaultInactivityMinutes
	}

	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
