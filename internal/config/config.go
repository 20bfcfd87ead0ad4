package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/orgforge/orgforge/internal/errors"
)

// Config holds client configuration resolved from defaults, the user
// config file, and environment variables (highest precedence last).
type Config struct {
	// APIURL is the backend base address. The REST prefix /api and the
	// streaming endpoint /ws are appended by the respective clients.
	APIURL string `yaml:"api_url"`

	// WSURL overrides the websocket endpoint. Empty means derive from APIURL.
	WSURL string `yaml:"ws_url"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`

	// StateDir is where persisted client state lives.
	StateDir string `yaml:"state_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:    "http://localhost:8080",
		LogLevel:  "info",
		LogFormat: "text",
		StateDir:  defaultStateDir(),
	}
}

// Path returns the user config file location (~/.orgforge/config.yaml).
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".orgforge", "config.yaml")
	}
	return filepath.Join(home, ".orgforge", "config.yaml")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".orgforge", "state")
	}
	return filepath.Join(home, ".orgforge", "state")
}

// Load resolves the effective configuration.
//
// Resolution order (lowest to highest precedence):
//  1. Built-in defaults
//  2. ~/.orgforge/config.yaml (if present)
//  3. ORGFORGE_* environment variables
//
// A missing config file is not an error; a malformed one is, so a typo
// does not silently send traffic to the wrong backend.
func Load() (Config, error) {
	return load(Path())
}

func load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Default(), errors.NewConfigUnmarshalError(path, err)
		}
	case os.IsNotExist(err):
		// Fine, defaults apply.
	default:
		return Default(), errors.Wrap(errors.ErrCodeConfigInvalid, "failed to read config file", err)
	}

	applyEnv(&cfg)

	if cfg.StateDir == "" {
		cfg.StateDir = defaultStateDir()
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ORGFORGE_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("ORGFORGE_WS_URL"); v != "" {
		cfg.WSURL = v
	}
	if v := os.Getenv("ORGFORGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ORGFORGE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("ORGFORGE_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
}

// Save writes the configuration to the user config file.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to serialize config", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to write config file", err)
	}
	return nil
}
