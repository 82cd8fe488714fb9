package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type OllamaConfig struct {
	Host         string `toml:"host"`
	DefaultModel string `toml:"default_model"`
}

type SecurityConfig struct {
	Method     string `toml:"method"` // "plaintext" or "ssh_key"
	SSHKeyPath string `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	Ollama              OllamaConfig   `toml:"ollama"`
	CurrentProvider     string         `toml:"current_provider"`
	LocalMode           bool           `toml:"local_mode"`
	LocalModel          string         `toml:"local_model,omitempty"`
	BotName             string         `toml:"bot_name"`
	UserName            string         `toml:"user_name"`
	ColorScheme         string         `toml:"color_scheme"`
	DefaultSystemPrompt string         `toml:"default_system_prompt,omitempty"`
	Security            SecurityConfig `toml:"security"`
}

// Config is the merged runtime view of the system and user configuration.
type Config struct {
	DataDirectory       string
	OllamaHost          string
	DefaultModel        string
	CurrentProvider     string
	LocalMode           bool
	LocalModel          string
	BotName             string
	UserName            string
	ColorScheme         string
	DefaultSystemPrompt string
	Security            SecurityConfig

	CredentialStore *CredentialStore
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("PARLEY_OLLAMA_HOST"); host != "" {
		c.OllamaHost = host
	}
	if model := os.Getenv("PARLEY_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("PARLEY_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv("PARLEY_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: debug output may contain prompt text
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (PARLEY_DEBUG=%s) ===", os.Getenv("PARLEY_DEBUG"))
}

// Load reads the system config, then the user config under the data
// directory, applies environment overrides, and ensures the data
// directory exists with user-only permissions.
func Load() (*Config, error) {
	cfg := defaultsAsConfig()

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory

	userCfg, err := LoadUserConfig(cfg.DataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)
	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	store, err := NewCredentialStore(dataDir, cfg.Security.Method, cfg.Security.SSHKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.CredentialStore = store

	return cfg, nil
}

func defaultsAsConfig() *Config {
	d := DefaultUserConfig()
	return &Config{
		DataDirectory:   "~/.local/share/parley",
		OllamaHost:      d.Ollama.Host,
		DefaultModel:    d.Ollama.DefaultModel,
		CurrentProvider: d.CurrentProvider,
		BotName:         d.BotName,
		UserName:        d.UserName,
		ColorScheme:     d.ColorScheme,
		Security:        d.Security,
	}
}

func (c *Config) applyUserConfig(u *UserConfig) {
	c.OllamaHost = u.Ollama.Host
	c.DefaultModel = u.Ollama.DefaultModel
	c.CurrentProvider = u.CurrentProvider
	c.LocalMode = u.LocalMode
	c.LocalModel = u.LocalModel
	c.BotName = u.BotName
	c.UserName = u.UserName
	c.ColorScheme = u.ColorScheme
	c.DefaultSystemPrompt = u.DefaultSystemPrompt
	c.Security = u.Security
}

// UserConfigView converts the runtime config back into its persisted form.
func (c *Config) UserConfigView() *UserConfig {
	return &UserConfig{
		Ollama: OllamaConfig{
			Host:         c.OllamaHost,
			DefaultModel: c.DefaultModel,
		},
		CurrentProvider:     c.CurrentProvider,
		LocalMode:           c.LocalMode,
		LocalModel:          c.LocalModel,
		BotName:             c.BotName,
		UserName:            c.UserName,
		ColorScheme:         c.ColorScheme,
		DefaultSystemPrompt: c.DefaultSystemPrompt,
		Security:            c.Security,
	}
}

// Save writes the user config back to disk.
func (c *Config) Save() error {
	return SaveUserConfig(c.UserConfigView(), c.DataDir())
}
