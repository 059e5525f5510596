package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Content ContentConfig `toml:"content"`
	Local   LocalConfig   `toml:"local"`
	History HistoryConfig `toml:"history"`

	path string
}

// ServerConfig holds the Plex server connection
type ServerConfig struct {
	URL   string `toml:"server_url"`
	Token string `toml:"server_token"`
	// ClientID is the X-Plex-Client-Identifier, generated on first login
	ClientID string `toml:"client_id"`
}

// ContentConfig lists the libraries to lint
type ContentConfig struct {
	Libraries []string `toml:"libraries"`
}

// LocalConfig controls reading tags from media files
type LocalConfig struct {
	// TagReader selects the tag backend: "tag" or "taglib"
	TagReader string `toml:"tag_reader"`
}

// HistoryConfig controls the run history database
type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
	// Path defaults to <data dir>/history.db
	Path string `toml:"path"`
}

// Default returns the configuration written on first run
func Default() *Config {
	return &Config{
		Content: ContentConfig{Libraries: []string{"Music"}},
		Local:   LocalConfig{TagReader: "tag"},
		History: HistoryConfig{Enabled: true},
	}
}

// Load reads configuration from path and the environment. An empty path
// means DefaultPath. A missing file is created from Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to write config template: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	// Set defaults
	def := Default()
	v.SetDefault("content.libraries", def.Content.Libraries)
	v.SetDefault("local.tag_reader", def.Local.TagReader)
	v.SetDefault("history.enabled", def.History.Enabled)

	// Read from environment variables, e.g. PLEXLINT_SERVER_SERVER_TOKEN
	v.SetEnvPrefix("PLEXLINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{
		Server: ServerConfig{
			URL:      v.GetString("server.server_url"),
			Token:    v.GetString("server.server_token"),
			ClientID: v.GetString("server.client_id"),
		},
		Content: ContentConfig{
			Libraries: v.GetStringSlice("content.libraries"),
		},
		Local: LocalConfig{
			TagReader: v.GetString("local.tag_reader"),
		},
		History: HistoryConfig{
			Enabled: v.GetBool("history.enabled"),
			Path:    v.GetString("history.path"),
		},
		path: path,
	}

	return cfg, nil
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	if c.path == "" {
		return DefaultPath()
	}
	return c.path
}

// HasCredentials reports whether a server URL and token are configured
func (c *Config) HasCredentials() bool {
	return c.Server.URL != "" && c.Server.Token != ""
}

// HistoryPath returns the history database path
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(GetDataDir(), "history.db")
}

// Save writes configuration to file. Writers are serialised with a lock file
// next to the config and the file is replaced atomically.
func (c *Config) Save() error {
	path := c.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock config: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set config permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// DefaultPath returns ~/.config/plexlint/config.toml
func DefaultPath() string {
	return filepath.Join(GetConfigDir(), "config.toml")
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config", "plexlint")
}

// GetDataDir returns the directory for the log file and history database
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "plexlint")
}
