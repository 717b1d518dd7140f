// Package config loads revlog settings from the config file, the
// environment, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/sprite-ai/revlog/internal/model"
)

// Config represents the complete revlog configuration
type Config struct {
	Author AuthorConfig `mapstructure:"author"`
	Output OutputConfig `mapstructure:"output"`
	Serve  ServeConfig  `mapstructure:"serve"`
}

// AuthorConfig is the identity recorded on activities written by this
// machine
type AuthorConfig struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
	// Type is "human" or "agent"
	Type string `mapstructure:"type"`
	// Model identifies the agent when Type is "agent"
	Model string `mapstructure:"model"`
}

// OutputConfig controls how review logs are written
type OutputConfig struct {
	// Format is the default encoding for new files: "yaml", "json", or "xml"
	Format string `mapstructure:"format"`
}

// ServeConfig controls the HTTP API server
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
	Port int    `mapstructure:"port"`
	// Watch pushes file changes to connected WebSocket clients
	Watch bool `mapstructure:"watch"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Author: AuthorConfig{
			Type: "human",
		},
		Output: OutputConfig{
			Format: "yaml",
		},
		Serve: ServeConfig{
			Addr:  "127.0.0.1",
			Port:  7370,
			Watch: false,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("author.name", defaults.Author.Name)
	viper.SetDefault("author.email", defaults.Author.Email)
	viper.SetDefault("author.type", defaults.Author.Type)
	viper.SetDefault("author.model", defaults.Author.Model)

	viper.SetDefault("output.format", defaults.Output.Format)

	viper.SetDefault("serve.addr", defaults.Serve.Addr)
	viper.SetDefault("serve.port", defaults.Serve.Port)
	viper.SetDefault("serve.watch", defaults.Serve.Watch)
}

// Init wires viper to the config file and the REVLOG_ environment
// variables. An empty path means the default location; a missing
// default file is not an error.
func Init(path string) error {
	SetDefaults()

	explicit := path != ""
	if path == "" {
		path = ConfigFile()
	}
	viper.SetConfigFile(path)
	viper.SetEnvPrefix("REVLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		missing := os.IsNotExist(err)
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			missing = true
		}
		// The default config file is optional; one named with --config
		// is not.
		if missing && !explicit {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load reads the configuration from viper into a Config struct and
// validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// Validate checks the loaded values against the closed vocabularies.
func (c *Config) Validate() error {
	switch c.Author.Type {
	case "", "human", "agent":
	default:
		return fmt.Errorf("author.type must be \"human\" or \"agent\", got %q", c.Author.Type)
	}
	switch c.Output.Format {
	case "yaml", "json", "xml":
	default:
		return fmt.Errorf("output.format must be yaml, json, or xml, got %q", c.Output.Format)
	}
	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port out of range: %d", c.Serve.Port)
	}
	return nil
}

// ModelAuthor converts the configured identity into an activity author.
// Falls back to the OS username when no name is configured.
func (c *Config) ModelAuthor() *model.Author {
	name := c.Author.Name
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "unknown"
	}
	return &model.Author{
		Name:  name,
		Email: c.Author.Email,
		Type:  c.Author.Type,
		Model: c.Author.Model,
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "revlog")
	}
	// Fall back to ~/.config/revlog
	home, err := os.UserHomeDir()
	if err != nil {
		return ".revlog"
	}
	return filepath.Join(home, ".config", "revlog")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
