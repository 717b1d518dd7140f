package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad author type", func(c *Config) { c.Author.Type = "robot" }},
		{"bad format", func(c *Config) { c.Output.Format = "toml" }},
		{"bad port", func(c *Config) { c.Serve.Port = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadUsesDefaults(t *testing.T) {
	viper.Reset()
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("expected default format yaml, got %q", cfg.Output.Format)
	}
	if cfg.Serve.Port != 7370 {
		t.Errorf("expected default port 7370, got %d", cfg.Serve.Port)
	}
}

func TestLoadOverride(t *testing.T) {
	viper.Reset()
	SetDefaults()
	viper.Set("output.format", "json")
	viper.Set("author.name", "mira")
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected format json, got %q", cfg.Output.Format)
	}
	if cfg.Author.Name != "mira" {
		t.Errorf("expected author mira, got %q", cfg.Author.Name)
	}
}

func TestInitReadsConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "author:\n  name: mira\n  type: human\noutput:\n  format: xml\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if err := Init(path); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Author.Name != "mira" {
		t.Errorf("expected author mira, got %q", cfg.Author.Name)
	}
	if cfg.Output.Format != "xml" {
		t.Errorf("expected format xml, got %q", cfg.Output.Format)
	}
	// Unset sections keep their defaults
	if cfg.Serve.Port != 7370 {
		t.Errorf("expected default port, got %d", cfg.Serve.Port)
	}
}

func TestInitMissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	if err := Init(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing --config file")
	}
}

func TestModelAuthor(t *testing.T) {
	cfg := Default()
	cfg.Author = AuthorConfig{Name: "review-bot", Type: "agent", Model: "sonnet"}

	a := cfg.ModelAuthor()
	if a.Name != "review-bot" || a.Type != "agent" || a.Model != "sonnet" {
		t.Errorf("unexpected author: %+v", a)
	}
}

func TestModelAuthorFallback(t *testing.T) {
	t.Setenv("USER", "fallback-user")

	cfg := Default()
	cfg.Author.Name = ""
	if got := cfg.ModelAuthor().Name; got != "fallback-user" {
		t.Errorf("expected fallback to $USER, got %q", got)
	}
}
