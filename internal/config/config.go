// Package config loads the page builder settings from an optional YAML file
// overlaid by environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"pagebuilder/internal/catalog"
	"pagebuilder/internal/domain"
)

// EnvConfigFile names the variable holding the config file path.
const EnvConfigFile = "PAGEBUILDER_CONFIG"

type SecretBackend string

const (
	SecretsKeychain SecretBackend = "keychain"
	SecretsEnv      SecretBackend = "env"
	SecretsMemory   SecretBackend = "memory"
)

// Config is the resolved application configuration.
type Config struct {
	Settings `yaml:",inline"`

	Connections []domain.DatabaseConnection `yaml:"connections"`
	Jobs        []catalog.Job               `yaml:"jobs"`
	Messages    Messages                    `yaml:"messages"`

	// File is the config file that was read, empty when none was.
	File string `yaml:"-"`
}

// Settings holds the scalar options that environment variables can set.
// Environment values take precedence over the file.
type Settings struct {
	DataDir       string        `yaml:"data_dir" env:"PAGEBUILDER_DATA_DIR"`
	DBPath        string        `yaml:"db_path" env:"PAGEBUILDER_DB_PATH"`
	LogLevel      string        `yaml:"log_level" env:"PAGEBUILDER_LOG_LEVEL"`
	LogFile       string        `yaml:"log_file" env:"PAGEBUILDER_LOG_FILE"`
	SecretBackend SecretBackend `yaml:"secret_backend" env:"PAGEBUILDER_SECRET_BACKEND"`
	// SecretPrefix is used by the env backend.
	SecretPrefix string `yaml:"secret_prefix" env:"PAGEBUILDER_SECRET_PREFIX"`

	GenAI GenAI `yaml:"genai"`
}

// GenAI configures the generation provider. Generation is disabled when
// APIKey is empty.
type GenAI struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"PAGEBUILDER_GENAI_MODEL"`
}

// Messages overrides user-visible substitute texts. Empty fields keep the
// built-in English text.
type Messages struct {
	NoProducts          string `yaml:"no_products"`
	ProductsUnavailable string `yaml:"products_unavailable"`
	FlashSale           string `yaml:"flash_sale"`
	EmptyCategoryTitle  string `yaml:"empty_category_title"`
	EmptyCategoryBody   string `yaml:"empty_category_body"`
}

// DefaultDataDir returns ~/.local/share/pagebuilder.
func DefaultDataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "pagebuilder")
}

// Load reads the config from path, the file named by PAGEBUILDER_CONFIG, or
// config.yaml in the default data dir, in that order. Only an explicitly
// named file must exist.
func Load(path string) (*Config, error) {
	return load(path, nil)
}

// load parses with environ instead of the process environment when it is
// non-nil.
func load(path string, environ map[string]string) (*Config, error) {
	lookup := os.Getenv
	if environ != nil {
		lookup = func(k string) string { return environ[k] }
	}

	explicit := true
	if path == "" {
		path = lookup(EnvConfigFile)
	}
	if path == "" {
		path = filepath.Join(DefaultDataDir(), "config.yaml")
		explicit = false
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.File = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg.Settings, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "pagebuilder.db")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SecretBackend == "" {
		c.SecretBackend = SecretsKeychain
	}
	if c.SecretPrefix == "" {
		c.SecretPrefix = "PAGEBUILDER_SECRET_"
	}
}

// Validate checks the settings that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.SecretBackend {
	case SecretsKeychain, SecretsEnv, SecretsMemory:
	default:
		return fmt.Errorf("unknown secret backend %q", c.SecretBackend)
	}

	seen := make(map[string]bool, len(c.Connections))
	for _, conn := range c.Connections {
		if conn.ID == "" {
			return fmt.Errorf("connection %q: id is required", conn.Name)
		}
		if seen[conn.ID] {
			return fmt.Errorf("duplicate connection id %q", conn.ID)
		}
		seen[conn.ID] = true
		switch conn.Driver {
		case domain.DatabaseDriverPostgres, domain.DatabaseDriverMySQL, domain.DatabaseDriverSQLite, domain.DatabaseDriverMongoDB:
		default:
			return fmt.Errorf("connection %s: unsupported driver %q", conn.ID, conn.Driver)
		}
	}

	for i := range c.Jobs {
		if err := c.Jobs[i].Validate(); err != nil {
			return fmt.Errorf("job %d: %w", i, err)
		}
	}

	formats := []struct{ key, value string }{
		{"no_products", c.Messages.NoProducts},
		{"empty_category_title", c.Messages.EmptyCategoryTitle},
	}
	for _, f := range formats {
		if f.value != "" && !singleStringVerb(f.value) {
			return fmt.Errorf("messages.%s: %q must hold exactly one %%s, %%q or %%v", f.key, f.value)
		}
	}
	return nil
}

// singleStringVerb reports whether format takes exactly one string argument.
// %% is a literal percent sign.
func singleStringVerb(format string) bool {
	verbs := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		i++
		if i == len(format) {
			return false
		}
		switch format[i] {
		case '%':
		case 's', 'q', 'v':
			verbs++
		default:
			return false
		}
	}
	return verbs == 1
}
