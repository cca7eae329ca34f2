// Package config loads the todos.yaml configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"gopkg.in/yaml.v3"
)

const (
	BackendDynamo = "dynamo"
	BackendSQLite = "sqlite"

	ProviderCognito = "cognito"
	ProviderLocal   = "local"
)

// EnvConfigPath names the environment variable holding the config path
const EnvConfigPath = "TODOS_CONFIG"

var defaultLocations = []string{"todos.yaml", "todos.yml", ".todos.yaml", ".todos.yml"}

// Config represents the todos.yaml configuration structure
type Config struct {
	Backend     string `yaml:"backend"`
	Provider    string `yaml:"provider"`
	PhoneRegion string `yaml:"phone_region"`
	Debug       bool   `yaml:"debug"`

	AWS struct {
		Region   string `yaml:"region"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"aws"`

	Dynamo struct {
		Table          string `yaml:"table"`
		ConsistentRead bool   `yaml:"consistent_read"`
	} `yaml:"dynamo"`

	Cognito struct {
		UserPoolID   string `yaml:"user_pool_id"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
	} `yaml:"cognito"`

	Local struct {
		DSN        string `yaml:"dsn"`
		SigningKey string `yaml:"signing_key"`
	} `yaml:"local"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
}

// Default returns a config with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the config at path. An empty path is resolved with Path; when
// no file is found the defaults are returned. Environment overrides are
// applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Path returns TODOS_CONFIG or the first default location that exists
func Path() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}

	for _, loc := range defaultLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Save writes cfg as YAML
func Save(cfg *Config, path string) error {
	if path == "" {
		path = defaultLocations[0]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// may hold a client secret or signing key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the selected backend and provider have what they need
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(BackendDynamo, BackendSQLite)),
		validation.Field(&c.Provider, validation.In(ProviderCognito, ProviderLocal)),
	); err != nil {
		return err
	}

	if c.Provider == ProviderCognito && c.Cognito.ClientID == "" {
		return fmt.Errorf("cognito.client_id is required for the cognito provider")
	}
	if c.Provider == ProviderLocal && c.Local.SigningKey == "" {
		return fmt.Errorf("local.signing_key is required for the local provider")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendDynamo
	}
	if c.Provider == "" {
		c.Provider = ProviderCognito
	}
	if c.PhoneRegion == "" {
		c.PhoneRegion = "US"
	}
	if c.AWS.Region == "" {
		c.AWS.Region = "us-west-2"
	}
	if c.Dynamo.Table == "" {
		c.Dynamo.Table = "TodoTable"
	}
	if c.Local.DSN == "" {
		c.Local.DSN = "file:todos.db?cache=shared"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
}

func (c *Config) applyEnv() {
	setString(&c.Backend, "TODOS_BACKEND")
	setString(&c.Provider, "TODOS_PROVIDER")
	setString(&c.AWS.Region, "AWS_REGION")
	setString(&c.AWS.Endpoint, "TODOS_AWS_ENDPOINT")
	setString(&c.Dynamo.Table, "TODOS_TABLE")
	setString(&c.Cognito.UserPoolID, "TODOS_USER_POOL_ID")
	setString(&c.Cognito.ClientID, "TODOS_CLIENT_ID")
	setString(&c.Cognito.ClientSecret, "TODOS_CLIENT_SECRET")
	setString(&c.Local.DSN, "TODOS_LOCAL_DSN")
	setString(&c.Local.SigningKey, "TODOS_SIGNING_KEY")
	setString(&c.Storage.Path, "TODOS_STORAGE_PATH")
	setString(&c.HTTP.Addr, "TODOS_HTTP_ADDR")

	if v := os.Getenv("TODOS_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Debug = debug
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
