// Package config handles loading and parsing application configuration.
// Both programs (the students-api server and the studentdir client) read
// the same YAML file; each only looks at the sections it needs.
//
// The config path comes from (in priority order):
//  1. A command-line flag:      --config=/path/to/config.yaml
//  2. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//
// Both commands wire the flag and the variable together, so this package
// only ever receives a resolved path.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/ilyakaznacheev/cleanenv"
)

// Environments understood by the logger setup.
const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"storage/storage.db"`

	// HTTPServer is embedded (not a pointer) so its fields are accessible
	// directly on Config:  cfg.HTTPServer.Addr  or after promotion cfg.Addr
	HTTPServer `yaml:"http_server"`

	// Client holds the settings of the directory client.
	Client ClientConfig `yaml:"client"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`

	// MaxBodyBytes caps request bodies; larger ones get 413.
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"HTTP_SERVER_MAX_BODY_BYTES" env-default:"2097152"`
}

// ClientConfig holds settings for the studentdir client.
// Nested under client: in the YAML file.
type ClientConfig struct {
	// APIURL is the base URL of the students collection.
	APIURL string `yaml:"api_url" env:"STUDENTS_API_URL" env-default:"http://localhost:8082/api/students"`

	// PageSize is the number of records per page.
	PageSize int `yaml:"page_size" env:"PAGE_SIZE" env-default:"22"`

	// LogFile receives the client's logs; stdout belongs to the terminal UI.
	LogFile string `yaml:"log_file" env:"LOG_FILE" env-default:"studentdir.log"`
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Env, validation.Required, validation.In(EnvDev, EnvStaging, EnvProd)),
		validation.Field(&c.StoragePath, validation.Required),
	); err != nil {
		return err
	}
	if err := c.HTTPServer.Validate(); err != nil {
		return fmt.Errorf("http_server: %w", err)
	}
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	return nil
}

// Validate checks the HTTP server section.
func (h *HTTPServer) Validate() error {
	return validation.ValidateStruct(h,
		validation.Field(&h.Addr, validation.Required),
		validation.Field(&h.MaxBodyBytes, validation.Required, validation.Min(int64(1024))),
	)
}

// Validate checks the client section.
func (c *ClientConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1)),
	)
}

func absoluteURL(value interface{}) error {
	u, err := url.Parse(value.(string))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

// Load reads and validates the config at configPath. An empty path means
// "no file": defaults and environment variables only.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		// cleanenv.ReadEnv applies env-default values and env overrides.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from environment: %w", err)
		}
	} else {
		// Verify the file exists before trying to read it, so the message
		// names the file rather than a cryptic "open: no such file".
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}

		// cleanenv.ReadConfig reads the YAML file and populates the struct.
		// It also reads any env:"..." tagged fields from the environment.
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}
