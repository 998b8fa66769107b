// Package config loads service settings from defaults, an optional YAML file
// and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"ad-aid-platform/db"
)

// Config holds all configuration for the service
type Config struct {
	Env                              string        `koanf:"env"`
	Port                             string        `koanf:"port"`
	DatabaseURL                      string        `koanf:"database_url"`
	DB                               DBConfig      `koanf:"db"`
	Store                            StoreConfig   `koanf:"store"`
	Storage                          StorageConfig `koanf:"storage"`
	Cache                            CacheConfig   `koanf:"cache"`
	GoogleApplicationCredentials     string        `koanf:"google_application_credentials"`
	GoogleApplicationCredentialsJSON string        `koanf:"google_application_credentials_json"`
	ChromePath                       string        `koanf:"chrome_path"`
}

// DBConfig holds the individual Postgres connection fields
type DBConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

// StoreConfig selects the record store
type StoreConfig struct {
	Driver string `koanf:"driver"`
}

// StorageConfig selects and configures the byte store
type StorageConfig struct {
	Driver        string `koanf:"driver"`
	Root          string `koanf:"root"`
	PublicPrefix  string `koanf:"public_prefix"`
	DriveFolderID string `koanf:"drive_folder_id"`
}

// CacheConfig holds the preview cache location
type CacheConfig struct {
	Dir string `koanf:"dir"`
}

// DBSettings converts the database fields for db.Open
func (c *Config) DBSettings() db.Settings {
	return db.Settings{
		URL:      c.DatabaseURL,
		Host:     c.DB.Host,
		Port:     c.DB.Port,
		User:     c.DB.User,
		Password: c.DB.Password,
		Name:     c.DB.Name,
		SSLMode:  c.DB.SSLMode,
	}
}

// Addr returns the listen address on all interfaces
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

func defaults() map[string]any {
	return map[string]any{
		"env":                   "development",
		"port":                  "8080",
		"db.port":               "5432",
		"db.sslmode":            "disable",
		"store.driver":          "postgres",
		"storage.driver":        "local",
		"storage.root":          "static",
		"storage.public_prefix": "/static",
		"cache.dir":             "cache/images",
	}
}

// Load reads configuration. envFile is loaded with godotenv unless ENV is
// "production"; configFile is an optional YAML file. Environment variables
// win over both, mapped by name: DB_HOST -> db.host, STORAGE_DRIVE_FOLDER_ID
// -> storage.drive_folder_id.
func Load(envFile, configFile string) (*Config, error) {
	if os.Getenv("ENV") != "production" && envFile != "" {
		// Overload so .env values override the inherited environment
		if err := godotenv.Overload(envFile); err != nil {
			log.Printf("⚠️  .env file not found at %s, using system environment variables", envFile)
		} else {
			log.Printf("✓ Loaded environment variables from %s", envFile)
		}
	}

	k := koanf.New(".")
	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configFile, err)
		}
	}

	envLookup := buildEnvLookup(knownKeys())
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			if koanfKey, ok := envLookup[strings.ToLower(key)]; ok {
				return koanfKey, value
			}
			// Unknown variables are dropped
			return "", nil
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.Port = strings.TrimPrefix(cfg.Port, ":")
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// knownKeys lists every koanf key an environment variable may set
func knownKeys() []string {
	return []string{
		"env", "port", "database_url",
		"db.host", "db.port", "db.user", "db.password", "db.name", "db.sslmode",
		"store.driver",
		"storage.driver", "storage.root", "storage.public_prefix", "storage.drive_folder_id",
		"cache.dir",
		"google_application_credentials", "google_application_credentials_json",
		"chrome_path",
	}
}

// buildEnvLookup maps lower-case env names (dots as underscores) to koanf keys
func buildEnvLookup(keys []string) map[string]string {
	lookup := make(map[string]string, len(keys))
	for _, key := range keys {
		lookup[strings.ReplaceAll(key, ".", "_")] = key
	}
	return lookup
}

// Validate checks that the selected drivers are known and fully configured
func (c *Config) Validate() error {
	var errs []error

	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("port must be numeric, got %q", c.Port))
	}

	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("store.driver must be postgres or memory, got %q", c.Store.Driver))
	}

	switch c.Storage.Driver {
	case "local", "memory":
	case "drive":
		if c.Storage.DriveFolderID == "" {
			errs = append(errs, errors.New("storage.drive_folder_id is required when storage.driver is drive"))
		}
		if c.GoogleApplicationCredentials == "" && c.GoogleApplicationCredentialsJSON == "" {
			errs = append(errs, errors.New("GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS_JSON is required when storage.driver is drive"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be local, drive or memory, got %q", c.Storage.Driver))
	}

	if !strings.HasPrefix(c.Storage.PublicPrefix, "/") && !strings.Contains(c.Storage.PublicPrefix, "://") {
		errs = append(errs, fmt.Errorf("storage.public_prefix must be an absolute path or URL, got %q", c.Storage.PublicPrefix))
	}

	return errors.Join(errs...)
}
