package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Storage StorageConfig `mapstructure:"storage"`
	DB      DBConfig      `mapstructure:"db"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type CatalogConfig struct {
	Source  string        `mapstructure:"source"` // "http" or "fixture"
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // "file", "memory" or "mysql"
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

type DBConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

type AuthConfig struct {
	LoginDelay time.Duration `mapstructure:"login_delay"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

const DefaultCatalogURL = "https://fakestoreapi.com/products"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("catalog.source", "http")
	v.SetDefault("catalog.url", DefaultCatalogURL)
	v.SetDefault("catalog.timeout", 15*time.Second)

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", defaultStatePath())
	v.SetDefault("storage.namespace", "storefront")

	v.SetDefault("db.maxOpenConns", 5)

	v.SetDefault("auth.login_delay", time.Second)

	v.SetDefault("log.level", "info")
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".storefront", "state.json")
	}
	return filepath.Join(home, ".storefront", "state.json")
}

// LoadConfig loads configuration from config.yaml, a .env file and environment
// variables. An explicit path overrides the search locations; with no path a
// missing config file is not an error and the defaults apply.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./deploy/")
		v.AddConfigPath("./")
		v.AddConfigPath("$HOME/.storefront/")
		v.AddConfigPath("/etc/storefront/")
	}

	// Enable environment variable override with STOREFRONT_ prefix
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "http", "fixture":
	default:
		return fmt.Errorf("unsupported catalog source: %s", c.Catalog.Source)
	}
	switch c.Storage.Driver {
	case "file", "memory":
	case "mysql":
		if c.DB.DSN == "" {
			return fmt.Errorf("storage driver mysql requires db.dsn")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	if c.Auth.LoginDelay < 0 {
		return fmt.Errorf("auth.login_delay must not be negative")
	}
	return nil
}
