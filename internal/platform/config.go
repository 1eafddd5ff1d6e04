package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// EnvFile is the dotenv file read from the workspace root.
const EnvFile = "jotter.env"

// Config is the process configuration, read from JOTTER_* environment variables.
type Config struct {
	Store StoreConfig `env-prefix:"JOTTER_"`
	HTTP  HTTPConfig  `env-prefix:"JOTTER_HTTP_"`
	Log   LogConfig   `env-prefix:"JOTTER_LOG_"`
}

type StoreConfig struct {
	Adapter    string `env:"STORE" env-default:"fs" env-description:"fs, memory or remote"`
	Path       string `env:"PATH" env-description:"fs root; defaults to the workspace root or ."`
	RemoteURL  string `env:"REMOTE_URL" env-description:"store server base url for the remote adapter"`
	Collection string `env:"COLLECTION" env-default:"notes"`
	Extension  string `env:"EXTENSION" env-default:".md"`
	ReadOnly   bool   `env:"READ_ONLY" env-default:"false"`
}

type HTTPConfig struct {
	Addr string `env:"ADDR" env-default:":8080"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" env-default:"info"`
	Pretty bool   `env:"PRETTY" env-default:"false"`
}

// LoadConfig reads the environment, after loading jotter.env from the
// workspace root (if any) and .env from the working directory.
// Variables already set in the environment win over both files.
func LoadConfig() (Config, error) {
	root, rootErr := FindRoot(".")
	if rootErr == nil {
		if err := loadEnvFile(filepath.Join(root, EnvFile)); err != nil {
			return Config{}, err
		}
	}
	if err := loadEnvFile(".env"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = "."
		if rootErr == nil {
			cfg.Store.Path = root
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot.
func (c Config) Validate() error {
	switch c.Store.Adapter {
	case AdapterFS, AdapterMemory:
	case AdapterRemote:
		if c.Store.RemoteURL == "" {
			return fmt.Errorf("JOTTER_REMOTE_URL is required when JOTTER_STORE=remote")
		}
	default:
		return fmt.Errorf("invalid JOTTER_STORE %q: want fs, memory or remote", c.Store.Adapter)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Options converts the store section to factory options.
func (c Config) Options() []Option {
	return []Option{
		WithAdapter(c.Store.Adapter),
		WithCollection(c.Store.Collection),
		WithExtension(c.Store.Extension),
		WithReadOnly(c.Store.ReadOnly),
	}
}

// URI returns the adapter-specific location of the store.
func (c Config) URI() string {
	if c.Store.Adapter == AdapterRemote {
		return c.Store.RemoteURL
	}
	return c.Store.Path
}

// ConfigUsage describes every supported variable, for help output.
func ConfigUsage() string {
	var cfg Config
	usage, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return usage
}

func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}
