package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "MEETFLOW_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Store     StoreConfig     `yaml:"store"`
	Run       RunConfig       `yaml:"run"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type TransportConfig struct {
	// Mode is "stdio" or "http".
	Mode string `yaml:"mode"`
}

type StoreConfig struct {
	// Driver is "sqlite" or "file".
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type RunConfig struct {
	ProcessingDelay time.Duration `yaml:"processing_delay"`
	Timeout         time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	ModeStdio = "stdio"
	ModeHTTP  = "http"

	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: ModeStdio,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   "meetflow.db",
		},
		Run: RunConfig{
			ProcessingDelay: 3 * time.Second,
			Timeout:         5 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional .env file, an optional YAML file
// and environment variables, in increasing precedence.
func Load() (Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv(envPrefix + "CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv(envPrefix + "SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv(envPrefix + "SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid %sSERVER_PORT: %w", envPrefix, err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv(envPrefix + "TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if driver := os.Getenv(envPrefix + "STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if path := os.Getenv(envPrefix + "STORE_PATH"); path != "" {
		cfg.Store.Path = path
	}
	if v := os.Getenv(envPrefix + "RUN_PROCESSING_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sRUN_PROCESSING_DELAY: %w", envPrefix, err)
		}
		cfg.Run.ProcessingDelay = d
	}
	if v := os.Getenv(envPrefix + "RUN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sRUN_TIMEOUT: %w", envPrefix, err)
		}
		cfg.Run.Timeout = d
	}
	if level := os.Getenv(envPrefix + "LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	return nil
}

// Validate checks enumerated fields and durations.
func (c Config) Validate() error {
	var errs []error
	switch c.Transport.Mode {
	case ModeStdio, ModeHTTP:
	default:
		errs = append(errs, fmt.Errorf("unknown transport mode %q", c.Transport.Mode))
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverFile:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store path is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port %d", c.Server.Port))
	}
	if c.Run.ProcessingDelay < 0 {
		errs = append(errs, errors.New("run processing_delay must not be negative"))
	}
	if c.Run.Timeout <= 0 {
		errs = append(errs, errors.New("run timeout must be positive"))
	}
	return errors.Join(errs...)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
