package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names. The backend keys double as the names reported
// by the proxy when a required value is missing.
const (
	EnvConfigPath     = "EVENTSADMIN_CONFIG_PATH"
	EnvServerHost     = "EVENTSADMIN_SERVER_HOST"
	EnvServerPort     = "EVENTSADMIN_SERVER_PORT"
	EnvDBPath         = "EVENTSADMIN_DB_PATH"
	EnvLogLevel       = "EVENTSADMIN_LOG_LEVEL"
	EnvAPIURL         = "EVENTSADMIN_API_URL"
	EnvAdminToken     = "EVENTSADMIN_ADMIN_TOKEN"
	EnvBackendTimeout = "EVENTSADMIN_BACKEND_TIMEOUT"
	EnvProxyURL       = "EVENTSADMIN_PROXY_URL"
	EnvDefaultCity    = "EVENTSADMIN_DEFAULT_CITY"
	EnvPageSize       = "EVENTSADMIN_PAGE_SIZE"
	EnvRetryMax       = "EVENTSADMIN_RETRY_MAX"
	EnvSessionCookie  = "EVENTSADMIN_SESSION_COOKIE"
	EnvSessionTTL     = "EVENTSADMIN_SESSION_TTL"
	EnvOperatorToken  = "EVENTSADMIN_OPERATOR_TOKEN"
)

// Config defines eventsadmin configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Log     LogConfig     `yaml:"log"`
	Backend BackendConfig `yaml:"backend"`
	Console ConsoleConfig `yaml:"console"`
	Session SessionConfig `yaml:"session"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// BackendConfig holds the events API location and the service credential.
// Both are left empty by default so the proxy fails closed.
type BackendConfig struct {
	BaseURL    string        `yaml:"base_url"`
	AdminToken string        `yaml:"admin_token"`
	Timeout    time.Duration `yaml:"timeout"`
}

type ConsoleConfig struct {
	ProxyURL      string `yaml:"proxy_url"`
	City          string `yaml:"city"`
	PageSize      int    `yaml:"page_size"`
	RetryMax      int    `yaml:"retry_max"`
	OperatorToken string `yaml:"operator_token"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		DB: DBConfig{
			Path: "eventsadmin.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Backend: BackendConfig{
			Timeout: 15 * time.Second,
		},
		Console: ConsoleConfig{
			ProxyURL: "http://localhost:3000",
			City:     "Sydney",
			PageSize: 50,
			RetryMax: 2,
		},
		Session: SessionConfig{
			CookieName: "eventsadmin_session",
			TTL:        12 * time.Hour,
		},
	}
}

// Load reads configuration from the YAML file named by EVENTSADMIN_CONFIG_PATH,
// if set, and environment variables.
func Load() (Config, error) {
	return LoadFrom(os.Getenv(EnvConfigPath))
}

// LoadFrom reads configuration from an optional YAML file at path and
// environment variables. Environment variables win.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv(EnvServerHost); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv(EnvServerPort); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvServerPort, err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv(EnvDBPath); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Log.Level = level
	}
	if apiURL := os.Getenv(EnvAPIURL); apiURL != "" {
		cfg.Backend.BaseURL = apiURL
	}
	if token := os.Getenv(EnvAdminToken); token != "" {
		cfg.Backend.AdminToken = token
	}
	if raw := os.Getenv(EnvBackendTimeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvBackendTimeout, err)
		}
		cfg.Backend.Timeout = timeout
	}
	if proxyURL := os.Getenv(EnvProxyURL); proxyURL != "" {
		cfg.Console.ProxyURL = proxyURL
	}
	if city := os.Getenv(EnvDefaultCity); city != "" {
		cfg.Console.City = city
	}
	if raw := os.Getenv(EnvPageSize); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return fmt.Errorf("invalid %s: %q", EnvPageSize, raw)
		}
		cfg.Console.PageSize = size
	}
	if raw := os.Getenv(EnvRetryMax); raw != "" {
		retries, err := strconv.Atoi(raw)
		if err != nil || retries < 0 {
			return fmt.Errorf("invalid %s: %q", EnvRetryMax, raw)
		}
		cfg.Console.RetryMax = retries
	}
	if token := os.Getenv(EnvOperatorToken); token != "" {
		cfg.Console.OperatorToken = token
	}
	if name := os.Getenv(EnvSessionCookie); name != "" {
		cfg.Session.CookieName = name
	}
	if raw := os.Getenv(EnvSessionTTL); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSessionTTL, err)
		}
		cfg.Session.TTL = ttl
	}
	return nil
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
