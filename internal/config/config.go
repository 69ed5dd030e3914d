package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Import    ImportConfig    `yaml:"import"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig enables serving on the tailnet via tsnet. Users are then
// identified by their Tailscale login instead of the shared local user.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// ImportConfig controls the directory importer and uploader.
type ImportConfig struct {
	Workers    int      `yaml:"workers"`
	StateDir   string   `yaml:"state_dir"`
	Extensions []string `yaml:"extensions"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Default returns a config with every optional field filled in.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database:  DatabaseConfig{Port: 5432, SSLMode: "disable"},
		Tailscale: TailscaleConfig{Hostname: "repnotes", StateDir: filepath.Join(home, ".repnotes", "tsnet")},
		Import: ImportConfig{
			Workers:    4,
			StateDir:   filepath.Join(home, ".repnotes"),
			Extensions: []string{".txt", ".md", ".workout"},
		},
	}
}

// Load reads config from a YAML file on top of Default, then applies
// environment variable overrides. Variables may also come from a .env file
// next to the config file; the process environment wins over it. Env vars use
// the prefix REPNOTES_ and underscore-separated paths:
//
//	REPNOTES_SERVER_HOST, REPNOTES_SERVER_PORT,
//	REPNOTES_DB_HOST, REPNOTES_DB_PORT, REPNOTES_DB_NAME,
//	REPNOTES_DB_USER, REPNOTES_DB_PASSWORD, REPNOTES_DB_SSLMODE,
//	REPNOTES_AUTH_API_KEY,
//	REPNOTES_TAILSCALE_ENABLED, REPNOTES_TAILSCALE_HOSTNAME,
//	REPNOTES_IMPORT_WORKERS, REPNOTES_IMPORT_STATE_DIR, REPNOTES_IMPORT_EXTENSIONS
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	dotenv, err := readDotEnv(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg, func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	})

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// readDotEnv returns the variables of a .env file, or none if it is missing.
func readDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vars, nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("REPNOTES_SERVER_HOST", &cfg.Server.Host)
	setInt("REPNOTES_SERVER_PORT", &cfg.Server.Port)
	setString("REPNOTES_DB_HOST", &cfg.Database.Host)
	setInt("REPNOTES_DB_PORT", &cfg.Database.Port)
	setString("REPNOTES_DB_NAME", &cfg.Database.Name)
	setString("REPNOTES_DB_USER", &cfg.Database.User)
	setString("REPNOTES_DB_PASSWORD", &cfg.Database.Password)
	setString("REPNOTES_DB_SSLMODE", &cfg.Database.SSLMode)
	setString("REPNOTES_AUTH_API_KEY", &cfg.Auth.APIKey)
	if v := getenv("REPNOTES_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	setString("REPNOTES_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	setInt("REPNOTES_IMPORT_WORKERS", &cfg.Import.Workers)
	setString("REPNOTES_IMPORT_STATE_DIR", &cfg.Import.StateDir)
	if v := getenv("REPNOTES_IMPORT_EXTENSIONS"); v != "" {
		var exts []string
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				exts = append(exts, e)
			}
		}
		cfg.Import.Extensions = exts
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Import.Workers < 1 {
		return fmt.Errorf("import.workers must be at least 1")
	}
	return nil
}
