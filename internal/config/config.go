package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML settings file, with environment overrides applied on
// top. Every section has a working default so the binary runs with no file
// at all.
type Config struct {
	Chain struct {
		RPCURLs        []string `yaml:"rpc_urls"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
	} `yaml:"chain"`

	Reputation struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"reputation"`

	Cache struct {
		TTLSeconds int `yaml:"ttl_seconds"`
		MaxEntries int `yaml:"max_entries"`
	} `yaml:"cache"`

	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	LogDir string `yaml:"log_dir"`
}

// Load reads the settings file at path, or searches the usual locations when
// path is empty. A missing file is not an error; defaults and environment
// variables still apply.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}
	}

	applyEnv(cfg)
	fillDefaults(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{}
}

func fillDefaults(cfg *Config) {
	if len(cfg.Chain.RPCURLs) == 0 {
		cfg.Chain.RPCURLs = []string{"https://mainnet.base.org"}
	}
	if cfg.Chain.TimeoutSeconds <= 0 {
		cfg.Chain.TimeoutSeconds = 10
	}
	if cfg.Reputation.BaseURL == "" {
		cfg.Reputation.BaseURL = "https://api.basescan.org/api"
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = 512
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RISKSCAN_RPC_URL"); v != "" {
		cfg.Chain.RPCURLs = []string{v}
	}
	if v := os.Getenv("RISKSCAN_API_KEY"); v != "" {
		cfg.Reputation.APIKey = v
	}
	if v := os.Getenv("RISKSCAN_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("RISKSCAN_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("RISKSCAN_CACHE_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Cache.TTLSeconds = n
		}
	}
}

// RPCTimeout returns the per-call chain timeout.
func (c *Config) RPCTimeout() time.Duration {
	return time.Duration(c.Chain.TimeoutSeconds) * time.Second
}

// CacheTTL returns the result cache time-to-live.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func findConfigFile() string {
	possiblePaths := []string{
		"settings.yaml",
		"config/settings.yaml",
		"../config/settings.yaml",
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
