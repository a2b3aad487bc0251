package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the resolved settings for the OfflineAI server.
type Config struct {
	Port           int           `yaml:"port"`
	OllamaURL      string        `yaml:"ollama_url"`
	DefaultModel   string        `yaml:"default_model"`
	ServerName     string        `yaml:"server_name"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	LogLevel       string        `yaml:"log_level"`
	WarmUp         bool          `yaml:"warm_up"`
	ConfigFile     string        `yaml:"-"`
}

// SetDefaults initializes c with built-in defaults.
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.OllamaURL == "" {
		c.OllamaURL = "http://127.0.0.1:11434"
	}
	if c.DefaultModel == "" {
		c.DefaultModel = "llama3.2"
	}
	if c.ServerName == "" {
		c.ServerName = "offlineai"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.WarmUp = true
}

// ApplyEnv overlays environment variables onto the current config values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CONFIG_FILE"); v != "" {
		c.ConfigFile = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		c.OllamaURL = v
	}
	if v := os.Getenv("DEFAULT_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("SERVER_NAME"); v != "" {
		c.ServerName = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestTimeout = d
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitComma(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("WARM_UP"); v != "" {
		c.WarmUp = strings.EqualFold(v, "true") || v == "1"
	}
}

// BindFlags binds command line flags using the current config values as
// defaults so main can call flag.Parse().
func (c *Config) BindFlags() {
	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "server config file path")
	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port")
	flag.StringVar(&c.OllamaURL, "ollama-url", c.OllamaURL, "base URL of the Ollama runtime")
	flag.StringVar(&c.DefaultModel, "model", c.DefaultModel, "model used when a request names none")
	flag.StringVar(&c.ServerName, "server-name", c.ServerName, "server name reported by /health")
	flag.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "maximum duration of a single chat request")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (trace, debug, info, warn, error, none)")
	flag.BoolVar(&c.WarmUp, "warm-up", c.WarmUp, "preload the default model at startup")
	flag.Func("allowed-origins", "comma separated list of allowed CORS origins", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
}

// LoadFile populates the config from a YAML file.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

func splitComma(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
