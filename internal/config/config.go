package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config is the explicit configuration object handed to the entry points.
// A missing backend credential is a constructible state, not a startup error:
// the server still comes up and serves the configuration-error contract.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	LLM      LLMConfig      `toml:"llm"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

type LLMConfig struct {
	Provider string  `toml:"provider" validate:"oneof=gemini fake"`
	Model    string  `toml:"model"`
	APIKey   string  `toml:"api_key"`
	RPS      float64 `toml:"rps"`
	Burst    int     `toml:"burst"`
}

type PipelineConfig struct {
	Timeout string `toml:"timeout"` // Go duration string, e.g. "120s"
	Mode    string `toml:"mode" validate:"oneof=agents simple"`
}

type LoggingConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

func Default() Config {
	return Config{
		Server:   ServerConfig{Host: "", Port: 8080},
		LLM:      LLMConfig{Provider: "gemini", Model: "gemini-2.5-flash", RPS: 0, Burst: 1},
		Pipeline: PipelineConfig{Timeout: "120s", Mode: "agents"},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads the optional TOML file at path, applies environment overrides,
// and validates the result. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.LLM.RPS = f
		}
	}
	if v := os.Getenv("LLM_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LLM.Burst = n
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("PIPELINE_TIMEOUT"); v != "" {
		cfg.Pipeline.Timeout = v
	}
	if v := os.Getenv("PIPELINE_MODE"); v != "" {
		cfg.Pipeline.Mode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// TimeoutDuration parses the pipeline timeout, falling back to two minutes on
// a malformed value.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Pipeline.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}
