// Package config loads plancritic settings from defaults, an optional YAML
// file, a .env file and PLANCRITIC_* environment variables, in that order of
// increasing precedence. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/martinemde/plancritic/agent"
	"github.com/martinemde/plancritic/completion"
)

// PlaceholderAPIKey is the value shipped in the sample .env. It is treated as
// missing.
const PlaceholderAPIKey = "tu-api-key-aqui"

// ErrMissingAPIKey is the cause of the ConfigurationError returned when no
// usable key is configured.
var ErrMissingAPIKey = errors.New("missing API key")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PLANCRITIC_"

// Backends accepted by the backend option.
const (
	BackendAuto      = "auto"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendGollm     = "gollm"
)

// Config holds every runtime option.
type Config struct {
	Provider            string        `yaml:"provider" env:"PROVIDER"`
	Backend             string        `yaml:"backend" env:"BACKEND"`
	ModelID             string        `yaml:"model_id" env:"MODEL_ID"`
	TemperaturePlan     float64       `yaml:"temperature_plan" env:"TEMPERATURE_PLAN"`
	TemperatureExecute  float64       `yaml:"temperature_execute" env:"TEMPERATURE_EXECUTE"`
	TemperatureCritique float64       `yaml:"temperature_critique" env:"TEMPERATURE_CRITIQUE"`
	MaxIterations       int           `yaml:"max_iterations" env:"MAX_ITERATIONS"`
	MaxTokens           int           `yaml:"max_tokens" env:"MAX_TOKENS"`
	MaxRetries          int           `yaml:"max_retries" env:"MAX_RETRIES"`
	RequestsPerMinute   float64       `yaml:"requests_per_minute" env:"REQUESTS_PER_MINUTE"`
	RequestTimeout      time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	LogLevel            string        `yaml:"log_level" env:"LOG_LEVEL"`
	MetricsAddr         string        `yaml:"metrics_addr" env:"METRICS_ADDR"`
	OTLPEndpoint        string        `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	APIKey              string        `yaml:"api_key" env:"API_KEY"`
}

// Default returns the stock configuration. APIKey is left empty.
func Default() Config {
	return Config{
		Provider:            "openai",
		Backend:             BackendAuto,
		ModelID:             agent.DefaultModel,
		TemperaturePlan:     0.1,
		TemperatureExecute:  0.7,
		TemperatureCritique: 0.1,
		MaxIterations:       agent.DefaultMaxIterations,
		MaxTokens:           1024,
		MaxRetries:          0,
		RequestTimeout:      60 * time.Second,
		LogLevel:            "info",
	}
}

// Load builds a Config. path may be empty, in which case only defaults and
// the environment are used. A .env file in the working directory is loaded
// first if present; it never overrides variables already set.
func Load(path string) (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("%s environment: %w", EnvPrefix, err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(APIKeyEnv(cfg.Provider))
	}
	return cfg, nil
}

// LoadDotEnv loads the given files into the process environment. Missing
// files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// APIKeyEnv names the environment variable holding the key for provider.
func APIKeyEnv(provider string) string {
	switch provider {
	case "", "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	}
	return strings.ToUpper(provider) + "_API_KEY"
}

// SetProvider switches provider. A key taken from the old provider's
// environment variable follows the switch; a key set any other way is kept.
func (c *Config) SetProvider(provider string) {
	if provider == c.Provider {
		return
	}
	if c.APIKey == "" || c.APIKey == os.Getenv(APIKeyEnv(c.Provider)) {
		c.APIKey = os.Getenv(APIKeyEnv(provider))
	}
	c.Provider = provider
}

// Validate rejects configurations that must not start a session. Every
// failure is a *completion.ConfigurationError.
func (c Config) Validate() error {
	if key := strings.TrimSpace(c.APIKey); key == "" || key == PlaceholderAPIKey {
		return &completion.ConfigurationError{SDKError: completion.SDKError{
			Message: fmt.Sprintf("Configura tu %s", APIKeyEnv(c.Provider)),
			Cause:   ErrMissingAPIKey,
		}}
	}
	switch c.Backend {
	case BackendAuto, BackendOpenAI, BackendAnthropic, BackendGollm:
	default:
		return configError(fmt.Sprintf("unknown backend %q", c.Backend))
	}
	if c.MaxTokens < 0 {
		return configError(fmt.Sprintf("max_tokens must not be negative, got %d", c.MaxTokens))
	}
	if c.MaxRetries < 0 {
		return configError(fmt.Sprintf("max_retries must not be negative, got %d", c.MaxRetries))
	}
	if err := c.AgentConfig().Validate(); err != nil {
		return configError(err.Error())
	}
	return nil
}

func configError(msg string) error {
	return &completion.ConfigurationError{SDKError: completion.SDKError{Message: msg}}
}

// ResolveBackend picks the adapter family. With BackendAuto, instruct models
// go to the OpenAI completions endpoint, the anthropic provider to the
// Anthropic SDK, and everything else through gollm.
func (c Config) ResolveBackend() string {
	if c.Backend != "" && c.Backend != BackendAuto {
		return c.Backend
	}
	if c.Provider == "anthropic" {
		return BackendAnthropic
	}
	if info := completion.GetModelInfo(c.ModelID); info != nil && info.API == completion.APICompletions {
		return BackendOpenAI
	}
	return BackendGollm
}

// AgentConfig converts the stage settings.
func (c Config) AgentConfig() agent.Config {
	return agent.Config{
		MaxIterations: c.MaxIterations,
		Planner:       agent.StageProfile{Model: c.ModelID, Temperature: c.TemperaturePlan},
		Executor:      agent.StageProfile{Model: c.ModelID, Temperature: c.TemperatureExecute},
		Critic:        agent.StageProfile{Model: c.ModelID, Temperature: c.TemperatureCritique},
	}
}

// RetryPolicy returns the completion retry policy. Zero retries disables
// retrying entirely.
func (c Config) RetryPolicy() completion.RetryPolicy {
	if c.MaxRetries <= 0 {
		return completion.NoRetryPolicy()
	}
	p := completion.DefaultRetryPolicy()
	p.MaxRetries = c.MaxRetries
	return p
}

// SlogLevel parses LogLevel, falling back to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
