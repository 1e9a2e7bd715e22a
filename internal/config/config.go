package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	LogFormatJSON = "json"
	LogFormatText = "text"

	DotEnvFile = ".env"
)

type Config struct {
	Addr      string     `env:"ADDR"       envDefault:":5000"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"json"`
	LogLevel  slog.Level `env:"LOG_LEVEL"  envDefault:"INFO"`

	TaggerProvider    string        `env:"TAGGER_PROVIDER"     envDefault:"gemini"`
	TaggerModel       string        `env:"TAGGER_MODEL"`
	TaggerBaseURL     string        `env:"TAGGER_BASE_URL"`
	TaggerTimeout     time.Duration `env:"TAGGER_TIMEOUT"      envDefault:"0s"`
	TaggerMinInterval time.Duration `env:"TAGGER_MIN_INTERVAL" envDefault:"0s"`

	SummaryCacheSize      int           `env:"SUMMARY_CACHE_SIZE"       envDefault:"0"`
	SummaryCacheTTL       time.Duration `env:"SUMMARY_CACHE_TTL"        envDefault:"1h"`
	SummaryCacheSweepSpec string        `env:"SUMMARY_CACHE_SWEEP_SPEC" envDefault:"*/15 * * * *"`

	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES"   envDefault:"1048576"`
	MetricsAddr     string        `env:"METRICS_ADDR"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// TracesEndpoint is the full OTLP/HTTP traces URL; empty disables export.
	TracesEndpoint string `env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`
	ServiceName    string `env:"OTEL_SERVICE_NAME"                  envDefault:"clubsafe"`
}

// GeminiCredentials is read from the environment on every tagging request.
type GeminiCredentials struct {
	APIKey string `env:"GOOGLE_API_KEY,required,notEmpty"`
}

// OpenAICredentials is read from the environment on every tagging request.
type OpenAICredentials struct {
	APIKey string `env:"OPENAI_API_KEY,required,notEmpty"`
}

// LoadDotEnv loads variables from path without overriding ones already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.TaggerProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown TAGGER_PROVIDER %q", c.TaggerProvider))
	}

	switch c.LogFormat {
	case LogFormatJSON, LogFormatText:
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}

	if c.SummaryCacheSize < 0 {
		errs = append(errs, fmt.Errorf("SUMMARY_CACHE_SIZE must not be negative, got %d", c.SummaryCacheSize))
	}

	if c.SummaryCacheSize > 0 && c.SummaryCacheTTL <= 0 {
		errs = append(errs, errors.New("SUMMARY_CACHE_TTL must be positive when the cache is enabled"))
	}

	if c.TaggerMinInterval < 0 {
		errs = append(errs, fmt.Errorf("TAGGER_MIN_INTERVAL must not be negative, got %s", c.TaggerMinInterval))
	}

	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes))
	}

	if c.TracesEndpoint != "" {
		u, err := url.Parse(c.TracesEndpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT must be an http(s) URL, got %q", c.TracesEndpoint))
		}
	}

	return errors.Join(errs...)
}

// APIKey returns the credential for provider as currently set in the environment.
func APIKey(provider string) (string, error) {
	switch provider {
	case ProviderGemini:
		creds, err := env.ParseAs[GeminiCredentials]()
		if err != nil {
			return "", err
		}

		return creds.APIKey, nil
	case ProviderOpenAI:
		creds, err := env.ParseAs[OpenAICredentials]()
		if err != nil {
			return "", err
		}

		return creds.APIKey, nil
	default:
		return "", fmt.Errorf("unknown provider %q", provider)
	}
}
