package tagger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"clubsafe/internal/config"
)

var ErrUnknownProvider = errors.New("unknown provider")

// Model sends a single prompt to a generative model.
type Model interface {
	Generate(ctx context.Context, prompt string) (Response, error)
}

// ModelFactory configures a Model for apiKey.
type ModelFactory func(apiKey string) (Model, error)

// CredentialSource returns the API key to use for the next request.
type CredentialSource func() (string, error)

// Outcome classifies the string returned by Analyze.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeEmpty          Outcome = "empty"
	OutcomeUnexpected     Outcome = "unexpected"
	OutcomeAttributeError Outcome = "attribute_error"
	OutcomeError          Outcome = "error"
)

// Tagger asks a generative model which incident categories a review mentions.
// Failures are reported inside the returned string, never as errors.
type Tagger struct {
	credentials CredentialSource
	newModel    ModelFactory
	observer    func(Outcome)
	log         *slog.Logger
}

func New(
	credentials CredentialSource,
	newModel ModelFactory,
	observer func(Outcome),
	log *slog.Logger,
) *Tagger {
	return &Tagger{
		credentials: credentials,
		newModel:    newModel,
		observer:    observer,
		log:         log,
	}
}

// Analyze returns the model's comma-separated categories for review, or an
// error-shaped string.
func (t *Tagger) Analyze(ctx context.Context, review string) (result string) {
	outcome := OutcomeError

	defer func() {
		if r := recover(); r != nil {
			t.log.ErrorContext(ctx, "Tagger panicked",
				"panic", r)
			result = genericErrorPrefix + fmt.Sprint(r)
			outcome = OutcomeError
		}

		if t.observer != nil {
			t.observer(outcome)
		}
	}()

	result, outcome = t.analyze(ctx, review)

	return result
}

func (t *Tagger) analyze(ctx context.Context, review string) (string, Outcome) {
	apiKey, err := t.credentials()
	if err != nil {
		return t.fail(ctx, fmt.Errorf("read credential: %w", err))
	}

	model, err := t.newModel(apiKey)
	if err != nil {
		return t.fail(ctx, fmt.Errorf("configure model: %w", err))
	}

	resp, err := model.Generate(ctx, FormatPrompt(review))
	if err != nil {
		return t.fail(ctx, err)
	}

	if resp.Shapeless() {
		t.log.WarnContext(ctx, "Model response has unexpected format",
			"kind", resp.Kind.String(),
			"response", resp.Raw)
	}

	content, err := Extract(resp)
	var attrErr *AttributeError
	if errors.As(err, &attrErr) {
		t.log.WarnContext(ctx, "Model response is missing an attribute",
			"error", attrErr,
			"kind", resp.Kind.String())

		return attributeErrorPrefix + attrErr.Error(), OutcomeAttributeError
	}

	switch content {
	case ResultEmpty, ResultEmptyParts:
		return content, OutcomeEmpty
	case ResultUnexpectedFormat:
		return content, OutcomeUnexpected
	default:
		return content, OutcomeOK
	}
}

func (t *Tagger) fail(ctx context.Context, err error) (string, Outcome) {
	t.log.WarnContext(ctx, "Failed to tag review",
		"error", err)

	return genericErrorPrefix + err.Error(), OutcomeError
}

// ModelConfig selects and tunes the generative backend.
type ModelConfig struct {
	Provider string
	Model    string
	BaseURL  string
	// Timeout bounds one model call; zero means no timeout.
	Timeout time.Duration
}

// NewModelFactory returns a factory building models of cfg.Provider.
func NewModelFactory(cfg ModelConfig) (ModelFactory, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case config.ProviderGemini:
		return func(apiKey string) (Model, error) {
			return NewGeminiModel(apiKey, cfg.Model, cfg.BaseURL, httpClient)
		}, nil
	case config.ProviderOpenAI:
		return func(apiKey string) (Model, error) {
			return NewOpenAIModel(apiKey, cfg.Model, cfg.BaseURL, httpClient)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// EnvCredentials reads the provider's API key from the environment on every call.
func EnvCredentials(provider string) CredentialSource {
	return func() (string, error) {
		return config.APIKey(provider)
	}
}
