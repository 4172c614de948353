// Package llm provides the generation collaborator: a unified interface over
// LLM backends (Gemini, OpenAI) with a transient-vs-fatal error taxonomy and
// a bounded exponential-backoff retry wrapper.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/seenimoa/riskdesk/internal/config"
)

// Provider names for configuration.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Common errors returned by generation backends. Rate-limit and
// provider-down conditions are transient; the rest are fatal.
var (
	ErrNoAPIKey     = errors.New("llm: API key not configured")
	ErrRateLimit    = errors.New("llm: rate limit exceeded")
	ErrProviderDown = errors.New("llm: provider unavailable")
	ErrInvalidModel = errors.New("llm: invalid model")
	ErrEmptyOutput  = errors.New("llm: empty response")
)

// Request is one structured-generation request. RoleInstruction is the
// system/role framing, kept distinct from the user content.
type Request struct {
	RoleInstruction string
	Content         string
	Temperature     float64
	MaxOutputTokens int
}

// Provider is the interface all generation backends implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "gemini").
	Name() string

	// Generate sends one request and returns the response text.
	Generate(ctx context.Context, req Request) (string, error)

	// Ping checks whether the provider is reachable and the key is valid.
	Ping(ctx context.Context) error
}

// IsTransient reports whether an error belongs to the retryable failure
// class: rate limits, timeouts, and temporary unavailability.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimit) || errors.Is(err, ErrProviderDown) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// NewFromConfig builds the configured primary provider wrapped in a Retrier.
// A missing API key for the selected provider is a fatal configuration error.
func NewFromConfig(cfg config.LLMConfig) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Primary {
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAIKey, WithOpenAIModel(cfg.Model))
	case ProviderGemini, "":
		base, err = NewGeminiProvider(cfg.GeminiKey, WithGeminiModel(cfg.Model))
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidModel, cfg.Primary)
	}
	if err != nil {
		return nil, err
	}

	return &Retrier{
		Provider:   base,
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.BackoffBase(),
	}, nil
}
