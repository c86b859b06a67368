package embedder

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config holds embedder configuration
type Config struct {
	Provider   string
	APIKey     string
	APIBase    string
	APIVersion string
	Deployment string
	Model      string
	Timeout    time.Duration
	Dimension  int // local provider only
	Retry      RetryPolicy
}

// New creates an embedder with explicit configuration. An empty provider
// selects azure.
func New(cfg Config) (Embedder, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderAzure:
		return NewAzureProvider(AzureConfig{
			APIKey:     cfg.APIKey,
			APIBase:    cfg.APIBase,
			APIVersion: cfg.APIVersion,
			Deployment: cfg.Deployment,
			HTTPClient: httpClient,
			Retry:      cfg.Retry,
		}), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.APIBase,
			Model:      cfg.Model,
			HTTPClient: httpClient,
			Retry:      cfg.Retry,
		}), nil
	case ProviderLocal:
		return NewLocalProvider(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}
