package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider configuration
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"

	// Default models
	DefaultOpenAIModel = "text-embedding-3-small"

	// Batch limits
	DefaultBatchSize = 16
	MaxBatchSize     = 2048

	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is kept in messages
	maxErrorBody = 4096
)

// AzureConfig holds the credentials of an Azure OpenAI style deployment
type AzureConfig struct {
	APIKey     string
	APIBase    string
	APIVersion string
	Deployment string
	HTTPClient *http.Client
	Retry      RetryPolicy
}

// AzureProvider implements Embedder against
// {apiBase}/openai/deployments/{deployment}/embeddings
type AzureProvider struct {
	config     AzureConfig
	httpClient *http.Client
}

// NewAzureProvider creates the provider. Credentials are checked on each
// call, so a provider built from an incomplete environment still
// constructs and reports ErrMissingCredentials when used.
func NewAzureProvider(config AzureConfig) *AzureProvider {
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &AzureProvider{config: config, httpClient: client}
}

func (a *AzureProvider) checkCredentials() error {
	var missing []string
	if a.config.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if a.config.APIBase == "" {
		missing = append(missing, "api_base")
	}
	if a.config.APIVersion == "" {
		missing = append(missing, "api_version")
	}
	if a.config.Deployment == "" {
		missing = append(missing, "embedding_deployment_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Endpoint returns the embeddings URL for the configured deployment
func (a *AzureProvider) Endpoint() string {
	return fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		strings.TrimRight(a.config.APIBase, "/"),
		url.PathEscape(a.config.Deployment),
		url.QueryEscape(a.config.APIVersion))
}

// Embed sends texts as one request and returns their vectors in order
func (a *AzureProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrInvalidInput, MaxBatchSize)
	}
	if err := a.checkCredentials(); err != nil {
		return nil, err
	}
	return Retry(ctx, a.config.Retry, func(ctx context.Context) ([][]float32, error) {
		return a.callAPI(ctx, texts, len(texts))
	})
}

// EmbedOne sends a single string input
func (a *AzureProvider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if err := ValidateTexts([]string{text}); err != nil {
		return nil, err
	}
	if err := a.checkCredentials(); err != nil {
		return nil, err
	}
	vectors, err := Retry(ctx, a.config.Retry, func(ctx context.Context) ([][]float32, error) {
		return a.callAPI(ctx, text, 1)
	})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (a *AzureProvider) callAPI(ctx context.Context, input any, want int) ([][]float32, error) {
	body, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", a.config.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	vectors := make([][]float32, len(apiResp.Data))
	for i, d := range apiResp.Data {
		vectors[i] = d.Embedding
	}
	if err := checkShape(vectors, want); err != nil {
		return nil, err
	}
	return vectors, nil
}

// errorMessage prefers {"error":{"message":...}} and falls back to the raw body
func errorMessage(raw []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}

func (a *AzureProvider) Provider() string {
	return ProviderAzure
}

func (a *AzureProvider) Model() string {
	return a.config.Deployment
}

func (a *AzureProvider) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}
