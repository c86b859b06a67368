package embedder

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds settings for the OpenAI embeddings API
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // Optional, for compatible gateways
	Model      string
	HTTPClient *http.Client
	Retry      RetryPolicy
}

// OpenAIProvider implements Embedder with the go-openai client
type OpenAIProvider struct {
	client     *openai.Client
	apiKey     string
	model      string
	retry      RetryPolicy
	httpClient *http.Client
}

// NewOpenAIProvider creates a new OpenAI embedder
func NewOpenAIProvider(config OpenAIConfig) *OpenAIProvider {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	model := config.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = httpClient

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		apiKey:     config.APIKey,
		model:      model,
		retry:      config.Retry,
		httpClient: httpClient,
	}
}

func (o *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}
	if o.apiKey == "" {
		return nil, fmt.Errorf("%w: api_key", ErrMissingCredentials)
	}
	return Retry(ctx, o.retry, func(ctx context.Context) ([][]float32, error) {
		return o.callAPI(ctx, texts)
	})
}

func (o *OpenAIProvider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := o.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (o *OpenAIProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		idx := d.Index
		if idx < 0 || idx >= len(vectors) {
			idx = i
		}
		vectors[idx] = d.Embedding
	}
	if err := checkShape(vectors, len(texts)); err != nil {
		return nil, err
	}
	return vectors, nil
}

// classifyOpenAIError maps client errors onto ProviderError so the retry
// policy sees status codes
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := reqErr.HTTPStatus
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &ProviderError{StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}
	return fmt.Errorf("api call: %w", err)
}

func (o *OpenAIProvider) Provider() string {
	return ProviderOpenAI
}

func (o *OpenAIProvider) Model() string {
	return o.model
}

func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}
