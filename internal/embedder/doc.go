// Package embedder generates vector embeddings for documentation chunks and
// search queries using an external HTTP provider.
//
// # Basic Usage
//
//	emb, err := embedder.New(embedder.Config{
//	    Provider:   embedder.ProviderAzure,
//	    APIKey:     key,
//	    APIBase:    "https://example.openai.azure.com",
//	    APIVersion: "2024-02-01",
//	    Deployment: "text-embedding-3-large",
//	    Retry:      embedder.DefaultRetryPolicy(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	vectors, err := emb.Embed(ctx, []string{"first chunk", "second chunk"})
//
// # Providers
//
//   - azure: POST {apiBase}/openai/deployments/{deployment}/embeddings with
//     an api-key header. This is the default.
//   - openai: the OpenAI embeddings API through go-openai, optionally against
//     a compatible base URL.
//   - local: deterministic feature hashing, for offline use and tests.
//
// Every provider makes one call per batch and returns exactly one vector per
// input in input order. A response of any other shape is ErrShapeMismatch
// and is never retried.
//
// # Error Handling
//
// Missing credentials surface as ErrMissingCredentials when a call is made,
// not at construction. Non-2xx answers are *ProviderError values; 429 and
// 5xx are transient and retried under the configured RetryPolicy, anything
// else fails at once:
//
//	_, err := emb.Embed(ctx, texts)
//	var pe *embedder.ProviderError
//	if errors.As(err, &pe) && pe.StatusCode == 401 {
//	    // rotate the key
//	}
//
// # Caching
//
// Providers are stateless. Query paths that repeat the same text wrap a
// provider in a CachingEmbedder, an LRU keyed by the SHA-256 of the text.
package embedder
