package genai

import "context"

// ContentGenerator is the uniform contract every provider adapter implements.
// Concurrent calls on one generator are independent; the only shared state is
// the adapter's read-only configuration (API key, base URL, capabilities).
type ContentGenerator interface {
	// GenerateContent sends a request and returns the completed response.
	// Non-success HTTP statuses surface as a *ProviderError.
	GenerateContent(ctx context.Context, request *GenerateRequest) (*GenerateResponse, error)

	// GenerateContentStream sends a request with streaming enabled and
	// returns a Stream of cumulative partial responses. The final response
	// is always the last item yielded. The caller must consume the stream
	// (see Stream documentation) or the underlying HTTP body leaks.
	GenerateContentStream(ctx context.Context, request *GenerateRequest) (*Stream, error)

	// CountTokens returns the token count for the request's prompt. Adapters
	// without a native counting endpoint fall back to [EstimateTokens] and
	// the result is approximate.
	CountTokens(ctx context.Context, request *GenerateRequest) (int, error)

	// EmbedContent computes embeddings for the request's texts. Providers
	// without an embeddings endpoint fail fast with a *UnsupportedError;
	// callers should treat that as an expected capability gap.
	EmbedContent(ctx context.Context, request *EmbedRequest) (*EmbedResponse, error)
}

// EmbedRequest asks for embedding vectors over a batch of texts.
type EmbedRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

// EmbedResponse carries one embedding vector per input text, in input order.
type EmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}
