package genai

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by adapter constructors when the resolved
// configuration carries no API key. It is fatal and never retried.
var ErrMissingAPIKey = errors.New("missing API key")

// ProviderError reports a non-success HTTP status from a provider, carrying
// the status code and the raw response body. It is propagated to the caller
// unmodified; retry and backoff policy belong to the orchestration layer
// above this one.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: provider returned status %d: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// UnsupportedError reports a capability the provider does not expose, such
// as embeddings on an OpenAI-compatible chat endpoint. The failure is
// deterministic and no network call is attempted.
type UnsupportedError struct {
	Provider  string
	Operation string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: operation %q is not supported", e.Provider, e.Operation)
}
