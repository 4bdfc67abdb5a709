package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ottaviano/genflow/genai"
	"github.com/ottaviano/genflow/internal/httpx"
	"github.com/ottaviano/genflow/observability"
)

const (
	providerName   = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// Adapter implements genai.ContentGenerator for the native multimodal
// dialect. Configuration is fixed at construction and never mutated, so one
// adapter is safe to share across concurrent calls.
type Adapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ genai.ContentGenerator = (*Adapter)(nil)

// Config carries the caller-resolved configuration for one adapter. The
// API key is mandatory; BaseURL overrides the public endpoint (useful for
// tests and proxies) and HTTPClient overrides the default client.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// New constructs an adapter. It fails fast with genai.ErrMissingAPIKey when
// the key is absent; no network call is ever attempted with an empty key.
func New(config Config) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", providerName, genai.ErrMissingAPIKey)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &Adapter{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		client:  client,
	}, nil
}

// endpoint builds the URL for one model operation, e.g.
// {base}/models/gemini-2.5-pro:generateContent.
func (a *Adapter) endpoint(model, operation string) string {
	return fmt.Sprintf("%s/models/%s:%s", a.baseURL, model, operation)
}

// authHeader returns the API key header. This dialect does not use Bearer
// auth, so the httpx helpers are called with an empty Bearer key and the
// key travels in x-goog-api-key instead.
func (a *Adapter) authHeader() httpx.HeaderOption {
	return httpx.HeaderOption{Key: "x-goog-api-key", Value: a.apiKey}
}

// GenerateContent implements the non-streaming unified call: translate,
// single HTTP POST, parse, translate back.
func (a *Adapter) GenerateContent(ctx context.Context, request *genai.GenerateRequest) (*genai.GenerateResponse, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, providerName),
			observability.String(observability.AttrLLMEndpoint, a.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
		)
		defer span.AddEvent(observability.EventLLMRequestEnd)
	}

	if observer != nil {
		observer.Trace(ctx, "preparing generate content request",
			observability.String(observability.AttrLLMProvider, providerName),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Int(observability.AttrRequestTurnsCount, len(request.Turns)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
		)
	}

	wireRequest := toGenerateRequest(request)

	httpResponse, wireResponse, err := httpx.DoPostSync[generateContentResponse](ctx, a.client, a.endpoint(request.Model, "generateContent"), "", wireRequest, a.authHeader())
	if err != nil {
		return nil, tagProviderError(err)
	}

	if wireResponse == nil || len(wireResponse.Candidates) == 0 {
		body := "response contained no candidates"
		if wireResponse != nil && wireResponse.PromptFeedback != nil && wireResponse.PromptFeedback.BlockReason != "" {
			body = fmt.Sprintf("prompt blocked: %s", wireResponse.PromptFeedback.BlockReason)
		}
		return nil, &genai.ProviderError{
			Provider:   providerName,
			StatusCode: httpResponse.StatusCode,
			Body:       body,
		}
	}

	wireCandidate := wireResponse.Candidates[0]

	response := &genai.GenerateResponse{
		ID:           genai.NewID("gen"),
		ModelVersion: wireResponse.ModelVersion,
		Created:      time.Now().Unix(),
		Parts:        partsFromCandidate(wireCandidate),
		FinishReason: finishReasons.Map(wireCandidate.FinishReason),
	}
	if response.ModelVersion == "" {
		response.ModelVersion = request.Model
	}

	if usage := usageFromMetadata(wireResponse.UsageMetadata); usage != nil {
		response.Usage = usage
	} else {
		completion := genai.EstimateTokens(response.Text())
		response.Usage = &genai.Usage{CompletionTokens: completion, TotalTokens: completion}
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, response.ID),
			observability.String(observability.AttrLLMFinishReason, string(response.FinishReason)),
			observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
		)
	}

	return response, nil
}

// CountTokens asks the provider's countTokens endpoint for an authoritative
// count; unlike the OpenAI-compatible family, no heuristic is involved. The
// system instruction travels as a leading user content because the endpoint
// accepts contents only.
func (a *Adapter) CountTokens(ctx context.Context, request *genai.GenerateRequest) (int, error) {
	contents := contentsFromTurns(request.Turns)
	if request.SystemInstruction != "" {
		leading := content{Role: wireRoleUser, Parts: []part{{Text: request.SystemInstruction}}}
		contents = append([]content{leading}, contents...)
	}

	wireRequest := countTokensRequest{Contents: contents}

	_, wireResponse, err := httpx.DoPostSync[countTokensResponse](ctx, a.client, a.endpoint(request.Model, "countTokens"), "", wireRequest, a.authHeader())
	if err != nil {
		return 0, tagProviderError(err)
	}

	return wireResponse.TotalTokens, nil
}

// EmbedContent embeds each input text through batchEmbedContents. The
// response preserves input order, one vector per text.
func (a *Adapter) EmbedContent(ctx context.Context, request *genai.EmbedRequest) (*genai.EmbedResponse, error) {
	wireRequest := batchEmbedContentsRequest{
		Requests: make([]embedContentRequest, 0, len(request.Texts)),
	}
	for _, text := range request.Texts {
		wireRequest.Requests = append(wireRequest.Requests, embedContentRequest{
			Model:   "models/" + request.Model,
			Content: content{Parts: []part{{Text: text}}},
		})
	}

	_, wireResponse, err := httpx.DoPostSync[batchEmbedContentsResponse](ctx, a.client, a.endpoint(request.Model, "batchEmbedContents"), "", wireRequest, a.authHeader())
	if err != nil {
		return nil, tagProviderError(err)
	}

	embeddings := make([][]float64, 0, len(wireResponse.Embeddings))
	for _, embedding := range wireResponse.Embeddings {
		embeddings = append(embeddings, embedding.Values)
	}

	return &genai.EmbedResponse{Embeddings: embeddings}, nil
}

// tagProviderError stamps the provider name onto provider errors bubbling
// out of the HTTP layer, leaving everything else untouched.
func tagProviderError(err error) error {
	var providerErr *genai.ProviderError
	if errors.As(err, &providerErr) && providerErr.Provider == "" {
		providerErr.Provider = providerName
	}
	return err
}
