package openaicompat

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

const chatCompletionsPath = "/chat/completions"

// Adapter implements genai.ContentGenerator for the OpenAI-compatible
// provider family. Configuration is fixed at construction and never mutated
// afterwards, so one adapter is safe to share across concurrent calls.
type Adapter struct {
	preset  Preset
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ genai.ContentGenerator = (*Adapter)(nil)

// Config carries the caller-resolved configuration for one adapter. The
// API key is mandatory; BaseURL overrides the preset's public endpoint and
// HTTPClient overrides the default client (proxy or timeout tuning happens
// there, scoped to this adapter instance).
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// New constructs an adapter for the given provider preset. It fails fast
// with genai.ErrMissingAPIKey when the key is absent; no network call is
// ever attempted with an empty key.
func New(preset Preset, config Config) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", preset.Name, genai.ErrMissingAPIKey)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = preset.BaseURL
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &Adapter{
		preset:  preset,
		apiKey:  config.APIKey,
		baseURL: baseURL,
		client:  client,
	}, nil
}

// Preset returns the provider preset this adapter was built with.
func (a *Adapter) Preset() Preset { return a.preset }

// resolveAlias remaps a short public alias to the provider's canonical model
// identifier. Unrecognized names pass through unchanged.
func (a *Adapter) resolveAlias(model string) string {
	if canonical, ok := a.preset.ModelAliases[model]; ok {
		return canonical
	}
	return model
}

// GenerateContent implements the non-streaming unified call: translate,
// single HTTP POST, parse, translate back.
func (a *Adapter) GenerateContent(ctx context.Context, request *genai.GenerateRequest) (*genai.GenerateResponse, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	model := a.resolveAlias(request.Model)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, a.preset.Name),
			observability.String(observability.AttrLLMEndpoint, a.baseURL),
			observability.String(observability.AttrLLMModel, model),
		)
		defer span.AddEvent(observability.EventLLMRequestEnd)
	}

	if observer != nil {
		observer.Trace(ctx, "preparing chat completions request",
			observability.String(observability.AttrLLMProvider, a.preset.Name),
			observability.String(observability.AttrLLMModel, model),
			observability.Int(observability.AttrRequestTurnsCount, len(request.Turns)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
		)
	}

	chatRequest := toChatRequest(request, model, a.preset.Capabilities)

	httpResponse, chatResponse, err := httpx.DoPostSync[chatCompletionResponse](ctx, a.client, a.baseURL+chatCompletionsPath, a.apiKey, chatRequest)
	if err != nil {
		return nil, a.tagProviderError(err)
	}

	if chatResponse == nil || len(chatResponse.Choices) == 0 {
		// An unrecognized payload shape is rejected, not guessed at.
		return nil, &genai.ProviderError{
			Provider:   a.preset.Name,
			StatusCode: httpResponse.StatusCode,
			Body:       "response contained no choices",
		}
	}

	choice := chatResponse.Choices[0]

	response := &genai.GenerateResponse{
		ID:           chatResponse.ID,
		ModelVersion: chatResponse.Model,
		Created:      chatResponse.Created,
		Parts:        partsFromMessage(choice.Message),
		FinishReason: finishReasons.Map(choice.FinishReason),
	}
	if response.ID == "" {
		response.ID = genai.NewID("gen")
	}
	if response.ModelVersion == "" {
		response.ModelVersion = model
	}
	if response.Created == 0 {
		response.Created = time.Now().Unix()
	}

	if chatResponse.Usage != nil {
		response.Usage = &genai.Usage{
			PromptTokens:     chatResponse.Usage.PromptTokens,
			CompletionTokens: chatResponse.Usage.CompletionTokens,
			TotalTokens:      chatResponse.Usage.TotalTokens,
		}
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

// CountTokens approximates the request's prompt size with the character
// heuristic; this family exposes no counting endpoint, so the result is an
// estimate, not an authoritative count.
func (a *Adapter) CountTokens(_ context.Context, request *genai.GenerateRequest) (int, error) {
	return genai.EstimateRequestTokens(request), nil
}

// EmbedContent always fails: no provider in this family exposes a
// compatible embeddings endpoint. The failure is deterministic and callers
// should treat it as an expected capability gap.
func (a *Adapter) EmbedContent(_ context.Context, _ *genai.EmbedRequest) (*genai.EmbedResponse, error) {
	return nil, &genai.UnsupportedError{Provider: a.preset.Name, Operation: "embedContent"}
}

// tagProviderError stamps the provider name onto provider errors bubbling
// out of the HTTP layer, leaving everything else untouched.
func (a *Adapter) tagProviderError(err error) error {
	var providerErr *genai.ProviderError
	if errors.As(err, &providerErr) && providerErr.Provider == "" {
		providerErr.Provider = a.preset.Name
	}
	return err
}
