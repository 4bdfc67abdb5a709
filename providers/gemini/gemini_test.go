package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ottaviano/genflow/genai"
)

func userRequest(model, text string) *genai.GenerateRequest {
	return &genai.GenerateRequest{
		Model: model,
		Turns: []genai.Turn{
			{Role: genai.RoleUser, Parts: []genai.Part{genai.TextPart(text)}},
		},
	}
}

func testAdapter(t *testing.T, handler http.HandlerFunc) (*Adapter, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	adapter, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return adapter, server.Close
}

func TestNewWithoutAPIKey(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, genai.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGenerateContentValidResponse(t *testing.T) {
	adapter, closeServer := testAdapter(t, func(writer http.ResponseWriter, request *http.Request) {
		if key := request.Header.Get("x-goog-api-key"); key != "test-key" {
			t.Errorf("expected x-goog-api-key header, got %q", key)
		}
		if auth := request.Header.Get("Authorization"); auth != "" {
			t.Errorf("expected no Authorization header, got %q", auth)
		}
		if request.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %q", request.URL.Path)
		}

		var body generateContentRequest
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if len(body.Contents) != 1 || body.Contents[0].Role != "user" {
			t.Errorf("unexpected contents: %+v", body.Contents)
		}

		_, _ = writer.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "Paris is the capital of France."}], "role": "model"},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 7, "candidatesTokenCount": 8, "totalTokenCount": 15},
			"modelVersion": "gemini-2.5-flash-001"
		}`))
	})
	defer closeServer()

	response, err := adapter.GenerateContent(context.Background(), userRequest("gemini-2.5-flash", "What is the capital of France?"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := response.Text(); got != "Paris is the capital of France." {
		t.Errorf("unexpected text %q", got)
	}
	if response.FinishReason != genai.FinishStop {
		t.Errorf("expected finish stop, got %q", response.FinishReason)
	}
	if response.ModelVersion != "gemini-2.5-flash-001" {
		t.Errorf("expected model version from response, got %q", response.ModelVersion)
	}
	if response.Usage == nil || response.Usage.TotalTokens != 15 {
		t.Errorf("expected provider usage, got %+v", response.Usage)
	}
	if response.ID == "" {
		t.Error("expected a synthesized response ID")
	}
}

func TestGenerateContentFunctionCall(t *testing.T) {
	adapter, closeServer := testAdapter(t, func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"functionCall": {"name": "get_weather", "args": {"city": "London"}}}], "role": "model"},
				"finishReason": "STOP"
			}]
		}`))
	})
	defer closeServer()

	response, err := adapter.GenerateContent(context.Background(), userRequest("gemini-2.5-flash", "weather?"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := response.FunctionCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(calls))
	}
	if calls[0].Name != "get_weather" {
		t.Errorf("unexpected call name %q", calls[0].Name)
	}
	if calls[0].ID == "" {
		t.Error("expected a synthesized call ID")
	}
	if string(calls[0].Args) != `{"city": "London"}` {
		t.Errorf("unexpected args %s", calls[0].Args)
	}
}

func TestGenerateContentBlockedPrompt(t *testing.T) {
	adapter, closeServer := testAdapter(t, func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"candidates": [], "promptFeedback": {"blockReason": "SAFETY"}}`))
	})
	defer closeServer()

	_, err := adapter.GenerateContent(context.Background(), userRequest("gemini-2.5-flash", "something blocked"))

	var providerErr *genai.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected *genai.ProviderError, got %v", err)
	}
	if providerErr.Provider != "gemini" {
		t.Errorf("expected provider gemini, got %q", providerErr.Provider)
	}
	if providerErr.Body != "prompt blocked: SAFETY" {
		t.Errorf("unexpected error body %q", providerErr.Body)
	}
}

func TestGenerateContentProviderError(t *testing.T) {
	adapter, closeServer := testAdapter(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusBadRequest)
		_, _ = writer.Write([]byte(`{"error": {"message": "invalid argument"}}`))
	})
	defer closeServer()

	_, err := adapter.GenerateContent(context.Background(), userRequest("gemini-2.5-flash", "hi"))

	var providerErr *genai.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected *genai.ProviderError, got %v", err)
	}
	if providerErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", providerErr.StatusCode)
	}
}

func TestCountTokensEndpoint(t *testing.T) {
	adapter, closeServer := testAdapter(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/models/gemini-2.5-flash:countTokens" {
			t.Errorf("unexpected path %q", request.URL.Path)
		}

		var body countTokensRequest
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		// System instruction travels as a leading user content.
		if len(body.Contents) != 2 {
			t.Errorf("expected 2 contents (system + user), got %d", len(body.Contents))
		}

		_, _ = writer.Write([]byte(`{"totalTokens": 42}`))
	})
	defer closeServer()

	request := userRequest("gemini-2.5-flash", "count me")
	request.SystemInstruction = "be brief"

	count, err := adapter.CountTokens(context.Background(), request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected the provider-reported count 42, got %d", count)
	}
}

func TestEmbedContentEndpoint(t *testing.T) {
	adapter, closeServer := testAdapter(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/models/text-embedding-004:batchEmbedContents" {
			t.Errorf("unexpected path %q", request.URL.Path)
		}

		var body batchEmbedContentsRequest
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if len(body.Requests) != 2 {
			t.Fatalf("expected 2 embed requests, got %d", len(body.Requests))
		}
		if body.Requests[0].Model != "models/text-embedding-004" {
			t.Errorf("unexpected embed model %q", body.Requests[0].Model)
		}

		_, _ = writer.Write([]byte(`{"embeddings": [{"values": [0.1, 0.2]}, {"values": [0.3, 0.4]}]}`))
	})
	defer closeServer()

	response, err := adapter.EmbedContent(context.Background(), &genai.EmbedRequest{
		Model: "text-embedding-004",
		Texts: []string{"first", "second"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(response.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(response.Embeddings))
	}
	if response.Embeddings[1][0] != 0.3 {
		t.Errorf("unexpected embedding values %v", response.Embeddings)
	}
}
