package openaicompat

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ottaviano/genflow/genai"
	"github.com/ottaviano/genflow/internal/httpx"
	"github.com/ottaviano/genflow/internal/jsonschema"
)

var allCaps = Capabilities{SupportsTools: true, SupportsVision: true}

func TestFinishReasonMapping(t *testing.T) {
	tests := []struct {
		wire     string
		expected genai.FinishReason
	}{
		{"stop", genai.FinishStop},
		{"tool_calls", genai.FinishStop},
		{"function_call", genai.FinishStop},
		{"length", genai.FinishMaxTokens},
		{"content_filter", genai.FinishSafety},
		{"some_future_reason", genai.FinishOther},
		{"", genai.FinishOther},
	}

	for _, test := range tests {
		if got := finishReasons.Map(test.wire); got != test.expected {
			t.Errorf("finishReasons.Map(%q) = %q, expected %q", test.wire, got, test.expected)
		}
	}
}

func TestToChatRequestBasics(t *testing.T) {
	request := &genai.GenerateRequest{
		Model:             "m",
		SystemInstruction: "You are terse.",
		Temperature:       httpx.Ptr(0.2),
		TopP:              httpx.Ptr(0.9),
		MaxOutputTokens:   256,
		Turns: []genai.Turn{
			{Role: genai.RoleUser, Parts: []genai.Part{genai.TextPart("hi")}},
		},
	}

	chatRequest := toChatRequest(request, "m-v2", allCaps)

	if chatRequest.Model != "m-v2" {
		t.Errorf("expected effective model 'm-v2', got %q", chatRequest.Model)
	}
	if chatRequest.Temperature == nil || *chatRequest.Temperature != 0.2 {
		t.Errorf("temperature not passed through: %v", chatRequest.Temperature)
	}
	if chatRequest.TopP == nil || *chatRequest.TopP != 0.9 {
		t.Errorf("top_p not passed through: %v", chatRequest.TopP)
	}
	if chatRequest.MaxTokens == nil || *chatRequest.MaxTokens != 256 {
		t.Errorf("max_tokens not passed through: %v", chatRequest.MaxTokens)
	}

	if len(chatRequest.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(chatRequest.Messages))
	}
	if chatRequest.Messages[0].Role != "system" || chatRequest.Messages[0].Content != "You are terse." {
		t.Errorf("unexpected leading system message: %+v", chatRequest.Messages[0])
	}
	if chatRequest.Messages[1].Role != "user" || chatRequest.Messages[1].Content != "hi" {
		t.Errorf("unexpected user message: %+v", chatRequest.Messages[1])
	}
}

func TestToChatRequestToolDeclarations(t *testing.T) {
	request := &genai.GenerateRequest{
		Model: "m",
		Turns: []genai.Turn{{Role: genai.RoleUser, Parts: []genai.Part{genai.TextPart("weather?")}}},
		Tools: []genai.ToolDeclaration{{
			Name:        "get_weather",
			Description: "Current weather for a city",
			Parameters:  jsonschema.Object(map[string]*jsonschema.Schema{"city": jsonschema.String("City name")}, "city"),
		}},
		ToolChoice: genai.ToolChoice{Mode: genai.ToolChoiceForced, ForcedTool: "get_weather"},
	}

	chatRequest := toChatRequest(request, "m", allCaps)
	if len(chatRequest.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(chatRequest.Tools))
	}
	if chatRequest.Tools[0].Function.Name != "get_weather" {
		t.Errorf("unexpected tool name %q", chatRequest.Tools[0].Function.Name)
	}

	forced, ok := chatRequest.ToolChoice.(map[string]any)
	if !ok {
		t.Fatalf("expected forced tool choice object, got %T", chatRequest.ToolChoice)
	}
	if forced["type"] != "function" {
		t.Errorf("unexpected forced choice %v", forced)
	}
}

func TestToChatRequestOmitsToolsWithoutSupport(t *testing.T) {
	request := &genai.GenerateRequest{
		Model: "m",
		Turns: []genai.Turn{{Role: genai.RoleUser, Parts: []genai.Part{genai.TextPart("hi")}}},
		Tools: []genai.ToolDeclaration{{Name: "lookup"}},
	}

	chatRequest := toChatRequest(request, "m", Capabilities{})
	if len(chatRequest.Tools) != 0 || chatRequest.ToolChoice != nil {
		t.Errorf("expected tools omitted without support, got %+v", chatRequest)
	}
}

func TestMessagesFromTurnsToolRoundTrip(t *testing.T) {
	args := json.RawMessage(`{"city":"London"}`)
	turns := []genai.Turn{
		{Role: genai.RoleUser, Parts: []genai.Part{genai.TextPart("weather in London?")}},
		{Role: genai.RoleModel, Parts: []genai.Part{genai.ToolCallPart("get_weather", args)}},
		{Role: genai.RoleUser, Parts: []genai.Part{genai.ToolResultPart("get_weather", json.RawMessage(`{"temp":12}`))}},
	}

	messages := messagesFromTurns(turns, "", allCaps)
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}

	assistant := messages[1]
	if assistant.Role != "assistant" || len(assistant.ToolCalls) != 1 {
		t.Fatalf("unexpected assistant message: %+v", assistant)
	}
	callID := assistant.ToolCalls[0].ID
	if callID == "" {
		t.Fatal("expected a synthesized tool call ID")
	}

	toolMsg := messages[2]
	if toolMsg.Role != "tool" {
		t.Fatalf("expected role tool, got %q", toolMsg.Role)
	}
	// The result correlates back to the call synthesized two messages up.
	if toolMsg.ToolCallID != callID {
		t.Errorf("expected tool_call_id %q, got %q", callID, toolMsg.ToolCallID)
	}
	if toolMsg.Name != "get_weather" {
		t.Errorf("unexpected tool name %q", toolMsg.Name)
	}
}

func TestMessagesFromTurnVisionDegradation(t *testing.T) {
	turn := genai.Turn{Role: genai.RoleUser, Parts: []genai.Part{
		genai.TextPart("what is in this image?"),
		genai.BlobPart("image/png", "aWdub3JlZA=="),
	}}

	withVision := messagesFromTurn(turn, allCaps, &callIDLedger{})
	if len(withVision) != 1 {
		t.Fatalf("expected 1 message, got %d", len(withVision))
	}
	parts, ok := withVision[0].Content.([]contentPart)
	if !ok {
		t.Fatalf("expected multimodal content parts, got %T", withVision[0].Content)
	}
	if len(parts) != 2 || parts[1].Type != "image_url" {
		t.Fatalf("unexpected parts: %+v", parts)
	}
	if !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,") {
		t.Errorf("unexpected data URL %q", parts[1].ImageURL.URL)
	}

	withoutVision := messagesFromTurn(turn, Capabilities{}, &callIDLedger{})
	content, ok := withoutVision[0].Content.(string)
	if !ok {
		t.Fatalf("expected plain string content, got %T", withoutVision[0].Content)
	}
	if !strings.Contains(content, "[inline image/png content omitted]") {
		t.Errorf("expected degradation marker, got %q", content)
	}
}

func TestMessagesFromTurnTextualToolCallDegradation(t *testing.T) {
	turn := genai.Turn{Role: genai.RoleModel, Parts: []genai.Part{
		genai.ToolCallPart("search", json.RawMessage(`{"q":"go"}`)),
	}}

	messages := messagesFromTurn(turn, Capabilities{}, &callIDLedger{})
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Content != `search({"q":"go"})` {
		t.Errorf("unexpected textual rendition %v", messages[0].Content)
	}
	if len(messages[0].ToolCalls) != 0 {
		t.Error("expected no native tool calls without support")
	}
}

func TestMessagesFromTurnsEmptyTurnHandling(t *testing.T) {
	turns := []genai.Turn{
		{Role: genai.RoleUser, Parts: nil},
		{Role: genai.RoleUser, Parts: []genai.Part{genai.TextPart("hi")}},
	}

	dropped := messagesFromTurns(turns, "", allCaps)
	if len(dropped) != 1 {
		t.Fatalf("expected the empty turn dropped, got %d messages", len(dropped))
	}

	alternating := messagesFromTurns(turns, "", Capabilities{RequiresAlternation: true})
	if len(alternating) != 2 {
		t.Fatalf("expected the empty turn preserved under alternation, got %d messages", len(alternating))
	}
	if alternating[0].Content != "" {
		t.Errorf("expected explicit empty content, got %v", alternating[0].Content)
	}
}

func TestPartsFromMessageNormalizesArgs(t *testing.T) {
	message := chatResponseMessage{Role: "assistant"}
	call := chatToolCall{ID: "call_1", Type: "function"}
	call.Function.Name = "search"
	call.Function.Arguments = `{'q': 'go'}` // single quotes, repairable
	message.ToolCalls = []chatToolCall{call}

	parts := partsFromMessage(message)
	if len(parts) != 1 || parts[0].ToolCall == nil {
		t.Fatalf("unexpected parts: %+v", parts)
	}
	if !json.Valid(parts[0].ToolCall.Args) {
		t.Errorf("expected repaired args, got %s", parts[0].ToolCall.Args)
	}
}

func TestNormalizeWireArgs(t *testing.T) {
	if got := string(normalizeWireArgs("")); got != "{}" {
		t.Errorf("expected empty args to become {}, got %q", got)
	}
	if got := string(normalizeWireArgs(`{"a":1}`)); got != `{"a":1}` {
		t.Errorf("expected valid args untouched, got %q", got)
	}
	if got := normalizeWireArgs(`{"a":`); !json.Valid(got) {
		t.Errorf("expected repaired args to be valid JSON, got %s", got)
	}
}
