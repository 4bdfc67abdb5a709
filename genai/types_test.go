package genai

import (
	"strings"
	"testing"
)

func TestResponseTextJoinsTextParts(t *testing.T) {
	response := &GenerateResponse{Parts: []Part{
		TextPart("first"),
		ToolCallPart("lookup", []byte(`{}`)),
		TextPart("second"),
	}}

	if got := response.Text(); got != "first\nsecond" {
		t.Errorf("expected 'first\\nsecond', got %q", got)
	}
}

func TestResponseFunctionCallsInOrder(t *testing.T) {
	response := &GenerateResponse{Parts: []Part{
		ToolCallPart("alpha", []byte(`{}`)),
		TextPart("noise"),
		ToolCallPart("beta", []byte(`{}`)),
	}}

	calls := response.FunctionCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Name != "alpha" || calls[1].Name != "beta" {
		t.Errorf("expected calls in order [alpha beta], got [%s %s]", calls[0].Name, calls[1].Name)
	}
}

func TestPartIsText(t *testing.T) {
	if !TextPart("x").IsText() {
		t.Error("expected text part to be text")
	}
	if !(Part{}).IsText() {
		t.Error("expected the zero part to count as (empty) text")
	}
	if BlobPart("image/png", "data").IsText() {
		t.Error("expected blob part not to be text")
	}
	if ToolResultPart("f", []byte(`{}`)).IsText() {
		t.Error("expected tool result part not to be text")
	}
}

func TestNewIDShape(t *testing.T) {
	id := NewID("call")
	if !strings.HasPrefix(id, "call_") {
		t.Errorf("expected 'call_' prefix, got %q", id)
	}
	if len(id) != len("call_")+16 {
		t.Errorf("expected 16-character suffix, got %q", id)
	}
	if id == NewID("call") {
		t.Error("expected consecutive IDs to differ")
	}
}
