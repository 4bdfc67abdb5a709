package genai

import (
	"encoding/json"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/ottaviano/genflow/internal/jsonschema"
)

/*
	##### REQUEST MODEL #####
*/

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser   Role = "user"   // End-user input
	RoleModel  Role = "model"  // Model output (assistant)
	RoleSystem Role = "system" // System instructions appearing mid-conversation
)

// Turn is one message in a conversation: a role plus an ordered sequence of
// content parts. Roles are not required to alternate; adapters tolerate
// consecutive same-role turns by forwarding or merging them per provider rules.
type Turn struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a tagged variant of conversation content. Exactly one of the
// variant fields is populated: Text for plain text, Blob for inline binary
// data, ToolCall for a model-requested function invocation, ToolResult for
// the outcome of executing one. Use the constructor helpers to build parts.
type Part struct {
	Text       string          `json:"text,omitempty"`
	Blob       *Blob           `json:"blob,omitempty"`
	ToolCall   *FunctionCall   `json:"tool_call,omitempty"`
	ToolResult *FunctionResult `json:"tool_result,omitempty"`
}

// TextPart builds a Part carrying plain text.
func TextPart(text string) Part { return Part{Text: text} }

// BlobPart builds a Part carrying inline base64-encoded binary data.
func BlobPart(mimeType, data string) Part {
	return Part{Blob: &Blob{MIMEType: mimeType, Data: data}}
}

// ToolCallPart builds a Part carrying a function invocation request.
func ToolCallPart(name string, args json.RawMessage) Part {
	return Part{ToolCall: &FunctionCall{Name: name, Args: args}}
}

// ToolResultPart builds a Part carrying a function execution result.
func ToolResultPart(name string, result json.RawMessage) Part {
	return Part{ToolResult: &FunctionResult{Name: name, Result: result}}
}

// IsText reports whether the part is a plain text part. An empty Part counts
// as text so that an explicitly empty text part can still be represented.
func (p Part) IsText() bool {
	return p.Blob == nil && p.ToolCall == nil && p.ToolResult == nil
}

// Blob is inline binary content, base64-encoded, tagged with its MIME type.
type Blob struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// FunctionCall is a model-requested tool invocation. ID is optional in
// caller-built history; adapters synthesize one when the wire format
// requires call/result correlation.
type FunctionCall struct {
	ID   string          `json:"id,omitempty"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// FunctionResult is the structured outcome of executing a tool call.
// ID, when set, links the result back to the originating call.
type FunctionResult struct {
	ID     string          `json:"id,omitempty"`
	Name   string          `json:"name"`
	Result json.RawMessage `json:"result,omitempty"`
}

// ToolDeclaration describes a tool the model may invoke.
type ToolDeclaration struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// ToolChoiceMode controls whether and how the model is steered toward tools.
type ToolChoiceMode string

const (
	ToolChoiceAuto   ToolChoiceMode = "auto"   // Model decides
	ToolChoiceNone   ToolChoiceMode = "none"   // Tool calls suppressed
	ToolChoiceForced ToolChoiceMode = "forced" // A specific tool must be called
)

// ToolChoice pairs a mode with the tool name required by ToolChoiceForced.
type ToolChoice struct {
	Mode       ToolChoiceMode `json:"mode,omitempty"`
	ForcedTool string         `json:"forced_tool,omitempty"`
}

// GenerateRequest is the unified, provider-agnostic generation request.
// The request is owned by the caller for the duration of one call; adapters
// must not mutate it.
type GenerateRequest struct {
	Model             string            `json:"model"`
	Turns             []Turn            `json:"turns"`
	SystemInstruction string            `json:"system_instruction,omitempty"`
	Temperature       *float64          `json:"temperature,omitempty"`
	TopP              *float64          `json:"top_p,omitempty"`
	MaxOutputTokens   int               `json:"max_output_tokens,omitempty"`
	Tools             []ToolDeclaration `json:"tools,omitempty"`
	ToolChoice        ToolChoice        `json:"tool_choice,omitempty"`
}

/*
	##### RESPONSE MODEL #####
*/

// Usage holds token accounting for one generation. Provider-reported values
// always take precedence; when a provider reports nothing the numbers come
// from the character heuristic in [EstimateTokens] and are approximate.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// GenerateResponse is the unified model turn produced by an adapter. During
// streaming, partial responses carry the cumulative state generated so far;
// the final response is always the last item emitted for a stream.
type GenerateResponse struct {
	ID           string       `json:"id"`
	ModelVersion string       `json:"model_version,omitempty"`
	Created      int64        `json:"created,omitempty"`
	Parts        []Part       `json:"parts"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Usage        *Usage       `json:"usage,omitempty"`
}

// Text joins the response's text parts with newlines.
func (r *GenerateResponse) Text() string {
	var texts []string
	for _, part := range r.Parts {
		if part.IsText() && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// FunctionCalls returns the tool calls requested by the model, in order.
func (r *GenerateResponse) FunctionCalls() []*FunctionCall {
	var calls []*FunctionCall
	for _, part := range r.Parts {
		if part.ToolCall != nil {
			calls = append(calls, part.ToolCall)
		}
	}
	return calls
}

/*
	##### IDENTIFIERS #####
*/

// idAlphabet matches the URL-safe alphabet commonly seen in provider IDs.
const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewID returns a fresh identifier of the form "<prefix>_<nanoid>".
// Adapters use it for synthesized tool-call and response IDs when the
// provider does not supply one.
func NewID(prefix string) string {
	return prefix + "_" + gonanoid.MustGenerate(idAlphabet, 16)
}
