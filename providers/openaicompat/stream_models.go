package openaicompat

import "encoding/json"

/*
	CHAT COMPLETIONS STREAMING API - RESPONSE TYPES

	These types model the SSE chunks returned by /chat/completions when
	stream=true. Each chunk carries incremental deltas for content, tool
	calls, and optionally usage metadata (when stream_options includes
	include_usage).
*/

// chatCompletionStreamChunk represents a single SSE chunk.
type chatCompletionStreamChunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"` // "chat.completion.chunk"
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []streamChoice `json:"choices"`
	Usage   *chatUsage     `json:"usage,omitempty"` // Final chunk only, when include_usage is set
}

// streamChoice carries a delta instead of a complete message.
type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"` // Nullable; nil until this choice's final chunk
}

// streamDelta carries the incremental content of one chunk. All fields are
// optional; a chunk may carry only a role, only content, or only tool calls.
type streamDelta struct {
	Role      string               `json:"role,omitempty"`
	Content   *string              `json:"content,omitempty"` // Nullable to distinguish empty from absent
	ToolCalls []streamToolCallPart `json:"tool_calls,omitempty"`
}

// streamToolCallPart is an incremental tool-call delta. The first chunk for
// a call carries the ID and function name; later chunks carry argument
// fragments.
type streamToolCallPart struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// unmarshalStreamChunk parses a raw SSE data payload into a stream chunk.
func unmarshalStreamChunk(payload string) (*chatCompletionStreamChunk, error) {
	var chunk chatCompletionStreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return nil, err
	}
	return &chunk, nil
}
