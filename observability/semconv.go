package observability

// Semantic conventions for observability attributes. These constants define
// standard attribute names so events stay consistent across adapters.

// --- LLM provider attributes ---

const (
	// AttrLLMProvider is the name of the provider (e.g. "gemini", "deepseek").
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the effective model identifier.
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL.
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the unique response identifier.
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the unified reason the generation finished.
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMStreaming marks streaming requests.
	AttrLLMStreaming = "llm.streaming"
)

// --- Token usage attributes ---

const (
	// AttrLLMTokensTotal is the total number of tokens.
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- token refers to LLM tokens
)

// --- Request shape attributes ---

const (
	// AttrRequestTurnsCount is the number of conversation turns in the request.
	AttrRequestTurnsCount = "request.turns.count"

	// AttrRequestToolsCount is the number of tool declarations in the request.
	AttrRequestToolsCount = "request.tools.count"
)

// --- HTTP attributes ---

const (
	// AttrHTTPMethod is the HTTP request method.
	AttrHTTPMethod = "http.method"

	// AttrHTTPURL is the full request URL.
	AttrHTTPURL = "http.url"

	// AttrHTTPStatusCode is the HTTP response status code.
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPRequestBodySize is the request body size in bytes.
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes.
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- Event names ---

const (
	// EventLLMRequestStart marks the beginning of a provider call.
	EventLLMRequestStart = "llm.request.start"

	// EventLLMRequestEnd marks the completion of a provider call.
	EventLLMRequestEnd = "llm.request.end"

	// EventStreamFrameDropped marks a malformed stream frame that was discarded.
	EventStreamFrameDropped = "llm.stream.frame_dropped"
)
