package gemini

import (
	"encoding/json"

	"github.com/ottaviano/genflow/internal/jsonschema"
)

/*
	GEMINI API - REQUEST TYPES
*/

// generateContentRequest represents the request to the generateContent and
// streamGenerateContent endpoints.
type generateContentRequest struct {
	Contents          []content          `json:"contents"`
	SystemInstruction *systemInstruction `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig  `json:"generationConfig,omitempty"`
	Tools             []tool             `json:"tools,omitempty"`
	ToolConfig        *toolConfig        `json:"toolConfig,omitempty"`
}

// systemInstruction represents the system instruction.
type systemInstruction struct {
	Parts []part `json:"parts"`
}

// content represents a content block with role and parts.
type content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []part `json:"parts"`
}

// part represents a content part (text, function call, function response,
// or inline binary data).
type part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
	InlineData       *inlineData       `json:"inlineData,omitempty"`
}

// inlineData represents inline base64-encoded binary data.
type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// functionCall represents a function call from the model.
type functionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// functionResponse represents a response to a function call.
type functionResponse struct {
	Name     string          `json:"name"`
	Response json.RawMessage `json:"response"`
}

// generationConfig represents generation parameters.
type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// tool represents a tool definition.
type tool struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations,omitempty"`
}

// functionDeclaration represents a user-defined function declaration.
type functionDeclaration struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// toolConfig represents the function calling configuration.
type toolConfig struct {
	FunctionCallingConfig *functionCallingConfig `json:"functionCallingConfig,omitempty"`
}

type functionCallingConfig struct {
	Mode                 string   `json:"mode,omitempty"` // AUTO, ANY, NONE
	AllowedFunctionNames []string `json:"allowedFunctionNames,omitempty"`
}

/*
	GEMINI API - RESPONSE TYPES
*/

// generateContentResponse represents the response from generateContent; each
// streaming SSE event carries the same shape.
type generateContentResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *usageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
}

// candidate represents one generated candidate.
type candidate struct {
	Content      *content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
	Index        int      `json:"index,omitempty"`
}

// promptFeedback reports prompt-level blocking.
type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// usageMetadata carries token accounting.
type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

/*
	GEMINI API - TOKEN COUNTING
*/

// countTokensRequest represents the request to the countTokens endpoint.
type countTokensRequest struct {
	Contents []content `json:"contents"`
}

// countTokensResponse represents the countTokens result.
type countTokensResponse struct {
	TotalTokens int `json:"totalTokens"`
}

/*
	GEMINI API - EMBEDDINGS
*/

// batchEmbedContentsRequest represents the request to batchEmbedContents.
type batchEmbedContentsRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

// embedContentRequest embeds one content block.
type embedContentRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

// batchEmbedContentsResponse carries one embedding per input, in order.
type batchEmbedContentsResponse struct {
	Embeddings []contentEmbedding `json:"embeddings"`
}

// contentEmbedding is a single embedding vector.
type contentEmbedding struct {
	Values []float64 `json:"values"`
}
