package gemini

import (
	"encoding/json"
	"strings"

	"github.com/ottaviano/genflow/genai"
)

// finishReasons maps this dialect's finish vocabulary onto the unified one.
// Every safety-flavored reason collapses into FinishSafety; anything
// unrecognized degrades to FinishOther via the table's default.
var finishReasons = genai.FinishReasonTable{
	"STOP":               genai.FinishStop,
	"MAX_TOKENS":         genai.FinishMaxTokens,
	"SAFETY":             genai.FinishSafety,
	"RECITATION":         genai.FinishSafety,
	"PROHIBITED_CONTENT": genai.FinishSafety,
	"SPII":               genai.FinishSafety,
	"BLOCKLIST":          genai.FinishSafety,
	"IMAGE_SAFETY":       genai.FinishSafety,
}

const (
	wireRoleUser  = "user"
	wireRoleModel = "model"
)

// toGenerateRequest translates a unified request into the native wire shape.
func toGenerateRequest(request *genai.GenerateRequest) generateContentRequest {
	wireRequest := generateContentRequest{
		Contents: contentsFromTurns(request.Turns),
	}

	if request.SystemInstruction != "" {
		wireRequest.SystemInstruction = &systemInstruction{
			Parts: []part{{Text: request.SystemInstruction}},
		}
	}

	if request.Temperature != nil || request.TopP != nil || request.MaxOutputTokens > 0 {
		config := &generationConfig{
			Temperature: request.Temperature,
			TopP:        request.TopP,
		}
		if request.MaxOutputTokens > 0 {
			maxTokens := request.MaxOutputTokens
			config.MaxOutputTokens = &maxTokens
		}
		wireRequest.GenerationConfig = config
	}

	if len(request.Tools) > 0 {
		declarations := make([]functionDeclaration, 0, len(request.Tools))
		for _, declaration := range request.Tools {
			declarations = append(declarations, functionDeclaration{
				Name:        declaration.Name,
				Description: declaration.Description,
				Parameters:  declaration.Parameters,
			})
		}
		wireRequest.Tools = []tool{{FunctionDeclarations: declarations}}
	}

	wireRequest.ToolConfig = toolConfigFromChoice(request.ToolChoice)

	return wireRequest
}

// toolConfigFromChoice builds the function calling configuration. The auto
// mode and the zero value are omitted entirely because AUTO is the server
// default; a forced tool uses mode ANY restricted to a single name.
func toolConfigFromChoice(choice genai.ToolChoice) *toolConfig {
	switch choice.Mode {
	case genai.ToolChoiceNone:
		return &toolConfig{FunctionCallingConfig: &functionCallingConfig{Mode: "NONE"}}
	case genai.ToolChoiceForced:
		return &toolConfig{FunctionCallingConfig: &functionCallingConfig{
			Mode:                 "ANY",
			AllowedFunctionNames: []string{choice.ForcedTool},
		}}
	default:
		return nil
	}
}

// contentsFromTurns translates the conversation history. This dialect only
// knows two roles, so a mid-conversation system turn travels as user text;
// turns that translate to zero parts are dropped.
func contentsFromTurns(turns []genai.Turn) []content {
	var contents []content

	for _, turn := range turns {
		wireContent := content{Role: wireRoleFor(turn.Role)}

		for _, turnPart := range turn.Parts {
			switch {
			case turnPart.Blob != nil:
				wireContent.Parts = append(wireContent.Parts, part{InlineData: &inlineData{
					MimeType: turnPart.Blob.MIMEType,
					Data:     turnPart.Blob.Data,
				}})
			case turnPart.ToolCall != nil:
				wireContent.Parts = append(wireContent.Parts, part{FunctionCall: &functionCall{
					Name: turnPart.ToolCall.Name,
					Args: turnPart.ToolCall.Args,
				}})
			case turnPart.ToolResult != nil:
				wireContent.Parts = append(wireContent.Parts, part{FunctionResponse: &functionResponse{
					Name:     turnPart.ToolResult.Name,
					Response: wrapFunctionResponse(turnPart.ToolResult.Result),
				}})
			case turnPart.Text != "":
				wireContent.Parts = append(wireContent.Parts, part{Text: turnPart.Text})
			}
		}

		if len(wireContent.Parts) == 0 {
			continue
		}
		contents = append(contents, wireContent)
	}

	return contents
}

// wireRoleFor maps unified roles onto the two-role wire vocabulary.
// Function responses stay inside user-role contents, matching where the
// executing side of the conversation naturally sits.
func wireRoleFor(role genai.Role) string {
	if role == genai.RoleModel {
		return wireRoleModel
	}
	return wireRoleUser
}

// wrapFunctionResponse ensures the function response payload is a JSON
// object, which is the only shape the API accepts. Non-object results are
// wrapped under an "output" key; unparseable results travel as a string.
func wrapFunctionResponse(result json.RawMessage) json.RawMessage {
	trimmed := strings.TrimSpace(string(result))
	if trimmed == "" {
		return json.RawMessage("{}")
	}
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}

	wrapped := map[string]json.RawMessage{}
	if json.Valid([]byte(trimmed)) {
		wrapped["output"] = json.RawMessage(trimmed)
	} else {
		quoted, _ := json.Marshal(trimmed)
		wrapped["output"] = quoted
	}
	payload, err := json.Marshal(wrapped)
	if err != nil {
		return json.RawMessage("{}")
	}
	return payload
}

// partsFromCandidate translates a candidate's content back into unified
// parts. Function calls get synthesized IDs because the wire format carries
// none, and downstream history needs call/result correlation.
func partsFromCandidate(wireCandidate candidate) []genai.Part {
	if wireCandidate.Content == nil {
		return nil
	}

	var parts []genai.Part
	for _, wirePart := range wireCandidate.Content.Parts {
		switch {
		case wirePart.FunctionCall != nil:
			parts = append(parts, genai.Part{ToolCall: &genai.FunctionCall{
				ID:   genai.NewID("call"),
				Name: wirePart.FunctionCall.Name,
				Args: normalizeWireArgs(wirePart.FunctionCall.Args),
			}})
		case wirePart.InlineData != nil:
			parts = append(parts, genai.BlobPart(wirePart.InlineData.MimeType, wirePart.InlineData.Data))
		case wirePart.Text != "":
			parts = append(parts, genai.TextPart(wirePart.Text))
		}
	}
	return parts
}

// normalizeWireArgs guarantees the unified FunctionCall carries valid JSON.
func normalizeWireArgs(args json.RawMessage) json.RawMessage {
	if len(args) == 0 {
		return json.RawMessage("{}")
	}
	if json.Valid(args) {
		return args
	}
	return json.RawMessage("{}")
}

// usageFromMetadata converts the wire token accounting.
func usageFromMetadata(metadata *usageMetadata) *genai.Usage {
	if metadata == nil {
		return nil
	}
	return &genai.Usage{
		PromptTokens:     metadata.PromptTokenCount,
		CompletionTokens: metadata.CandidatesTokenCount,
		TotalTokens:      metadata.TotalTokenCount,
	}
}
