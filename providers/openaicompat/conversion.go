package openaicompat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ottaviano/genflow/core/parse"
	"github.com/ottaviano/genflow/genai"
)

// finishReasons normalizes the chat completions finish-reason vocabulary.
// Turns ending in tool calls count as natural stops; unknown strings degrade
// to FinishOther via the table's Map method.
var finishReasons = genai.FinishReasonTable{
	"stop":           genai.FinishStop,
	"tool_calls":     genai.FinishStop,
	"function_call":  genai.FinishStop,
	"length":         genai.FinishMaxTokens,
	"content_filter": genai.FinishSafety,
}

// wireRole maps unified roles to chat completions roles.
func wireRole(role genai.Role) string {
	switch role {
	case genai.RoleModel:
		return "assistant"
	case genai.RoleSystem:
		return "system"
	default:
		return "user"
	}
}

// toChatRequest translates a unified request into the chat completions wire
// format for the given effective model. The request is read-only; all
// mutation happens on the wire struct.
func toChatRequest(request *genai.GenerateRequest, model string, caps Capabilities) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:       model,
		Messages:    messagesFromTurns(request.Turns, request.SystemInstruction, caps),
		Temperature: request.Temperature,
		TopP:        request.TopP,
	}

	if request.MaxOutputTokens > 0 {
		maxTokens := request.MaxOutputTokens
		req.MaxTokens = &maxTokens
	}

	if len(request.Tools) > 0 && caps.SupportsTools {
		for _, tool := range request.Tools {
			req.Tools = append(req.Tools, chatTool{
				Type: "function",
				Function: chatFunction{
					Name:        tool.Name,
					Description: tool.Description,
					Parameters:  tool.Parameters,
				},
			})
		}

		switch request.ToolChoice.Mode {
		case genai.ToolChoiceNone:
			req.ToolChoice = "none"
		case genai.ToolChoiceForced:
			req.ToolChoice = map[string]any{
				"type":     "function",
				"function": map[string]string{"name": request.ToolChoice.ForcedTool},
			}
		default:
			req.ToolChoice = "auto"
		}
	}

	return req
}

// messagesFromTurns converts unified turns into the provider message list.
// The system instruction, when present, becomes a single leading system
// message. Turns with no representable parts are dropped, unless the
// provider requires role alternation, in which case an explicit
// empty-content message preserves the turn count. Consecutive same-role
// turns are forwarded as-is; the chat completions dialect tolerates them.
func messagesFromTurns(turns []genai.Turn, systemInstruction string, caps Capabilities) []chatMessage {
	var messages []chatMessage

	if systemInstruction != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemInstruction})
	}

	ledger := &callIDLedger{}

	for _, turn := range turns {
		converted := messagesFromTurn(turn, caps, ledger)
		if len(converted) == 0 && caps.RequiresAlternation {
			converted = []chatMessage{{Role: wireRole(turn.Role), Content: ""}}
		}
		messages = append(messages, converted...)
	}

	return messages
}

// messagesFromTurn flattens one turn's parts. Consecutive text parts join
// with a newline separator; inline binary parts become embedded-media
// entries (or a bracketed text marker when the provider has no vision
// support); tool results become role=tool messages correlated to their
// originating call; model tool calls become native tool_calls entries, or a
// textual name(args) line when tools are unsupported. Every part ends up
// representable in the output, even if only as text.
func messagesFromTurn(turn genai.Turn, caps Capabilities, ledger *callIDLedger) []chatMessage {
	var messages []chatMessage
	var texts []string
	var media []contentPart
	var toolCalls []chatToolCall
	role := wireRole(turn.Role)

	// flush emits the accumulated text/media as one message of the turn's role.
	flush := func() {
		if len(texts) == 0 && len(media) == 0 && len(toolCalls) == 0 {
			return
		}
		message := chatMessage{Role: role, ToolCalls: toolCalls}
		joined := strings.Join(texts, "\n")
		if len(media) > 0 {
			parts := make([]contentPart, 0, len(media)+1)
			if joined != "" {
				parts = append(parts, contentPart{Type: "text", Text: joined})
			}
			parts = append(parts, media...)
			message.Content = parts
		} else {
			message.Content = joined
		}
		messages = append(messages, message)
		texts, media, toolCalls = nil, nil, nil
	}

	for _, part := range turn.Parts {
		switch {
		case part.ToolResult != nil:
			// Tool results get their own role=tool message, emitted in part
			// order after any accumulated content.
			flush()
			result := part.ToolResult
			id := result.ID
			if id == "" {
				id = ledger.take(result.Name)
			}
			if id == "" {
				id = genai.NewID("call")
			}
			messages = append(messages, chatMessage{
				Role:       "tool",
				Name:       result.Name,
				ToolCallID: id,
				Content:    string(result.Result),
			})

		case part.ToolCall != nil:
			call := part.ToolCall
			if caps.SupportsTools {
				id := call.ID
				if id == "" {
					id = genai.NewID("call")
				}
				ledger.add(call.Name, id)
				wireCall := chatToolCall{ID: id, Type: "function"}
				wireCall.Function.Name = call.Name
				wireCall.Function.Arguments = string(call.Args)
				toolCalls = append(toolCalls, wireCall)
			} else {
				texts = append(texts, textualToolCall(call))
			}

		case part.Blob != nil:
			if caps.SupportsVision {
				media = append(media, contentPart{
					Type:     "image_url",
					ImageURL: &contentPartImage{URL: buildDataURL(part.Blob.MIMEType, part.Blob.Data)},
				})
			} else {
				texts = append(texts, fmt.Sprintf("[inline %s content omitted]", part.Blob.MIMEType))
			}

		default:
			if part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
	}

	flush()
	return messages
}

// partsFromMessage converts a response message back into unified parts:
// content text first, then each tool call with its arguments normalized to
// valid JSON.
func partsFromMessage(message chatResponseMessage) []genai.Part {
	var parts []genai.Part

	if message.Content != "" {
		parts = append(parts, genai.TextPart(message.Content))
	}

	for _, wireCall := range message.ToolCalls {
		id := wireCall.ID
		if id == "" {
			id = genai.NewID("call")
		}
		parts = append(parts, genai.Part{ToolCall: &genai.FunctionCall{
			ID:   id,
			Name: wireCall.Function.Name,
			Args: normalizeWireArgs(wireCall.Function.Arguments),
		}})
	}

	return parts
}

// normalizeWireArgs coerces a provider argument string into valid JSON,
// repairing when possible and falling back to an empty object.
func normalizeWireArgs(raw string) json.RawMessage {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	repaired, err := parse.Repair(raw)
	if err != nil {
		return json.RawMessage("{}")
	}
	return json.RawMessage(repaired)
}

// textualToolCall renders a call as name(args) for providers without native
// tool support. Degrading to text is deliberate: the call stays visible in
// the conversation instead of being silently lost.
func textualToolCall(call *genai.FunctionCall) string {
	args := strings.TrimSpace(string(call.Args))
	if args == "" {
		args = "{}"
	}
	return fmt.Sprintf("%s(%s)", call.Name, args)
}

// buildDataURL formats base64 data into a data URL for image inputs.
func buildDataURL(mimeType, data string) string {
	return "data:" + mimeType + ";base64," + data
}

// callIDLedger correlates tool results in history with the IDs assigned to
// their originating calls during the same translation pass. IDs queue per
// tool name and are consumed in call order.
type callIDLedger struct {
	byName map[string][]string
}

func (l *callIDLedger) add(name, id string) {
	if l.byName == nil {
		l.byName = make(map[string][]string)
	}
	l.byName[name] = append(l.byName[name], id)
}

func (l *callIDLedger) take(name string) string {
	queue := l.byName[name]
	if len(queue) == 0 {
		return ""
	}
	id := queue[0]
	l.byName[name] = queue[1:]
	return id
}
