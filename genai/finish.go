package genai

// FinishReason is the unified vocabulary for why a provider stopped
// generating. Every provider-specific reason string is normalized into one
// of these values; unrecognized strings degrade to FinishOther rather than
// failing, preserving forward compatibility with new provider vocabularies.
type FinishReason string

const (
	// FinishStop is a natural completion, including turns that end in tool calls.
	FinishStop FinishReason = "stop"
	// FinishMaxTokens means the output token budget was exhausted.
	FinishMaxTokens FinishReason = "max_tokens"
	// FinishSafety means a content policy terminated the generation.
	FinishSafety FinishReason = "safety"
	// FinishOther covers every reason this layer does not recognize.
	FinishOther FinishReason = "other"
)

// FinishReasonTable maps one provider's native reason strings to the unified
// vocabulary. Each adapter owns a table for its dialect.
type FinishReasonTable map[string]FinishReason

// Map normalizes a provider reason string. Unknown and empty strings map to
// FinishOther; the lookup never fails.
func (t FinishReasonTable) Map(providerReason string) FinishReason {
	if reason, ok := t[providerReason]; ok {
		return reason
	}
	return FinishOther
}
