package genai

// charsPerToken is the fixed characters-per-token heuristic used when a
// provider exposes no counting endpoint. Four characters per token is a
// reasonable average for English prose and code.
const charsPerToken = 4

// EstimateTokens approximates the token count of a text as
// ceil(len(text)/4). It is a best-effort heuristic, not an authoritative
// count: the result is never negative and the function never fails, but
// callers must not rely on it for billing-grade accounting.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// EstimateRequestTokens sums the heuristic over a request's system
// instruction and every text part of every turn. Non-text parts contribute
// zero.
func EstimateRequestTokens(request *GenerateRequest) int {
	total := EstimateTokens(request.SystemInstruction)
	for _, turn := range request.Turns {
		for _, part := range turn.Parts {
			if part.IsText() {
				total += EstimateTokens(part.Text)
			}
		}
	}
	return total
}
