package genai

import "testing"

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
		{"hello world", 3},
	}

	for _, test := range tests {
		if got := EstimateTokens(test.text); got != test.expected {
			t.Errorf("EstimateTokens(%q) = %d, expected %d", test.text, got, test.expected)
		}
	}
}

func TestEstimateTokensMonotonic(t *testing.T) {
	previous := 0
	text := ""
	for range 64 {
		text += "x"
		estimate := EstimateTokens(text)
		if estimate < previous {
			t.Fatalf("estimate decreased from %d to %d at length %d", previous, estimate, len(text))
		}
		previous = estimate
	}
}

func TestEstimateRequestTokens(t *testing.T) {
	request := &GenerateRequest{
		SystemInstruction: "be brief", // 8 chars -> 2 tokens
		Turns: []Turn{
			{Role: RoleUser, Parts: []Part{
				TextPart("hello"), // 5 chars -> 2 tokens
				BlobPart("image/png", "aWdub3JlZA=="),
			}},
			{Role: RoleModel, Parts: []Part{
				ToolCallPart("lookup", []byte(`{"q":"x"}`)),
			}},
		},
	}

	if got := EstimateRequestTokens(request); got != 4 {
		t.Errorf("EstimateRequestTokens = %d, expected 4", got)
	}
}
