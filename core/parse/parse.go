// Package parse provides tolerant JSON decoding for model-produced payloads.
// Providers routinely emit almost-JSON (single quotes, trailing commas,
// unescaped newlines inside strings), especially in streamed tool-call
// arguments; a repair pass recovers most of it before giving up with a
// clear error.
package parse

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// ParseAs decodes content into T. Strict decoding is attempted first; on
// failure the content is repaired with jsonrepair and decoded again. The
// returned error wraps the strict-decode error when both attempts fail.
func ParseAs[T any](content string) (T, error) {
	var result T

	strictErr := json.Unmarshal([]byte(content), &result)
	if strictErr == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("failed to parse JSON (repair also failed: %v): %w", repairErr, strictErr)
	}

	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return result, fmt.Errorf("failed to parse repaired JSON: %w", err)
	}
	return result, nil
}

// Repair returns a syntactically valid JSON rendition of content. Content
// that is already valid passes through untouched.
func Repair(content string) (string, error) {
	if json.Valid([]byte(content)) {
		return content, nil
	}
	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return "", fmt.Errorf("failed to repair JSON: %w", err)
	}
	return repaired, nil
}
