package httpx

import "fmt"

// TruncateString shortens s to at most maxLen characters, appending a
// suffix recording the original length so callers know data was omitted.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// Ptr returns a pointer to v, avoiding a temporary variable when the address
// of a literal is needed.
func Ptr[T any](v T) *T {
	return &v
}
