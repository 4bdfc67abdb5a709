package genai

import "strings"

// DefaultFallbackModel is the system-wide model substituted under fallback
// mode when the requested model belongs to no known family.
const DefaultFallbackModel = "gemini-2.5-flash"

// liteMarker tags cost-efficient model variants. Lite-tier models are never
// downgraded: they are already the cheapest option.
const liteMarker = "-lite"

// familyFallbacks lists known model families and each family's designated
// mid-tier fallback. Downgrading within a family preserves feature parity
// (tool calling in particular). Order matters: the first matching prefix
// wins, so resolution stays deterministic.
var familyFallbacks = []struct {
	prefix   string
	fallback string
}{
	{"gemini-2.5", "gemini-2.5-flash"},
	{"gemini-2.0", "gemini-2.0-flash"},
}

// ResolveModel decides the effective model name for a request. Outside
// fallback mode the requested model passes through unchanged. In fallback
// mode, lite-tier models are honored as-is, known families downgrade to
// their family fallback, and everything else downgrades to
// [DefaultFallbackModel].
//
// The function is pure: deterministic in its two inputs, no side effects,
// and callable without network or filesystem access.
func ResolveModel(requestedModel string, inFallbackMode bool) string {
	if !inFallbackMode {
		return requestedModel
	}

	if strings.Contains(requestedModel, liteMarker) {
		return requestedModel
	}

	for _, family := range familyFallbacks {
		if strings.HasPrefix(requestedModel, family.prefix) {
			return family.fallback
		}
	}

	return DefaultFallbackModel
}
