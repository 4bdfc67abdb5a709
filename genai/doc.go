// Package genai defines the provider-agnostic contract for chat-style
// content generation: the unified request/response data model, the
// [ContentGenerator] interface implemented by every provider adapter, the
// streaming vocabulary with delta aggregation, token estimation, and the
// model fallback resolver.
//
// Callers build a [GenerateRequest], resolve the effective model with
// [ResolveModel], and hand the request to whichever adapter matches their
// provider configuration. Adapters translate to and from their native wire
// format; everything in this package stays wire-neutral.
//
// Key entry points: [ContentGenerator] for the operation surface,
// [Stream] and [Aggregator] for streaming consumption, [EstimateTokens]
// for the character-based token heuristic, and [ResolveModel] for the
// degraded-mode model routing policy.
package genai
