// Package httpx provides the shared HTTP plumbing for provider adapters:
// synchronous JSON POST round-trips, streaming POSTs that leave the body
// open for Server-Sent Events consumption, and an SSE scanner aware of the
// [DONE] sentinel used by OpenAI-compatible APIs.
//
// Non-success statuses are surfaced as *genai.ProviderError with the status
// code and raw body attached, so adapters propagate them unmodified.
package httpx
