// Package gemini adapts the unified content generation contract to the
// Gemini generative language API: generateContent, streamGenerateContent
// (SSE), countTokens and batchEmbedContents. Unlike the OpenAI-compatible
// family it supports inline multimodal data natively and reports
// authoritative token counts.
package gemini
