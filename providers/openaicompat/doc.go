// Package openaicompat implements the genai.ContentGenerator contract over
// the generic OpenAI-compatible chat completions dialect. One parameterized
// adapter serves every provider in the family; per-provider differences are
// captured by a [Preset] carrying the base URL, a model-alias table, and a
// small set of [Capabilities] flags, rather than one bespoke adapter per
// provider.
//
// Streaming uses Server-Sent Events: "data: {json}" frames terminated by a
// literal "data: [DONE]" line. None of the providers in this family expose a
// compatible embeddings endpoint, so EmbedContent always fails with an
// unsupported-operation error.
package openaicompat
