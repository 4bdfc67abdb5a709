package openaicompat

import (
	"context"
	"fmt"
	"io"

	"github.com/ottaviano/genflow/genai"
	"github.com/ottaviano/genflow/internal/httpx"
	"github.com/ottaviano/genflow/observability"
)

// GenerateContentStream implements the streaming unified call. The request
// is sent with stream=true and usage reporting enabled; SSE frames are
// normalized into stream deltas and folded through a genai.Aggregator, so
// every yielded response carries the cumulative state so far and the final
// response is always the last item.
//
// A frame that fails to parse is discarded silently (malformed frames are
// expected at chunk boundaries); only a transport-level read error is
// terminal, and even then the stream ends with whatever partial state
// exists rather than an empty failure.
func (a *Adapter) GenerateContentStream(ctx context.Context, request *genai.GenerateRequest) (*genai.Stream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	model := a.resolveAlias(request.Model)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, a.preset.Name),
			observability.String(observability.AttrLLMEndpoint, a.baseURL),
			observability.String(observability.AttrLLMModel, model),
			observability.Bool(observability.AttrLLMStreaming, true),
		)
	}

	if observer != nil {
		observer.Trace(ctx, "preparing streaming chat completions request",
			observability.String(observability.AttrLLMProvider, a.preset.Name),
			observability.String(observability.AttrLLMModel, model),
			observability.Int(observability.AttrRequestTurnsCount, len(request.Turns)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
		)
	}

	chatRequest := toChatRequest(request, model, a.preset.Capabilities)
	streamEnabled := true
	chatRequest.Stream = &streamEnabled
	chatRequest.StreamOptions = &streamOptions{IncludeUsage: true}

	httpResponse, err := httpx.DoPostStream(ctx, a.client, a.baseURL+chatCompletionsPath, a.apiKey, chatRequest)
	if err != nil {
		return nil, a.tagProviderError(err)
	}

	sseScanner := httpx.NewSSEScanner(httpResponse.Body)
	aggregator := genai.NewAggregator()

	iteratorFunc := func(yield func(*genai.GenerateResponse, error) bool) {
		defer httpx.CloseWithLog(httpResponse.Body)

		for {
			// Cancellation releases the body via the deferred close and
			// never yields a synthetic final response.
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				break
			}
			if sseErr != nil {
				// A read interrupted by cancellation surfaces as a body
				// error; report the cancellation, never a partial final.
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return
				}
				if aggregator.HasContent() {
					yield(aggregator.Finalize(), nil)
				} else {
					yield(nil, fmt.Errorf("SSE read error: %w", sseErr))
				}
				return
			}

			chunk, parseErr := unmarshalStreamChunk(payload)
			if parseErr != nil {
				if observer != nil {
					observer.Debug(ctx, observability.EventStreamFrameDropped,
						observability.String(observability.AttrLLMProvider, a.preset.Name),
						observability.Error(parseErr),
					)
				}
				continue
			}

			for _, delta := range chunkToDeltas(chunk) {
				snapshot := aggregator.Ingest(delta)
				if snapshot == nil {
					continue
				}
				if !yield(snapshot, nil) {
					return
				}
			}
		}

		yield(aggregator.Finalize(), nil)
	}

	return genai.NewStream(iteratorFunc), nil
}

// chunkToDeltas normalizes one streaming chunk into stream deltas. A single
// chunk can carry several kinds of data (content, tool calls, usage, finish),
// each of which becomes its own delta so the aggregator sees them in order.
func chunkToDeltas(chunk *chatCompletionStreamChunk) []genai.StreamDelta {
	var deltas []genai.StreamDelta

	// Usage typically arrives in a trailing chunk with empty choices.
	if chunk.Usage != nil {
		deltas = append(deltas, genai.StreamDelta{
			ModelVersion: chunk.Model,
			Usage: &genai.Usage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			},
		})
	}

	for _, choice := range chunk.Choices {
		if choice.Delta.Content != nil && *choice.Delta.Content != "" {
			deltas = append(deltas, genai.StreamDelta{
				ModelVersion: chunk.Model,
				Text:         *choice.Delta.Content,
			})
		}

		for _, wireCall := range choice.Delta.ToolCalls {
			deltas = append(deltas, genai.StreamDelta{
				ModelVersion: chunk.Model,
				ToolCall: &genai.ToolCallDelta{
					Index: wireCall.Index,
					ID:    wireCall.ID,
					Name:  wireCall.Function.Name,
					Args:  wireCall.Function.Arguments,
				},
			})
		}

		if choice.FinishReason != nil && *choice.FinishReason != "" {
			reason := finishReasons.Map(*choice.FinishReason)
			deltas = append(deltas, genai.StreamDelta{
				ModelVersion: chunk.Model,
				FinishReason: &reason,
			})
		}
	}

	return deltas
}
