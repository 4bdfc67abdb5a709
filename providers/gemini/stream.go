package gemini

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ottaviano/genflow/core/parse"
	"github.com/ottaviano/genflow/genai"
	"github.com/ottaviano/genflow/internal/httpx"
	"github.com/ottaviano/genflow/observability"
)

// GenerateContentStream implements the streaming unified call over the
// streamGenerateContent endpoint with alt=sse. Each SSE event carries a full
// generateContentResponse; events are normalized into stream deltas and
// folded through a genai.Aggregator, so every yielded response carries the
// cumulative state so far and the final response is always the last item.
//
// A frame that fails to parse is discarded silently; only a transport-level
// read error is terminal, and even then the stream ends with whatever
// partial state exists rather than an empty failure.
func (a *Adapter) GenerateContentStream(ctx context.Context, request *genai.GenerateRequest) (*genai.Stream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, providerName),
			observability.String(observability.AttrLLMEndpoint, a.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Bool(observability.AttrLLMStreaming, true),
		)
	}

	if observer != nil {
		observer.Trace(ctx, "preparing streaming generate content request",
			observability.String(observability.AttrLLMProvider, providerName),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Int(observability.AttrRequestTurnsCount, len(request.Turns)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
		)
	}

	wireRequest := toGenerateRequest(request)
	streamURL := a.endpoint(request.Model, "streamGenerateContent") + "?alt=sse"

	httpResponse, err := httpx.DoPostStream(ctx, a.client, streamURL, "", wireRequest, a.authHeader())
	if err != nil {
		return nil, tagProviderError(err)
	}

	sseScanner := httpx.NewSSEScanner(httpResponse.Body)
	aggregator := genai.NewAggregator()
	state := &streamState{}

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

			wireResponse, parseErr := parse.ParseAs[generateContentResponse](payload)
			if parseErr != nil {
				if observer != nil {
					observer.Debug(ctx, observability.EventStreamFrameDropped,
						observability.String(observability.AttrLLMProvider, providerName),
						observability.Error(parseErr),
					)
				}
				continue
			}

			for _, delta := range state.chunkToDeltas(&wireResponse) {
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

// streamState tracks what has already been emitted across events of one
// stream. Some server versions resend a candidate's text cumulatively, so
// text deltas are computed by length comparison; function calls arrive
// whole and are emitted exactly once.
type streamState struct {
	previousTextLength int
	toolCallsEmitted   int
}

// chunkToDeltas normalizes one streaming event into stream deltas.
func (s *streamState) chunkToDeltas(response *generateContentResponse) []genai.StreamDelta {
	var deltas []genai.StreamDelta

	if response.UsageMetadata != nil {
		deltas = append(deltas, genai.StreamDelta{
			ModelVersion: response.ModelVersion,
			Usage:        usageFromMetadata(response.UsageMetadata),
		})
	}

	if len(response.Candidates) == 0 {
		return deltas
	}
	wireCandidate := response.Candidates[0]

	if wireCandidate.Content != nil {
		var textParts []string
		callsSeen := 0

		for _, wirePart := range wireCandidate.Content.Parts {
			if wirePart.Text != "" {
				textParts = append(textParts, wirePart.Text)
			}

			if wirePart.FunctionCall != nil {
				callsSeen++
				if callsSeen <= s.toolCallsEmitted {
					continue
				}
				deltas = append(deltas, genai.StreamDelta{
					ModelVersion: response.ModelVersion,
					ToolCall: &genai.ToolCallDelta{
						Index: callsSeen - 1,
						ID:    genai.NewID("call"),
						Name:  wirePart.FunctionCall.Name,
						Args:  string(normalizeWireArgs(wirePart.FunctionCall.Args)),
					},
				})
			}
		}
		if callsSeen > s.toolCallsEmitted {
			s.toolCallsEmitted = callsSeen
		}

		fullText := strings.Join(textParts, "\n")
		if len(fullText) > s.previousTextLength {
			deltas = append(deltas, genai.StreamDelta{
				ModelVersion: response.ModelVersion,
				Text:         fullText[s.previousTextLength:],
			})
			s.previousTextLength = len(fullText)
		}
	}

	if wireCandidate.FinishReason != "" {
		reason := finishReasons.Map(wireCandidate.FinishReason)
		deltas = append(deltas, genai.StreamDelta{
			ModelVersion: response.ModelVersion,
			FinishReason: &reason,
		})
	}

	return deltas
}
