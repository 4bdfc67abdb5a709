package genai

import (
	"encoding/json"
	"iter"
	"strings"
	"time"

	"github.com/ottaviano/genflow/core/parse"
)

/*
	##### STREAM DELTAS #####
*/

// StreamDelta is one normalized unit of an in-flight provider stream. Each
// delta carries at most one of: a text fragment, a tool-call fragment, a
// finish reason, or a usage update. Adapters convert their native frames
// into deltas and feed them to an [Aggregator].
type StreamDelta struct {
	ModelVersion string
	Text         string
	ToolCall     *ToolCallDelta
	FinishReason *FinishReason
	Usage        *Usage
}

// ToolCallDelta is an incremental update to a streamed tool call. Index
// identifies which call is being updated; ID and Name typically appear only
// on the first fragment for a given index, with later fragments carrying
// argument JSON fragments.
type ToolCallDelta struct {
	Index int
	ID    string
	Name  string
	Args  string
}

/*
	##### STREAM #####
*/

// Stream is an ordered sequence of cumulative partial responses terminating
// in one final response. Every yielded response represents everything
// generated so far, not a delta; the final response is always the last item.
//
// Callers must consume the stream, either by ranging over Iter (breaking out
// early is fine) or by calling Collect. The producing adapter holds the HTTP
// response body open until the iterator completes or is abandoned, so a
// Stream that is never iterated leaks that body.
type Stream struct {
	seq iter.Seq2[*GenerateResponse, error]
}

// NewStream wraps a raw iterator as a Stream. The iterator yields responses
// with a nil error for normal progress and a non-nil error for mid-stream
// failures.
func NewStream(seq iter.Seq2[*GenerateResponse, error]) *Stream {
	return &Stream{seq: seq}
}

// Iter returns the underlying iterator for range-over-func consumption.
func (s *Stream) Iter() iter.Seq2[*GenerateResponse, error] {
	return s.seq
}

// Collect consumes the entire stream and returns its final response. A
// mid-stream error returns the last cumulative response seen alongside the
// error, which may be nil when the stream failed before producing anything.
func (s *Stream) Collect() (*GenerateResponse, error) {
	var last *GenerateResponse
	for response, err := range s.seq {
		if err != nil {
			return last, err
		}
		last = response
	}
	return last, nil
}

/*
	##### AGGREGATION #####
*/

// Aggregator folds an ordered sequence of stream deltas into cumulative
// response snapshots and one final response. It is owned by exactly one
// in-flight stream and is not safe for concurrent use.
//
// Invariants: accumulated text is monotonically non-decreasing until a
// finish signal is observed, after which only trailing usage updates are
// accepted; tool-call
// argument fragments are concatenated in arrival order and parsed only once
// syntactically complete (or at finalization), because partial JSON is not
// valid structured data.
type Aggregator struct {
	id           string
	modelVersion string
	created      int64
	text         strings.Builder
	calls        []*callBuilder
	usage        *Usage
	finish       FinishReason
	done         bool
	sawAny       bool
}

// callBuilder accumulates one streamed tool call, keyed by provider index.
type callBuilder struct {
	id       string
	name     string
	args     strings.Builder
	complete bool
}

// NewAggregator returns an empty aggregator with a fresh response ID.
func NewAggregator() *Aggregator {
	return &Aggregator{
		id:      NewID("gen"),
		created: time.Now().Unix(),
	}
}

// Ingest applies one delta and returns a cumulative snapshot when the delta
// produced caller-visible progress (new text, or a tool call whose arguments
// just became complete). Usage-only and finish deltas return nil; the finish
// is reflected in the response built by Finalize. After a finish has been
// observed, content deltas are ignored but trailing usage chunks still
// update the totals.
func (a *Aggregator) Ingest(delta StreamDelta) *GenerateResponse {
	if delta.ModelVersion != "" {
		a.modelVersion = delta.ModelVersion
	}

	if delta.Usage != nil {
		// Latest provider-reported totals win. Usage often trails the
		// finish chunk, so it is accepted even after a finish.
		a.usage = delta.Usage
		a.sawAny = true
	}

	if a.done {
		return nil
	}

	if delta.FinishReason != nil {
		a.finish = *delta.FinishReason
		a.done = true
		a.sawAny = true
		return nil
	}

	snapshot := false

	if delta.Text != "" {
		a.text.WriteString(delta.Text)
		a.sawAny = true
		snapshot = true
	}

	if delta.ToolCall != nil {
		a.sawAny = true
		if a.ingestToolCall(delta.ToolCall) {
			snapshot = true
		}
	}

	if !snapshot {
		return nil
	}
	return a.buildResponse(false)
}

// ingestToolCall routes a fragment to its builder and reports whether the
// call's arguments just became syntactically complete JSON.
func (a *Aggregator) ingestToolCall(delta *ToolCallDelta) bool {
	if delta.Index < 0 {
		return false
	}
	for len(a.calls) <= delta.Index {
		a.calls = append(a.calls, &callBuilder{})
	}

	builder := a.calls[delta.Index]
	if builder.complete {
		return false
	}
	if delta.ID != "" {
		builder.id = delta.ID
	}
	if delta.Name != "" {
		builder.name = delta.Name
	}
	if delta.Args != "" {
		builder.args.WriteString(delta.Args)
	}

	// Opportunistic completeness check: emit the call as soon as its
	// argument blob parses, rather than waiting for stream end.
	if builder.name != "" && builder.args.Len() > 0 && json.Valid([]byte(builder.args.String())) {
		builder.complete = true
		return true
	}
	return false
}

// Done reports whether a finish signal has been observed.
func (a *Aggregator) Done() bool { return a.done }

// HasContent reports whether any delta has contributed state. Adapters use
// it to decide whether a terminal transport error should still produce a
// final response from the partial state.
func (a *Aggregator) HasContent() bool { return a.sawAny }

// Finalize builds the final response: the accumulated text (always present
// as a text part, even when empty), every tool call in index order, the
// mapped finish reason, and the best available usage numbers. If the
// provider never reported usage, completion tokens are estimated from the
// accumulated text. Finalize marks the aggregator terminal.
func (a *Aggregator) Finalize() *GenerateResponse {
	a.done = true
	response := a.buildResponse(true)

	if a.finish != "" {
		response.FinishReason = a.finish
	} else {
		// Stream ended without an explicit finish signal.
		response.FinishReason = FinishOther
	}

	if a.usage != nil {
		response.Usage = a.usage
	} else {
		completion := EstimateTokens(a.text.String())
		response.Usage = &Usage{
			CompletionTokens: completion,
			TotalTokens:      completion,
		}
	}

	return response
}

// buildResponse assembles a cumulative response from the current state.
// Intermediate snapshots include the text part only when text exists and
// only the calls already complete; the final response always carries a text
// part and every accumulated call.
func (a *Aggregator) buildResponse(final bool) *GenerateResponse {
	response := &GenerateResponse{
		ID:           a.id,
		ModelVersion: a.modelVersion,
		Created:      a.created,
	}

	if final || a.text.Len() > 0 {
		response.Parts = append(response.Parts, TextPart(a.text.String()))
	}

	for _, builder := range a.calls {
		if builder.name == "" {
			continue
		}
		if !final && !builder.complete {
			continue
		}
		if builder.id == "" {
			builder.id = NewID("call")
		}
		response.Parts = append(response.Parts, Part{ToolCall: &FunctionCall{
			ID:   builder.id,
			Name: builder.name,
			Args: normalizeArgs(builder.args.String()),
		}})
	}

	return response
}

// normalizeArgs turns an accumulated argument blob into valid JSON. Empty
// blobs become an empty object; malformed blobs go through a repair pass,
// falling back to an empty object when repair fails too.
func normalizeArgs(raw string) json.RawMessage {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	repaired, err := parse.Repair(raw)
	if err != nil || !json.Valid([]byte(repaired)) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(repaired)
}
