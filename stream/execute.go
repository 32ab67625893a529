package stream

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/leofalp/aigo/core/overview"
	"github.com/leofalp/aigo/patterns/graph"
)

// defaultBufferSize is the channel buffer used between the graph's event
// stream, the custom-event writer, and the consumer. Matches the graph
// package's own default so neither side throttles the other under normal load.
const defaultBufferSize = 64

// Stream wraps a graph execution consumed through selectable modes.
// The type parameter T matches the Graph[T] output type, so Collect returns
// the same type-safe result the framework's own stream would.
//
// A Stream must be consumed exactly once, either via Iter or via Collect.
// It is not safe for concurrent use.
type Stream[T any] struct {
	iterator    iter.Seq2[Chunk, error]
	graphStream *graph.GraphStream[T]
	cancel      context.CancelFunc
	consumed    bool
}

// graphItem carries one framework event (or error) from the pump goroutine
// to the consumer loop.
type graphItem struct {
	event graph.GraphEvent
	err   error
}

// Execute starts the graph with streaming output and adapts the framework's
// multiplexed event stream into the requested modes. Passing no modes selects
// ModeMessages.
//
// When ModeCustom is requested, a Writer is installed in the context handed to
// node executors; payloads emitted through it surface as ModeCustom chunks,
// interleaved with the graph's own events in arrival order.
//
// The returned Stream must be consumed (Iter or Collect) to release the
// underlying execution resources. Breaking out of an Iter loop early is safe:
// the graph is cancelled and wound down.
func Execute[T any](ctx context.Context, dag *graph.Graph[T], initialState map[string]any, modes ...Mode) (*Stream[T], error) {
	selected, err := normalizeModes(modes)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	execCtx, cancel := context.WithCancel(ctx)

	var customEvents chan any
	if selected[ModeCustom] {
		customEvents = make(chan any, defaultBufferSize)
		execCtx = withWriter(execCtx, Writer{events: customEvents})
	}

	graphStream, err := dag.ExecuteStream(execCtx, initialState)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start graph stream: %w", err)
	}

	iteratorFunc := func(yield func(Chunk, error) bool) {
		defer cancel()

		// Pump the framework's stream into a channel so custom events can be
		// merged in real time. Once execCtx is cancelled the pump keeps
		// draining without forwarding, letting the graph wind down cleanly.
		graphItems := make(chan graphItem, defaultBufferSize)
		go func() {
			defer close(graphItems)
			for event, eventErr := range graphStream.Iter() {
				select {
				case graphItems <- graphItem{event: event, err: eventErr}:
				case <-execCtx.Done():
				}
			}
		}()

		for {
			select {
			case item, open := <-graphItems:
				if !open {
					flushCustomEvents(customEvents, yield)
					return
				}

				if item.err != nil {
					// Errors arrive paired with their node_error event. Surface
					// the lifecycle chunk first when debug mode wants it, then
					// forward the error. The loop keeps going: under
					// continue-on-error the graph streams on after a node
					// failure, and under fail-fast its iterator closes shortly.
					if chunk, include := convertGraphEvent(item.event, selected, runID); include {
						if !yield(chunk, nil) {
							cancel()
							drainGraphItems(graphItems)
							return
						}
					}
					if !yield(Chunk{}, item.err) {
						cancel()
						drainGraphItems(graphItems)
						return
					}
					continue
				}

				chunk, include := convertGraphEvent(item.event, selected, runID)
				if !include {
					continue
				}
				if !yield(chunk, nil) {
					cancel()
					drainGraphItems(graphItems)
					return
				}

			case payload := <-customEvents:
				if !yield(Chunk{Mode: ModeCustom, Custom: payload}, nil) {
					cancel()
					drainGraphItems(graphItems)
					return
				}
			}
		}
	}

	return &Stream[T]{
		iterator:    iteratorFunc,
		graphStream: graphStream,
		cancel:      cancel,
	}, nil
}

// Iter returns the chunk iterator for range-over-func consumption.
// Node failures are forwarded as errors in-line; iteration continues until the
// graph itself stops, so under a continue-on-error strategy chunks keep
// flowing past a failed node. Calling Iter on an already-consumed stream
// yields a single error instead of re-running the graph.
func (stream *Stream[T]) Iter() iter.Seq2[Chunk, error] {
	if stream.consumed {
		return func(yield func(Chunk, error) bool) {
			yield(Chunk{}, fmt.Errorf("stream already consumed"))
		}
	}
	stream.consumed = true
	return stream.iterator
}

// Collect consumes the execution through the framework's own stream and
// returns the final typed result, equivalent to Graph.Execute. Custom events
// are discarded. Collect fails if the stream was already handed out via Iter.
func (stream *Stream[T]) Collect() (*overview.StructuredOverview[T], error) {
	if stream.consumed {
		return nil, fmt.Errorf("stream already consumed")
	}
	stream.consumed = true

	defer stream.cancel()
	return stream.graphStream.Collect()
}

// convertGraphEvent maps a framework event to a chunk, honoring the selected
// modes. The second return value reports whether the event should be yielded.
func convertGraphEvent(event graph.GraphEvent, selected map[Mode]bool, runID string) (Chunk, bool) {
	metadata := Metadata{
		Node:  event.NodeID,
		Level: event.Level,
		RunID: runID,
	}

	switch event.Type {
	case graph.GraphEventNodeContent:
		if !selected[ModeMessages] {
			return Chunk{}, false
		}
		return Chunk{
			Mode:    ModeMessages,
			Message: &MessageChunk{Content: event.Content, Metadata: metadata},
		}, true

	case graph.GraphEventNodeReasoning:
		if !selected[ModeMessages] {
			return Chunk{}, false
		}
		return Chunk{
			Mode:    ModeMessages,
			Message: &MessageChunk{Reasoning: event.Reasoning, Metadata: metadata},
		}, true

	case graph.GraphEventNodeComplete:
		if !selected[ModeUpdates] {
			return Chunk{}, false
		}
		update := &Update{Node: event.NodeID, Metadata: metadata}
		if event.NodeResult != nil {
			update.Output = event.NodeResult.Output
			update.Duration = event.NodeResult.Duration
		}
		return Chunk{Mode: ModeUpdates, Update: update}, true

	case graph.GraphEventLevelStart:
		if !selected[ModeDebug] {
			return Chunk{}, false
		}
		return Chunk{
			Mode:  ModeDebug,
			Debug: &Debug{Phase: string(event.Type), Nodes: event.NodeIDs, Metadata: metadata},
		}, true

	case graph.GraphEventNodeStart, graph.GraphEventNodeToolCall, graph.GraphEventNodeToolResult,
		graph.GraphEventLevelComplete, graph.GraphEventDone:
		if !selected[ModeDebug] {
			return Chunk{}, false
		}
		return Chunk{
			Mode:  ModeDebug,
			Debug: &Debug{Phase: string(event.Type), Metadata: metadata},
		}, true

	case graph.GraphEventNodeError:
		if !selected[ModeDebug] {
			return Chunk{}, false
		}
		return Chunk{
			Mode:  ModeDebug,
			Debug: &Debug{Phase: string(event.Type), Err: event.Error, Metadata: metadata},
		}, true
	}

	return Chunk{}, false
}

// flushCustomEvents yields any custom payloads still buffered after the graph
// stream has finished. Receiving from a nil channel falls through to default.
func flushCustomEvents(customEvents chan any, yield func(Chunk, error) bool) {
	for {
		select {
		case payload := <-customEvents:
			if !yield(Chunk{Mode: ModeCustom, Custom: payload}, nil) {
				return
			}
		default:
			return
		}
	}
}

// drainGraphItems empties the pump channel until it closes so the pump
// goroutine is never left blocked after the consumer stops.
func drainGraphItems(graphItems <-chan graphItem) {
	for range graphItems {
	}
}
