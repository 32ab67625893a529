package stream

import "context"

// writerContextKey is the context key under which Execute installs the Writer.
type writerContextKey struct{}

// Writer lets node executors emit arbitrary payloads onto the chunk stream
// when ModeCustom is selected. A zero Writer is a valid no-op: emitting on it
// does nothing, so executors can call Emit unconditionally.
type Writer struct {
	events chan<- any
}

// Emit publishes a payload to the stream consumer as a ModeCustom chunk.
//
// Emit never blocks graph execution: if the consumer has fallen behind and the
// internal buffer is full, or if no consumer exists (ModeCustom was not
// requested, or the executor runs outside Execute), the payload is dropped.
func (writer Writer) Emit(payload any) {
	if writer.events == nil {
		return
	}

	select {
	case writer.events <- payload:
	default:
		// Consumer is not keeping up; progress payloads are advisory.
	}
}

// WriterFromContext returns the Writer installed by Execute when ModeCustom
// was requested. Outside of such a call it returns a no-op Writer, never a
// failure — executors do not need to know how they are being consumed.
func WriterFromContext(ctx context.Context) Writer {
	if writer, ok := ctx.Value(writerContextKey{}).(Writer); ok {
		return writer
	}
	return Writer{}
}

// withWriter installs a Writer in the context for WriterFromContext to find.
func withWriter(ctx context.Context, writer Writer) context.Context {
	return context.WithValue(ctx, writerContextKey{}, writer)
}
