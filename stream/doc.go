// Package stream adapts the multiplexed event stream produced by aigo's graph
// pattern into selectable per-mode chunk streams, the way a consumer of a
// graph-execution framework typically wants to read them.
//
// The graph package emits every kind of execution event (token deltas, node
// lifecycle, level lifecycle) on a single [graph.GraphStream]. This package
// does not reimplement any of that machinery — it wraps the framework's stream
// and filters it into modes:
//
//   - [ModeMessages] yields token-by-token content and reasoning deltas as
//     [MessageChunk] values, tagged with the producing node.
//   - [ModeUpdates] yields one [Update] per completed node, carrying the node's
//     final output.
//   - [ModeCustom] yields arbitrary payloads emitted by node executors through
//     a context-scoped [Writer] (see [WriterFromContext]).
//   - [ModeDebug] yields [Debug] values for level and node lifecycle events.
//
// Modes can be combined; each chunk identifies its mode via Chunk.Mode.
//
// Example:
//
//	s, err := stream.Execute(ctx, g, map[string]any{"topic": "ice cream"},
//	    stream.ModeMessages, stream.ModeCustom)
//	for chunk, err := range s.Iter() {
//	    if err != nil { log.Fatal(err) }
//	    switch chunk.Mode {
//	    case stream.ModeMessages:
//	        fmt.Print(chunk.Message.Content)
//	    case stream.ModeCustom:
//	        fmt.Printf("\n[progress] %v\n", chunk.Custom)
//	    }
//	}
//
// The [Accumulator] and [Snapshot] helpers additionally let a consumer decode
// structured output while it is still streaming, by repairing the partial JSON
// accumulated so far.
package stream
