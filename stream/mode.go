package stream

import (
	"fmt"
	"time"
)

// Mode selects which kind of chunks a Stream yields.
// Multiple modes can be requested in a single Execute call.
type Mode string

const (
	// ModeMessages yields token-by-token content and reasoning deltas
	// produced by streaming node executors.
	ModeMessages Mode = "messages"

	// ModeUpdates yields one chunk per completed node, carrying the node's
	// final output.
	ModeUpdates Mode = "updates"

	// ModeCustom yields payloads emitted by node executors through the
	// context-scoped Writer (see WriterFromContext).
	ModeCustom Mode = "custom"

	// ModeDebug yields level and node lifecycle events: level start/complete,
	// node start, node errors, tool activity, and the final done marker.
	ModeDebug Mode = "debug"
)

// Metadata identifies where a chunk came from.
type Metadata struct {
	// Node is the ID of the node that produced the chunk.
	// Empty for run-scoped chunks (custom payloads, level events, done).
	Node string `json:"node,omitempty"`

	// Level is the topological level that produced the chunk.
	Level int `json:"level"`

	// RunID uniquely identifies the Execute call that produced the chunk.
	RunID string `json:"run_id"`
}

// MessageChunk is a single token delta from a node's LLM call.
// Exactly one of Content or Reasoning is non-empty.
type MessageChunk struct {
	// Content is a text delta.
	Content string `json:"content,omitempty"`

	// Reasoning is a chain-of-thought delta from models that expose it.
	Reasoning string `json:"reasoning,omitempty"`

	// Metadata identifies the producing node.
	Metadata Metadata `json:"metadata"`
}

// Update reports that a node finished and carries its final output.
type Update struct {
	// Node is the ID of the completed node.
	Node string `json:"node"`

	// Output is the node's final output value.
	Output any `json:"output,omitempty"`

	// Duration is the wall-clock time the node took to execute.
	Duration time.Duration `json:"duration"`

	// Metadata identifies the producing node and run.
	Metadata Metadata `json:"metadata"`
}

// Debug describes a lifecycle event during graph execution.
type Debug struct {
	// Phase names the lifecycle phase: "level_start", "node_start",
	// "node_tool_call", "node_tool_result", "node_error", "level_complete",
	// or "done".
	Phase string `json:"phase"`

	// Nodes lists the node IDs at a level. Populated for "level_start".
	Nodes []string `json:"nodes,omitempty"`

	// Err is the error description for "node_error" phases.
	Err string `json:"error,omitempty"`

	// Metadata identifies the producing node (where applicable) and run.
	Metadata Metadata `json:"metadata"`
}

// Chunk is a single unit of streamed output. Exactly one payload field is
// populated, selected by Mode.
type Chunk struct {
	// Mode identifies which payload field is set.
	Mode Mode `json:"mode"`

	// Message carries a token delta when Mode == ModeMessages.
	Message *MessageChunk `json:"message,omitempty"`

	// Update carries a node completion when Mode == ModeUpdates.
	Update *Update `json:"update,omitempty"`

	// Custom carries a user-emitted payload when Mode == ModeCustom.
	Custom any `json:"custom,omitempty"`

	// Debug carries a lifecycle event when Mode == ModeDebug.
	Debug *Debug `json:"debug,omitempty"`
}

// normalizeModes validates the requested modes and returns them as a set.
// No modes means ModeMessages, mirroring the most common consumption pattern.
func normalizeModes(modes []Mode) (map[Mode]bool, error) {
	selected := make(map[Mode]bool, len(modes))

	if len(modes) == 0 {
		selected[ModeMessages] = true
		return selected, nil
	}

	for _, mode := range modes {
		switch mode {
		case ModeMessages, ModeUpdates, ModeCustom, ModeDebug:
			selected[mode] = true
		default:
			return nil, fmt.Errorf("unsupported stream mode %q", mode)
		}
	}

	return selected, nil
}
