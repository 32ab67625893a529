package stream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Accumulator collects content deltas for one node so the consumer can decode
// structured output while it is still streaming. It is not safe for concurrent
// use; keep one Accumulator per node.
type Accumulator struct {
	builder strings.Builder
}

// Append adds a content delta to the accumulation.
func (accumulator *Accumulator) Append(delta string) {
	accumulator.builder.WriteString(delta)
}

// String returns everything accumulated so far.
func (accumulator *Accumulator) String() string {
	return accumulator.builder.String()
}

// Len returns the number of bytes accumulated so far.
func (accumulator *Accumulator) Len() int {
	return accumulator.builder.Len()
}

// Snapshot decodes the accumulation into T, repairing the JSON if it is still
// incomplete. Mid-stream content is almost never valid JSON (unterminated
// strings, missing braces), so a failed unmarshal is retried against the
// jsonrepair output — the same recovery the consumed library applies to final
// LLM responses. A snapshot failure does not corrupt the Accumulator; later
// snapshots see the full accumulation.
func Snapshot[T any](accumulator *Accumulator) (*T, error) {
	content := stripMarkdownFences(strings.TrimSpace(accumulator.String()))
	if content == "" {
		return nil, fmt.Errorf("nothing accumulated yet")
	}

	var result T
	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return &result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return nil, fmt.Errorf("failed to repair partial JSON: %w", repairErr)
	}

	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return nil, fmt.Errorf("failed to decode repaired JSON as %T: %w", result, err)
	}

	return &result, nil
}

// stripMarkdownFences removes a leading ```json (or bare ```) fence and a
// trailing ``` so fenced model output can be decoded mid-stream.
func stripMarkdownFences(content string) string {
	for _, prefix := range []string{"```json", "```"} {
		if strings.HasPrefix(content, prefix) {
			content = strings.TrimSpace(strings.TrimPrefix(content, prefix))
			break
		}
	}
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
