package pipeline

import (
	"strings"

	"github.com/leofalp/aigo/patterns/graph"
	"github.com/leofalp/aigo/providers/ai"
)

// bridgeChatStream adapts the LLM client's ChatStream into the graph's
// NodeStream contract: content and reasoning deltas become node events, tool
// call deltas are skipped (the pipeline's nodes carry no tools), and the full
// text is accumulated into the node's final result. The final result pointer
// is filled by the iterator before it completes, which is when the graph
// executor reads it.
func bridgeChatStream(chatStream *ai.ChatStream) *graph.NodeStream {
	finalResult := &graph.NodeResult{}

	iteratorFunc := func(yield func(graph.GraphEvent, error) bool) {
		var content strings.Builder
		var reasoning strings.Builder
		var usage *ai.Usage

		for event, err := range chatStream.Iter() {
			if err != nil {
				yield(graph.GraphEvent{}, err)
				return
			}

			switch event.Type {
			case ai.StreamEventContent:
				content.WriteString(event.Content)
				if !yield(graph.GraphEvent{
					Type:    graph.GraphEventNodeContent,
					Content: event.Content,
				}, nil) {
					return
				}

			case ai.StreamEventReasoning:
				reasoning.WriteString(event.Reasoning)
				if !yield(graph.GraphEvent{
					Type:      graph.GraphEventNodeReasoning,
					Reasoning: event.Reasoning,
				}, nil) {
					return
				}

			case ai.StreamEventUsage:
				usage = event.Usage
			}
		}

		finalResult.Output = content.String()

		metadata := map[string]any{}
		if reasoning.Len() > 0 {
			metadata["reasoning"] = reasoning.String()
		}
		if usage != nil {
			metadata["usage"] = usage
		}
		if len(metadata) > 0 {
			finalResult.Metadata = metadata
		}
	}

	return graph.NewNodeStream(iteratorFunc, finalResult)
}
