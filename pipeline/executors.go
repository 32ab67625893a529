package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/aigo/patterns/graph"

	"github.com/toi500/langgraph/stream"
)

// ErrNoTopic is returned by the refine_topic node when neither its params nor
// the initial state provide a topic.
var ErrNoTopic = errors.New("pipeline: no topic provided")

// topicRefiner is the first node. It performs no LLM call — it refines the
// topic deterministically and reports progress through the custom-event Writer.
type topicRefiner struct{}

var _ graph.NodeExecutor = (*topicRefiner)(nil)

// Execute resolves the topic, refines it, and stores the refined value as the
// node output for the downstream joke node.
func (refiner *topicRefiner) Execute(ctx context.Context, input *graph.NodeInput) (*graph.NodeResult, error) {
	writer := stream.WriterFromContext(ctx)

	topic, err := resolveTopic(ctx, input)
	if err != nil {
		return nil, err
	}

	writer.Emit(map[string]any{"node": NodeRefineTopic, "status": "refining", "topic": topic})

	refined := topic + " and cats"

	writer.Emit(map[string]any{"node": NodeRefineTopic, "status": "refined", "topic": refined})

	return &graph.NodeResult{
		Output:   refined,
		Metadata: map[string]any{"original_topic": topic},
	}, nil
}

// resolveTopic reads the topic from node params first, then from the shared
// state populated by the initial state map.
func resolveTopic(ctx context.Context, input *graph.NodeInput) (string, error) {
	if raw, ok := input.Params[StateKeyTopic]; ok {
		if topic, ok := raw.(string); ok && topic != "" {
			return topic, nil
		}
	}

	raw, found, err := input.SharedState.Get(ctx, StateKeyTopic)
	if err != nil {
		return "", fmt.Errorf("failed to read topic from shared state: %w", err)
	}
	if !found {
		return "", ErrNoTopic
	}

	topic, ok := raw.(string)
	if !ok || topic == "" {
		return "", ErrNoTopic
	}

	return topic, nil
}

// jokeWriter is the second node. It prompts the node's LLM client for a joke
// as JSON matching the Joke struct. The streaming path bridges the client's
// ChatStream into the graph's NodeStream so content deltas surface live.
type jokeWriter struct{}

var _ graph.NodeExecutor = (*jokeWriter)(nil)
var _ graph.StreamExecutor = (*jokeWriter)(nil)

// Execute is the non-streaming fallback, used by Graph.Execute and by
// ExecuteStream when the provider does not support streaming.
func (writer *jokeWriter) Execute(ctx context.Context, input *graph.NodeInput) (*graph.NodeResult, error) {
	prompt, err := jokePrompt(input)
	if err != nil {
		return nil, err
	}

	response, err := input.Client.SendMessage(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("joke generation failed: %w", err)
	}

	result := &graph.NodeResult{Output: response.Content}
	if response.Usage != nil {
		result.Metadata = map[string]any{"usage": response.Usage}
	}

	return result, nil
}

// ExecuteStream streams the joke token-by-token.
func (writer *jokeWriter) ExecuteStream(ctx context.Context, input *graph.NodeInput) (*graph.NodeStream, error) {
	prompt, err := jokePrompt(input)
	if err != nil {
		return nil, err
	}

	chatStream, err := input.Client.StreamMessage(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to start joke stream: %w", err)
	}

	return bridgeChatStream(chatStream), nil
}

// jokePrompt builds the joke prompt from the upstream refined topic.
func jokePrompt(input *graph.NodeInput) (string, error) {
	upstream, ok := input.UpstreamResults[NodeRefineTopic]
	if !ok || upstream == nil || upstream.Output == nil {
		return "", fmt.Errorf("missing refined topic from node %q", NodeRefineTopic)
	}

	topic := fmt.Sprintf("%v", upstream.Output)

	return fmt.Sprintf(
		"Write a short joke about %s. Respond with only a JSON object of the form "+
			`{"topic": "<the topic>", "text": "<the joke>"} and nothing else.`,
		topic,
	), nil
}
