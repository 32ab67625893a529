// Package pipeline builds the walkthrough's two-node example graph:
// a plain refinement step feeding a streaming LLM step.
//
//	refine_topic ──► generate_joke
//
// The refine_topic node is an ordinary executor (no LLM call): it reads the
// topic from its params or from the initial state and appends " and cats",
// reporting progress through the stream package's custom-event Writer. The
// generate_joke node prompts the node's LLM client for a joke as JSON and
// streams the response token-by-token, so the graph's stream carries live
// content deltas for it.
//
// All orchestration (topological execution, event multiplexing, output
// parsing) is the graph package's; this package only supplies executors
// and wiring.
package pipeline

import (
	"fmt"

	"github.com/leofalp/aigo/core/client"
	"github.com/leofalp/aigo/patterns/graph"
)

// Node IDs of the two pipeline steps.
const (
	NodeRefineTopic  = "refine_topic"
	NodeGenerateJoke = "generate_joke"
)

// StateKeyTopic is the initial-state key the refine_topic node reads when no
// default topic was configured on the node itself.
const StateKeyTopic = "topic"

// Joke is the typed output of the pipeline, produced by the generate_joke node.
type Joke struct {
	Topic string `json:"topic" jsonschema:"required,description=The refined topic the joke is about"`
	Text  string `json:"text"  jsonschema:"required,description=The joke itself"`
}

// config collects pipeline construction settings.
type config struct {
	defaultTopic string
	graphOptions []graph.Option
}

// Option customizes pipeline construction.
type Option func(*config)

// WithDefaultTopic sets a topic on the refine_topic node's params, used when
// the initial state does not carry one. Params take precedence over state.
func WithDefaultTopic(topic string) Option {
	return func(cfg *config) {
		cfg.defaultTopic = topic
	}
}

// WithGraphOptions forwards options (timeouts, error strategy, buffer size,
// state provider) to the underlying graph builder.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(cfg *config) {
		cfg.graphOptions = append(cfg.graphOptions, opts...)
	}
}

// New builds and validates the two-node joke graph. The baseClient is the LLM
// client used by the generate_joke node.
func New(baseClient *client.Client, opts ...Option) (*graph.Graph[Joke], error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	var refineOptions []graph.NodeOption
	if cfg.defaultTopic != "" {
		refineOptions = append(refineOptions, graph.WithNodeParams(map[string]any{
			StateKeyTopic: cfg.defaultTopic,
		}))
	}

	jokeGraph, err := graph.NewGraphBuilder[Joke](baseClient, cfg.graphOptions...).
		AddNode(NodeRefineTopic, &topicRefiner{}, refineOptions...).
		AddNode(NodeGenerateJoke, &jokeWriter{}).
		AddEdge(NodeRefineTopic, NodeGenerateJoke).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build joke pipeline: %w", err)
	}

	return jokeGraph, nil
}
