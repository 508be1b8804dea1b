// Package runtime adapts the hosted agent-graph runtime behind one seam.
//
// Orchestration (routing a query to the structured-data agent or the web
// agent, handing off between them, running tool calls) belongs to the
// imported langgraphgo runtime. This package only declares the agents,
// their tools, and their instructions, and extracts the final text. A
// different orchestration backend can be substituted behind Runner
// without touching the rest of the core.
package runtime

import (
	"context"
	"fmt"

	"github.com/smallnest/langgraphgo/graph"
	"github.com/smallnest/langgraphgo/prebuilt"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// Runner is the capability contract the conversation session depends on:
// one opaque run of the top-level agent over a prompt.
type Runner interface {
	Run(ctx context.Context, input string) (string, error)
}

// Agent member names as the supervisor routes them.
const (
	aniListAgentName   = "anime_anilist_agent"
	webSearchAgentName = "web_search_agent"
)

// Config declares the agent hierarchy.
type Config struct {
	// Model backs every agent in the hierarchy.
	Model llms.Model

	// AniListTools are bound to the structured-data agent: the tag
	// catalog, the detail gateway, and the MCP server's search tools.
	AniListTools []tools.Tool

	// WebTools are bound to the web agent.
	WebTools []tools.Tool

	// MaxIterations bounds each agent's reasoning loop. Zero = default.
	MaxIterations int
}

// Orchestrator is the langgraphgo-backed Runner.
type Orchestrator struct {
	supervisor *graph.StateRunnable[map[string]any]
}

// New builds the three-agent hierarchy: a structured-data agent, a web
// agent, and a supervisor that routes between them.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("model is required")
	}
	maxIterations := cfg.MaxIterations
	if maxIterations == 0 {
		maxIterations = 8
	}

	aniListAgent, err := prebuilt.CreateReactAgent(cfg.Model, cfg.AniListTools, maxIterations)
	if err != nil {
		return nil, fmt.Errorf("failed to create anilist agent: %w", err)
	}

	webAgent, err := prebuilt.CreateReactAgent(cfg.Model, cfg.WebTools, maxIterations)
	if err != nil {
		return nil, fmt.Errorf("failed to create web search agent: %w", err)
	}

	supervisor, err := prebuilt.CreateSupervisor(cfg.Model, map[string]*graph.StateRunnable[map[string]any]{
		aniListAgentName:   aniListAgent,
		webSearchAgentName: webAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create supervisor: %w", err)
	}

	return &Orchestrator{supervisor: supervisor}, nil
}

// Run drives one full supervisor round over the input and returns the
// final agent text. The runtime's internal routing and tool planning are
// opaque to the caller.
func (o *Orchestrator) Run(ctx context.Context, input string) (string, error) {
	state := map[string]any{
		"messages": []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, RecommendationInstructions),
			llms.TextParts(llms.ChatMessageTypeHuman, input),
		},
	}

	result, err := o.supervisor.Invoke(ctx, state)
	if err != nil {
		return "", fmt.Errorf("agent run failed: %w", err)
	}

	text := finalText(result)
	if text == "" {
		return "", fmt.Errorf("agent run produced no text output")
	}
	return text, nil
}

// finalText returns the text of the last AI message in the final state.
func finalText(state map[string]any) string {
	messages, ok := state["messages"].([]llms.MessageContent)
	if !ok {
		return ""
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != llms.ChatMessageTypeAI {
			continue
		}
		for _, part := range messages[i].Parts {
			if textPart, ok := part.(llms.TextContent); ok && textPart.Text != "" {
				return textPart.Text
			}
		}
	}
	return ""
}

var _ Runner = (*Orchestrator)(nil)
