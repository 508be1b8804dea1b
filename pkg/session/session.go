// Package session owns the conversation lifecycle: the MCP subprocess,
// the agent hierarchy built on top of it, and the per-conversation state
// (exchange history and learned preferences).
//
// A session is all-or-nothing: Start either leaves every dependency live
// or tears down whatever it managed to bring up. Recommendation turns
// never fail the conversation; upstream errors become an apologetic
// reply so the user can simply try again.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/anisense/anisense/pkg/anilist"
	"github.com/anisense/anisense/pkg/linkup"
	"github.com/anisense/anisense/pkg/runtime"
	"github.com/anisense/anisense/pkg/tool"
)

var (
	// ErrMissingLauncher means the external launcher command (npx by
	// default) is not on PATH, so the MCP subprocess cannot be spawned.
	ErrMissingLauncher = errors.New("launcher command not found")

	// ErrAlreadyStarted is returned by Start on a running session.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrNotStarted is returned by Recommend before Start.
	ErrNotStarted = errors.New("session not started")
)

// apology is the user-visible reply when an agent run fails. The turn is
// absorbed rather than propagated so the conversation can continue.
const apology = "Sorry, I ran into a problem generating your recommendation. Please try again."

const defaultRunTimeout = 120 * time.Second

// Exchange is one completed user/bot turn.
type Exchange struct {
	User string    `json:"user"`
	Bot  string    `json:"bot"`
	At   time.Time `json:"timestamp"`
}

// ToolSource is the MCP subprocess handle the session manages.
// *mcptoolset.Toolset satisfies it.
type ToolSource interface {
	Connect(ctx context.Context) error
	Tools() []tools.Tool
	Close() error
}

// Config wires a session's dependencies.
type Config struct {
	// Launcher is checked on PATH before the subprocess is spawned.
	// Empty skips the check.
	Launcher string

	// Toolset is the MCP subprocess handle. Required.
	Toolset ToolSource

	// Model backs the agent hierarchy. Required unless RunnerFactory
	// is set.
	Model llms.Model

	// Tags is the permitted tag catalog exposed via the get_tags tool.
	Tags []string

	// AniList backs the detail tool.
	AniList *anilist.Client

	// Search backs the web search tool.
	Search *linkup.Client

	// RunTimeout bounds one agent run. Zero = 120s.
	RunTimeout time.Duration

	// MaxIterations bounds each agent's reasoning loop. Zero = default.
	MaxIterations int

	// RunnerFactory overrides how the runner is built from the
	// discovered MCP tools. Nil uses the standard agent hierarchy.
	RunnerFactory func(mcpTools []tools.Tool) (runtime.Runner, error)
}

// Session is a stateful conversation. All methods are safe for
// concurrent use; agent runs themselves execute outside the lock.
type Session struct {
	cfg Config

	mu          sync.Mutex
	runner      runtime.Runner
	started     bool
	history     []Exchange
	preferences map[string]bool
}

// New creates a stopped session.
func New(cfg Config) (*Session, error) {
	if cfg.Toolset == nil {
		return nil, fmt.Errorf("toolset is required")
	}
	if cfg.RunnerFactory == nil && cfg.Model == nil {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.RunTimeout == 0 {
		cfg.RunTimeout = defaultRunTimeout
	}
	return &Session{
		cfg:         cfg,
		preferences: make(map[string]bool),
	}, nil
}

// Start brings the session up: verifies the launcher exists, connects
// the MCP subprocess, and builds the agent hierarchy over its tools.
// Any failure tears down the subprocess; no partial state is retained.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	if s.cfg.Launcher != "" {
		if _, err := exec.LookPath(s.cfg.Launcher); err != nil {
			return fmt.Errorf("%w: %s (install Node.js and try again)", ErrMissingLauncher, s.cfg.Launcher)
		}
	}

	if err := s.cfg.Toolset.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect MCP server: %w", err)
	}

	runner, err := s.buildRunner(s.cfg.Toolset.Tools())
	if err != nil {
		s.cfg.Toolset.Close()
		return fmt.Errorf("failed to build agents: %w", err)
	}

	s.runner = runner
	s.started = true
	slog.Info("Session started", "mcp_tools", len(s.cfg.Toolset.Tools()))
	return nil
}

// Stop tears down the subprocess and the agents. Conversation history
// and preferences survive a stop. Idempotent.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	err := s.cfg.Toolset.Close()
	s.runner = nil
	s.started = false
	return err
}

// Recommend runs one conversation turn. The input is augmented with the
// recent history and learned preferences before the agent run. Upstream
// failures are absorbed into an apologetic reply; only calling before
// Start is an error. History and preferences are updated on success only.
func (s *Session) Recommend(ctx context.Context, input string) (string, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return "", ErrNotStarted
	}
	runner := s.runner
	prompt := s.contextInput(input)
	timeout := s.cfg.RunTimeout
	s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	traceID := uuid.NewString()
	slog.Info("Processing request", "trace", traceID)

	reply, err := runner.Run(runCtx, prompt)
	if err != nil {
		slog.Error("Agent run failed", "trace", traceID, "error", err)
		return apology, nil
	}

	s.mu.Lock()
	s.history = append(s.history, Exchange{User: input, Bot: reply, At: time.Now()})
	extractPreferences(input, s.preferences)
	s.mu.Unlock()

	return reply, nil
}

// Reset clears the conversation history and learned preferences.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.preferences = make(map[string]bool)
}

// History returns a copy of all completed exchanges.
func (s *Session) History() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Exchange, len(s.history))
	copy(out, s.history)
	return out
}

// Preferences returns a copy of the learned preference flags.
func (s *Session) Preferences() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.preferences))
	for k, v := range s.preferences {
		out[k] = v
	}
	return out
}

func (s *Session) buildRunner(mcpTools []tools.Tool) (runtime.Runner, error) {
	if s.cfg.RunnerFactory != nil {
		return s.cfg.RunnerFactory(mcpTools)
	}

	aniListTools := make([]tools.Tool, 0, len(mcpTools)+2)
	aniListTools = append(aniListTools, mcpTools...)
	aniListTools = append(aniListTools,
		tool.NewTagsTool(s.cfg.Tags),
		tool.NewAnimeDetailTool(s.cfg.AniList),
	)

	return runtime.New(runtime.Config{
		Model:         s.cfg.Model,
		AniListTools:  aniListTools,
		WebTools:      []tools.Tool{tool.NewWebSearchTool(s.cfg.Search)},
		MaxIterations: s.cfg.MaxIterations,
	})
}

// contextInput prefixes the current request with the last three
// exchanges and the learned preferences. Callers hold s.mu.
func (s *Session) contextInput(input string) string {
	var parts []string

	if len(s.history) > 0 {
		parts = append(parts, "CONVERSATION HISTORY:")
		start := len(s.history) - 3
		if start < 0 {
			start = 0
		}
		for _, ex := range s.history[start:] {
			parts = append(parts, "User: "+ex.User, "Bot: "+ex.Bot)
		}
	}

	if len(s.preferences) > 0 {
		parts = append(parts, "USER PREFERENCES:")
		keys := make([]string, 0, len(s.preferences))
		for k := range s.preferences {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("- %s: %v", k, s.preferences[k]))
		}
	}

	parts = append(parts, "CURRENT REQUEST: "+input)
	return strings.Join(parts, "\n")
}
