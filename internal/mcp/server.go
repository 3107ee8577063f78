// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the kbdesk matching engine as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kbdesk/kbdesk/internal/core"
	"github.com/kbdesk/kbdesk/internal/observability"
	"github.com/kbdesk/kbdesk/pkg/models"
)

// Server wraps the matching engine and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	engine      *core.Engine
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server over the engine. metricsCalc may be
// nil if the event log is disabled.
func NewServer(engine *core.Engine, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		engine:      engine,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "kbdesk", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type askInput struct {
	Question string `json:"question" jsonschema:"required,a plain-language question about the system"`
	UserID   string `json:"user_id,omitempty" jsonschema:"conversation identifier for multi-turn clarification. Defaults to 'mcp'."`
}

type askOutput struct {
	Answer            string `json:"answer"`
	AwaitingSelection bool   `json:"awaiting_selection"`
	Intent            string `json:"intent,omitempty"`
}

type addEntryInput struct {
	Question string   `json:"question" jsonschema:"required,the question this entry answers"`
	Answer   string   `json:"answer" jsonschema:"required,the answer text"`
	Tags     []string `json:"tags,omitempty" jsonschema:"topic tags used for clarification grouping"`
	Source   string   `json:"source,omitempty" jsonschema:"entry source kind (manual, button, menu). Defaults to manual."`
}

type addEntryOutput struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	QueriesAnswered    int     `json:"queries_answered"`
	QueriesUnmatched   int     `json:"queries_unmatched"`
	Clarifications     int     `json:"clarifications"`
	SelectionsResolved int     `json:"selections_resolved"`
	EntriesAppended    int     `json:"entries_appended"`
	MatchRate          float64 `json:"match_rate"`
	EventCount         int     `json:"event_count"`
	OldestEvent        string  `json:"oldest_event,omitempty"`
	NewestEvent        string  `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "ask",
		Description: "Ask the knowledge base a plain-language question. May return a numbered clarification prompt; reply with the bare number using the same user_id to pick an option.",
	}, s.handleAsk)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_knowledge_entry",
		Description: "Add a question/answer pair to the knowledge base. The entry becomes matchable immediately.",
	}, s.handleAddEntry)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated matching metrics from the event log: answered, unmatched, and clarified query counts plus the overall match rate.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleAsk(_ context.Context, _ *gomcp.CallToolRequest, input askInput) (*gomcp.CallToolResult, askOutput, error) {
	if input.Question == "" {
		return errorResult("question is required"), askOutput{}, nil
	}
	userID := input.UserID
	if userID == "" {
		userID = "mcp"
	}

	reply := s.engine.Answer(userID, input.Question)
	intent, _ := s.engine.ClassifyIntent(input.Question)
	if intent == core.IntentUnknown {
		intent = ""
	}

	out := askOutput{
		Answer:            reply.Text,
		AwaitingSelection: reply.AwaitingSelection,
		Intent:            intent,
	}
	return nil, out, nil
}

func (s *Server) handleAddEntry(_ context.Context, _ *gomcp.CallToolRequest, input addEntryInput) (*gomcp.CallToolResult, addEntryOutput, error) {
	if input.Question == "" {
		return errorResult("question is required"), addEntryOutput{}, nil
	}
	if input.Answer == "" {
		return errorResult("answer is required"), addEntryOutput{}, nil
	}

	source := models.SourceManual
	switch input.Source {
	case "", string(models.SourceManual):
	case string(models.SourceButton):
		source = models.SourceButton
	case string(models.SourceMenu):
		source = models.SourceMenu
	default:
		return errorResult(fmt.Sprintf("invalid source %q: must be one of manual, button, menu", input.Source)), addEntryOutput{}, nil
	}

	id, err := s.engine.AddKnowledgeEntry(input.Question, input.Answer, input.Tags, source, nil)
	if err != nil {
		return errorResult(fmt.Sprintf("adding knowledge entry: %s", err)), addEntryOutput{}, nil
	}

	out := addEntryOutput{
		ID:      id,
		Message: fmt.Sprintf("knowledge entry %s added", id),
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics not available (event log may be disabled)"), metricsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	since, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since: %s", err)), metricsOutput{}, nil
	}

	m, err := s.metricsCalc.Calculate(since)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), metricsOutput{}, nil
	}

	out := metricsOutput{
		QueriesAnswered:    m.QueriesAnswered,
		QueriesUnmatched:   m.QueriesUnmatched,
		Clarifications:     m.Clarifications,
		SelectionsResolved: m.SelectionsResolved,
		EntriesAppended:    m.EntriesAppended,
		MatchRate:          m.MatchRate(),
		EventCount:         m.EventCount,
	}
	if m.OldestEvent != nil {
		out.OldestEvent = m.OldestEvent.Format(time.RFC3339)
	}
	if m.NewestEvent != nil {
		out.NewestEvent = m.NewestEvent.Format(time.RFC3339)
	}
	return nil, out, nil
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
