package server

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jonwraymond/faqintent/bot"
	"github.com/jonwraymond/faqintent/intent"
	"github.com/jonwraymond/faqintent/match"
)

// Config configures a Server.
type Config struct {
	ServerInfo ServerInfo

	// Logger receives request logs. If nil, logging is off.
	Logger *zap.Logger

	// Registry receives the metrics. If nil, a private registry is used.
	Registry *prometheus.Registry
}

// ServerInfo describes this server for the initialize response.
type ServerInfo struct {
	Name    string
	Version string
}

// ToolHandler executes a tool with arguments parsed from a request.
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// LocalToolOption configures tool registration.
type LocalToolOption func(*localToolConfig)

type localToolConfig struct {
	namespace string
	tags      []string
	version   string
}

// WithNamespace sets the namespace for a tool.
func WithNamespace(ns string) LocalToolOption {
	return func(c *localToolConfig) {
		c.namespace = ns
	}
}

// WithTags sets the tags for a tool.
func WithTags(tags ...string) LocalToolOption {
	return func(c *localToolConfig) {
		c.tags = tags
	}
}

// WithVersion sets the version for a tool.
func WithVersion(v string) LocalToolOption {
	return func(c *localToolConfig) {
		c.version = v
	}
}

// Server serves a Bot over MCP, JSON-RPC, and REST.
type Server struct {
	bot     *bot.Bot
	config  Config
	logger  *zap.Logger
	metrics *Metrics

	mu       sync.RWMutex
	tools    []model.Tool
	handlers map[string]ToolHandler
	names    map[string]string
}

// New creates a Server for b with the built-in tools registered.
func New(b *bot.Bot, cfg Config) (*Server, error) {
	if cfg.ServerInfo.Name == "" {
		cfg.ServerInfo.Name = "faqintent"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		bot:      b,
		config:   cfg,
		logger:   logger,
		metrics:  NewMetrics(cfg.Registry),
		handlers: make(map[string]ToolHandler),
		names:    make(map[string]string),
	}
	if err := s.registerBuiltins(); err != nil {
		return nil, err
	}
	return s, nil
}

// Bot returns the served bot.
func (s *Server) Bot() *bot.Bot {
	return s.bot
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// RegisterLocal registers a tool with its handler.
func (s *Server) RegisterLocal(tool model.Tool, handler ToolHandler) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	id := tool.ToolID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.handlers[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, id)
	}
	s.tools = append(s.tools, tool)
	s.handlers[id] = handler
	if _, taken := s.names[tool.Name]; !taken {
		s.names[tool.Name] = id
	}
	return nil
}

// RegisterLocalFunc is a convenience for inline tool definition.
func (s *Server) RegisterLocalFunc(
	name, description string,
	inputSchema map[string]any,
	handler ToolHandler,
	opts ...LocalToolOption,
) error {
	cfg := localToolConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tool := model.Tool{
		Tool: mcp.Tool{
			Name:        name,
			Description: description,
			InputSchema: inputSchema,
		},
		Namespace: cfg.namespace,
		Version:   cfg.version,
		Tags:      model.NormalizeTags(cfg.tags),
	}
	return s.RegisterLocal(tool, handler)
}

// ListTools returns registered tools in registration order.
func (s *Server) ListTools() []model.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Tool(nil), s.tools...)
}

// Execute runs a tool by bare name or namespaced ID.
func (s *Server) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	s.mu.RLock()
	id, ok := s.names[name]
	if !ok {
		id = name
	}
	handler, ok := s.handlers[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	result, err := handler(ctx, args)
	s.metrics.ObserveTool(id, err)
	if err != nil {
		s.logger.Debug("tool call failed", zap.String("tool", id), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// Ask answers a chat message and records the outcome.
func (s *Server) Ask(ctx context.Context, query string) (bot.Reply, error) {
	reply, err := s.bot.Ask(ctx, query)
	if err != nil {
		if strings.TrimSpace(query) == "" {
			s.metrics.ObserveEmpty()
		}
		return bot.Reply{}, err
	}
	s.metrics.ObserveReply(reply)
	return reply, nil
}

// MatchRequest asks for a raw match decision.
type MatchRequest struct {
	Query string `json:"query"`

	// Threshold overrides the bot's threshold when set.
	Threshold *float64 `json:"threshold,omitempty"`

	// Explain includes the per-intent score breakdown.
	Explain bool `json:"explain,omitempty"`
}

// MatchResponse is a raw match decision.
type MatchResponse struct {
	Query     string        `json:"query"`
	Matched   bool          `json:"matched"`
	IntentID  string        `json:"intentId,omitempty"`
	Title     string        `json:"title,omitempty"`
	Score     float64       `json:"score"`
	Threshold float64       `json:"threshold"`
	Scores    []match.Score `json:"scores,omitempty"`
}

// Match scores a query without producing a chat reply.
func (s *Server) Match(req MatchRequest) MatchResponse {
	m := s.bot.Matcher()
	threshold := m.Threshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	res := m.MatchThreshold(req.Query, threshold)
	resp := MatchResponse{
		Query:     req.Query,
		Matched:   res.Matched(),
		Score:     res.Score,
		Threshold: threshold,
	}
	if res.Matched() {
		resp.IntentID = res.Intent.ID
		resp.Title = res.Intent.Title
	}
	if req.Explain {
		resp.Scores = m.Explain(req.Query)
	}
	return resp
}

// ListIntents describes every catalog intent at level.
func (s *Server) ListIntents(level intent.DetailLevel) ([]intent.Description, error) {
	catalog := s.bot.Catalog()
	out := make([]intent.Description, 0, catalog.Len())
	for _, it := range catalog.Intents() {
		d, err := intent.Describe(it, level)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// DescribeIntent describes one intent at level.
func (s *Server) DescribeIntent(id string, level intent.DetailLevel) (intent.Description, error) {
	return s.bot.Catalog().DescribeID(id, level)
}
