package server

import (
	"context"
	"fmt"

	"github.com/jonwraymond/faqintent/intent"
)

const (
	toolNamespace = "faq"

	ToolAsk            = "ask"
	ToolMatchIntent    = "match_intent"
	ToolListIntents    = "list_intents"
	ToolDescribeIntent = "describe_intent"
)

var detailSchema = map[string]any{
	"type": "string",
	"enum": []any{
		string(intent.DetailSummary),
		string(intent.DetailUtterances),
		string(intent.DetailFull),
	},
	"description": "How much of each intent to include (default summary)",
}

func (s *Server) registerBuiltins() error {
	builtins := []struct {
		name        string
		description string
		schema      map[string]any
		handler     ToolHandler
		tags        []string
	}{
		{
			name:        ToolAsk,
			description: "Answer a user message from the FAQ catalog, with suggestions when nothing matches",
			schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "The user message"},
				},
				"required": []any{"query"},
			},
			handler: s.handleAsk,
			tags:    []string{"chat", "faq"},
		},
		{
			name:        ToolMatchIntent,
			description: "Match a query to the best catalog intent and report its score",
			schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":     map[string]any{"type": "string", "description": "The query to match"},
					"threshold": map[string]any{"type": "number", "description": "Minimum combined score"},
					"explain":   map[string]any{"type": "boolean", "description": "Include every intent's score breakdown"},
				},
				"required": []any{"query"},
			},
			handler: s.handleMatch,
			tags:    []string{"match", "intent"},
		},
		{
			name:        ToolListIntents,
			description: "List the intents in the FAQ catalog",
			schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"detail": detailSchema,
				},
			},
			handler: s.handleListIntents,
			tags:    []string{"intent", "catalog"},
		},
		{
			name:        ToolDescribeIntent,
			description: "Describe one catalog intent",
			schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":     map[string]any{"type": "string", "description": "Intent ID"},
					"detail": detailSchema,
				},
				"required": []any{"id"},
			},
			handler: s.handleDescribeIntent,
			tags:    []string{"intent", "catalog"},
		},
	}

	for _, b := range builtins {
		err := s.RegisterLocalFunc(b.name, b.description, b.schema, b.handler,
			WithNamespace(toolNamespace),
			WithTags(b.tags...),
			WithVersion(s.config.ServerInfo.Version),
		)
		if err != nil {
			return fmt.Errorf("register %s: %w", b.name, err)
		}
	}
	return nil
}

func (s *Server) handleAsk(ctx context.Context, args map[string]any) (any, error) {
	query, err := stringArg(args, "query", true)
	if err != nil {
		return nil, err
	}
	return s.Ask(ctx, query)
}

func (s *Server) handleMatch(_ context.Context, args map[string]any) (any, error) {
	query, err := stringArg(args, "query", true)
	if err != nil {
		return nil, err
	}
	req := MatchRequest{Query: query}

	if v, ok := args["threshold"]; ok && v != nil {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: threshold must be a number", ErrInvalidParams)
		}
		req.Threshold = &f
	}
	if v, ok := args["explain"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: explain must be a boolean", ErrInvalidParams)
		}
		req.Explain = b
	}
	return s.Match(req), nil
}

func (s *Server) handleListIntents(_ context.Context, args map[string]any) (any, error) {
	detail, err := stringArg(args, "detail", false)
	if err != nil {
		return nil, err
	}
	intents, err := s.ListIntents(intent.DetailLevel(detail))
	if err != nil {
		return nil, err
	}
	return map[string]any{"intents": intents}, nil
}

func (s *Server) handleDescribeIntent(_ context.Context, args map[string]any) (any, error) {
	id, err := stringArg(args, "id", true)
	if err != nil {
		return nil, err
	}
	detail, err := stringArg(args, "detail", false)
	if err != nil {
		return nil, err
	}
	return s.DescribeIntent(id, intent.DetailLevel(detail))
}

func stringArg(args map[string]any, key string, required bool) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%w: %s is required", ErrInvalidParams, key)
		}
		return "", nil
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidParams, key)
	}
	return str, nil
}
