package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/faqintent/intent"
)

type askArgs struct {
	Query string `json:"query"`
}

type matchArgs struct {
	Query     string   `json:"query"`
	Threshold *float64 `json:"threshold,omitempty"`
	Explain   bool     `json:"explain,omitempty"`
}

type listArgs struct {
	Detail string `json:"detail,omitempty"`
}

type describeArgs struct {
	ID     string `json:"id"`
	Detail string `json:"detail,omitempty"`
}

// NewMCPServer builds an MCP server exposing the built-in tools.
// Input schemas are inferred from the argument types.
func NewMCPServer(s *Server) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    s.config.ServerInfo.Name,
		Version: s.config.ServerInfo.Version,
	}, nil)

	for _, tool := range s.ListTools() {
		t := &mcp.Tool{Name: tool.Name, Description: tool.Description}
		switch tool.Name {
		case ToolAsk:
			mcp.AddTool(srv, t, func(ctx context.Context, _ *mcp.CallToolRequest, args askArgs) (*mcp.CallToolResult, any, error) {
				reply, err := s.Ask(ctx, args.Query)
				s.metrics.ObserveTool(tool.ToolID(), err)
				if err != nil {
					return nil, nil, err
				}
				return nil, reply, nil
			})
		case ToolMatchIntent:
			mcp.AddTool(srv, t, func(_ context.Context, _ *mcp.CallToolRequest, args matchArgs) (*mcp.CallToolResult, any, error) {
				s.metrics.ObserveTool(tool.ToolID(), nil)
				return nil, s.Match(MatchRequest(args)), nil
			})
		case ToolListIntents:
			mcp.AddTool(srv, t, func(_ context.Context, _ *mcp.CallToolRequest, args listArgs) (*mcp.CallToolResult, any, error) {
				intents, err := s.ListIntents(intent.DetailLevel(args.Detail))
				s.metrics.ObserveTool(tool.ToolID(), err)
				if err != nil {
					return nil, nil, err
				}
				return nil, map[string]any{"intents": intents}, nil
			})
		case ToolDescribeIntent:
			mcp.AddTool(srv, t, func(_ context.Context, _ *mcp.CallToolRequest, args describeArgs) (*mcp.CallToolResult, any, error) {
				d, err := s.DescribeIntent(args.ID, intent.DetailLevel(args.Detail))
				s.metrics.ObserveTool(tool.ToolID(), err)
				if err != nil {
					return nil, nil, err
				}
				return nil, d, nil
			})
		}
	}
	return srv
}

// RunStdio serves MCP over stdin and stdout until ctx is cancelled or the
// client disconnects.
func RunStdio(ctx context.Context, s *Server) error {
	return NewMCPServer(s).Run(ctx, &mcp.StdioTransport{})
}
