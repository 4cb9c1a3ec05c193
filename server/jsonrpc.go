package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonwraymond/toolfoundation/model"

	"github.com/jonwraymond/faqintent/bot"
	"github.com/jonwraymond/faqintent/intent"
)

// Request is an incoming JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC response.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func errorResponse(id any, code int, msg string) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: msg},
	}
}

// HandleRequest processes one request and returns its response.
func (s *Server) HandleRequest(ctx context.Context, req Request) Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.ID)
	case "ping":
		return Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{}}
	case "tools/list":
		return s.handleToolsList(req.ID)
	case "tools/call":
		return s.handleToolsCall(ctx, req.ID, req.Params)
	default:
		return errorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("method %s not found", req.Method))
	}
}

func (s *Server) handleInitialize(id any) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Result: map[string]any{
			"protocolVersion": model.MCPVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    s.config.ServerInfo.Name,
				"version": s.config.ServerInfo.Version,
			},
		},
	}
}

func (s *Server) handleToolsList(id any) Response {
	tools := s.ListTools()
	out := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		out = append(out, map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": tool.InputSchema,
		})
	}
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  map[string]any{"tools": out},
	}
}

type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) handleToolsCall(ctx context.Context, id any, params json.RawMessage) Response {
	var p toolsCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return errorResponse(id, ErrCodeInvalidParams, err.Error())
	}

	result, err := s.Execute(ctx, p.Name, p.Arguments)
	if err != nil {
		return errorResponse(id, errorCode(err), err.Error())
	}
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, ErrToolNotFound):
		return ErrCodeToolNotFound
	case errors.Is(err, ErrInvalidParams),
		errors.Is(err, bot.ErrEmptyQuery),
		errors.Is(err, intent.ErrInvalidDetail):
		return ErrCodeInvalidParams
	default:
		return ErrCodeToolExecFailed
	}
}
