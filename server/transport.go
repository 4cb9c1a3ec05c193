package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ServeStdio reads newline-delimited requests from r and writes responses
// to w. It blocks until r is exhausted or ctx is cancelled.
func ServeStdio(ctx context.Context, s *Server, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := encoder.Encode(errorResponse(nil, ErrCodeParseError, err.Error())); err != nil {
				return fmt.Errorf("failed to encode error response: %w", err)
			}
			continue
		}

		if err := encoder.Encode(s.HandleRequest(ctx, req)); err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// ServeHTTP returns an http.Handler that answers POSTed JSON-RPC requests.
func ServeHTTP(s *Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		var rpcReq Request
		if err := json.NewDecoder(req.Body).Decode(&rpcReq); err != nil {
			_ = json.NewEncoder(w).Encode(errorResponse(nil, ErrCodeParseError, err.Error()))
			return
		}
		_ = json.NewEncoder(w).Encode(s.HandleRequest(req.Context(), rpcReq))
	})
}

// ServeSSE returns an http.Handler that answers a POSTed JSON-RPC request
// as a Server-Sent Events stream.
func ServeSSE(s *Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		var rpcReq Request
		if err := json.NewDecoder(req.Body).Decode(&rpcReq); err != nil {
			writeSSEEvent(w, flusher, "error", errorResponse(nil, ErrCodeParseError, err.Error()))
			return
		}
		writeSSEEvent(w, flusher, "message", s.HandleRequest(req.Context(), rpcReq))
	})
}

func writeSSEEvent(w io.Writer, f http.Flusher, event string, data any) {
	payload, _ := json.Marshal(data)
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return
	}
	f.Flush()
}
