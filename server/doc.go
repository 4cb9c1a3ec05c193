// Package server exposes a [bot.Bot] to other programs.
//
// Three surfaces share one [Server]:
//
//   - MCP over the official SDK ([NewMCPServer], [RunStdio]) for agent
//     clients
//   - A minimal JSON-RPC handler ([Server.HandleRequest]) with stdio, HTTP,
//     and SSE transports ([ServeStdio], [ServeHTTP], [ServeSSE])
//   - A REST API with Prometheus metrics ([Router])
//
// Built-in tools, namespaced "faq":
//
//   - ask: answer a chat message, with fallback suggestions
//   - match_intent: score a query, optionally with a per-intent breakdown
//   - list_intents: list catalog intents
//   - describe_intent: render one intent at a detail level
//
// Example usage:
//
//	b, _ := bot.New(bot.Options{})
//	srv, err := server.New(b, server.Config{
//	    ServerInfo: server.ServerInfo{Name: "faqintent", Version: "1.0.0"},
//	})
//	if err != nil {
//	    return err
//	}
//
//	http.ListenAndServe(":8080", server.Router(srv))
package server
