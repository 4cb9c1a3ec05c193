// Command faqintent matches questions against an FAQ intent catalog and
// serves the FAQ bot over HTTP and MCP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// version is reported in MCP initialize responses.
var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
