package telemetry

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"anki-mcp-go/internal/tools"
)

// CallerWrapper wraps a tool caller to add telemetry
type CallerWrapper struct {
	caller  tools.Caller
	metrics *Metrics
}

// NewCallerWrapper creates a new telemetry-aware tool caller wrapper
func NewCallerWrapper(caller tools.Caller, metrics *Metrics) *CallerWrapper {
	return &CallerWrapper{
		caller:  caller,
		metrics: metrics,
	}
}

// Call wraps the original Call to add telemetry. A tool result flagged as
// an error counts as an error execution even when the call itself
// succeeded at the protocol level.
func (w *CallerWrapper) Call(ctx context.Context, name string, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	result, err := w.caller.Call(ctx, name, req)

	status := "success"
	if err != nil || (result != nil && result.IsError) {
		status = "error"
	}

	w.metrics.RecordToolExecution(name, status, time.Since(start))

	return result, err
}
