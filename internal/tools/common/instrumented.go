package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/box-community/mcp-server-box/internal/instrumentation"
	"github.com/box-community/mcp-server-box/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with metrics and audit logging.
// It records tool invocation metrics and logs the invocation for audit purposes.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// If no instrumentation configured, just call the handler
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		start := time.Now()
		invocation := newInvocation(ctx, toolName, sc)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := completeInvocation(invocation, result, err)

		if metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, duration)
		}
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}

// InstrumentedToolHandlerWithOperation is like InstrumentedToolHandler but
// also records the Box operation type for more detailed metrics.
//
// This handler records both:
// - MCP tool invocation metrics (mcp_tool_invocations_total, mcp_tool_duration_seconds)
// - Box API operation metrics (box_api_operations_total, box_api_operation_duration_seconds)
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithOperation("my_tool", "read", sc, handler))
func InstrumentedToolHandlerWithOperation(
	toolName string,
	operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		start := time.Now()
		invocation := newInvocation(ctx, toolName, sc).WithOperation(operation)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := completeInvocation(invocation, result, err)

		if metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, duration)
			metrics.RecordBoxAPIOperation(ctx, operation, status, duration)
		}
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}

func newInvocation(ctx context.Context, toolName string, sc *server.ServerContext) *instrumentation.ToolInvocation {
	invocation := instrumentation.NewToolInvocation(toolName).
		WithSpanContext(ctx).
		WithAuthMode(string(sc.Mode()))
	if _, subjectID := sc.Subject(); subjectID != "" {
		invocation.WithSubject(subjectID)
	}
	return invocation
}

// completeInvocation derives the invocation status from the handler outcome.
// A tool result flagged IsError counts as a failure even when the handler
// returned a nil error.
func completeInvocation(invocation *instrumentation.ToolInvocation, result *mcp.CallToolResult, err error) string {
	if err != nil {
		invocation.CompleteWithError(err)
		return instrumentation.StatusError
	}
	if result != nil && result.IsError {
		invocation.Complete(false, nil)
		return instrumentation.StatusError
	}
	invocation.CompleteSuccess()
	return instrumentation.StatusSuccess
}
