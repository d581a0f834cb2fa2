// Package instrumentation provides OpenTelemetry-based observability for
// the Box MCP server: a meter/tracer provider with pluggable exporters
// (prometheus, otlp, stdout), a metrics recorder for HTTP, Box API, auth
// gate and tool metrics, span helpers and an audit logger.
//
// Instrumentation is disabled entirely with INSTRUMENTATION_ENABLED=false;
// every recorder method is safe to call when disabled.
//
// # Cardinality
//
// Metrics default to low-cardinality labels. Subject-level labels are
// opt-in via METRICS_DETAILED_LABELS and should stay off in production.
// Audit logs anonymize Box logins unless AUDIT_LOGGING_INCLUDE_PII is set.
package instrumentation
