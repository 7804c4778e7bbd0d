// Package server holds the shared state and HTTP plumbing of the MCP server
// mode.
//
// # Key Components
//
// ServerContext owns the notifications service used by every MCP tool,
// together with the logger, metrics and the flag that enables destructive
// tools.
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed for the
// streamable HTTP transport.
//
// MetricsServer exposes Prometheus metrics on a dedicated address so that
// operational metrics are not reachable through the MCP endpoint.
package server
