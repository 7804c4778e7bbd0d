// Package instrumentation provides OpenTelemetry instrumentation for
// gh-notifications-cleanup.
//
// It offers:
//   - OpenTelemetry metrics for GitHub REST calls and the triage pipeline
//   - Distributed tracing for GitHub calls, pipeline runs and MCP tool invocations
//   - Prometheus metrics export (served by internal/server on a dedicated port)
//   - OTLP and stdout exporters for other observability backends
//
// # Metrics
//
// GitHub API:
//   - github_api_operations_total: Counter of GitHub REST calls by operation and status
//   - github_api_operation_duration_seconds: Histogram of GitHub REST call durations
//
// Pipeline:
//   - notifications_classified_total: Counter of classified notifications by subject type and outcome
//   - notifications_cleaned_total: Counter of mark-as-done attempts by status
//
// MCP tools:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: gh-notifications-cleanup)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordGitHubAPIOperation(ctx, instrumentation.OperationListNotifications,
//		instrumentation.StatusSuccess, time.Since(start))
//
// A nil *Metrics is valid and records nothing, so pipeline code can run without
// a provider.
package instrumentation
