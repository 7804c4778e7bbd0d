package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrStatus      = "status"
	attrOperation   = "operation"
	attrSubjectType = "subject_type"
	attrOutcome     = "outcome"
	attrTool        = "tool"
)

// Metrics records observability metrics. The zero value and a nil *Metrics
// are valid no-op recorders.
type Metrics struct {
	githubOperationsTotal   metric.Int64Counter
	githubOperationDuration metric.Float64Histogram

	classifiedTotal metric.Int64Counter
	cleanedTotal    metric.Int64Counter

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.githubOperationsTotal, err = meter.Int64Counter(
		"github_api_operations_total",
		metric.WithDescription("Total number of GitHub REST API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create github_api_operations_total counter: %w", err)
	}

	m.githubOperationDuration, err = meter.Float64Histogram(
		"github_api_operation_duration_seconds",
		metric.WithDescription("GitHub REST API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create github_api_operation_duration_seconds histogram: %w", err)
	}

	m.classifiedTotal, err = meter.Int64Counter(
		"notifications_classified_total",
		metric.WithDescription("Total number of classified notifications"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifications_classified_total counter: %w", err)
	}

	m.cleanedTotal, err = meter.Int64Counter(
		"notifications_cleaned_total",
		metric.WithDescription("Total number of notifications marked as done"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifications_cleaned_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordGitHubAPIOperation records one GitHub REST call.
//
// Parameters:
//   - operation: one of OperationListNotifications, OperationGetSubject, OperationMarkThreadDone
//   - status: StatusSuccess or StatusError
//   - duration: time taken for the call
func (m *Metrics) RecordGitHubAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil || m.githubOperationsTotal == nil || m.githubOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.githubOperationsTotal.Add(ctx, 1, attrs)
	m.githubOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordClassification records the outcome of classifying one notification.
// Outcome is one of OutcomeEligible, OutcomeOpen, OutcomeSkipped, OutcomeError.
func (m *Metrics) RecordClassification(ctx context.Context, subjectType, outcome string) {
	if m == nil || m.classifiedTotal == nil {
		return
	}

	m.classifiedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrSubjectType, subjectType),
		attribute.String(attrOutcome, outcome),
	))
}

// RecordCleanup records one mark-as-done attempt.
func (m *Metrics) RecordCleanup(ctx context.Context, status string) {
	if m == nil || m.cleanedTotal == nil {
		return
	}

	m.cleanedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// StatusFromError maps an error to StatusSuccess or StatusError.
func StatusFromError(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
