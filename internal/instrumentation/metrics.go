package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrOperation = "operation"
	attrStatus    = "status"
	attrResult    = "result"
	attrPattern   = "pattern"
)

// Status values recorded with metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a no-op recorder.
type Metrics struct {
	// Backend API metrics
	apiOperationsTotal   metric.Int64Counter
	apiOperationDuration metric.Float64Histogram

	// Authentication metrics
	authAttemptsTotal metric.Int64Counter

	// Watch-mode refresh metrics
	refreshCyclesTotal metric.Int64Counter
	visibleTasks       metric.Int64Gauge

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.apiOperationsTotal, err = meter.Int64Counter(
		"tarefista_api_operations_total",
		metric.WithDescription("Total number of backend API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tarefista_api_operations_total counter: %w", err)
	}

	m.apiOperationDuration, err = meter.Float64Histogram(
		"tarefista_api_operation_duration_seconds",
		metric.WithDescription("Backend API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tarefista_api_operation_duration_seconds histogram: %w", err)
	}

	m.authAttemptsTotal, err = meter.Int64Counter(
		"tarefista_auth_attempts_total",
		metric.WithDescription("Total number of login and logout attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tarefista_auth_attempts_total counter: %w", err)
	}

	m.refreshCyclesTotal, err = meter.Int64Counter(
		"tarefista_refresh_cycles_total",
		metric.WithDescription("Total number of watch-mode refresh cycles"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tarefista_refresh_cycles_total counter: %w", err)
	}

	m.visibleTasks, err = meter.Int64Gauge(
		"tarefista_visible_tasks",
		metric.WithDescription("Number of tasks visible for the selected date after filtering"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tarefista_visible_tasks gauge: %w", err)
	}

	return m, nil
}

// RecordAPIOperation records one backend API operation with its outcome and
// duration.
func (m *Metrics) RecordAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil || m.apiOperationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)

	m.apiOperationsTotal.Add(ctx, 1, attrs)
	m.apiOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAuthAttempt records a login or logout attempt.
func (m *Metrics) RecordAuthAttempt(ctx context.Context, operation, result string) {
	if m == nil || m.authAttemptsTotal == nil {
		return
	}

	m.authAttemptsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrResult, result),
	))
}

// RecordRefreshCycle records one watch-mode refresh cycle.
func (m *Metrics) RecordRefreshCycle(ctx context.Context, status string) {
	if m == nil || m.refreshCyclesTotal == nil {
		return
	}

	m.refreshCyclesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrStatus, status),
	))
}

// RecordVisibleTasks records the size of the filtered task list.
func (m *Metrics) RecordVisibleTasks(ctx context.Context, count int) {
	if m == nil || m.visibleTasks == nil {
		return
	}

	m.visibleTasks.Record(ctx, int64(count))
}
