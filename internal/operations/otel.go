package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"capmcli/internal/infrastructure"
)

// Metadata keys steps use to report row counts to the tracer
const (
	MetaRowsOut     = "rows_out"
	MetaRowsDropped = "rows_dropped"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *PipelineMetrics
}

// NewOperationTracer creates a tracer over the given providers
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	metrics, err := NewPipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	return &OperationTracer{
		tracer:  providers.Tracer,
		metrics: metrics,
	}, nil
}

// TraceOperationExecution creates a span for the whole run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, state *OperationState) (context.Context, trace.Span) {
	ctx, span := pt.tracer.Start(ctx, "operation.analyze",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.String("operation.input", state.InputPath),
		),
	)
	pt.metrics.OperationExecutions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("operation", "start")))
	return ctx, span
}

// TraceStageExecution creates a span for one step
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	ctx, span := pt.tracer.Start(ctx, "operation.step."+stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
	pt.metrics.StepExecutions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("step", stepID)))
	return ctx, span
}

// RecordStageCompletion records duration, row counts and status of a step
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, step *StepState, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	duration := step.Duration()
	stepAttr := attribute.String("step", step.ID)

	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	pt.metrics.StepDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(stepAttr, attribute.String("status", status)))

	step.mu.RLock()
	rowsOut, hasOut := step.Metadata[MetaRowsOut].(int)
	rowsDropped, hasDropped := step.Metadata[MetaRowsDropped].(int)
	step.mu.RUnlock()

	if hasOut {
		span.SetAttributes(attribute.Int("step.rows_out", rowsOut))
		pt.metrics.RowsProcessed.Add(ctx, int64(rowsOut), metric.WithAttributes(stepAttr))
	}
	if hasDropped {
		span.SetAttributes(attribute.Int("step.rows_dropped", rowsDropped))
		if rowsDropped > 0 {
			pt.metrics.RowsDropped.Add(ctx, int64(rowsDropped), metric.WithAttributes(stepAttr))
		}
	}

	if err != nil {
		pt.metrics.StepErrors.Add(ctx, 1,
			metric.WithAttributes(stepAttr, attribute.String("error_type", string(GetErrorType(err)))))
		infrastructure.RecordError(trace.ContextWithSpan(ctx, span), err)
		return
	}
	span.SetStatus(codes.Ok, "step completed successfully")
}

// RecordOperationCompletion closes out the run span and its metrics
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	span.SetAttributes(
		attribute.String("operation.status", status),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
	)
	pt.metrics.OperationDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("status", status)))

	if err != nil {
		if step := FailedStep(err); step != "" {
			span.SetAttributes(attribute.String("operation.failed_step", step))
		}
		infrastructure.RecordError(trace.ContextWithSpan(ctx, span), err)
		return
	}
	span.SetStatus(codes.Ok, "operation completed successfully")
}
