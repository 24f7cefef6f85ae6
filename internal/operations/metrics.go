package operations

import (
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments recorded per run
type PipelineMetrics struct {
	OperationExecutions metric.Int64Counter
	OperationDuration   metric.Float64Histogram
	StepExecutions      metric.Int64Counter
	StepDuration        metric.Float64Histogram
	StepErrors          metric.Int64Counter
	RowsProcessed       metric.Int64Counter
	RowsDropped         metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	operationExecutions, err := meter.Int64Counter(
		"capm_operation_executions_total",
		metric.WithDescription("Total number of analysis runs"),
	)
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram(
		"capm_operation_duration_seconds",
		metric.WithDescription("Analysis run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepExecutions, err := meter.Int64Counter(
		"capm_step_executions_total",
		metric.WithDescription("Total number of pipeline steps executed"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"capm_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter(
		"capm_step_errors_total",
		metric.WithDescription("Total number of failed pipeline steps"),
	)
	if err != nil {
		return nil, err
	}

	rowsProcessed, err := meter.Int64Counter(
		"capm_rows_processed_total",
		metric.WithDescription("Rows produced by each pipeline step"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"capm_rows_dropped_total",
		metric.WithDescription("Rows discarded during data cleaning"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		OperationExecutions: operationExecutions,
		OperationDuration:   operationDuration,
		StepExecutions:      stepExecutions,
		StepDuration:        stepDuration,
		StepErrors:          stepErrors,
		RowsProcessed:       rowsProcessed,
		RowsDropped:         rowsDropped,
	}, nil
}
