package operations

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"capmcli/internal/infrastructure"
)

// Manager runs the pipeline steps strictly in order; a failed step stops
// the run and every later step is marked skipped.
type Manager struct {
	steps  []Step
	tracer *OperationTracer
	logger *slog.Logger
}

// NewManager validates the step list and wires telemetry. nil providers
// fall back to the global (no-op by default) OpenTelemetry providers.
func NewManager(providers *infrastructure.OTelProviders, logger *slog.Logger, steps ...Step) (*Manager, error) {
	if len(steps) == 0 {
		return nil, NewFatalError("no steps registered", nil)
	}
	seen := make(map[string]bool, len(steps))
	for i, s := range steps {
		if s == nil {
			return nil, NewFatalError(fmt.Sprintf("step %d is nil", i), nil)
		}
		if s.ID() == "" {
			return nil, NewFatalError(fmt.Sprintf("step %d has an empty ID", i), nil)
		}
		if seen[s.ID()] {
			return nil, NewFatalError(fmt.Sprintf("duplicate step ID %q", s.ID()), nil)
		}
		seen[s.ID()] = true
	}

	if providers == nil {
		providers = &infrastructure.OTelProviders{
			Tracer: otel.Tracer(infrastructure.MeterName),
			Meter:  otel.Meter(infrastructure.MeterName),
		}
	}
	tracer, err := NewOperationTracer(providers)
	if err != nil {
		return nil, err
	}

	return &Manager{
		steps:  steps,
		tracer: tracer,
		logger: infrastructure.WithComponent(logger, "operations"),
	}, nil
}

// Steps returns the registered steps in execution order
func (m *Manager) Steps() []Step {
	return append([]Step(nil), m.steps...)
}

// Execute runs every step against state. The returned error is an
// *OperationError naming the step that failed.
func (m *Manager) Execute(ctx context.Context, state *OperationState) error {
	for _, s := range m.steps {
		state.SetStage(s.ID(), NewStepState(s.ID(), s.Name()))
	}

	state.Start()
	ctx, span := m.tracer.TraceOperationExecution(ctx, state)
	defer span.End()

	m.logOperationStart(ctx, state)

	err := m.executeSequential(ctx, state)
	if err != nil {
		state.Fail(err)
		m.logOperationError(ctx, state, err)
	} else {
		state.Complete()
		m.logOperationComplete(ctx, state)
	}

	m.tracer.RecordOperationCompletion(ctx, span, state.Duration(), err)
	return err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState) error {
	for i, step := range m.steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, i, "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.DebugContext(ctx, "executing_step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(m.steps)))

		if err := m.executeStage(ctx, state, step); err != nil {
			m.skipRemaining(state, i+1, fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage validates and runs a single step inside its own span
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError("step state not found for "+step.ID(), nil)
	}

	if err := step.Validate(state); err != nil {
		opErr := NewValidationError(step.ID(), "")
		opErr.Cause = err
		stepState.Fail(opErr)
		m.logStageError(ctx, state, step.ID(), opErr)
		return opErr
	}

	stepCtx, span := m.tracer.TraceStageExecution(ctx, state.ID, step.ID())
	defer span.End()

	stepState.Start()
	m.logStageStart(stepCtx, state, step.ID())

	var opErr *OperationError
	if err := step.Execute(stepCtx, state); err != nil {
		opErr = WrapError(err, step.ID(), "")
		stepState.Fail(opErr)
	} else {
		stepState.Complete()
	}

	if opErr != nil {
		m.tracer.RecordStageCompletion(stepCtx, span, stepState, opErr)
		m.logStageError(stepCtx, state, step.ID(), opErr)
		return opErr
	}
	m.tracer.RecordStageCompletion(stepCtx, span, stepState, nil)
	m.logStageComplete(stepCtx, state, stepState)
	return nil
}

func (m *Manager) skipRemaining(state *OperationState, from int, reason string) {
	for _, s := range m.steps[from:] {
		if st := state.GetStage(s.ID()); st != nil && st.GetStatus() == StepStatusPending {
			st.Skip(reason)
		}
	}
}

func (m *Manager) logOperationStart(ctx context.Context, state *OperationState) {
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", state.ID),
		slog.String("input", state.InputPath),
		slog.Int("step_count", len(m.steps)))
}

func (m *Manager) logOperationComplete(ctx context.Context, state *OperationState) {
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", state.ID),
		slog.Duration("duration", state.Duration()))
}

func (m *Manager) logOperationError(ctx context.Context, state *OperationState, err error) {
	var failed []string
	for _, s := range state.GetFailedStages() {
		failed = append(failed, s.ID)
	}
	m.logger.ErrorContext(ctx, "operation_error",
		slog.String("operation_id", state.ID),
		slog.String("failed_step", FailedStep(err)),
		slog.Any("failed_steps", failed),
		slog.String("error", err.Error()))
}

func (m *Manager) logStageStart(ctx context.Context, state *OperationState, stepID string) {
	m.logger.InfoContext(ctx, "step_start",
		slog.String("operation_id", state.ID),
		slog.String("step", stepID))
}

func (m *Manager) logStageComplete(ctx context.Context, state *OperationState, step *StepState) {
	attrs := []any{
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID),
		slog.Duration("duration", step.Duration()),
	}
	step.mu.RLock()
	if v, ok := step.Metadata[MetaRowsOut].(int); ok {
		attrs = append(attrs, slog.Int(MetaRowsOut, v))
	}
	if v, ok := step.Metadata[MetaRowsDropped].(int); ok {
		attrs = append(attrs, slog.Int(MetaRowsDropped, v))
	}
	step.mu.RUnlock()
	m.logger.InfoContext(ctx, "step_complete", attrs...)
}

func (m *Manager) logStageError(ctx context.Context, state *OperationState, stepID string, err error) {
	m.logger.ErrorContext(ctx, "step_error",
		slog.String("operation_id", state.ID),
		slog.String("step", stepID),
		slog.String("error", err.Error()))
}
