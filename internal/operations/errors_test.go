package operations

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "capmcli/internal/errors"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{"nil", nil, "unknown operation error"},
		{"step and message", NewValidationError(StepIDLoadData, "no input file given"), "[validation] load_data: no input file given"},
		{"cause only", NewExecutionError(StepIDFitModels, errors.New("singular")), "[execution] fit_models: singular"},
		{"no step", NewFatalError("no steps registered", nil), "[fatal] no steps registered"},
		{"message and cause", NewCancellationError(StepIDBuildFeatures, errors.New("context canceled")),
			"[cancellation] build_features: operation was cancelled: context canceled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestOperationError_UnwrapKeepsAppError(t *testing.T) {
	cause := apperrors.NewInsufficientDataError("model CAPM needs more rows")
	err := NewExecutionError(StepIDFitModels, cause)

	assert.True(t, apperrors.IsInsufficientDataError(err))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, (*OperationError)(nil).Unwrap())
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "x", "y"))

	plain := WrapError(errors.New("boom"), StepIDLoadData, "")
	assert.Equal(t, ErrorTypeExecution, plain.Type)
	assert.Equal(t, StepIDLoadData, plain.Step)
	assert.Equal(t, "[execution] load_data: boom", plain.Error())

	existing := &OperationError{Type: ErrorTypeValidation, Message: "bad"}
	wrapped := WrapError(fmt.Errorf("outer: %w", existing), StepIDFitModels, "context")
	assert.Same(t, existing, wrapped)
	assert.Equal(t, StepIDFitModels, wrapped.Step)
	assert.Equal(t, "context: bad", wrapped.Message)
}

func TestGetErrorTypeAndFailedStep(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(errors.New("plain")))

	err := fmt.Errorf("run: %w", NewValidationError(StepIDHypothesisTests, "models missing"))
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Equal(t, StepIDHypothesisTests, FailedStep(err))
	assert.Equal(t, "", FailedStep(errors.New("plain")))
}

func TestStepState_Lifecycle(t *testing.T) {
	s := NewStepState(StepIDLoadData, "Load Data")
	assert.Equal(t, StepStatusPending, s.GetStatus())
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, StepStatusActive, s.GetStatus())
	require.NotNil(t, s.StartTime)

	s.SetMetadata(MetaRowsOut, 10)
	s.Complete()
	assert.Equal(t, StepStatusCompleted, s.GetStatus())
	require.NotNil(t, s.EndTime)
	assert.GreaterOrEqual(t, s.Duration().Nanoseconds(), int64(0))
	assert.Equal(t, 10, s.Metadata[MetaRowsOut])

	f := NewStepState("x", "X")
	f.Start()
	f.Fail(errors.New("bad"))
	assert.Equal(t, StepStatusFailed, f.GetStatus())
	assert.EqualError(t, f.Error, "bad")

	k := NewStepState("y", "Y")
	k.Skip("previous step failed")
	assert.Equal(t, StepStatusSkipped, k.GetStatus())
	assert.Equal(t, "previous step failed", k.Message)
}

func TestBaseStage_Nil(t *testing.T) {
	var b *BaseStage
	assert.Equal(t, "", b.ID())
	assert.Equal(t, "", b.Name())
	assert.Error(t, b.Validate(nil))

	base := NewBaseStage("id", "Name")
	assert.Equal(t, "id", base.ID())
	assert.Equal(t, "Name", base.Name())
	assert.NoError(t, base.Validate(nil))
}
