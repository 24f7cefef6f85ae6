package operations

import (
	"context"
	"errors"
	"log/slog"

	"capmcli/internal/capm"
	"capmcli/internal/dataload"
	"capmcli/internal/infrastructure"
	"capmcli/internal/regression"
	"capmcli/internal/validation"
)

// Step IDs in pipeline order
const (
	StepIDLoadData        = "load_data"
	StepIDComputeReturns  = "compute_returns"
	StepIDBuildFeatures   = "build_features"
	StepIDFitModels       = "fit_models"
	StepIDHypothesisTests = "run_hypothesis_tests"
)

// DefaultSteps returns the analysis pipeline
func DefaultSteps(logger *slog.Logger) []Step {
	return []Step{
		NewLoadDataStage(logger),
		NewComputeReturnsStage(logger),
		NewBuildFeaturesStage(),
		NewFitModelsStage(logger),
		NewHypothesisTestsStage(),
	}
}

func stageMeta(state *OperationState, id string, rowsOut, rowsDropped int) {
	if st := state.GetStage(id); st != nil {
		st.SetMetadata(MetaRowsOut, rowsOut)
		st.SetMetadata(MetaRowsDropped, rowsDropped)
	}
}

// LoadDataStage reads the raw observations from the input file
type LoadDataStage struct {
	BaseStage
	logger    *slog.Logger
	validator *validation.InputValidator
}

// NewLoadDataStage creates the load step
func NewLoadDataStage(logger *slog.Logger) *LoadDataStage {
	return &LoadDataStage{
		BaseStage: NewBaseStage(StepIDLoadData, "Load Data"),
		logger:    logger,
		validator: validation.NewInputValidator(infrastructure.WithComponent(logger, "validation")),
	}
}

// Validate requires a readable input file of a supported format
func (s *LoadDataStage) Validate(state *OperationState) error {
	return s.validator.ValidateInputFile(state.InputPath)
}

// Execute runs the loader
func (s *LoadDataStage) Execute(ctx context.Context, state *OperationState) error {
	res, err := dataload.Load(ctx, state.InputPath, dataload.OptionsFromConfig(state.Config), s.logger)
	if err != nil {
		return err
	}
	state.Load = res
	stageMeta(state, s.ID(), len(res.Observations), len(res.Dropped))
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"input.sheet":      res.Sheet,
		"input.header_row": res.HeaderRow,
	})
	return nil
}

// ComputeReturnsStage derives period returns from the observations
type ComputeReturnsStage struct {
	BaseStage
	logger *slog.Logger
}

// NewComputeReturnsStage creates the returns step
func NewComputeReturnsStage(logger *slog.Logger) *ComputeReturnsStage {
	return &ComputeReturnsStage{BaseStage: NewBaseStage(StepIDComputeReturns, "Compute Returns"), logger: logger}
}

// Validate requires loaded observations
func (s *ComputeReturnsStage) Validate(state *OperationState) error {
	if state.Load == nil {
		return errors.New("no observations loaded")
	}
	return nil
}

// Execute computes the returns
func (s *ComputeReturnsStage) Execute(ctx context.Context, state *OperationState) error {
	returns, dropped := capm.ComputeReturns(ctx, state.Load.Observations,
		state.Config.Analysis.RiskFreeDivisor, s.logger)
	state.Returns = returns
	state.DroppedReturns = dropped
	stageMeta(state, s.ID(), len(returns), len(dropped))
	return nil
}

// BuildFeaturesStage builds the regression table
type BuildFeaturesStage struct {
	BaseStage
}

// NewBuildFeaturesStage creates the feature step
func NewBuildFeaturesStage() *BuildFeaturesStage {
	return &BuildFeaturesStage{BaseStage: NewBaseStage(StepIDBuildFeatures, "Build Features")}
}

// Validate requires computed returns
func (s *BuildFeaturesStage) Validate(state *OperationState) error {
	if state.Returns == nil {
		return errors.New("returns have not been computed")
	}
	return nil
}

// Execute builds the features
func (s *BuildFeaturesStage) Execute(ctx context.Context, state *OperationState) error {
	state.Records = capm.BuildFeatures(state.Returns)
	stageMeta(state, s.ID(), len(state.Records), 0)
	return nil
}

// FitModelsStage fits the CAPM and extended models
type FitModelsStage struct {
	BaseStage
	logger *slog.Logger
}

// NewFitModelsStage creates the fit step
func NewFitModelsStage(logger *slog.Logger) *FitModelsStage {
	return &FitModelsStage{BaseStage: NewBaseStage(StepIDFitModels, "Fit Models"), logger: logger}
}

// Validate requires the regression table
func (s *FitModelsStage) Validate(state *OperationState) error {
	if state.Records == nil {
		return errors.New("regression table has not been built")
	}
	return nil
}

// Execute fits both models
func (s *FitModelsStage) Execute(ctx context.Context, state *OperationState) error {
	logger := infrastructure.WithComponent(s.logger, "regression")
	opts := regression.Options{Alpha: state.Config.Analysis.SignificanceLevel}

	capmModel, err := capm.FitCAPM(state.Records, opts)
	if err != nil {
		return err
	}
	extended, err := capm.FitExtended(state.Records, opts)
	if err != nil {
		return err
	}
	state.CAPM = capmModel
	state.Extended = extended

	for _, m := range []*regression.Model{capmModel, extended} {
		logger.InfoContext(ctx, "Fitted model",
			slog.String("model", m.Name),
			slog.Int("nobs", m.NObs),
			slog.Float64("r_squared", m.RSquared),
			slog.Float64("condition_number", m.ConditionNumber))
	}
	stageMeta(state, s.ID(), capmModel.NObs, 0)
	return nil
}

// HypothesisTestsStage runs the beta symmetry F test and the zero alpha t test
type HypothesisTestsStage struct {
	BaseStage
}

// NewHypothesisTestsStage creates the test step
func NewHypothesisTestsStage() *HypothesisTestsStage {
	return &HypothesisTestsStage{BaseStage: NewBaseStage(StepIDHypothesisTests, "Run Hypothesis Tests")}
}

// Validate requires both fitted models
func (s *HypothesisTestsStage) Validate(state *OperationState) error {
	if state.CAPM == nil || state.Extended == nil {
		return errors.New("models have not been fitted")
	}
	return nil
}

// Execute runs both tests
func (s *HypothesisTestsStage) Execute(ctx context.Context, state *OperationState) error {
	alpha := state.Config.Analysis.SignificanceLevel

	f, err := capm.BetaSymmetryTest(state.Extended, alpha)
	if err != nil {
		return err
	}
	t, err := capm.ZeroAlphaTest(state.CAPM, alpha)
	if err != nil {
		return err
	}
	state.BetaSymmetry = f
	state.ZeroAlpha = t

	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"test.f.statistic": f.Statistic,
		"test.f.reject":    f.Reject,
		"test.t.statistic": t.Statistic,
		"test.t.reject":    t.Reject,
	})
	return nil
}
