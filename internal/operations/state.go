package operations

import (
	"sync"
	"time"

	"capmcli/internal/capm"
	"capmcli/internal/config"
	"capmcli/internal/dataload"
	"capmcli/internal/regression"
	"capmcli/pkg/contracts/domain"
)

// OperationStatusValue represents the overall operation status enum
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
)

// OperationState carries one analysis run from input file to test results.
// Each step reads what earlier steps produced and fills in its own fields.
type OperationState struct {
	mu sync.RWMutex

	ID        string               `json:"id"`
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   *time.Time           `json:"end_time,omitempty"`

	Steps     map[string]*StepState `json:"steps"`
	stepOrder []string

	Error error `json:"error,omitempty"`

	InputPath string
	Config    *config.Config

	Load           *dataload.Result
	Returns        []domain.ReturnRecord
	DroppedReturns []capm.DroppedRecord
	Records        []domain.RegressionRecord
	CAPM           *regression.Model
	Extended       *regression.Model
	BetaSymmetry   *capm.TestResult
	ZeroAlpha      *capm.TestResult
}

// NewOperationState creates a new operation state
func NewOperationState(id, inputPath string, cfg *config.Config) *OperationState {
	if cfg == nil {
		cfg = config.Default()
	}
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		InputPath: inputPath,
		Config:    cfg,
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.Status = OperationStatusCompleted
	p.EndTime = &now
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.Status = OperationStatusFailed
	p.EndTime = &now
	p.Error = err
}

// GetStage returns the state of a step
func (p *OperationState) GetStage(stageID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stageID]
}

// SetStage registers a step state, keeping registration order
func (p *OperationState) SetStage(stageID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.Steps[stageID]; !exists {
		p.stepOrder = append(p.stepOrder, stageID)
	}
	p.Steps[stageID] = state
}

// OrderedStages returns step states in registration order
func (p *OperationState) OrderedStages() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*StepState, 0, len(p.stepOrder))
	for _, id := range p.stepOrder {
		out = append(out, p.Steps[id])
	}
	return out
}

// Duration returns how long the operation ran
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// GetFailedStages returns all failed steps
func (p *OperationState) GetFailedStages() []*StepState {
	var failed []*StepState
	for _, s := range p.OrderedStages() {
		if s.GetStatus() == StepStatusFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// IsComplete reports whether every step completed
func (p *OperationState) IsComplete() bool {
	stages := p.OrderedStages()
	if len(stages) == 0 {
		return false
	}
	for _, s := range stages {
		if s.GetStatus() != StepStatusCompleted {
			return false
		}
	}
	return true
}
