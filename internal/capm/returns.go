package capm

import (
	"context"
	"log/slog"

	"capmcli/internal/infrastructure"
	"capmcli/pkg/contracts/domain"
)

// DroppedRecord is a period whose returns were undefined
type DroppedRecord struct {
	Row    int
	Reason string
}

// ComputeReturns derives simple returns for each consecutive pair of
// observations. The first observation has no predecessor and yields nothing;
// pairs with an undefined return are dropped and reported.
func ComputeReturns(ctx context.Context, obs []domain.RawObservation, divisor float64, logger *slog.Logger) ([]domain.ReturnRecord, []DroppedRecord) {
	logger = infrastructure.WithComponent(logger, "capm")

	capacity := 0
	if len(obs) > 1 {
		capacity = len(obs) - 1
	}
	returns := make([]domain.ReturnRecord, 0, capacity)
	var dropped []DroppedRecord
	for i := 1; i < len(obs); i++ {
		rec, err := domain.NewReturnRecord(obs[i-1], obs[i], divisor)
		if err != nil {
			dropped = append(dropped, DroppedRecord{Row: obs[i].Row, Reason: err.Error()})
			logger.DebugContext(ctx, "Dropped return record",
				slog.Int("row", obs[i].Row),
				slog.String("reason", err.Error()))
			continue
		}
		returns = append(returns, rec)
	}
	return returns, dropped
}
