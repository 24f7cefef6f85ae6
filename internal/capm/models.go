package capm

import (
	"capmcli/internal/regression"
	"capmcli/pkg/contracts/domain"
)

// Model names as shown in reports
const (
	ModelCAPM     = "CAPM"
	ModelExtended = "Extended CAPM"
)

// FitCAPM fits Excess_R_Stock = alpha + beta * Excess_R_M.
func FitCAPM(records []domain.RegressionRecord, opts regression.Options) (*regression.Model, error) {
	return regression.Fit(ModelCAPM, excessStock(records),
		[]regression.Column{excessMarket(records)}, opts)
}

// FitExtended fits Excess_R_Stock = alpha + b1 * X1_U_M + b2 * X2_D_M + b3 * X3_Squared.
//
// When the sample has no down (or no up) periods one regressor is all zeros
// and the fit fails with an InsufficientDataError.
func FitExtended(records []domain.RegressionRecord, opts regression.Options) (*regression.Model, error) {
	return regression.Fit(ModelExtended, excessStock(records),
		[]regression.Column{upMarket(records), downMarket(records), squaredExcess(records)}, opts)
}
