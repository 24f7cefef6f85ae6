package domain

import "math"

// Column names used for the regression table, in display order.
const (
	ColumnExcessStockReturn  = "Excess_R_Stock"
	ColumnExcessMarketReturn = "Excess_R_M"
	ColumnUpMarket           = "X1_U_M"
	ColumnDownMarket         = "X2_D_M"
	ColumnSquaredExcess      = "X3_Squared"
)

// RegressionColumns lists the regression table columns in display order.
var RegressionColumns = []string{
	ColumnExcessStockReturn,
	ColumnExcessMarketReturn,
	ColumnUpMarket,
	ColumnDownMarket,
	ColumnSquaredExcess,
}

// RegressionRecord is one row of the regression table.
//
// UpMarketRegressor and DownMarketRegressor partition ExcessMarketReturn:
// exactly one of them carries its value and the other is zero, so their
// product is always 0 and their sum equals ExcessMarketReturn.
type RegressionRecord struct {
	Row int `json:"row"`

	ExcessStockReturn  float64 `json:"excess_stock_return"`
	ExcessMarketReturn float64 `json:"excess_market_return"`

	// UpMarketRegressor is ExcessMarketReturn when it is strictly positive, else 0.
	UpMarketRegressor float64 `json:"up_market_regressor"`

	// DownMarketRegressor is ExcessMarketReturn when it is zero or negative, else 0.
	DownMarketRegressor float64 `json:"down_market_regressor"`

	SquaredExcessMarketReturn float64 `json:"squared_excess_market_return"`
}

// NewRegressionRecord builds the features of a return record.
func NewRegressionRecord(r ReturnRecord) RegressionRecord {
	excessMarket := r.MarketReturn - r.RiskFreeRate

	rec := RegressionRecord{
		Row:                       r.Row,
		ExcessStockReturn:         r.StockReturn - r.RiskFreeRate,
		ExcessMarketReturn:        excessMarket,
		SquaredExcessMarketReturn: excessMarket * excessMarket,
	}
	// Zero excess return counts as a down market.
	if IsUpMarket(excessMarket) {
		rec.UpMarketRegressor = excessMarket
	} else {
		rec.DownMarketRegressor = excessMarket
	}
	return rec
}

// IsUpMarket classifies an excess market return.
func IsUpMarket(excessMarketReturn float64) bool {
	return excessMarketReturn > 0
}

// PartitionHolds checks the up/down partition within tol.
func (r RegressionRecord) PartitionHolds(tol float64) bool {
	if r.UpMarketRegressor*r.DownMarketRegressor != 0 {
		return false
	}
	return math.Abs(r.UpMarketRegressor+r.DownMarketRegressor-r.ExcessMarketReturn) <= tol
}

// Values returns the record's fields in RegressionColumns order.
func (r RegressionRecord) Values() []float64 {
	return []float64{
		r.ExcessStockReturn,
		r.ExcessMarketReturn,
		r.UpMarketRegressor,
		r.DownMarketRegressor,
		r.SquaredExcessMarketReturn,
	}
}
