package domain

import (
	"fmt"
	"math"
)

// RawObservation is one period of the input table after numeric coercion.
//
// Rows with any field that failed coercion never become a RawObservation;
// the loader drops them whole so there are no partial rows downstream.
type RawObservation struct {
	// Row is the 1-based row number in the source sheet, kept for diagnostics.
	Row int `json:"row"`

	// MarketLevel is the market index level (e.g. the S&P 500 close).
	MarketLevel float64 `json:"market_level"`

	// StockPrice is the stock's price for the period.
	StockPrice float64 `json:"stock_price"`

	// RiskFreeRatePercent is the 1-month risk-free proxy as quoted, in percent.
	RiskFreeRatePercent float64 `json:"risk_free_rate_percent"`
}

// ReturnRecord holds the simple returns between two consecutive observations.
type ReturnRecord struct {
	// Row is the source row of the later observation of the pair.
	Row int `json:"row"`

	MarketReturn float64 `json:"market_return"`
	StockReturn  float64 `json:"stock_return"`

	// RiskFreeRate is the decimal rate, i.e. the quoted percent divided by the divisor.
	RiskFreeRate float64 `json:"risk_free_rate"`
}

// NewReturnRecord derives the returns from prev to cur. The divisor converts
// the quoted risk-free proxy to a decimal rate (100 for percent quotes).
//
// It returns an error when any derived value is undefined, for example a
// zero previous level, so the caller can drop the record instead of
// substituting a value.
func NewReturnRecord(prev, cur RawObservation, divisor float64) (ReturnRecord, error) {
	rec := ReturnRecord{
		Row:          cur.Row,
		MarketReturn: cur.MarketLevel/prev.MarketLevel - 1,
		StockReturn:  cur.StockPrice/prev.StockPrice - 1,
		RiskFreeRate: cur.RiskFreeRatePercent / divisor,
	}
	if err := rec.Validate(); err != nil {
		return ReturnRecord{}, err
	}
	return rec, nil
}

// Validate reports the first non-finite field.
func (r ReturnRecord) Validate() error {
	switch {
	case !isFinite(r.MarketReturn):
		return fmt.Errorf("row %d: market return is undefined", r.Row)
	case !isFinite(r.StockReturn):
		return fmt.Errorf("row %d: stock return is undefined", r.Row)
	case !isFinite(r.RiskFreeRate):
		return fmt.Errorf("row %d: risk-free rate is undefined", r.Row)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
