package capm

import (
	"capmcli/internal/regression"
	"capmcli/pkg/contracts/domain"
)

// BuildFeatures turns return records into the regression table.
func BuildFeatures(returns []domain.ReturnRecord) []domain.RegressionRecord {
	out := make([]domain.RegressionRecord, len(returns))
	for i, r := range returns {
		out[i] = domain.NewRegressionRecord(r)
	}
	return out
}

// column extracts one field of the table as a regression column.
func column(records []domain.RegressionRecord, name string, field func(domain.RegressionRecord) float64) regression.Column {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = field(r)
	}
	return regression.Column{Name: name, Values: values}
}

func excessStock(records []domain.RegressionRecord) regression.Column {
	return column(records, domain.ColumnExcessStockReturn, func(r domain.RegressionRecord) float64 { return r.ExcessStockReturn })
}

func excessMarket(records []domain.RegressionRecord) regression.Column {
	return column(records, domain.ColumnExcessMarketReturn, func(r domain.RegressionRecord) float64 { return r.ExcessMarketReturn })
}

func upMarket(records []domain.RegressionRecord) regression.Column {
	return column(records, domain.ColumnUpMarket, func(r domain.RegressionRecord) float64 { return r.UpMarketRegressor })
}

func downMarket(records []domain.RegressionRecord) regression.Column {
	return column(records, domain.ColumnDownMarket, func(r domain.RegressionRecord) float64 { return r.DownMarketRegressor })
}

func squaredExcess(records []domain.RegressionRecord) regression.Column {
	return column(records, domain.ColumnSquaredExcess, func(r domain.RegressionRecord) float64 { return r.SquaredExcessMarketReturn })
}
