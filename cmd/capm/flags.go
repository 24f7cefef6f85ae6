package main

import (
	"github.com/spf13/pflag"

	"capmcli/internal/config"
)

// Flag names shared by the analyze and columns commands
const (
	flagInput       = "input"
	flagSheet       = "sheet"
	flagMarketCol   = "market-col"
	flagStockCol    = "stock-col"
	flagRiskFreeCol = "riskfree-col"
	flagAlpha       = "alpha"
	flagPreviewRows = "preview-rows"
	flagConfig      = "config"
	flagLogLevel    = "log-level"
	flagTrace       = "trace"
	flagMetricsFile = "metrics-file"
	flagNoColor     = "no-color"
)

func addAnalysisFlags(fs *pflag.FlagSet) {
	fs.String(flagMarketCol, config.DefaultMarketColumn, "Header of the market index column")
	fs.String(flagStockCol, config.DefaultStockColumn, "Header of the stock price column")
	fs.String(flagRiskFreeCol, config.DefaultRiskFreeColumn, "Header of the risk-free rate column (percent per period)")
	fs.Float64(flagAlpha, config.DefaultSignificanceLevel, "Significance level of both hypothesis tests")
	fs.Int(flagPreviewRows, config.DefaultPreviewRows, "Rows of the regression table to print")
	fs.String(flagLogLevel, config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.Bool(flagTrace, false, "Export spans to stderr")
	fs.String(flagMetricsFile, "", "Write Prometheus metrics to this file after the run")
}

// applyFlagOverrides copies explicitly set flags onto cfg and revalidates it.
// Flags left at their defaults never override file or environment values.
func applyFlagOverrides(fs *pflag.FlagSet, cfg *config.Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		err = apply()
	}

	set(flagSheet, func() (e error) { cfg.Input.Sheet, e = fs.GetString(flagSheet); return })
	set(flagMarketCol, func() (e error) { cfg.Columns.Market, e = fs.GetString(flagMarketCol); return })
	set(flagStockCol, func() (e error) { cfg.Columns.Stock, e = fs.GetString(flagStockCol); return })
	set(flagRiskFreeCol, func() (e error) { cfg.Columns.RiskFree, e = fs.GetString(flagRiskFreeCol); return })
	set(flagAlpha, func() (e error) { cfg.Analysis.SignificanceLevel, e = fs.GetFloat64(flagAlpha); return })
	set(flagPreviewRows, func() (e error) { cfg.Analysis.PreviewRows, e = fs.GetInt(flagPreviewRows); return })
	set(flagLogLevel, func() (e error) { cfg.Logging.Level, e = fs.GetString(flagLogLevel); return })
	set(flagTrace, func() (e error) { cfg.Telemetry.TracingEnabled, e = fs.GetBool(flagTrace); return })
	set(flagMetricsFile, func() (e error) { cfg.Telemetry.MetricsFile, e = fs.GetString(flagMetricsFile); return })
	if err != nil {
		return err
	}

	return cfg.Validate()
}
