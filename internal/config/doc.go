// Package config provides configuration loading for the capm CLI.
//
// # Configuration Sources
//
// Configuration is assembled in layers, later layers winning:
//
//	1. Default values (Default)
//	2. A YAML file (explicit path, or the first of ConfigFileLocations)
//	3. Environment variables prefixed CAPM_
//	4. Command line flags, applied by cmd/capm
//
// # Environment Variables
//
//	CAPM_LOGGING_LEVEL=debug
//	CAPM_COLUMNS_MARKET=SP500
//	CAPM_COLUMNS_STOCK=IBM
//	CAPM_COLUMNS_RISK_FREE="1-month Tbill"
//	CAPM_ANALYSIS_SIGNIFICANCE_LEVEL=0.05
//	CAPM_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/capm.prom
//
// # Example File
//
//	logging:
//	  level: info
//	  output: console
//	columns:
//	  market: SP500
//	  stock: IBM
//	  risk_free: 1-month Tbill
//	analysis:
//	  significance_level: 0.05
//	  preview_rows: 5
//
// The loaded configuration is validated with go-playground/validator before use.
package config
