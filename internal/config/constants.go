package config

import "capmcli/pkg/contracts"

// Application constants
const (
	// Application Info
	AppName    = "capm"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment override, e.g. CAPM_ANALYSIS_SIGNIFICANCE_LEVEL.
	EnvPrefix = "CAPM"

	// Default column headers of the coursework workbook
	DefaultMarketColumn   = "SP500"
	DefaultStockColumn    = "IBM"
	DefaultRiskFreeColumn = "1-month Tbill"

	// Analysis defaults
	DefaultSignificanceLevel = 0.05
	DefaultPreviewRows       = 5
	// The risk-free proxy is quoted in percent per period.
	DefaultRiskFreeDivisor  = 100.0
	DefaultHeaderSearchRows = 10

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "console"
	DefaultLogFile   = "logs/capm.log"

	// Telemetry
	TraceExporterStdout = "stdout"
	TraceExporterNone   = "none"
)

// ConfigFileLocations lists the places Load looks for a config file when none is given.
var ConfigFileLocations = []string{
	"capm.yaml",
	"configs/capm.yaml",
	"../configs/capm.yaml",
}
