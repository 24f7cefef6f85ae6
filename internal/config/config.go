package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "capmcli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Columns   ColumnsConfig   `yaml:"columns" envconfig:"COLUMNS"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// InputConfig controls how the tabular source is read
type InputConfig struct {
	// Sheet selects a worksheet; empty means the first sheet holding all columns.
	Sheet            string `yaml:"sheet" envconfig:"SHEET"`
	HeaderSearchRows int    `yaml:"header_search_rows" envconfig:"HEADER_SEARCH_ROWS" validate:"min=1,max=1000"`
}

// ColumnsConfig names the three required columns. Matching is case-insensitive.
type ColumnsConfig struct {
	Market          string   `yaml:"market" envconfig:"MARKET" validate:"required"`
	Stock           string   `yaml:"stock" envconfig:"STOCK" validate:"required"`
	RiskFree        string   `yaml:"risk_free" envconfig:"RISK_FREE" validate:"required"`
	MarketAliases   []string `yaml:"market_aliases" envconfig:"MARKET_ALIASES"`
	StockAliases    []string `yaml:"stock_aliases" envconfig:"STOCK_ALIASES"`
	RiskFreeAliases []string `yaml:"risk_free_aliases" envconfig:"RISK_FREE_ALIASES"`
}

// AnalysisConfig contains the statistical parameters
type AnalysisConfig struct {
	SignificanceLevel float64 `yaml:"significance_level" envconfig:"SIGNIFICANCE_LEVEL" validate:"gt=0,lt=1"`
	PreviewRows       int     `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" validate:"min=0"`
	RiskFreeDivisor   float64 `yaml:"risk_free_divisor" envconfig:"RISK_FREE_DIVISOR" validate:"gt=0"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	// MetricsFile receives a Prometheus textfile dump after the run; empty disables it.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and
// CAPM_* environment variables, then validates it. An empty path searches
// ConfigFileLocations; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	} else if !FileExists(configFile) {
		return nil, apperrors.NewConfigError("config file "+configFile+" not found", nil)
	}

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err)
		}
	}

	// Only variables that are set override; defaults come from Default().
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the first existing config file location
func getConfigFilePath() string {
	for _, location := range ConfigFileLocations {
		if FileExists(location) {
			return location
		}
	}
	return "" // No config file found, use env vars only
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return apperrors.NewConfigError("config validation failed: "+strings.Join(msgs, "; "), nil)
		}
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFile,
		},
		Input: InputConfig{
			HeaderSearchRows: DefaultHeaderSearchRows,
		},
		Columns: ColumnsConfig{
			Market:          DefaultMarketColumn,
			Stock:           DefaultStockColumn,
			RiskFree:        DefaultRiskFreeColumn,
			MarketAliases:   []string{"market", "market index", "S&P 500"},
			StockAliases:    []string{"stock", "stock price", "price"},
			RiskFreeAliases: []string{"risk free", "rf", "1-month T-bill", "tbill"},
		},
		Analysis: AnalysisConfig{
			SignificanceLevel: DefaultSignificanceLevel,
			PreviewRows:       DefaultPreviewRows,
			RiskFreeDivisor:   DefaultRiskFreeDivisor,
		},
		Telemetry: TelemetryConfig{
			TracingEnabled: false,
			TraceExporter:  TraceExporterStdout,
		},
	}
}
