package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"capmcli/internal/config"
	"capmcli/internal/infrastructure"
	"capmcli/internal/operations"
	"capmcli/internal/report"
)

const shutdownTimeout = 5 * time.Second

type analyzeOptions struct {
	input      string
	configPath string
	noColor    bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Fit both models and run the hypothesis tests",
		Long: `analyze loads the input file, computes simple returns and excess returns,
fits the CAPM and the extended up/down market model by OLS, and prints the
regression table preview, both model summaries and the F and t test decisions.`,
		Example: `  capm analyze --input data_coursework1_Q1.xlsx
  capm analyze --input prices.csv --market-col "S&P 500" --stock-col AAPL --alpha 0.01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.input, flagInput, "i", "", "Input file (.xlsx, .xlsm or .csv)")
	fs.String(flagSheet, "", "Worksheet name (default: first sheet with all columns)")
	fs.StringVar(&opts.configPath, flagConfig, "", "YAML config file")
	fs.BoolVar(&opts.noColor, flagNoColor, false, "Disable coloured output")
	addAnalysisFlags(fs)
	_ = cmd.MarkFlagRequired(flagInput)

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd.Flags(), cfg); err != nil {
		return err
	}

	input := opts.input
	paths, err := config.GetPaths()
	if err == nil {
		input = paths.Resolve(input)
		cfg.Logging.FilePath = paths.Resolve(cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()
	if paths != nil {
		paths.LogPathResolution(logger)
	}

	ctx := infrastructure.EnsureTraceID(cmd.Context())
	runID := infrastructure.GetTraceID(ctx)

	otelCfg := infrastructure.OTelConfigFromTelemetry(cfg.Telemetry)
	otelCfg.TraceWriter = cmd.ErrOrStderr()
	providers, err := infrastructure.InitializeOTel(ctx, otelCfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	manager, err := operations.NewManager(providers, logger, operations.DefaultSteps(logger)...)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Starting analysis",
		slog.String("input", input),
		slog.String("run_id", runID),
		slog.Float64("significance_level", cfg.Analysis.SignificanceLevel))

	state := operations.NewOperationState(runID, input, cfg)
	runErr := manager.Execute(ctx, state)

	if path := cfg.Telemetry.MetricsFile; path != "" {
		if err := providers.WriteMetrics(path); err != nil {
			logger.WarnContext(ctx, "Failed to write metrics file",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		return runErr
	}
	if !state.IsComplete() {
		return operations.NewFatalError("analysis finished with incomplete steps", nil)
	}

	out := cmd.OutOrStdout()
	r := report.New(out, report.Options{
		PreviewRows: cfg.Analysis.PreviewRows,
		Color:       colorEnabled(out, opts.noColor),
	})
	return r.Render(report.Analysis{
		Records:      state.Records,
		CAPM:         state.CAPM,
		Extended:     state.Extended,
		BetaSymmetry: state.BetaSymmetry,
		ZeroAlpha:    state.ZeroAlpha,
	})
}

func colorEnabled(w io.Writer, noColor bool) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return report.ColorEnabled(f, noColor)
}
