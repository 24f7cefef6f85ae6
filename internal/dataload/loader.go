package dataload

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"capmcli/internal/config"
	apperrors "capmcli/internal/errors"
	"capmcli/internal/infrastructure"
	"capmcli/pkg/contracts/domain"
)

// Column roles
const (
	RoleMarket   = "market"
	RoleStock    = "stock"
	RoleRiskFree = "risk_free"
)

var roles = []string{RoleMarket, RoleStock, RoleRiskFree}

// Options controls where the loader looks for the data
type Options struct {
	Sheet            string
	HeaderSearchRows int
	Columns          config.ColumnsConfig
}

// OptionsFromConfig builds loader options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Sheet:            cfg.Input.Sheet,
		HeaderSearchRows: cfg.Input.HeaderSearchRows,
		Columns:          cfg.Columns,
	}
}

// DroppedRow records a data row that did not survive coercion
type DroppedRow struct {
	Row    int
	Reason string
}

// Result is the outcome of Load
type Result struct {
	Path         string
	Sheet        string
	HeaderRow    int // 1-based
	Headers      map[string]string
	Observations []domain.RawObservation
	DataRows     int
	Dropped      []DroppedRow
}

// Load reads the market, stock and risk-free columns from path. Rows where any
// of the three cells is not numeric are dropped whole; source order is kept.
func Load(ctx context.Context, path string, opts Options, logger *slog.Logger) (*Result, error) {
	logger = infrastructure.WithComponent(logger, "dataload")
	if opts.HeaderSearchRows <= 0 {
		opts.HeaderSearchRows = config.DefaultHeaderSearchRows
	}

	if opts.Sheet != "" {
		if format, err := DetectFormat(path); err == nil && format == FormatCSV {
			logger.WarnContext(ctx, "Sheet option ignored for CSV input",
				slog.String("sheet", opts.Sheet),
				slog.String("path", path))
		}
	}

	sheets, err := ReadSheets(path, opts.Sheet)
	if err != nil {
		return nil, err
	}

	sheet, headerRow, indices, locErr := locateColumns(sheets, opts)
	if locErr != nil {
		return nil, locErr.WithContext("path", path)
	}

	result := &Result{
		Path:      path,
		Sheet:     sheet.Name,
		HeaderRow: headerRow + 1,
		Headers:   make(map[string]string, len(roles)),
	}
	for _, role := range roles {
		result.Headers[role] = strings.TrimSpace(sheet.Rows[headerRow][indices[role]])
	}

	logger.InfoContext(ctx, "Located input columns",
		slog.String("sheet", sheet.Name),
		slog.Int("header_row", result.HeaderRow),
		slog.String("market", result.Headers[RoleMarket]),
		slog.String("stock", result.Headers[RoleStock]),
		slog.String("risk_free", result.Headers[RoleRiskFree]))

	for i := headerRow + 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if isBlank(row) {
			continue
		}
		result.DataRows++
		rowNum := i + 1

		values := make(map[string]float64, len(roles))
		var reason string
		for _, role := range roles {
			v, ok := ParseNumeric(cellAt(row, indices[role]))
			if !ok {
				reason = fmt.Sprintf("non-numeric %s value %q", result.Headers[role], cellAt(row, indices[role]))
				break
			}
			values[role] = v
		}
		if reason != "" {
			result.Dropped = append(result.Dropped, DroppedRow{Row: rowNum, Reason: reason})
			logger.DebugContext(ctx, "Dropped row", slog.Int("row", rowNum), slog.String("reason", reason))
			continue
		}

		result.Observations = append(result.Observations, domain.RawObservation{
			Row:                 rowNum,
			MarketLevel:         values[RoleMarket],
			StockPrice:          values[RoleStock],
			RiskFreeRatePercent: values[RoleRiskFree],
		})
	}

	if len(result.Observations) == 0 {
		return nil, apperrors.NewDataError(
			fmt.Sprintf("no numeric rows under the %s, %s and %s columns",
				result.Headers[RoleMarket], result.Headers[RoleStock], result.Headers[RoleRiskFree]), nil).
			WithContext("path", path).
			WithContext("sheet", sheet.Name)
	}

	logger.InfoContext(ctx, "Loaded observations",
		slog.Int("data_rows", result.DataRows),
		slog.Int("kept", len(result.Observations)),
		slog.Int("dropped", len(result.Dropped)))

	return result, nil
}

// locateColumns finds the first sheet and header row naming all three columns.
func locateColumns(sheets []Sheet, opts Options) (Sheet, int, map[string]int, *apperrors.AppError) {
	candidates := map[string][]string{
		RoleMarket:   append([]string{opts.Columns.Market}, opts.Columns.MarketAliases...),
		RoleStock:    append([]string{opts.Columns.Stock}, opts.Columns.StockAliases...),
		RoleRiskFree: append([]string{opts.Columns.RiskFree}, opts.Columns.RiskFreeAliases...),
	}

	for _, sheet := range sheets {
		limit := opts.HeaderSearchRows
		if limit > len(sheet.Rows) {
			limit = len(sheet.Rows)
		}
		for r := 0; r < limit; r++ {
			if indices, ok := matchHeader(sheet.Rows[r], candidates); ok {
				return sheet, r, indices, nil
			}
		}
	}

	return Sheet{}, 0, nil, apperrors.NewDataError(fmt.Sprintf(
		"required columns not found: market %q, stock %q, risk-free %q (searched the first %d rows of %d sheet(s))",
		opts.Columns.Market, opts.Columns.Stock, opts.Columns.RiskFree, opts.HeaderSearchRows, len(sheets)), nil)
}

// matchHeader resolves every role against one header row. Each role prefers
// its configured name over its aliases and no cell serves two roles.
func matchHeader(row []string, candidates map[string][]string) (map[string]int, bool) {
	normalized := make([]string, len(row))
	for i, cell := range row {
		normalized[i] = NormalizeHeader(cell)
	}

	indices := make(map[string]int, len(roles))
	used := make(map[int]bool, len(roles))
	for _, role := range roles {
		found := -1
		for _, name := range candidates[role] {
			want := NormalizeHeader(name)
			if want == "" {
				continue
			}
			for i, got := range normalized {
				if got == want && !used[i] {
					found = i
					break
				}
			}
			if found >= 0 {
				break
			}
		}
		if found < 0 {
			return nil, false
		}
		indices[role] = found
		used[found] = true
	}
	return indices, true
}

// NormalizeHeader lowercases a header and collapses internal whitespace.
func NormalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// SheetHeaders is the first non-empty row of a sheet
type SheetHeaders struct {
	Sheet   string
	Row     int // 1-based
	Headers []string
}

// ListHeaders returns, per sheet, the first non-empty row within searchRows.
// Sheets without one are omitted.
func ListHeaders(path, sheet string, searchRows int) ([]SheetHeaders, error) {
	if searchRows <= 0 {
		searchRows = config.DefaultHeaderSearchRows
	}
	sheets, err := ReadSheets(path, sheet)
	if err != nil {
		return nil, err
	}

	var out []SheetHeaders
	for _, s := range sheets {
		for r := 0; r < len(s.Rows) && r < searchRows; r++ {
			if isBlank(s.Rows[r]) {
				continue
			}
			headers := make([]string, 0, len(s.Rows[r]))
			for _, cell := range s.Rows[r] {
				headers = append(headers, strings.TrimSpace(cell))
			}
			out = append(out, SheetHeaders{Sheet: s.Name, Row: r + 1, Headers: headers})
			break
		}
	}
	return out, nil
}
