package dataload

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"capmcli/internal/config"
	apperrors "capmcli/internal/errors"
	"capmcli/internal/shared/testutil"
)

func defaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// writeWorkbook saves each named sheet's rows into a new workbook.
func writeWorkbook(t *testing.T, sheets map[string][][]interface{}, order ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capm.xlsx")

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1010.5", 1010.5, true},
		{"  42 ", 42, true},
		{"-0.25", -0.25, true},
		{"1,234.5", 1234.5, true},
		{"-12,345,678", -12345678, true},
		{"1,5", 0, false},
		{"12,34,5", 0, false},
		{"1234,567", 0, false},
		{",123", 0, false},
		{"1.5e2", 150, true},
		{"", 0, false},
		{"   ", 0, false},
		{"n/a", 0, false},
		{"SP500", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e400", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumeric(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

func TestLoad_Excel(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Data": {
			{"Monthly prices"},
			{},
			{"Date", "SP500", "IBM", "1-month Tbill"},
			{"2020-01", 1000.0, 50.0, 0.1},
			{"2020-02", 1010.0, "n/a", 0.1},
			{},
			{"2020-03", 1010.5, 50.9, 0.1},
			{"2020-04", 1025.0, 51.8},
		},
	}, "Data")

	res, err := Load(context.Background(), path, defaultOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Data", res.Sheet)
	assert.Equal(t, 3, res.HeaderRow)
	assert.Equal(t, "SP500", res.Headers[RoleMarket])
	assert.Equal(t, "1-month Tbill", res.Headers[RoleRiskFree])
	assert.Equal(t, 4, res.DataRows)

	require.Len(t, res.Observations, 2)
	assert.Equal(t, 4, res.Observations[0].Row)
	assert.InDelta(t, 1000.0, res.Observations[0].MarketLevel, 1e-12)
	assert.InDelta(t, 50.0, res.Observations[0].StockPrice, 1e-12)
	assert.InDelta(t, 0.1, res.Observations[0].RiskFreeRatePercent, 1e-12)
	assert.Equal(t, 7, res.Observations[1].Row)
	assert.InDelta(t, 1010.5, res.Observations[1].MarketLevel, 1e-12)

	require.Len(t, res.Dropped, 2)
	assert.Equal(t, 5, res.Dropped[0].Row)
	assert.Contains(t, res.Dropped[0].Reason, "IBM")
	assert.Equal(t, 8, res.Dropped[1].Row)
	assert.Contains(t, res.Dropped[1].Reason, "1-month Tbill")
}

func TestLoad_SkipsSheetsWithoutColumns(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Notes": {{"readme"}, {"nothing here"}},
		"Prices": {
			{"SP500", "IBM", "1-month Tbill"},
			{1000.0, 50.0, 0.1},
		},
	}, "Notes", "Prices")

	res, err := Load(context.Background(), path, defaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Prices", res.Sheet)
	assert.Len(t, res.Observations, 1)

	opts := defaultOptions()
	opts.Sheet = "Notes"
	_, err = Load(context.Background(), path, opts, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsDataError(err))

	opts.Sheet = "Missing"
	_, err = Load(context.Background(), path, opts, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsDataError(err))
	assert.Contains(t, err.Error(), "Missing")
}

func TestLoad_CSVCaseInsensitiveAndAliases(t *testing.T) {
	path := writeCSV(t, "date, sp500 ,Stock  Price,RF\n2020-01,1000,50,0.1\n2020-02,1010,50.6,0.1\n")

	res, err := Load(context.Background(), path, defaultOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, "prices", res.Sheet)
	assert.Equal(t, "sp500", res.Headers[RoleMarket])
	assert.Equal(t, "Stock  Price", res.Headers[RoleStock])
	assert.Equal(t, "RF", res.Headers[RoleRiskFree])
	require.Len(t, res.Observations, 2)
	assert.InDelta(t, 50.6, res.Observations[1].StockPrice, 1e-12)
}

func TestLoad_CSVWithByteOrderMark(t *testing.T) {
	path := writeCSV(t, "\ufeffSP500,IBM,1-month Tbill\n1000,50,0.1\n1010,50.6,0.1\n")

	res, err := Load(context.Background(), path, defaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, "SP500", res.Headers[RoleMarket])
	require.Len(t, res.Observations, 2)
	assert.InDelta(t, 1000.0, res.Observations[0].MarketLevel, 1e-12)
}

func TestLoad_MalformedCommaNumberDropsRow(t *testing.T) {
	path := writeCSV(t, "SP500,IBM,1-month Tbill\n"+
		"\"1,000.5\",50,0.1\n"+
		"\"1,5\",50.2,0.1\n"+
		"\"12,34,5\",50.4,0.1\n"+
		"1010,50.6,0.1\n")

	res, err := Load(context.Background(), path, defaultOptions(), nil)
	require.NoError(t, err)

	require.Len(t, res.Observations, 2)
	assert.InDelta(t, 1000.5, res.Observations[0].MarketLevel, 1e-12)
	assert.InDelta(t, 1010.0, res.Observations[1].MarketLevel, 1e-12)

	require.Len(t, res.Dropped, 2)
	assert.Equal(t, 3, res.Dropped[0].Row)
	assert.Contains(t, res.Dropped[0].Reason, "SP500")
	assert.Equal(t, 4, res.Dropped[1].Row)
}

func TestLoad_CSVWarnsAboutSheetOption(t *testing.T) {
	logger, h := testutil.NewTestLogger()
	path := writeCSV(t, "SP500,IBM,1-month Tbill\n1000,50,0.1\n")

	opts := defaultOptions()
	opts.Sheet = "Data"
	res, err := Load(context.Background(), path, opts, logger)
	require.NoError(t, err)
	assert.Len(t, res.Observations, 1)

	r := testutil.AssertLogged(t, h, slog.LevelWarn, "Sheet option ignored for CSV input")
	assert.Equal(t, "Data", r.Attrs["sheet"])
	assert.Equal(t, path, r.Attrs["path"])

	logger, h = testutil.NewTestLogger()
	_, err = Load(context.Background(), path, defaultOptions(), logger)
	require.NoError(t, err)
	assert.Empty(t, h.Find("Sheet option ignored"))
}

func TestLoad_PrimaryNameBeatsAlias(t *testing.T) {
	path := writeCSV(t, "market,SP500,IBM,rf\n1,1000,50,0.1\n")

	res, err := Load(context.Background(), path, defaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, "SP500", res.Headers[RoleMarket])
	assert.InDelta(t, 1000.0, res.Observations[0].MarketLevel, 1e-12)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		path        func(t *testing.T) string
		errContains string
	}{
		{
			name: "missing columns",
			path: func(t *testing.T) string {
				return writeCSV(t, "SP500,AAPL,1-month Tbill\n1000,50,0.1\n")
			},
			errContains: "required columns not found",
		},
		{
			name: "entirely non-numeric",
			path: func(t *testing.T) string {
				return writeCSV(t, "SP500,IBM,1-month Tbill\nx,y,z\n,,\n")
			},
			errContains: "no numeric rows",
		},
		{
			name: "header only",
			path: func(t *testing.T) string {
				return writeCSV(t, "SP500,IBM,1-month Tbill\n")
			},
			errContains: "no numeric rows",
		},
		{
			name: "legacy xls",
			path: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "capm.xls")
				require.NoError(t, os.WriteFile(p, []byte("binary"), 0644))
				return p
			},
			errContains: ".xls",
		},
		{
			name: "unsupported extension",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "capm.json")
			},
			errContains: "unsupported input format",
		},
		{
			name: "missing file",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.xlsx")
			},
			errContains: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), tt.path(t), defaultOptions(), nil)
			require.Error(t, err)
			assert.True(t, apperrors.IsDataError(err), "expected DataError, got %v", err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoad_HeaderBeyondSearchDepth(t *testing.T) {
	path := writeCSV(t, "title\nsubtitle\nSP500,IBM,1-month Tbill\n1000,50,0.1\n")

	opts := defaultOptions()
	opts.HeaderSearchRows = 2
	_, err := Load(context.Background(), path, opts, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsDataError(err))

	opts.HeaderSearchRows = 3
	res, err := Load(context.Background(), path, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.HeaderRow)
}

func TestListHeaders(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Prices": {
			{},
			{"Date", " SP500 ", "IBM", "1-month Tbill"},
			{"2020-01", 1000.0, 50.0, 0.1},
		},
		"Empty": {},
	}, "Prices", "Empty")

	got, err := ListHeaders(path, "", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Prices", got[0].Sheet)
	assert.Equal(t, 2, got[0].Row)
	assert.Equal(t, []string{"Date", "SP500", "IBM", "1-month Tbill"}, got[0].Headers)
}

func TestDetectFormat(t *testing.T) {
	for _, p := range []string{"a.xlsx", "a.XLSM", "a.xltx"} {
		f, err := DetectFormat(p)
		require.NoError(t, err)
		assert.Equal(t, FormatExcel, f)
	}
	f, err := DetectFormat("a.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "1-month tbill", NormalizeHeader("  1-month   Tbill "))
	assert.Equal(t, "", NormalizeHeader("   "))
}
