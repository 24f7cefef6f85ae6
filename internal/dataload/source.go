package dataload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "capmcli/internal/errors"
)

// Sheet is one worksheet as a grid of cell text. Rows may be ragged.
type Sheet struct {
	Name string
	Rows [][]string
}

// Format identifies how a source file is read
type Format string

const (
	FormatExcel Format = "excel"
	FormatCSV   Format = "csv"
)

// DetectFormat maps a file extension onto a readable format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatExcel, nil
	case ".csv":
		return FormatCSV, nil
	case ".xls":
		return "", apperrors.NewDataError(
			"legacy .xls workbooks are not supported; convert "+filepath.Base(path)+" to .xlsx or .csv", nil)
	default:
		return "", apperrors.NewDataError("unsupported input format "+filepath.Ext(path), nil).
			WithContext("path", path)
	}
}

// ReadSheets reads the source file. With a non-empty sheet only that sheet is
// returned; CSV files have a single sheet named after the file.
func ReadSheets(path, sheet string) ([]Sheet, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewDataError("input file "+path+" not found", err)
		}
		return nil, apperrors.NewDataError("cannot access input file", err)
	}

	switch format {
	case FormatCSV:
		s, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		return []Sheet{s}, nil
	default:
		return readExcel(path, sheet)
	}
}

func readExcel(path, sheet string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewDataError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	names := f.GetSheetList()
	if sheet != "" {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil || idx < 0 {
			return nil, apperrors.NewDataError(fmt.Sprintf("sheet %q not found (available: %s)",
				sheet, strings.Join(names, ", ")), err)
		}
		names = []string{sheet}
	}

	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		// Raw values so number formats (percent, thousands) do not leak into parsing.
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, apperrors.NewDataError(fmt.Sprintf("failed to read sheet %q", name), err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

// utf8BOM is written at the start of CSV exports by Excel on Windows
const utf8BOM = "\ufeff"

func readCSV(path string) (Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return Sheet{}, apperrors.NewDataError("failed to open CSV file", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Sheet{}, apperrors.NewParsingError("malformed CSV", err).WithContext("path", path)
		}
		if len(rows) == 0 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], utf8BOM)
		}
		rows = append(rows, rec)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Sheet{Name: name, Rows: rows}, nil
}
