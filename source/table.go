package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/okchart/chart"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html/charset"
)

// HeaderMode tells how the first row of a table is handled.
type HeaderMode uint8

const (
	// HeaderAuto skips the first row if neither its date
	// nor its metric can be parsed.
	HeaderAuto HeaderMode = iota
	HeaderPresent
	HeaderAbsent
)

// TableOptions controls how tabular files are read.
type TableOptions struct {
	Header HeaderMode
	// Charset is a label such as "utf-8", "latin1" or "windows-1252".
	// Empty means UTF-8. Only used for CSV.
	Charset string
	// Comma is the CSV field delimiter, ',' if zero.
	Comma rune
	// Sheet is the XLSX sheet, the first one if empty.
	Sheet string
}

// isHeader returns true for a row which does not look like data
func isHeader(cells []string) bool {
	if len(cells) < 3 {
		return false
	}
	_, dateErr := chart.ParseDate(strings.TrimSpace(cells[0]))
	return dateErr != nil && !chart.ParseMetric(cells[2]).OK()
}

// toRows converts raw records to rows, padding missing
// trailing cells and skipping empty lines.
func toRows(records [][]string, header HeaderMode) []chart.Row {
	if len(records) > 0 {
		switch header {
		case HeaderPresent:
			records = records[1:]
		case HeaderAuto:
			if isHeader(records[0]) {
				records = records[1:]
			}
		}
	}
	rows := make([]chart.Row, 0, len(records))
	for _, record := range records {
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		var row chart.Row
		copy(row[:], record)
		rows = append(rows, row)
	}
	return rows
}

// ReadCSV reads rows of 4 columns: date, entity, metric and logo.
func ReadCSV(r io.Reader, opts TableOptions) ([]chart.Row, error) {
	if opts.Charset != "" {
		var err error
		r, err = charset.NewReaderLabel(opts.Charset, r)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", opts.Charset, err)
		}
	}
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return toRows(records, opts.Header), nil
}

// ReadXLSX reads rows from the first 4 columns of a sheet.
func ReadXLSX(r io.Reader, opts TableOptions) ([]chart.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoRows
		}
		sheet = sheets[0]
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return toRows(records, opts.Header), nil
}

// ReadFile reads a payload from a file, choosing the format
// from its extension: .json, .csv (or .tsv) and .xlsx.
func ReadFile(path string, opts TableOptions) (chart.Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return chart.Payload{}, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return DecodePayload(f)
	case ".csv", ".txt":
		rows, err := ReadCSV(f, opts)
		return chart.Payload{Rows: rows}, err
	case ".tsv":
		opts.Comma = '\t'
		rows, err := ReadCSV(f, opts)
		return chart.Payload{Rows: rows}, err
	case ".xlsx", ".xlsm":
		rows, err := ReadXLSX(f, opts)
		return chart.Payload{Rows: rows}, err
	default:
		return chart.Payload{}, fmt.Errorf("unsupported file extension %q", ext)
	}
}
