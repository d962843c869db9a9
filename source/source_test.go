package source

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/benoitkugler/okchart/chart"
	"github.com/xuri/excelize/v2"
)

var expectedRows = []chart.Row{
	{"2024-01-01", "A", "10", "urlA"},
	{"2024-01-02", "A", "20", "urlA"},
	{"2024-01-01", "B", "5", "urlB"},
}

func TestDecodePayload(t *testing.T) {
	input := `{
		"rows": [
			["2024-01-01", "A", "10", "urlA"],
			["2024-01-02", "A", 20, "urlA"],
			["2024-01-01", "B", 5, "urlB"]
		],
		"style": {
			"mainCompetitor": {"value": "A"},
			"mainStrokeWidth": {"value": "6"},
			"otherStrokeWidth": {"value": "wide"},
			"unknown": {"value": 1}
		}
	}`
	payload, err := DecodePayload(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(payload.Rows, expectedRows) {
		t.Errorf("expected %v, got %v", expectedRows, payload.Rows)
	}

	style := chart.ResolveStyle(payload.Style)
	if style.MainEntityID != "A" || style.MainStrokeWidth != 6 {
		t.Errorf("unexpected style %v", style)
	}
	// invalid values are ignored
	if style.OtherStrokeWidth != chart.DefaultStyle.OtherStrokeWidth {
		t.Errorf("unexpected other stroke width %g", style.OtherStrokeWidth)
	}
	if style.MainColor != chart.DefaultStyle.MainColor {
		t.Errorf("unexpected main color %s", style.MainColor)
	}
}

func TestDecodePayloadTables(t *testing.T) {
	input := `{"tables": {"DEFAULT": [["2024-01-01", "A", 1.5e1, null]]}}`
	payload, err := DecodePayload(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	expected := []chart.Row{{"2024-01-01", "A", "1.5e1", ""}}
	if !reflect.DeepEqual(payload.Rows, expected) {
		t.Errorf("expected %v, got %v", expected, payload.Rows)
	}
	if payload.Style != nil {
		t.Errorf("expected no style, got %v", payload.Style)
	}
	if got := chart.ParseMetric(payload.Rows[0][2]); got.Value != 15 {
		t.Errorf("unexpected metric %v", got)
	}
}

func TestDecodePayloadErrors(t *testing.T) {
	if _, err := DecodePayload(strings.NewReader(`{"style": {}}`)); !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
	_, err := DecodePayload(strings.NewReader(`{"rows": [["2024-01-01", "A", "1", ""], ["2024-01-01", "A"]]}`))
	var rerr *RowError
	if !errors.As(err, &rerr) || rerr.Row != 1 {
		t.Errorf("expected a row error, got %v", err)
	}
	if _, err := DecodePayload(strings.NewReader(`{"rows": [[{}, "A", "1", ""]]}`)); err == nil {
		t.Error("expected an error for an object cell")
	}
	if _, err := DecodePayload(strings.NewReader(`not json`)); err == nil {
		t.Error("expected a syntax error")
	}
}

func TestEncodePayload(t *testing.T) {
	payload := chart.Payload{Rows: expectedRows, Style: &chart.StyleInput{MainColor: chart.Some("red")}}
	var buf bytes.Buffer
	if err := EncodePayload(&buf, payload); err != nil {
		t.Fatal(err)
	}
	got, err := DecodePayload(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Rows, expectedRows) || chart.ResolveStyle(got.Style).MainColor != "red" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestReadCSV(t *testing.T) {
	input := "date,competitor,metric,logo\n2024-01-01,A,10,urlA\n2024-01-02,A,20,urlA\n\n2024-01-01,B,5,urlB\n"
	rows, err := ReadCSV(strings.NewReader(input), TableOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rows, expectedRows) {
		t.Errorf("expected %v, got %v", expectedRows, rows)
	}

	// without header, and a missing logo column
	rows, err = ReadCSV(strings.NewReader("2024-01-01;A;10\n"), TableOptions{Comma: ';', Header: HeaderAbsent})
	if err != nil {
		t.Fatal(err)
	}
	if expected := []chart.Row{{"2024-01-01", "A", "10", ""}}; !reflect.DeepEqual(rows, expected) {
		t.Errorf("expected %v, got %v", expected, rows)
	}
}

func TestReadCSVCharset(t *testing.T) {
	// "Société" in ISO-8859-1
	input := []byte("2024-01-01,Soci\xe9t\xe9,10,\n")
	rows, err := ReadCSV(bytes.NewReader(input), TableOptions{Charset: "latin1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][1] != "Société" {
		t.Errorf("unexpected rows %v", rows)
	}

	if _, err := ReadCSV(bytes.NewReader(input), TableOptions{Charset: "klingon"}); err == nil {
		t.Error("expected an error for an unknown charset")
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "Date")
	f.SetCellValue(sheetName, "B1", "Competitor")
	f.SetCellValue(sheetName, "C1", "Metric")
	f.SetCellValue(sheetName, "D1", "Logo")
	for i, row := range expectedRows {
		for j, cell := range row {
			name, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheetName, name, cell)
		}
	}
	// numeric cells are read back as text
	f.SetCellValue(sheetName, "C4", 5)

	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	payload, err := ReadFile(tmpFile, TableOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(payload.Rows, expectedRows) {
		t.Errorf("expected %v, got %v", expectedRows, payload.Rows)
	}

	r, err := os.Open(tmpFile)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := ReadXLSX(r, TableOptions{Sheet: "Missing"}); err == nil {
		t.Error("expected an error for a missing sheet")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(csvPath, []byte("2024-01-01,A,10,urlA\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	payload, err := ReadFile(csvPath, TableOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.Rows) != 1 {
		t.Errorf("unexpected rows %v", payload.Rows)
	}

	if _, err := ReadFile(filepath.Join(dir, "data.parquet"), TableOptions{}); err == nil {
		t.Error("expected an error for a missing file")
	}
	other := filepath.Join(dir, "data.parquet")
	if err := os.WriteFile(other, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(other, TableOptions{}); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}

func TestDecoderStream(t *testing.T) {
	input := `{"rows": [["2024-01-01", "A", "1", ""]]}
{"tables": {"DEFAULT": [["2024-01-02", "B", "2", ""]]}}
`
	dec := NewDecoder(strings.NewReader(input))
	var got []chart.Row
	for {
		payload, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, payload.Rows...)
	}
	expected := []chart.Row{{"2024-01-01", "A", "1", ""}, {"2024-01-02", "B", "2", ""}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestDecodeStyleAbsentOptions(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	input := `{
		"rows": [["2024-01-01", "", "10", ""]],
		"style": {
			"mainCompetitor": {"value": null},
			"mainColor": {},
			"theme": "dark",
			"legend": [1, 2]
		}
	}`
	payload, err := DecodePayload(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if s := payload.Style; s.MainCompetitor != nil || s.MainColor != nil {
		t.Errorf("expected absent options, got %v", s)
	}
	if style := chart.ResolveStyle(payload.Style); style.MainEntityID != chart.DefaultStyle.MainEntityID {
		t.Errorf("unexpected main entity %q", style.MainEntityID)
	}
	// unknown keys are ignored silently
	if logs.Len() != 0 {
		t.Errorf("unexpected logs %q", logs.String())
	}

	// invalid recognized options are still reported
	_, err = DecodePayload(strings.NewReader(`{"rows": [], "style": {"mainColor": "red"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "mainColor") {
		t.Errorf("expected a log for mainColor, got %q", logs.String())
	}
}
