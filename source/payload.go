// Package source reads chart payloads: the JSON documents
// sent by the host, and tabular files (CSV or XLSX)
// holding (date, entity, metric, logo) rows.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/benoitkugler/okchart/chart"
)

// ErrNoRows is returned for documents without row table.
var ErrNoRows = errors.New("missing rows")

// DefaultTable is the name of the table sent by the host.
const DefaultTable = "DEFAULT"

// RowError describes a row which can't be read.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

type payloadJSON struct {
	Rows   []json.RawMessage            `json:"rows"`
	Tables map[string][]json.RawMessage `json:"tables"`
	Style  map[string]json.RawMessage   `json:"style"`
}

// DecodePayload reads a JSON payload, either
//
//	{"rows": [[date, entity, metric, logo], ...], "style": {...}}
//
// or, when "rows" is absent, the host table shape
//
//	{"tables": {"DEFAULT": [[...], ...]}, "style": {...}}
//
// Cells may be strings or numbers. Unknown style keys are ignored.
func DecodePayload(r io.Reader) (chart.Payload, error) {
	return NewDecoder(r).Decode()
}

// Decoder reads a stream of JSON payloads, such as
// newline delimited documents.
type Decoder struct {
	dec *json.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Decoder{dec: dec}
}

// Decode reads the next payload. It returns io.EOF
// at the end of the stream.
func (d *Decoder) Decode() (chart.Payload, error) {
	var doc payloadJSON
	if err := d.dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return chart.Payload{}, err
		}
		return chart.Payload{}, fmt.Errorf("decoding payload: %w", err)
	}
	raw := doc.Rows
	if raw == nil {
		table, ok := doc.Tables[DefaultTable]
		if !ok {
			return chart.Payload{}, ErrNoRows
		}
		raw = table
	}

	rows := make([]chart.Row, len(raw))
	for i, item := range raw {
		row, err := decodeRow(item)
		if err != nil {
			return chart.Payload{}, &RowError{Row: i, Err: err}
		}
		rows[i] = row
	}
	return chart.Payload{Rows: rows, Style: decodeStyle(doc.Style)}, nil
}

func decodeRow(data json.RawMessage) (chart.Row, error) {
	var cells []json.RawMessage
	if err := json.Unmarshal(data, &cells); err != nil {
		return chart.Row{}, err
	}
	if len(cells) < 4 {
		return chart.Row{}, fmt.Errorf("expected 4 cells, got %d", len(cells))
	}
	var row chart.Row
	for j := range row {
		s, err := cellString(cells[j])
		if err != nil {
			return chart.Row{}, fmt.Errorf("cell %d: %w", j, err)
		}
		row[j] = s
	}
	return row, nil
}

// cellString returns the text of a scalar JSON value. Numbers are
// kept as written, null is the empty string.
func cellString(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return "", nil
	}
	switch data[0] {
	case '"':
		var s string
		err := json.Unmarshal(data, &s)
		return s, err
	case '{', '[':
		return "", fmt.Errorf("unexpected value %s", data)
	default: // number or boolean
		return string(data), nil
	}
}

type optionJSON struct {
	Value json.RawMessage `json:"value"`
}

// styleKeys are the recognized style options. Other keys are ignored.
var styleKeys = map[string]bool{
	"mainCompetitor":   true,
	"mainColor":        true,
	"mainStrokeWidth":  true,
	"otherColor":       true,
	"otherStrokeWidth": true,
}

func isNull(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || string(data) == "null"
}

func decodeStyle(raw map[string]json.RawMessage) *chart.StyleInput {
	if raw == nil {
		return nil
	}
	var out chart.StyleInput
	for key, data := range raw {
		if !styleKeys[key] {
			continue
		}
		var opt optionJSON
		if err := json.Unmarshal(data, &opt); err != nil {
			log.Printf("source: ignoring style option %q: invalid value %s", key, data)
			continue
		}
		if isNull(opt.Value) { // {"value": null} is absent
			continue
		}
		switch key {
		case "mainCompetitor":
			out.MainCompetitor = stringOption(key, opt.Value)
		case "mainColor":
			out.MainColor = stringOption(key, opt.Value)
		case "otherColor":
			out.OtherColor = stringOption(key, opt.Value)
		case "mainStrokeWidth":
			out.MainStrokeWidth = numberOption(key, opt.Value)
		case "otherStrokeWidth":
			out.OtherStrokeWidth = numberOption(key, opt.Value)
		}
	}
	return &out
}

func stringOption(key string, data json.RawMessage) *chart.Value[string] {
	s, err := cellString(data)
	if err != nil {
		log.Printf("source: ignoring style option %q: %s", key, err)
		return nil
	}
	return chart.Some(s)
}

// numberOption accepts numbers and numeric strings
func numberOption(key string, data json.RawMessage) *chart.Value[float64] {
	s, err := cellString(data)
	if err == nil {
		var v float64
		v, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return chart.Some(v)
		}
	}
	log.Printf("source: ignoring style option %q: %s", key, err)
	return nil
}

// EncodePayload writes the payload in the "rows" shape accepted
// by DecodePayload.
func EncodePayload(w io.Writer, payload chart.Payload) error {
	doc := struct {
		Rows  []chart.Row       `json:"rows"`
		Style *chart.StyleInput `json:"style,omitempty"`
	}{payload.Rows, payload.Style}
	if doc.Rows == nil {
		doc.Rows = []chart.Row{}
	}
	return json.NewEncoder(w).Encode(doc)
}
