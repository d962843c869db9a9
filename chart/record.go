package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidMetric is returned when a metric token has no numeric prefix.
var ErrInvalidMetric = errors.New("no numeric prefix")

// Row is one raw input row: date, entity, metric token and logo URL.
type Row [4]string

// Record is one typed observation.
type Record struct {
	Index    int    // position of the source row
	Date     string // opaque until the scales are built
	EntityID string
	Metric   float64 // NaN if the token could not be parsed
	LogoURL  string
}

// MetricResult is the outcome of parsing a metric token.
// Value is NaN when Err is not nil.
type MetricResult struct {
	Value float64
	Err   error
}

// OK returns true if a numeric value was found.
func (m MetricResult) OK() bool { return m.Err == nil }

// ParsePolicy decides what happens to rows with an invalid metric.
type ParsePolicy uint8

const (
	// KeepInvalid keeps the row with a NaN metric.
	KeepInvalid ParsePolicy = iota
	// DropInvalid removes the row.
	DropInvalid
	// AbortOnInvalid fails the whole parse.
	AbortOnInvalid
)

func (p ParsePolicy) String() string {
	switch p {
	case KeepInvalid:
		return "keep"
	case DropInvalid:
		return "drop"
	case AbortOnInvalid:
		return "abort"
	default:
		return "<unknown ParsePolicy>"
	}
}

// ParsePolicyFromString is the inverse of ParsePolicy.String.
// The empty string maps to KeepInvalid.
func ParsePolicyFromString(s string) (ParsePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return KeepInvalid, nil
	case "drop":
		return DropInvalid, nil
	case "abort":
		return AbortOnInvalid, nil
	}
	return 0, fmt.Errorf("invalid parse policy %q (must be keep, drop or abort)", s)
}

// ParseError describes an invalid metric token.
type ParseError struct {
	Row   int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: invalid metric %q: %v", e.Row, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseMetric converts a token to a float, using the longest numeric prefix
// of the token, after leading white spaces: "12.5kg" is 12.5, "abc" is invalid.
func ParseMetric(token string) MetricResult {
	s := strings.TrimLeftFunc(token, unicode.IsSpace)
	prefix := numericPrefix(s)
	if prefix == "" {
		return MetricResult{Value: math.NaN(), Err: ErrInvalidMetric}
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return MetricResult{Value: math.NaN(), Err: err}
	}
	return MetricResult{Value: v}
}

// numericPrefix returns the longest prefix of s matching
// [+-]?(Infinity|digits[.digits]|.digits)([eE][+-]?digits)?
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i+len("Infinity")]
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
			digits++
		}
		if digits > 0 {
			i = j
		}
	}
	if digits == 0 {
		return ""
	}
	// the exponent is only consumed when complete
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			i = j
		}
	}
	return s[:i]
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// ParseRows converts the raw rows to records, in the same order.
// Invalid metrics are handled according to `policy`: with KeepInvalid
// and DropInvalid, they are reported in the returned issues;
// with AbortOnInvalid, the first one is returned as a *ParseError.
func ParseRows(rows []Row, policy ParsePolicy) ([]Record, []*ParseError, error) {
	records := make([]Record, 0, len(rows))
	var issues []*ParseError
	for i, row := range rows {
		metric := ParseMetric(row[2])
		if !metric.OK() {
			perr := &ParseError{Row: i, Token: row[2], Err: metric.Err}
			switch policy {
			case AbortOnInvalid:
				return nil, nil, perr
			case DropInvalid:
				issues = append(issues, perr)
				continue
			default:
				issues = append(issues, perr)
			}
		}
		records = append(records, Record{
			Index:    i,
			Date:     row[0],
			EntityID: row[1],
			Metric:   metric.Value,
			LogoURL:  row[3],
		})
	}
	return records, issues, nil
}
