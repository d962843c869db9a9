package chart

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNoRecords is returned when there is nothing to draw:
// the extent of an empty set is not defined.
var ErrNoRecords = errors.New("no records to draw")

// DateError is returned for a date token which can't be parsed.
type DateError struct {
	Row   int
	Token string
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("row %d: invalid date %q: %v", e.Row, e.Token, e.Err)
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// accepted date layouts, tried in order. All dates are UTC.
var dateLayouts = [...]string{
	"2006-01-02",
	"20060102",
	"2006010215",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate parses a calendar date, either ISO (2006-01-02),
// compact (20060102, or 2006010215 with an hour) or RFC 3339.
func ParseDate(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// timeValue returns t as fractional milliseconds since the Unix epoch
func timeValue(t time.Time) float64 {
	return float64(t.Unix())*1000 + float64(t.Nanosecond())/1e6
}

func timeFromValue(ms float64) time.Time {
	sec := math.Floor(ms / 1000)
	return time.Unix(int64(sec), int64((ms-sec*1000)*1e6)).UTC()
}

// interpolate maps v from [d0, d1] to [r0, r1].
// A degenerated domain maps to the middle of the range.
func interpolate(v, d0, d1, r0, r1 float64) float64 {
	span := d1 - d0
	if span == 0 {
		return (r0 + r1) / 2
	}
	return r0 + (v-d0)/span*(r1-r0)
}

// TimeScale maps dates to pixels.
type TimeScale struct {
	D0, D1 time.Time
	R0, R1 float64
}

// Apply returns the pixel position of t.
func (s TimeScale) Apply(t time.Time) float64 {
	return interpolate(timeValue(t), timeValue(s.D0), timeValue(s.D1), s.R0, s.R1)
}

// ApplyDate parses the token and returns its position, or NaN
// for invalid dates.
func (s TimeScale) ApplyDate(token string) float64 {
	t, err := ParseDate(token)
	if err != nil {
		return math.NaN()
	}
	return s.Apply(t)
}

// LinearScale maps metric values to pixels.
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

// Apply returns the pixel position of v. A NaN domain
// maps every value to NaN.
func (s LinearScale) Apply(v float64) float64 {
	return interpolate(v, s.D0, s.D1, s.R0, s.R1)
}

// Scales holds the two mappings of a chart.
type Scales struct {
	X TimeScale
	Y LinearScale
}

// metricExtent returns the min and max of the metrics.
// A single NaN metric makes the whole extent NaN.
func metricExtent(records []Record) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range records {
		if math.IsNaN(r.Metric) {
			return math.NaN(), math.NaN()
		}
		lo = math.Min(lo, r.Metric)
		hi = math.Max(hi, r.Metric)
	}
	return lo, hi
}

// BuildScales computes the scales from the data extents.
// The horizontal domain is [min(date), max(date)], mapped to [0, plotWidth].
// The vertical domain is [min(metric) - pad, max(metric) + pad], mapped
// to [plotHeight, 0], so that values increase upward.
func BuildScales(records []Record, plotWidth, plotHeight, pad float64) (Scales, error) {
	if len(records) == 0 {
		return Scales{}, ErrNoRecords
	}

	var minDate, maxDate time.Time
	for i, r := range records {
		t, err := ParseDate(r.Date)
		if err != nil {
			return Scales{}, &DateError{Row: r.Index, Token: r.Date, Err: err}
		}
		if i == 0 || t.Before(minDate) {
			minDate = t
		}
		if i == 0 || t.After(maxDate) {
			maxDate = t
		}
	}

	lo, hi := metricExtent(records)
	return Scales{
		X: TimeScale{D0: minDate, D1: maxDate, R0: 0, R1: plotWidth},
		Y: LinearScale{D0: lo - pad, D1: hi + pad, R0: plotHeight, R1: 0},
	}, nil
}
