package chart

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultTickCount is the number of ticks aimed for on each axis.
const DefaultTickCount = 10

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickSpec returns the tick indices and increment for [start, stop].
// A negative increment means a step of 1/-inc, to avoid rounding issues.
func tickSpec(start, stop float64, count int) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, float64(count))
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}
	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	return i1, i2, inc
}

// tickStep returns the distance between two ticks.
func tickStep(start, stop float64, count int) float64 {
	_, _, inc := tickSpec(math.Min(start, stop), math.Max(start, stop), count)
	if inc < 0 {
		return -1 / inc
	}
	return inc
}

// Ticks returns about `count` round values covering the domain,
// in increasing order. A non finite domain has no ticks.
func (s LinearScale) Ticks(count int) []float64 {
	start, stop := math.Min(s.D0, s.D1), math.Max(s.D0, s.D1)
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) || math.IsInf(start, 0) || math.IsInf(stop, 0) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	i1, i2, inc := tickSpec(start, stop, count)
	if !(i2 >= i1) {
		return nil
	}
	out := make([]float64, 0, int(i2-i1)+1)
	for i := i1; i <= i2; i++ {
		if inc < 0 {
			out = append(out, i/-inc)
		} else {
			out = append(out, i*inc)
		}
	}
	return out
}

var tickPrinter = message.NewPrinter(language.English)

// decimalExponent returns the exponent of x in scientific notation
func decimalExponent(x float64) int {
	s := strconv.FormatFloat(math.Abs(x), 'e', -1, 64)
	exp, _ := strconv.Atoi(s[strings.IndexByte(s, 'e')+1:])
	return exp
}

// TickFormat returns a formatter for the ticks of the scale,
// with a fixed precision deduced from the tick step and
// digit grouping: 1,000 or 0.25.
func (s LinearScale) TickFormat(count int) func(float64) string {
	precision := 0
	if step := tickStep(s.D0, s.D1, count); step > 0 && !math.IsInf(step, 0) {
		precision = max(0, -decimalExponent(step))
	}
	return func(v float64) string {
		if v == 0 {
			v = 0 // avoid -0
		}
		return tickPrinter.Sprint(number.Decimal(v, number.Scale(precision)))
	}
}

type timeUnit uint8

const (
	unitSecond timeUnit = iota
	unitMinute
	unitHour
	unitDay
	unitWeek
	unitMonth
	unitYear
)

const (
	durationSecond = 1000.
	durationMinute = durationSecond * 60
	durationHour   = durationMinute * 60
	durationDay    = durationHour * 24
	durationWeek   = durationDay * 7
	durationMonth  = durationDay * 30
	durationYear   = durationDay * 365
)

type timeInterval struct {
	unit     timeUnit
	step     int
	duration float64 // approximate, in milliseconds
}

var tickIntervals = [...]timeInterval{
	{unitSecond, 1, durationSecond},
	{unitSecond, 5, 5 * durationSecond},
	{unitSecond, 15, 15 * durationSecond},
	{unitSecond, 30, 30 * durationSecond},
	{unitMinute, 1, durationMinute},
	{unitMinute, 5, 5 * durationMinute},
	{unitMinute, 15, 15 * durationMinute},
	{unitMinute, 30, 30 * durationMinute},
	{unitHour, 1, durationHour},
	{unitHour, 3, 3 * durationHour},
	{unitHour, 6, 6 * durationHour},
	{unitHour, 12, 12 * durationHour},
	{unitDay, 1, durationDay},
	{unitDay, 2, 2 * durationDay},
	{unitWeek, 1, durationWeek},
	{unitMonth, 1, durationMonth},
	{unitMonth, 3, 3 * durationMonth},
	{unitYear, 1, durationYear},
}

// floor rounds t down to the unit boundary
func (u timeUnit) floor(t time.Time) time.Time {
	y, m, d := t.Date()
	switch u {
	case unitSecond:
		return t.Truncate(time.Second)
	case unitMinute:
		return t.Truncate(time.Minute)
	case unitHour:
		return t.Truncate(time.Hour)
	case unitDay:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case unitWeek: // weeks start on sunday
		return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, time.UTC)
	case unitMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

func (u timeUnit) next(t time.Time) time.Time {
	switch u {
	case unitSecond:
		return t.Add(time.Second)
	case unitMinute:
		return t.Add(time.Minute)
	case unitHour:
		return t.Add(time.Hour)
	case unitDay:
		return t.AddDate(0, 0, 1)
	case unitWeek:
		return t.AddDate(0, 0, 7)
	case unitMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(1, 0, 0)
	}
}

// field is the number used to select every step-th boundary
func (u timeUnit) field(t time.Time) int {
	switch u {
	case unitSecond:
		return t.Second()
	case unitMinute:
		return t.Minute()
	case unitHour:
		return t.Hour()
	case unitDay:
		return t.Day() - 1
	case unitMonth:
		return int(t.Month()) - 1
	case unitYear:
		return t.Year()
	default:
		return 0
	}
}

// rangeOf returns the boundaries of the interval in [start, stop].
func (iv timeInterval) rangeOf(start, stop time.Time) []time.Time {
	var out []time.Time
	t := iv.unit.floor(start)
	if t.Before(start) {
		t = iv.unit.next(t)
	}
	for ; !t.After(stop); t = iv.unit.next(t) {
		if iv.step <= 1 || iv.unit.field(t)%iv.step == 0 {
			out = append(out, t)
		}
	}
	return out
}

// Ticks returns about `count` dates aligned on calendar boundaries,
// covering the domain.
func (s TimeScale) Ticks(count int) []time.Time {
	start, stop := s.D0, s.D1
	if stop.Before(start) {
		start, stop = stop, start
	}
	if count <= 0 {
		return nil
	}
	if start.Equal(stop) {
		return []time.Time{start}
	}
	v0, v1 := timeValue(start), timeValue(stop)
	target := (v1 - v0) / float64(count)

	// first interval strictly larger than the target
	i := 0
	for i < len(tickIntervals) && tickIntervals[i].duration <= target {
		i++
	}
	switch i {
	case len(tickIntervals):
		step := int(math.Max(1, tickStep(v0/durationYear, v1/durationYear, count)))
		return timeInterval{unitYear, step, 0}.rangeOf(start, stop)
	case 0:
		step := math.Max(1, math.Round(tickStep(v0, v1, count)))
		var out []time.Time
		for v := math.Ceil(v0/step) * step; v <= v1; v += step {
			out = append(out, timeFromValue(v))
		}
		return out
	}
	iv := tickIntervals[i]
	if target/tickIntervals[i-1].duration < tickIntervals[i].duration/target {
		iv = tickIntervals[i-1]
	}
	return iv.rangeOf(start, stop)
}

// FormatTime uses the coarsest representation still
// distinguishing t from its enclosing calendar boundaries:
// "2024", "February", "Jan 07" (sundays), "Mon 01", "03 PM", "03:15", ":30" or ".250".
func FormatTime(t time.Time) string {
	t = t.UTC()
	switch {
	case unitSecond.floor(t).Before(t):
		return t.Format(".000")
	case unitMinute.floor(t).Before(t):
		return t.Format(":05")
	case unitHour.floor(t).Before(t):
		return t.Format("03:04")
	case unitDay.floor(t).Before(t):
		return t.Format("03 PM")
	case unitMonth.floor(t).Before(t):
		if unitWeek.floor(t).Before(t) {
			return t.Format("Mon 02")
		}
		return t.Format("Jan 02")
	case unitYear.floor(t).Before(t):
		return t.Format("January")
	default:
		return t.Format("2006")
	}
}
