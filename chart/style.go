package chart

// Value wraps an optional style option, as sent by the host: { "value": ... }
type Value[T any] struct {
	Value T `json:"value" yaml:"value"`
}

// Some returns a present option.
func Some[T any](v T) *Value[T] { return &Value[T]{Value: v} }

// StyleInput is the raw, partial style configuration.
// A nil field is absent.
type StyleInput struct {
	MainCompetitor   *Value[string]  `json:"mainCompetitor,omitempty" yaml:"mainCompetitor,omitempty"`
	MainColor        *Value[string]  `json:"mainColor,omitempty" yaml:"mainColor,omitempty"`
	MainStrokeWidth  *Value[float64] `json:"mainStrokeWidth,omitempty" yaml:"mainStrokeWidth,omitempty"`
	OtherColor       *Value[string]  `json:"otherColor,omitempty" yaml:"otherColor,omitempty"`
	OtherStrokeWidth *Value[float64] `json:"otherStrokeWidth,omitempty" yaml:"otherStrokeWidth,omitempty"`
}

// StyleConfig is the resolved style of a chart.
type StyleConfig struct {
	MainEntityID     string
	MainColor        string
	MainStrokeWidth  float64
	OtherColor       string
	OtherStrokeWidth float64
}

// DefaultStyle is used for every option absent from the input.
var DefaultStyle = StyleConfig{
	MainEntityID:     "Concurrent A",
	MainColor:        "#1f77b4",
	MainStrokeWidth:  4,
	OtherColor:       "#2ca02c",
	OtherStrokeWidth: 2,
}

func pick[T any](opt *Value[T], def T) T {
	if opt == nil {
		return def
	}
	return opt.Value
}

// ResolveStyle fills the absent options of `in` (which may be nil) with
// DefaultStyle. Values are not validated.
func ResolveStyle(in *StyleInput) StyleConfig {
	if in == nil {
		return DefaultStyle
	}
	return StyleConfig{
		MainEntityID:     pick(in.MainCompetitor, DefaultStyle.MainEntityID),
		MainColor:        pick(in.MainColor, DefaultStyle.MainColor),
		MainStrokeWidth:  pick(in.MainStrokeWidth, DefaultStyle.MainStrokeWidth),
		OtherColor:       pick(in.OtherColor, DefaultStyle.OtherColor),
		OtherStrokeWidth: pick(in.OtherStrokeWidth, DefaultStyle.OtherStrokeWidth),
	}
}

func overlay[T any](base, override *Value[T]) *Value[T] {
	if override != nil {
		return override
	}
	return base
}

// Merge returns a new input where the options present in `override`
// replace the ones of `s`. Both may be nil.
func (s *StyleInput) Merge(override *StyleInput) *StyleInput {
	if s == nil {
		return override
	}
	if override == nil {
		return s
	}
	return &StyleInput{
		MainCompetitor:   overlay(s.MainCompetitor, override.MainCompetitor),
		MainColor:        overlay(s.MainColor, override.MainColor),
		MainStrokeWidth:  overlay(s.MainStrokeWidth, override.MainStrokeWidth),
		OtherColor:       overlay(s.OtherColor, override.OtherColor),
		OtherStrokeWidth: overlay(s.OtherStrokeWidth, override.OtherStrokeWidth),
	}
}
