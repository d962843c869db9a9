package chart

import "testing"

func TestResolveStyleDefaults(t *testing.T) {
	if got := ResolveStyle(nil); got != DefaultStyle {
		t.Errorf("nil input: expected %v, got %v", DefaultStyle, got)
	}
	if got := ResolveStyle(&StyleInput{}); got != DefaultStyle {
		t.Errorf("empty input: expected %v, got %v", DefaultStyle, got)
	}
	if DefaultStyle.MainEntityID != "Concurrent A" || DefaultStyle.MainColor != "#1f77b4" ||
		DefaultStyle.MainStrokeWidth != 4 || DefaultStyle.OtherColor != "#2ca02c" ||
		DefaultStyle.OtherStrokeWidth != 2 {
		t.Errorf("unexpected default table %v", DefaultStyle)
	}
}

func TestResolveStylePartial(t *testing.T) {
	got := ResolveStyle(&StyleInput{MainColor: Some("red")})
	expected := DefaultStyle
	expected.MainColor = "red"
	if got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}

	// present zero values are kept
	got = ResolveStyle(&StyleInput{OtherStrokeWidth: Some(0.)})
	if got.OtherStrokeWidth != 0 {
		t.Errorf("expected a zero width, got %g", got.OtherStrokeWidth)
	}
}

func TestStyleMerge(t *testing.T) {
	base := &StyleInput{MainCompetitor: Some("A"), MainColor: Some("red")}
	override := &StyleInput{MainColor: Some("blue"), OtherStrokeWidth: Some(3.)}

	got := ResolveStyle(base.Merge(override))
	if got.MainEntityID != "A" || got.MainColor != "blue" || got.OtherStrokeWidth != 3 {
		t.Errorf("unexpected merged style %v", got)
	}
	if got.MainStrokeWidth != DefaultStyle.MainStrokeWidth {
		t.Errorf("absent options should use the defaults")
	}

	var none *StyleInput
	if none.Merge(override) != override || base.Merge(nil) != base {
		t.Errorf("merging with nil should return the other input")
	}
}
