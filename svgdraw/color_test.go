package svgdraw

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	for s, expected := range map[string]color.NRGBA{
		"#1f77b4":          {0x1f, 0x77, 0xb4, 0xff},
		"#2CA02C":          {0x2c, 0xa0, 0x2c, 0xff},
		"#f00":             {0xff, 0, 0, 0xff},
		"rgb(10, 20, 30)":  {10, 20, 30, 0xff},
		"rgb(100%,0%,50%)": {255, 0, 128, 0xff},
		"steelblue":        {70, 130, 180, 0xff},
		"currentColor":     Black,
		"none":             {},
	} {
		got, err := ParseColor(s)
		if err != nil {
			t.Errorf("%s: unexpected error %s", s, err)
		}
		if got != expected {
			t.Errorf("%s: expected %v, got %v", s, expected, got)
		}
	}

	for _, s := range []string{"#12", "#zzzzzz", "rgb(1,2)", "notacolor"} {
		got, err := ParseColor(s)
		if err == nil {
			t.Errorf("%s: expected an error", s)
		}
		if got != Black {
			t.Errorf("%s: expected black fallback, got %v", s, got)
		}
	}
}
