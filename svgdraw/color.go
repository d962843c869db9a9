package svgdraw

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var errParamMismatch = errors.New("param mismatch")

// Black is used for currentColor, and as fallback for invalid colors.
var Black = color.NRGBA{A: 0xff}

// ParseColor parses a CSS color: #rgb, #rrggbb, rgb(r,g,b),
// currentColor, none or a named color.
// none is returned as a fully transparent color.
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "none", "transparent":
		return color.NRGBA{}, nil
	case "", "currentcolor":
		return Black, nil
	}
	if strings.HasPrefix(v, "#") {
		return parseHexColor(v[1:])
	}
	if strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")") {
		parts := strings.Split(v[4:len(v)-1], ",")
		if len(parts) != 3 {
			return Black, fmt.Errorf("invalid color %q: %w", s, errParamMismatch)
		}
		var cv [3]uint8
		for i, p := range parts {
			p = strings.TrimSpace(p)
			var (
				f   float64
				err error
			)
			if strings.HasSuffix(p, "%") {
				f, err = strconv.ParseFloat(p[:len(p)-1], 64)
				f = f * 255 / 100
			} else {
				f, err = strconv.ParseFloat(p, 64)
			}
			if err != nil {
				return Black, fmt.Errorf("invalid color %q: %w", s, err)
			}
			cv[i] = clampByte(f)
		}
		return color.NRGBA{cv[0], cv[1], cv[2], 0xff}, nil
	}
	if c, ok := colornames.Map[v]; ok {
		return color.NRGBA{c.R, c.G, c.B, c.A}, nil
	}
	return Black, fmt.Errorf("unknown color %q", s)
}

func parseHexColor(v string) (color.NRGBA, error) {
	switch len(v) {
	case 3:
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	case 6:
	default:
		return Black, fmt.Errorf("invalid hex color #%s: %w", v, errParamMismatch)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Black, fmt.Errorf("invalid hex color #%s: %w", v, err)
	}
	return color.NRGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 0xff}, nil
}

func clampByte(f float64) uint8 {
	switch {
	case f < 0:
		return 0
	case f > 255:
		return 255
	}
	return uint8(f + 0.5)
}
