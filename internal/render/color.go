package render

import (
	"fmt"
	"image/color"
)

// hexColor parses #rrggbb and scales alpha by opacity in [0, 1].
func hexColor(s string, opacity float64) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		r, g, b = 0, 0, 0
	}
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(opacity*255 + 0.5)}
}

func white(opacity float64) color.Color {
	return hexColor("#ffffff", opacity)
}
