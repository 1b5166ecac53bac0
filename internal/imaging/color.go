package imaging

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]string{
	"red":     "#ff0000",
	"green":   "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"magenta": "#ff00ff",
	"cyan":    "#00ffff",
	"black":   "#000000",
	"white":   "#ffffff",
}

// ParseColor parses an overlay color: "#RRGGBB", "#RGB" (the leading # is
// optional) or one of a few basic color names. The result is opaque.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// HexColor formats c as "#rrggbb", ignoring alpha.
func HexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return colorful.Color{
		R: float64(r>>8) / 255,
		G: float64(g>>8) / 255,
		B: float64(b>>8) / 255,
	}.Hex()
}
