package imaging

import (
	"image"
	"image/color"
	"image/draw"
)

// DrawPolygon strokes the closed polygon through pts onto dst. Pixels
// outside dst are skipped.
func DrawPolygon(dst draw.Image, pts []image.Point, c color.Color, thickness int) {
	switch len(pts) {
	case 0:
		return
	case 1:
		DrawLine(dst, pts[0], pts[0], c, thickness)
		return
	}
	for i := range pts {
		DrawLine(dst, pts[i], pts[(i+1)%len(pts)], c, thickness)
	}
}

// DrawLine strokes the segment a-b with a square pen of the given thickness
// (at least 1), using Bresenham's algorithm.
func DrawLine(dst draw.Image, a, b image.Point, c color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	lo := -(thickness - 1) / 2
	hi := lo + thickness

	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	e := dx + dy
	x, y := a.X, a.Y

	for {
		for oy := lo; oy < hi; oy++ {
			for ox := lo; ox < hi; ox++ {
				setPixel(dst, x+ox, y+oy, c)
			}
		}
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func setPixel(dst draw.Image, x, y int, c color.Color) {
	if image.Pt(x, y).In(dst.Bounds()) {
		dst.Set(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
