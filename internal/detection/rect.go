package detection

import (
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// PointF is a sub-pixel coordinate.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RotatedRect is the minimum-area rectangle enclosing a contour, at whatever
// orientation achieves that minimum.
//
// Angle is in degrees, normalized into (-45, 45], and gives the rotation of
// the Width axis from the image X axis (positive turns toward +Y, i.e.
// clockwise on screen). Width is therefore the extent along the side closest
// to horizontal and Height the extent along the other side.
//
// Sizes are measured in pixel footprint: a single pixel is 1x1 and an
// axis-aligned run of N pixels is N long.
type RotatedRect struct {
	Center PointF  `json:"center"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle_degrees"`
}

// Area returns Width × Height.
func (r RotatedRect) Area() float64 {
	return r.Width * r.Height
}

// Corners returns the four corners of the rectangle, clockwise on screen
// starting from the corner at (-Width/2, -Height/2) in the rectangle's frame.
func (r RotatedRect) Corners() [4]image.Point {
	rad := r.Angle * math.Pi / 180
	u := r2.Vec{X: math.Cos(rad), Y: math.Sin(rad)}
	v := r2.Vec{X: -u.Y, Y: u.X}
	c := r2.Vec{X: r.Center.X, Y: r.Center.Y}
	hw, hh := r.Width/2, r.Height/2

	var out [4]image.Point
	for i, s := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		p := r2.Add(c, r2.Add(r2.Scale(s[0]*hw, u), r2.Scale(s[1]*hh, v)))
		out[i] = image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
	}
	return out
}

// MinAreaRect computes the minimum-area enclosing rectangle of a contour.
//
// # Algorithm
//
//  1. Convex hull of the contour points (Andrew's monotone chain).
//  2. Rotating calipers: one side of the optimal rectangle is collinear with
//     a hull edge, so each edge is tried as the rectangle's X axis and the
//     hull is projected onto that axis and its normal.
//  3. The smallest projected area wins; the first edge wins ties.
//  4. The angle is folded into (-45, 45], swapping Width and Height when the
//     fold turns the frame by 90 degrees.
//  5. One pixel is added to each side so sizes cover whole pixels rather than
//     the distance between pixel centers.
//
// An empty contour yields the zero RotatedRect.
func MinAreaRect(c Contour) RotatedRect {
	hull := convexHull(c)
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{
			Center: PointF{X: float64(hull[0].X), Y: float64(hull[0].Y)},
			Width:  1,
			Height: 1,
		}
	}

	var best RotatedRect
	bestArea := math.Inf(1)

	for i := range hull {
		a := vec(hull[i])
		edge := r2.Sub(vec(hull[(i+1)%len(hull)]), a)
		if r2.Norm(edge) == 0 {
			continue
		}
		u := r2.Unit(edge)
		v := r2.Vec{X: -u.Y, Y: u.X}

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			q := r2.Sub(vec(p), a)
			pu, pv := r2.Dot(q, u), r2.Dot(q, v)
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}

		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			center := r2.Add(a, r2.Add(r2.Scale((minU+maxU)/2, u), r2.Scale((minV+maxV)/2, v)))
			best = RotatedRect{
				Center: PointF{X: center.X, Y: center.Y},
				Width:  maxU - minU,
				Height: maxV - minV,
				Angle:  math.Atan2(u.Y, u.X) * 180 / math.Pi,
			}
		}
	}

	best = normalizeAngle(best)
	best.Width++
	best.Height++
	return best
}

// Normalize returns r with its angle folded into (-45, 45] and Width and
// Height swapped to match. Rectangles measured elsewhere, such as by OpenCV,
// go through it so Width means the same side everywhere.
func (r RotatedRect) Normalize() RotatedRect {
	return normalizeAngle(r)
}

// normalizeAngle folds r.Angle into (-45, 45] without changing the rectangle.
func normalizeAngle(r RotatedRect) RotatedRect {
	// A rectangle is symmetric under a half turn.
	for r.Angle > 90 {
		r.Angle -= 180
	}
	for r.Angle <= -90 {
		r.Angle += 180
	}
	// A quarter turn swaps the sides.
	if r.Angle > 45 {
		r.Angle -= 90
		r.Width, r.Height = r.Height, r.Width
	} else if r.Angle <= -45 {
		r.Angle += 90
		r.Width, r.Height = r.Height, r.Width
	}
	if r.Angle == 0 {
		r.Angle = 0 // drop negative zero
	}
	return r
}

// convexHull returns the hull vertices counterclockwise, without repeated or
// collinear points. Fewer than three distinct input points are returned as is.
func convexHull(c Contour) []Point {
	pts := make([]Point, len(c))
	copy(pts, c)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	uniq := make([]Point, 0, len(pts))
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 3 {
		return uniq
	}

	cross := func(o, a, b Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]Point, 0, 2*len(uniq))
	for _, p := range uniq {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(uniq) - 2; i >= 0; i-- {
		p := uniq[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func vec(p Point) r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}
