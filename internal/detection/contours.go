package detection

import (
	"image"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive).
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// BoundsOf converts an image.Rectangle to Bounds.
func BoundsOf(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Contour is the closed outer boundary of one foreground blob, as an ordered
// list of polygon vertices. Runs of collinear boundary pixels are collapsed to
// their end points. A contour always has at least one point.
type Contour []Point

// neighbors lists the 8 neighbor offsets counterclockwise (as seen on screen),
// starting east.
var neighbors = [8]Point{
	{1, 0},   // E
	{1, -1},  // NE
	{0, -1},  // N
	{-1, -1}, // NW
	{-1, 0},  // W
	{-1, 1},  // SW
	{0, 1},   // S
	{1, 1},   // SE
}

const west = 4

// FindExternalContours returns the outer boundary of every foreground blob
// that is not enclosed by another blob.
//
// Parameters:
//   - fg: Foreground mask indexed fg[y][x]; true marks ink.
//   - width, height: Mask dimensions.
//
// Returns contours in raster-scan order of each blob's top-left pixel. An
// empty mask yields an empty (non-nil) slice.
//
// # Algorithm
//
//  1. Labeling: flood-fill 8-connected foreground pixels into blobs.
//  2. Outside: flood-fill 4-connected background from the image border.
//     Pixels beyond the border count as outside background.
//  3. Nesting: a blob is external iff one of its pixels is 4-adjacent to
//     outside background, the padding beyond the border included. Blobs
//     lying in the hole of another blob (the dot inside a ring) are skipped.
//  4. Border following: trace each external blob's outer border starting at
//     its top-left pixel, then merge collinear runs.
//
// Holes are never reported; only gross extent matters downstream.
func FindExternalContours(fg [][]bool, width, height int) []Contour {
	labels, starts := labelBlobs(fg, width, height)
	if len(starts) == 0 {
		return []Contour{}
	}

	outside := outsideBackground(fg, width, height)

	external := make([]bool, len(starts)+1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			l := labels[y][x]
			if l == 0 || external[l] {
				continue
			}
			if outside.at(x-1, y) || outside.at(x+1, y) || outside.at(x, y-1) || outside.at(x, y+1) {
				external[l] = true
			}
		}
	}

	contours := make([]Contour, 0, len(starts))
	for i, start := range starts {
		label := i + 1
		if !external[label] {
			continue
		}
		boundary := traceBorder(labels, label, start, width, height)
		contours = append(contours, simplify(boundary))
	}
	return contours
}

// labelBlobs assigns a positive label to every 8-connected foreground blob.
// starts[label-1] is the first pixel of the blob in raster-scan order.
func labelBlobs(fg [][]bool, width, height int) ([][]int, []Point) {
	labels := make([][]int, height)
	for y := 0; y < height; y++ {
		labels[y] = make([]int, width)
	}

	starts := make([]Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if fg[y][x] && labels[y][x] == 0 {
				starts = append(starts, Point{X: x, Y: y})
				floodFill(fg, labels, x, y, width, height, len(starts))
			}
		}
	}
	return labels, starts
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large blobs. Uses 8-connectivity (includes diagonal neighbors).
func floodFill(fg [][]bool, labels [][]int, startX, startY, width, height, label int) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if labels[p.Y][p.X] != 0 || !fg[p.Y][p.X] {
			continue
		}

		labels[p.Y][p.X] = label

		for _, d := range neighbors {
			stack = append(stack, Point{X: p.X + d.X, Y: p.Y + d.Y})
		}
	}
}

// outsideBackground marks background pixels 4-connected to the image border.
// The returned grid is padded by one pixel on every side (index [y+1][x+1])
// and the padding is always outside.
func outsideBackground(fg [][]bool, width, height int) paddedGrid {
	g := newPaddedGrid(width, height)
	stack := make([]Point, 0)

	push := func(x, y int) {
		if x < 0 || y < 0 || x >= width || y >= height {
			return
		}
		if fg[y][x] || g.at(x, y) {
			return
		}
		g.set(x, y)
		stack = append(stack, Point{X: x, Y: y})
	}

	for x := 0; x < width; x++ {
		push(x, 0)
		push(x, height-1)
	}
	for y := 0; y < height; y++ {
		push(0, y)
		push(width-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}
	return g
}

// paddedGrid is a boolean grid with a one pixel border that reads as true.
type paddedGrid [][]bool

func newPaddedGrid(width, height int) paddedGrid {
	g := make(paddedGrid, height+2)
	for y := range g {
		g[y] = make([]bool, width+2)
		if y == 0 || y == height+1 {
			for x := range g[y] {
				g[y][x] = true
			}
		} else {
			g[y][0] = true
			g[y][width+1] = true
		}
	}
	return g
}

func (g paddedGrid) at(x, y int) bool { return g[y+1][x+1] }
func (g paddedGrid) set(x, y int)     { g[y+1][x+1] = true }

// traceBorder follows the outer border of the blob carrying label, starting
// from its top-left pixel, and returns every border pixel visited in order.
//
// This is the outer-border case of Suzuki and Abe's border following: the
// pixel west of start is background, the first neighbor is found by a
// clockwise sweep, and each later step sweeps counterclockwise from the
// pixel just left. Tracing stops when the walk returns to start about to
// repeat its first move.
func traceBorder(labels [][]int, label int, start Point, width, height int) []Point {
	in := func(p Point) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height && labels[p.Y][p.X] == label
	}

	first := -1
	for i := 0; i < 8; i++ {
		d := (west - i + 8) % 8
		if in(add(start, neighbors[d])) {
			first = d
			break
		}
	}
	if first < 0 {
		return []Point{start}
	}

	second := add(start, neighbors[first])
	prev, cur := second, start
	boundary := make([]Point, 0, 16)

	for {
		d := direction(cur, prev)
		next := prev
		for k := 1; k <= 8; k++ {
			cand := add(cur, neighbors[(d+k)%8])
			if in(cand) {
				next = cand
				break
			}
		}

		boundary = append(boundary, cur)
		if next == start && cur == second {
			break
		}
		prev, cur = cur, next
	}
	return boundary
}

// simplify collapses runs of boundary pixels that continue in the same chain
// direction, keeping only the points where the direction changes.
func simplify(boundary []Point) Contour {
	n := len(boundary)
	if n <= 2 {
		out := make(Contour, n)
		copy(out, boundary)
		return out
	}

	out := make(Contour, 0, n)
	for i := 0; i < n; i++ {
		prev := boundary[(i-1+n)%n]
		cur := boundary[i]
		next := boundary[(i+1)%n]
		if sub(cur, prev) != sub(next, cur) {
			out = append(out, cur)
		}
	}
	if len(out) == 0 {
		// Unreachable for a closed border, kept so a contour is never empty.
		out = append(out, boundary[0])
	}
	return out
}

// BoundingBox returns the smallest axis-aligned rectangle containing every
// point of c. Max is exclusive, so a single pixel yields a 1x1 box.
func BoundingBox(c Contour) image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	minX, minY := c[0].X, c[0].Y
	maxX, maxY := c[0].X, c[0].Y
	for _, p := range c[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

func add(a, b Point) Point { return Point{X: a.X + b.X, Y: a.Y + b.Y} }
func sub(a, b Point) Point { return Point{X: a.X - b.X, Y: a.Y - b.Y} }

// direction returns the neighbor index d such that from + neighbors[d] == to.
func direction(from, to Point) int {
	delta := sub(to, from)
	for i, d := range neighbors {
		if d == delta {
			return i
		}
	}
	return 0
}
