package flip

import (
	"image"

	"github.com/ironsheep/glyphflip/internal/detection"
	"github.com/ironsheep/glyphflip/internal/raster"
)

// DefaultWidthThreshold is the minimum rotated-rectangle width, exclusive, of
// a blob treated as a character.
const DefaultWidthThreshold = 20.0

// Region is a blob accepted as a character.
type Region struct {
	Contour detection.Contour
	// Rect decides acceptance.
	Rect detection.RotatedRect
	// Box is the area whose pixels get flipped.
	Box image.Rectangle
}

// Corners returns the outline of the region's rotated rectangle.
func (r Region) Corners() []image.Point {
	c := r.Rect.Corners()
	return c[:]
}

// FindCharacters returns the external contours of the foreground (non-zero)
// pixels of a binary mask, in raster-scan order of each blob's top-left pixel.
func FindCharacters(mask *raster.Image) ([]detection.Contour, error) {
	if err := mask.Validate(raster.Gray); err != nil {
		return nil, err
	}

	fg := make([][]bool, mask.Height)
	for y := range fg {
		row := mask.Pix[y*mask.Width : (y+1)*mask.Width]
		fg[y] = make([]bool, mask.Width)
		for x, v := range row {
			fg[y][x] = v != 0
		}
	}
	return detection.FindExternalContours(fg, mask.Width, mask.Height), nil
}

// FilterRegions keeps contours whose minimum-area rectangle is strictly wider
// than threshold, preserving their order. It also reports how many were
// rejected.
func FilterRegions(contours []detection.Contour, threshold float64) (accepted []Region, rejected int) {
	accepted = make([]Region, 0, len(contours))
	for _, c := range contours {
		rect := detection.MinAreaRect(c)
		if rect.Width <= threshold {
			rejected++
			continue
		}
		accepted = append(accepted, Region{
			Contour: c,
			Rect:    rect,
			Box:     detection.BoundingBox(c),
		})
	}
	return accepted, rejected
}
