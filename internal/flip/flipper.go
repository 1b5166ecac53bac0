package flip

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/glyphflip/internal/raster"
)

// Rotate180 returns a new RGB raster holding img rotated by 180 degrees.
func Rotate180(img *raster.Image) (*raster.Image, error) {
	if err := img.Validate(raster.RGB); err != nil {
		return nil, err
	}
	return raster.FromNRGBA(imaging.Rotate180(img.NRGBA())), nil
}

// FlipRegions rotates the bounding box of each region 180 degrees inside
// work, in order. Each box is read from work as left by the previous regions.
// Boxes are clipped to the raster.
func FlipRegions(work *raster.Image, regions []Region) {
	bounds := work.Bounds()
	for _, r := range regions {
		box := r.Box.Intersect(bounds)
		if box.Empty() {
			continue
		}
		flipped := imaging.Rotate180(imaging.Crop(work, box))
		draw.Draw(work, box, flipped, image.Point{}, draw.Src)
	}
}
