package flip

import (
	"github.com/disintegration/imaging"

	"github.com/ironsheep/glyphflip/internal/raster"
)

// Grayscale converts an RGB raster to a 1-channel raster of the same size
// using BT.601 luma weights (0.299 R + 0.587 G + 0.114 B).
func Grayscale(rgb *raster.Image) (*raster.Image, error) {
	if err := rgb.Validate(raster.RGB); err != nil {
		return nil, err
	}

	g := imaging.Grayscale(rgb)
	out := raster.New(rgb.Width, rgb.Height, raster.Gray)
	for y := 0; y < out.Height; y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < out.Width; x++ {
			out.Pix[y*out.Width+x] = row[x*4]
		}
	}
	return out, nil
}
