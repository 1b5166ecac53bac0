package flip

import (
	"image"
	"testing"

	"github.com/ironsheep/glyphflip/internal/raster"
)

// createTestImage creates an RGB raster filled with one color
func createTestImage(width, height int, r, g, b uint8) *raster.Image {
	img := raster.New(width, height, raster.RGB)
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
	}
	return img
}

// fillBox paints box with a solid color
func fillBox(img *raster.Image, box image.Rectangle, r, g, b uint8) {
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			i := img.Offset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
		}
	}
}

// paintPattern fills box with dark, position-dependent colors so that any
// rotation of the box is visible while the whole box still reads as ink.
func paintPattern(img *raster.Image, box image.Rectangle) {
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			dx, dy := x-box.Min.X, y-box.Min.Y
			i := img.Offset(x, y)
			img.Pix[i] = uint8(10 + (dx*3)%40)
			img.Pix[i+1] = uint8((dy * 5) % 40)
			img.Pix[i+2] = uint8((dx + dy) % 7)
		}
	}
}

// rotate180 is an independent reference for the global flip
func rotate180(img *raster.Image) *raster.Image {
	out := raster.New(img.Width, img.Height, img.Channels)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			si := img.Offset(img.Width-1-x, img.Height-1-y)
			di := out.Offset(x, y)
			copy(out.Pix[di:di+img.Channels], img.Pix[si:si+img.Channels])
		}
	}
	return out
}

// reflectBox point-reflects the pixels of box through its center, in place
func reflectBox(img *raster.Image, box image.Rectangle) {
	src := img.Clone()
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			si := src.Offset(box.Min.X+box.Max.X-1-x, box.Min.Y+box.Max.Y-1-y)
			di := img.Offset(x, y)
			copy(img.Pix[di:di+3], src.Pix[si:si+3])
		}
	}
}

// flippedBox maps a box in the input to where the global flip puts it
func flippedBox(img *raster.Image, box image.Rectangle) image.Rectangle {
	return image.Rect(img.Width-box.Max.X, img.Height-box.Max.Y, img.Width-box.Min.X, img.Height-box.Min.Y)
}

func assertSameImage(t *testing.T, got, want *raster.Image) {
	t.Helper()
	if got.Width != want.Width || got.Height != want.Height || got.Channels != want.Channels {
		t.Fatalf("shape: got %dx%dx%d, want %dx%dx%d",
			got.Width, got.Height, got.Channels, want.Width, want.Height, want.Channels)
	}
	for y := 0; y < got.Height; y++ {
		for x := 0; x < got.Width; x++ {
			i := got.Offset(x, y)
			for c := 0; c < got.Channels; c++ {
				if got.Pix[i+c] != want.Pix[i+c] {
					t.Fatalf("first difference at (%d,%d): got %v, want %v",
						x, y, got.Pix[i:i+got.Channels], want.Pix[i:i+want.Channels])
				}
			}
		}
	}
}
