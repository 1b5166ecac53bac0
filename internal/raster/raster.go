package raster

import (
	"bytes"
	"image"
	"image/color"
)

const (
	// Gray is the channel count of grayscale and binary rasters.
	Gray = 1
	// RGB is the channel count of color rasters.
	RGB = 3
)

// Image is a packed 8-bit raster. Pixel (x, y) starts at
// Pix[(y*Width+x)*Channels].
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// New allocates a zeroed raster. It does not validate its arguments; use
// Validate before handing the result to the pipeline.
func New(width, height, channels int) *Image {
	n := width * height * channels
	if n < 0 {
		n = 0
	}
	return &Image{Width: width, Height: height, Channels: channels, Pix: make([]uint8, n)}
}

// Stride returns the number of bytes per row.
func (m *Image) Stride() int {
	return m.Width * m.Channels
}

// Offset returns the index of the first sample of pixel (x, y).
func (m *Image) Offset(x, y int) int {
	return (y*m.Width + x) * m.Channels
}

// Validate checks that m is a well-formed raster with the given channel count.
func (m *Image) Validate(channels int) error {
	if m == nil {
		return invalid(nil, "nil raster")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return invalid(m, "dimensions must be positive")
	}
	if m.Channels != channels {
		return invalid(m, "expected %d channels", channels)
	}
	if len(m.Pix) != m.Width*m.Height*m.Channels {
		return invalid(m, "pixel buffer holds %d bytes, want %d", len(m.Pix), m.Width*m.Height*m.Channels)
	}
	return nil
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model {
	if m.Channels == Gray {
		return color.GrayModel
	}
	return color.RGBAModel
}

// Bounds implements image.Image. The origin is always (0, 0).
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		if m.Channels == Gray {
			return color.Gray{}
		}
		return color.RGBA{}
	}
	i := m.Offset(x, y)
	if m.Channels == Gray {
		return color.Gray{Y: m.Pix[i]}
	}
	return color.RGBA{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: 0xff}
}

// Set implements draw.Image. Points outside the raster are ignored.
func (m *Image) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	i := m.Offset(x, y)
	if m.Channels == Gray {
		m.Pix[i] = color.GrayModel.Convert(c).(color.Gray).Y
		return
	}
	r, g, b, _ := c.RGBA()
	m.Pix[i] = uint8(r >> 8)
	m.Pix[i+1] = uint8(g >> 8)
	m.Pix[i+2] = uint8(b >> 8)
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Image{Width: m.Width, Height: m.Height, Channels: m.Channels, Pix: pix}
}

// Equal reports whether both rasters have identical shape and samples.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Width == o.Width && m.Height == o.Height && m.Channels == o.Channels &&
		bytes.Equal(m.Pix, o.Pix)
}

// CopyFrom overwrites m's samples with src's. Both must have the same shape.
func (m *Image) CopyFrom(src *Image) error {
	if src.Width != m.Width || src.Height != m.Height || src.Channels != m.Channels {
		return invalid(src, "shape differs from destination %dx%dx%d", m.Width, m.Height, m.Channels)
	}
	copy(m.Pix, src.Pix)
	return nil
}

// NRGBA converts m to an opaque *image.NRGBA. Gray rasters are replicated
// into all three color channels.
func (m *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(m.Bounds())
	n := m.Width * m.Height
	for p := 0; p < n; p++ {
		s := p * m.Channels
		d := p * 4
		if m.Channels == Gray {
			v := m.Pix[s]
			dst.Pix[d], dst.Pix[d+1], dst.Pix[d+2] = v, v, v
		} else {
			dst.Pix[d], dst.Pix[d+1], dst.Pix[d+2] = m.Pix[s], m.Pix[s+1], m.Pix[s+2]
		}
		dst.Pix[d+3] = 0xff
	}
	return dst
}

// FromNRGBA copies an *image.NRGBA into a new RGB raster, discarding alpha.
func FromNRGBA(src *image.NRGBA) *Image {
	b := src.Bounds()
	dst := New(b.Dx(), b.Dy(), RGB)
	for y := 0; y < dst.Height; y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride()
		for x := 0; x < dst.Width; x++ {
			dst.Pix[di] = src.Pix[si]
			dst.Pix[di+1] = src.Pix[si+1]
			dst.Pix[di+2] = src.Pix[si+2]
			si += 4
			di += 3
		}
	}
	return dst
}

// FromImage copies any image.Image into a raster. Grayscale sources become
// 1-channel rasters; everything else becomes RGB.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	switch src := img.(type) {
	case *Image:
		return src.Clone()
	case *image.NRGBA:
		return FromNRGBA(src)
	case *image.Gray:
		dst := New(b.Dx(), b.Dy(), Gray)
		for y := 0; y < dst.Height; y++ {
			copy(dst.Pix[y*dst.Width:(y+1)*dst.Width], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	case *image.Gray16:
		dst := New(b.Dx(), b.Dy(), Gray)
		for y := 0; y < dst.Height; y++ {
			for x := 0; x < dst.Width; x++ {
				dst.Pix[y*dst.Width+x] = uint8(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y >> 8)
			}
		}
		return dst
	}

	dst := New(b.Dx(), b.Dy(), RGB)
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := dst.Offset(x, y)
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = c.R, c.G, c.B
		}
	}
	return dst
}
