package raster

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestNew(t *testing.T) {
	m := New(4, 3, RGB)
	if len(m.Pix) != 4*3*3 {
		t.Fatalf("len(Pix): got %d, want 36", len(m.Pix))
	}
	if m.Stride() != 12 {
		t.Errorf("Stride: got %d, want 12", m.Stride())
	}
	if m.Offset(1, 2) != (2*4+1)*3 {
		t.Errorf("Offset(1,2): got %d", m.Offset(1, 2))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		img      *Image
		channels int
		wantErr  bool
	}{
		{"valid rgb", New(2, 2, RGB), RGB, false},
		{"valid gray", New(2, 2, Gray), Gray, false},
		{"nil", nil, RGB, true},
		{"zero width", New(0, 5, RGB), RGB, true},
		{"zero height", New(5, 0, RGB), RGB, true},
		{"single channel as rgb", New(5, 5, Gray), RGB, true},
		{"short buffer", &Image{Width: 2, Height: 2, Channels: RGB, Pix: make([]uint8, 5)}, RGB, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.img.Validate(tt.channels)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate: got err=%v, wantErr=%v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidImage) {
				t.Errorf("error %v does not match ErrInvalidImage", err)
			}
			var iie *InvalidImageError
			if !errors.As(err, &iie) {
				t.Errorf("error %T is not *InvalidImageError", err)
			}
		})
	}
}

func TestAtSet(t *testing.T) {
	m := New(3, 3, RGB)
	m.Set(1, 2, color.RGBA{10, 20, 30, 255})

	got := m.At(1, 2).(color.RGBA)
	if got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("At(1,2): got %v", got)
	}

	// Out of range writes are ignored
	m.Set(-1, 0, color.White)
	m.Set(3, 0, color.White)
	for _, v := range m.Pix[:3] {
		if v != 0 {
			t.Fatalf("out of range Set modified pixel (0,0)")
		}
	}

	g := New(2, 2, Gray)
	g.Set(0, 1, color.Gray{Y: 77})
	if g.At(0, 1).(color.Gray).Y != 77 {
		t.Errorf("gray At(0,1): got %v", g.At(0, 1))
	}
}

func TestDrawIntoRaster(t *testing.T) {
	m := New(4, 4, RGB)
	src := image.NewUniform(color.RGBA{200, 100, 50, 255})
	draw.Draw(m, image.Rect(1, 1, 3, 3), src, image.Point{}, draw.Src)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := m.At(x, y).(color.RGBA)
			inside := x >= 1 && x < 3 && y >= 1 && y < 3
			if inside && c.R != 200 {
				t.Errorf("(%d,%d) should be painted, got %v", x, y, c)
			}
			if !inside && c.R != 0 {
				t.Errorf("(%d,%d) should be untouched, got %v", x, y, c)
			}
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := New(2, 2, RGB)
	m.Pix[0] = 9
	c := m.Clone()
	c.Pix[0] = 1
	if m.Pix[0] != 9 {
		t.Error("Clone shares its pixel buffer with the source")
	}
	if m.Equal(c) {
		t.Error("Equal should report differing rasters")
	}
}

func TestCopyFrom(t *testing.T) {
	a := New(2, 2, RGB)
	b := New(2, 2, RGB)
	b.Pix[5] = 42
	if err := a.CopyFrom(b); err != nil {
		t.Fatalf("CopyFrom failed: %v", err)
	}
	if !a.Equal(b) {
		t.Error("CopyFrom did not copy samples")
	}

	if err := a.CopyFrom(New(3, 2, RGB)); err == nil {
		t.Error("CopyFrom should reject a differently shaped source")
	}
}

func TestNRGBARoundTrip(t *testing.T) {
	m := New(3, 2, RGB)
	for i := range m.Pix {
		m.Pix[i] = uint8(i * 7)
	}

	n := m.NRGBA()
	if n.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds: got %v", n.Bounds())
	}
	if n.Pix[3] != 0xff {
		t.Errorf("alpha: got %d, want 255", n.Pix[3])
	}

	back := FromNRGBA(n)
	if !back.Equal(m) {
		t.Error("FromNRGBA(NRGBA()) did not reproduce the raster")
	}
}

func TestFromNRGBA_SubImage(t *testing.T) {
	n := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	n.SetNRGBA(2, 2, color.NRGBA{1, 2, 3, 255})
	sub := n.SubImage(image.Rect(2, 2, 4, 4)).(*image.NRGBA)

	m := FromNRGBA(sub)
	if m.Width != 2 || m.Height != 2 {
		t.Fatalf("dimensions: got %dx%d, want 2x2", m.Width, m.Height)
	}
	if m.Pix[0] != 1 || m.Pix[1] != 2 || m.Pix[2] != 3 {
		t.Errorf("first pixel: got %v", m.Pix[:3])
	}
}

func TestFromImage(t *testing.T) {
	t.Run("gray stays single channel", func(t *testing.T) {
		g := image.NewGray(image.Rect(0, 0, 3, 3))
		g.SetGray(1, 1, color.Gray{Y: 128})
		m := FromImage(g)
		if m.Channels != Gray {
			t.Fatalf("Channels: got %d, want 1", m.Channels)
		}
		if m.Pix[4] != 128 {
			t.Errorf("center: got %d, want 128", m.Pix[4])
		}
	})

	t.Run("rgba becomes rgb", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		img.Set(1, 0, color.RGBA{255, 0, 0, 255})
		m := FromImage(img)
		if m.Channels != RGB {
			t.Fatalf("Channels: got %d, want 3", m.Channels)
		}
		i := m.Offset(1, 0)
		if m.Pix[i] != 255 || m.Pix[i+1] != 0 {
			t.Errorf("pixel (1,0): got %v", m.Pix[i:i+3])
		}
	})

	t.Run("offset bounds", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(10, 10, 12, 12))
		img.Set(10, 10, color.RGBA{0, 0, 255, 255})
		m := FromImage(img)
		if m.Width != 2 || m.Pix[2] != 255 {
			t.Errorf("origin pixel not translated: %v", m.Pix[:3])
		}
	})
}
