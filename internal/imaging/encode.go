package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/glyphflip/internal/raster"
)

// Format names an encoded image format.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatWebP    Format = "webp"
	FormatBMP     Format = "bmp"
	FormatTIFF    Format = "tiff"
	FormatUnknown Format = "unknown"
)

// MimeType returns the MIME type of f, or application/octet-stream.
func (f Format) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatGIF:
		return "image/gif"
	case FormatWebP:
		return "image/webp"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// EncodeOptions controls Encode and Save.
type EncodeOptions struct {
	// Format defaults to PNG for Encode and to the file extension for Save.
	Format Format `json:"format"`

	// Quality (1-100) applies to JPEG and lossy WebP. Zero means 95.
	Quality int `json:"quality"`

	// Lossless selects lossless WebP.
	Lossless bool `json:"lossless"`
}

const defaultQuality = 95

func (o EncodeOptions) quality() int {
	if o.Quality <= 0 || o.Quality > 100 {
		return defaultQuality
	}
	return o.Quality
}

// Encode writes img to w in the requested format.
func Encode(w io.Writer, img *raster.Image, opts EncodeOptions) error {
	src := img.NRGBA()

	var err error
	switch opts.Format {
	case FormatWebP:
		err = webp.Encode(w, src, &webp.Options{Lossless: opts.Lossless, Quality: float32(opts.quality())})
	case FormatJPEG:
		err = imaging.Encode(w, src, imaging.JPEG, imaging.JPEGQuality(opts.quality()))
	case FormatGIF:
		err = imaging.Encode(w, src, imaging.GIF)
	case FormatBMP:
		err = imaging.Encode(w, src, imaging.BMP)
	case FormatTIFF:
		err = imaging.Encode(w, src, imaging.TIFF)
	case FormatPNG, "":
		err = imaging.Encode(w, src, imaging.PNG)
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// Save writes img to path. When opts.Format is empty the format follows the
// file extension.
func Save(path string, img *raster.Image, opts EncodeOptions) error {
	if opts.Format == "" {
		opts.Format = FormatFromPath(path)
		if opts.Format == FormatUnknown {
			return fmt.Errorf("cannot infer image format from %q", filepath.Base(path))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Encode(f, img, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// EncodeBase64 encodes img and returns the base64 payload together with its
// MIME type, the form MCP clients expect for inline images.
func EncodeBase64(img *raster.Image, opts EncodeOptions) (data string, mimeType string, err error) {
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), opts.Format.MimeType(), nil
}
