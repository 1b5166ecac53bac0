package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/glyphflip/internal/raster"
)

// Open decodes the image file at path into an RGB raster.
//
// EXIF orientation is applied, so a phone photo comes out the way it was
// framed. Grayscale and paletted files are expanded to RGB; alpha is
// dropped. WebP files that the registered decoders reject are retried with
// the libwebp decoder.
func Open(path string) (*raster.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return toRGB(img), nil
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("failed to open image: %w", readErr)
	}
	if m, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return toRGB(m), nil
	}
	return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
}

// Decode reads an encoded image from r into an RGB raster, with the same
// orientation and format handling as Open.
func Decode(r io.Reader) (*raster.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an in-memory encoded image into an RGB raster.
func DecodeBytes(data []byte) (*raster.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return toRGB(img), nil
	}
	if m, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return toRGB(m), nil
	}
	return nil, fmt.Errorf("failed to decode image: %w", err)
}

func toRGB(img image.Image) *raster.Image {
	return raster.FromNRGBA(imaging.Clone(img))
}

// ImageCache provides thread-safe caching of decoded rasters to avoid
// redundant disk reads and decodes.
//
// Rasters are keyed by the exact path string given to Load. Cached rasters
// are shared: callers must not modify them. The flip pipeline never mutates
// its input, so a cached raster can be handed to it directly.
//
// # Memory Management
//
// Cached rasters remain in memory until explicitly removed via Evict() or
// Clear(). Evict a path after overwriting the file behind it.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*raster.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*raster.Image),
	}
}

// Load retrieves a raster from the cache or decodes it from disk with Open.
func (c *ImageCache) Load(path string) (*raster.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached rasters.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all rasters from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*raster.Image)
	c.mu.Unlock()
}

// Evict removes a specific raster from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels, after EXIF orientation.
	Width int `json:"width"`

	// Height is the image height in pixels, after EXIF orientation.
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif",
	// "webp", "bmp", "tiff" or "unknown".
	Format string `json:"format"`

	// Channels is the channel count of the decoded raster (always 3).
	Channels int `json:"channels"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache (if not already cached) and
// returns its dimensions, format and file size.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &ImageInfo{
		Width:         img.Width,
		Height:        img.Height,
		Format:        string(FormatFromPath(path)),
		Channels:      img.Channels,
		FileSizeBytes: stat.Size(),
	}, nil
}

// FormatFromPath maps a file extension to a Format. Unrecognized extensions
// yield FormatUnknown.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".gif":
		return FormatGIF
	case ".webp":
		return FormatWebP
	case ".bmp":
		return FormatBMP
	case ".tif", ".tiff":
		return FormatTIFF
	default:
		return FormatUnknown
	}
}

// Sniff reports the format of encoded image data without decoding pixels.
func Sniff(data []byte) (Format, error) {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		if name == "jpeg" {
			return FormatJPEG, nil
		}
		return Format(name), nil
	}
	if _, werr := webp.DecodeConfig(bytes.NewReader(data)); werr == nil {
		return FormatWebP, nil
	}
	return FormatUnknown, fmt.Errorf("unrecognized image data: %w", err)
}

// Ext returns the conventional file extension for f, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatTIFF:
		return ".tif"
	case FormatUnknown, "":
		return ".bin"
	default:
		return "." + string(f)
	}
}
