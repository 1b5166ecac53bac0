// Package imaging is the image boundary of glyphflip: it turns encoded files
// into rasters for the flip pipeline and rasters back into files.
//
// Decoding goes through github.com/disintegration/imaging with EXIF
// auto-orientation, covering JPEG, PNG and GIF from the standard library and
// BMP and TIFF from golang.org/x/image. WebP is handled by
// github.com/chai2010/webp in both directions. Every decoded image becomes a
// 3-channel RGB raster; alpha is dropped.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Rasters it returns are shared and
// must be treated as read-only.
//
// # Overlays
//
// DrawPolygon and DrawLine stroke outlines onto any draw.Image, including
// *raster.Image. They are used for the pipeline's debug rectangles.
package imaging
