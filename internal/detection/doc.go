// Package detection finds character-like blobs in a binary mask and measures
// their extent.
//
// The package works on plain foreground masks ([][]bool indexed [y][x]) so it
// stays independent of how the mask was produced. It provides two
// operations:
//
//   - FindExternalContours: outer boundary polygon of every blob that is not
//     nested inside another blob's hole
//   - MinAreaRect: minimum-area rotated rectangle enclosing a contour
//
// plus BoundingBox, the axis-aligned box used for pixel copies.
//
// # Connectivity
//
// Foreground is 8-connected (diagonal neighbors join a blob) and background is
// 4-connected. This is the usual pairing that keeps blobs and holes
// topologically consistent: a diagonal chain of ink pixels separates the
// background on either side of it.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Contour Points
//
// Contours list pixel coordinates along the blob's outer border, traced
// counterclockwise on screen from the blob's top-left pixel. Straight runs
// are collapsed to their end points, so an axis-aligned solid rectangle has
// exactly four points and a one pixel thick line has two.
//
// # Performance Considerations
//
// Labeling and border following are linear in the number of pixels. The
// rotating-calipers search is quadratic in the hull size, which stays small
// for character-sized blobs.
package detection
