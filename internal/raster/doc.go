// Package raster defines the in-memory pixel buffer exchanged between the
// image source, the character flipping pipeline and the image sink.
//
// An Image is a tightly packed, row-major grid of 8-bit samples with an
// explicit channel count:
//   - 1 channel: grayscale (also used for binary masks, 0 or 255)
//   - 3 channels: RGB, in R, G, B order
//
// Image implements image.Image and draw.Image, so it can be handed directly to
// the standard image packages and to github.com/disintegration/imaging.
//
// # Ownership
//
// An Image is owned by whichever stage currently holds it. Stages that need
// both an original and a working copy call Clone; no two Images ever share a
// Pix slice unless the caller explicitly copies one into the other with
// CopyFrom.
//
// # Errors
//
// Malformed buffers (non-positive dimensions, unexpected channel count, or a
// Pix slice of the wrong length) are reported as *InvalidImageError, which
// matches ErrInvalidImage under errors.Is.
package raster
