// Package flip rotates every printed character of a photo 180 degrees in
// place while keeping the characters where they are.
//
// Flipping a whole photo of upside-down text fixes each glyph but reverses
// the reading order. The pipeline in this package undoes that second effect:
//
//  1. Rotate the whole image 180 degrees.
//  2. Convert to grayscale (BT.601 luma).
//  3. Binarize with Otsu's threshold and invert, so dark ink is foreground.
//  4. Extract the external contour of every ink blob.
//  5. Keep blobs whose minimum-area rectangle is wider than the width
//     threshold (20 pixels by default); narrower blobs are speckle noise.
//  6. Rotate each kept blob's axis-aligned bounding box 180 degrees and
//     write it back at the same place, in contour order.
//
// # Ownership
//
// Process and Processor.Run never touch the caller's raster; they return a
// freshly allocated result. ProcessInPlace validates, computes the result,
// then copies it back, so an invalid image is never modified.
//
// # Overlapping Regions
//
// Boxes are flipped one after the other on the same working image. When two
// boxes overlap, pixels in the overlap belong to whichever box was written
// last. Disjoint boxes are independent of order.
//
// # Concurrency
//
// A Processor call runs its stages one after another and shares no state
// with other calls. The imaging library splits grayscale conversion, crops
// and 180 degree rotations across goroutines internally; each goroutine
// writes its own rows, so results are the same as a sequential run.
//
// # Errors
//
// The only error raised here is *raster.InvalidImageError.
package flip
