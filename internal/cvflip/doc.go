// Package cvflip runs the character flip pipeline on OpenCV through gocv.
//
// It is compiled only with the opencv build tag, since gocv needs the OpenCV
// libraries at link time:
//
//	go build -tags opencv ./cmd/glyphflip
//
// The stages mirror package flip one for one: Rotate180Clockwise for the
// global and per-region rotations, RGB to gray conversion, an inverted
// binary threshold with Otsu's level, external contours with simple chain
// approximation, MinAreaRect for the width filter and BoundingRect for the
// copied area. The results use flip's Result and Region types so callers can
// switch backends freely.
//
// OpenCV measures rotated rectangles between extreme pixel centers and
// reports the sides in its own angle convention. Each rectangle gets one
// pixel added per side and its angle folded into (-45, 45] before the width
// test, so the threshold means the same thing as in package flip: a bar 21
// pixels wide passes the default of 20 on both backends.
//
// Contours come in OpenCV's enumeration order, which is not raster-scan
// order. That only matters when accepted regions overlap.
package cvflip
