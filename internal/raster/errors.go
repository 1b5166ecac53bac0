package raster

import (
	"errors"
	"fmt"
)

// ErrInvalidImage is the sentinel matched by every *InvalidImageError.
var ErrInvalidImage = errors.New("invalid image")

// InvalidImageError reports a raster that cannot be processed: zero or
// negative dimensions, the wrong channel count, or a pixel buffer whose
// length disagrees with its dimensions.
type InvalidImageError struct {
	Width    int
	Height   int
	Channels int
	Reason   string
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid image %dx%d (%d channels): %s", e.Width, e.Height, e.Channels, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidImage) succeed for any InvalidImageError.
func (e *InvalidImageError) Is(target error) bool {
	return target == ErrInvalidImage
}

func invalid(m *Image, format string, args ...interface{}) *InvalidImageError {
	e := &InvalidImageError{Reason: fmt.Sprintf(format, args...)}
	if m != nil {
		e.Width, e.Height, e.Channels = m.Width, m.Height, m.Channels
	}
	return e
}
