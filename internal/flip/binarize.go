package flip

import (
	"math"

	"github.com/anthonynsimon/bild/histogram"
	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/glyphflip/internal/raster"
)

// HistogramBins is the number of intensity levels Otsu's method works on.
const HistogramBins = 256

// otsuEpsilon skips levels that leave one class (almost) empty.
const otsuEpsilon = 1.1920929e-07

// OtsuThreshold returns the intensity t that maximizes the between-class
// variance of the classes {v <= t} and {v > t}. The lowest such level wins
// ties.
//
// ok is false when gray holds fewer than two distinct intensities; there is
// no meaningful split of a uniform image.
func OtsuThreshold(gray *raster.Image) (t uint8, ok bool) {
	return otsu(histogram.NewRGBAHistogram(gray).R.Bins)
}

func otsu(hist []int) (uint8, bool) {
	var total, populated int
	for _, c := range hist {
		total += c
		if c > 0 {
			populated++
		}
	}
	if populated < 2 {
		return 0, false
	}

	n := len(hist)
	p := make([]float64, n)
	levels := make([]float64, n)
	for i, c := range hist {
		p[i] = float64(c) / float64(total)
		levels[i] = float64(i)
	}

	mean := floats.Dot(levels, p)
	q := floats.CumSum(make([]float64, n), p)
	weighted := make([]float64, n)
	floats.MulTo(weighted, levels, p)
	m := floats.CumSum(make([]float64, n), weighted)

	best, threshold := -1.0, 0
	for i := 0; i < n; i++ {
		q1, q2 := q[i], 1-q[i]
		if math.Min(q1, q2) < otsuEpsilon {
			continue
		}
		mu1 := m[i] / q1
		mu2 := (mean - m[i]) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > best {
			best, threshold = sigma, i
		}
	}
	return uint8(threshold), true
}

// Binarize thresholds gray with Otsu's method and inverts the result, so the
// returned mask is 255 where gray <= t (dark ink) and 0 elsewhere.
//
// A uniform image yields an all-zero mask and t = 0.
func Binarize(gray *raster.Image) (mask *raster.Image, t uint8, err error) {
	if err := gray.Validate(raster.Gray); err != nil {
		return nil, 0, err
	}

	mask = raster.New(gray.Width, gray.Height, raster.Gray)
	t, ok := OtsuThreshold(gray)
	if !ok {
		return mask, 0, nil
	}
	for i, v := range gray.Pix {
		if v <= t {
			mask.Pix[i] = 255
		}
	}
	return mask, t, nil
}
