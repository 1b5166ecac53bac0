//go:build opencv

package cvflip

import (
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ironsheep/glyphflip/internal/detection"
	"github.com/ironsheep/glyphflip/internal/flip"
	imgutil "github.com/ironsheep/glyphflip/internal/imaging"
	"github.com/ironsheep/glyphflip/internal/logging"
	"github.com/ironsheep/glyphflip/internal/raster"
)

// Processor is the OpenCV counterpart of flip.Processor. It is safe for
// concurrent use.
type Processor struct {
	opts flip.Options
	log  *logging.Logger
}

// New creates a Processor. Option defaults are filled the same way as
// flip.New. log may be nil.
func New(opts flip.Options, log *logging.Logger) *Processor {
	return &Processor{opts: flip.New(opts, nil).Options(), log: log}
}

// Options returns the processor's effective settings.
func (p *Processor) Options() flip.Options {
	return p.opts
}

// Process returns a new raster with the transform applied.
func (p *Processor) Process(img *raster.Image) (*raster.Image, error) {
	res, err := p.Run(img)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// Run executes the full pipeline on a copy of img.
func (p *Processor) Run(img *raster.Image) (*flip.Result, error) {
	start := time.Now()
	if err := img.Validate(raster.RGB); err != nil {
		p.log.Warn("rejected input", "error", err)
		return nil, err
	}

	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	work := gocv.NewMat()
	defer work.Close()
	gocv.Rotate(src, &work, gocv.Rotate180Clockwise)

	res, err := p.detect(work)
	if err != nil {
		return nil, err
	}

	for _, r := range res.Regions {
		flipRegion(work, r)
	}

	out, err := fromMat(work)
	if err != nil {
		return nil, err
	}
	if p.opts.Debug {
		for _, r := range res.Regions {
			imgutil.DrawPolygon(out, r.Corners(), p.opts.DebugColor, p.opts.DebugThickness)
		}
	}
	res.Image = out

	p.log.Info("flipped characters",
		"backend", "opencv",
		"run_id", res.RunID,
		"size", fmt.Sprintf("%dx%d", img.Width, img.Height),
		"threshold", res.Threshold,
		"contours", res.Contours,
		"flipped", len(res.Regions),
		"rejected", res.Rejected,
		"elapsed", time.Since(start))
	return res, nil
}

// Detect reports the regions of img as given, without rotating anything.
func (p *Processor) Detect(img *raster.Image) (*flip.Result, error) {
	if err := img.Validate(raster.RGB); err != nil {
		return nil, err
	}
	m, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	return p.detect(m)
}

func (p *Processor) detect(m gocv.Mat) (*flip.Result, error) {
	res := &flip.Result{RunID: uuid.NewString()}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(m, &gray, gocv.ColorRGBToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	t := gocv.Threshold(gray, &mask, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)
	res.Threshold = uint8(t)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	res.Contours = contours.Size()

	bounds := image.Rect(0, 0, m.Cols(), m.Rows())
	res.Regions = make([]flip.Region, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		rect := footprint(gocv.MinAreaRect(pv))
		if rect.Width <= p.opts.WidthThreshold {
			res.Rejected++
			continue
		}

		pts := pv.ToPoints()
		c := make(detection.Contour, len(pts))
		for j, pt := range pts {
			c[j] = detection.Point{X: pt.X, Y: pt.Y}
		}
		res.Regions = append(res.Regions, flip.Region{
			Contour: c,
			Rect:    rect,
			Box:     gocv.BoundingRect(pv).Intersect(bounds),
		})
	}

	p.log.Debug("detected characters",
		"backend", "opencv",
		"run_id", res.RunID,
		"threshold", res.Threshold,
		"contours", res.Contours,
		"accepted", len(res.Regions))
	return res, nil
}

// flipRegion rotates the pixels under r.Box by 180 degrees inside work.
func flipRegion(work gocv.Mat, r flip.Region) {
	if r.Box.Empty() {
		return
	}
	roi := work.Region(r.Box)
	defer roi.Close()

	flipped := gocv.NewMat()
	defer flipped.Close()
	gocv.Rotate(roi, &flipped, gocv.Rotate180Clockwise)
	// roi shares work's pixels, so copying into it writes the parent.
	flipped.CopyTo(&roi)
}

// footprint converts OpenCV's rectangle, measured between extreme pixel
// centers, to whole-pixel sizes with the angle folded into (-45, 45].
func footprint(rr gocv.RotatedRect) detection.RotatedRect {
	return detection.RotatedRect{
		Center: detection.PointF{X: float64(rr.Center.X), Y: float64(rr.Center.Y)},
		Width:  float64(rr.Width) + 1,
		Height: float64(rr.Height) + 1,
		Angle:  float64(rr.Angle),
	}.Normalize()
}

// toMat copies img into a new 3-channel Mat. The samples stay in RGB order.
func toMat(img *raster.Image) (gocv.Mat, error) {
	view, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, img.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to create mat: %w", err)
	}
	defer view.Close()
	return view.Clone(), nil
}

func fromMat(m gocv.Mat) (*raster.Image, error) {
	if m.Channels() != raster.RGB {
		return nil, fmt.Errorf("unexpected mat with %d channels", m.Channels())
	}
	out := &raster.Image{
		Width:    m.Cols(),
		Height:   m.Rows(),
		Channels: raster.RGB,
		Pix:      m.ToBytes(),
	}
	if err := out.Validate(raster.RGB); err != nil {
		return nil, err
	}
	return out, nil
}
