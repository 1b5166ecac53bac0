package flip

import (
	"fmt"
	"image/color"
	"time"

	"github.com/google/uuid"

	imgutil "github.com/ironsheep/glyphflip/internal/imaging"
	"github.com/ironsheep/glyphflip/internal/logging"
	"github.com/ironsheep/glyphflip/internal/raster"
)

// Options tunes a Processor.
type Options struct {
	// WidthThreshold is the exclusive minimum rotated-rectangle width of a
	// character.
	WidthThreshold float64

	// Debug outlines every accepted rotated rectangle on the output.
	Debug          bool
	DebugColor     color.Color
	DebugThickness int
}

// DefaultOptions returns the standard pipeline settings.
func DefaultOptions() Options {
	return Options{
		WidthThreshold: DefaultWidthThreshold,
		DebugColor:     color.RGBA{R: 255, A: 255},
		DebugThickness: 4,
	}
}

// Result describes one pipeline run.
type Result struct {
	RunID string

	// Image is the processed raster. Detect leaves it nil.
	Image *raster.Image

	Threshold uint8
	Contours  int
	Regions   []Region
	Rejected  int
}

// Processor runs the detect-and-flip pipeline. It holds no per-image state
// and is safe for concurrent use.
type Processor struct {
	opts Options
	log  *logging.Logger
}

// New creates a Processor. log may be nil.
func New(opts Options, log *logging.Logger) *Processor {
	if opts.DebugColor == nil {
		opts.DebugColor = DefaultOptions().DebugColor
	}
	if opts.DebugThickness <= 0 {
		opts.DebugThickness = 1
	}
	return &Processor{opts: opts, log: log}
}

// Options returns the processor's effective settings.
func (p *Processor) Options() Options {
	return p.opts
}

// Process runs the pipeline with default options and returns a new raster.
// img is not modified.
func Process(img *raster.Image) (*raster.Image, error) {
	return New(DefaultOptions(), nil).Process(img)
}

// Process returns a new raster with the transform applied; img is not
// modified.
func (p *Processor) Process(img *raster.Image) (*raster.Image, error) {
	res, err := p.Run(img)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// ProcessInPlace applies the transform to img itself. On error img is left
// untouched.
func (p *Processor) ProcessInPlace(img *raster.Image) error {
	res, err := p.Run(img)
	if err != nil {
		return err
	}
	return img.CopyFrom(res.Image)
}

// Run executes the full pipeline on a copy of img and reports what it found.
func (p *Processor) Run(img *raster.Image) (*Result, error) {
	start := time.Now()
	if err := img.Validate(raster.RGB); err != nil {
		p.log.Warn("rejected input", "error", err)
		return nil, err
	}

	work, err := Rotate180(img)
	if err != nil {
		return nil, err
	}

	res, err := p.detect(work)
	if err != nil {
		return nil, err
	}

	FlipRegions(work, res.Regions)
	if p.opts.Debug {
		p.outline(work, res.Regions)
	}
	res.Image = work

	p.log.Info("flipped characters",
		"run_id", res.RunID,
		"size", fmt.Sprintf("%dx%d", img.Width, img.Height),
		"threshold", res.Threshold,
		"contours", res.Contours,
		"flipped", len(res.Regions),
		"rejected", res.Rejected,
		"elapsed", time.Since(start))
	return res, nil
}

// Detect runs grayscale, binarization, contour extraction and filtering on
// img as given, without the global rotation, and flips nothing.
func (p *Processor) Detect(img *raster.Image) (*Result, error) {
	if err := img.Validate(raster.RGB); err != nil {
		return nil, err
	}
	return p.detect(img)
}

func (p *Processor) detect(img *raster.Image) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}

	gray, err := Grayscale(img)
	if err != nil {
		return nil, err
	}
	mask, t, err := Binarize(gray)
	if err != nil {
		return nil, err
	}
	res.Threshold = t

	contours, err := FindCharacters(mask)
	if err != nil {
		return nil, err
	}
	res.Contours = len(contours)
	res.Regions, res.Rejected = FilterRegions(contours, p.opts.WidthThreshold)

	p.log.Debug("detected characters",
		"run_id", res.RunID,
		"threshold", t,
		"contours", res.Contours,
		"accepted", len(res.Regions))
	return res, nil
}

func (p *Processor) outline(dst *raster.Image, regions []Region) {
	for _, r := range regions {
		imgutil.DrawPolygon(dst, r.Corners(), p.opts.DebugColor, p.opts.DebugThickness)
	}
}
