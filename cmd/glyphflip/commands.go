package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/glyphflip/internal/capture"
	"github.com/ironsheep/glyphflip/internal/config"
	"github.com/ironsheep/glyphflip/internal/imaging"
	"github.com/ironsheep/glyphflip/internal/logging"
	"github.com/ironsheep/glyphflip/internal/server"
	"github.com/ironsheep/glyphflip/internal/store"
)

var errUsage = errors.New("wrong number of arguments")

// commonFlags are accepted by every command that runs the pipeline.
type commonFlags struct {
	configPath string
	logLevel   string
	width      float64
	backend    string
	debug      bool
	debugColor string
	format     string
	quality    int
	lossless   bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.configPath, "config", "", "configuration file")
	fs.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")
	fs.Float64Var(&c.width, "width", 0, "minimum rotated-rectangle width of a character, exclusive")
	fs.StringVar(&c.backend, "backend", "", "pipeline backend: native or opencv")
	fs.BoolVar(&c.debug, "debug", false, "outline every flipped character")
	fs.StringVar(&c.debugColor, "debug-color", "", "outline color, hex or name")
	fs.StringVar(&c.format, "format", "", "output format: png, jpeg, webp, bmp, tiff or gif")
	fs.IntVar(&c.quality, "quality", 0, "JPEG and lossy WebP quality, 1-100")
	fs.BoolVar(&c.lossless, "lossless", false, "lossless WebP output")
	return c
}

// app is the loaded configuration plus everything built from it.
type app struct {
	cfg *config.Config
	log *logging.Logger
}

// load reads the configuration and layers the flags that were given on the
// command line over it.
func (c *commonFlags) load(fs *flag.FlagSet, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevel = c.logLevel
		case "width":
			cfg.Flip.WidthThreshold = c.width
		case "backend":
			cfg.Flip.Backend = c.backend
		case "debug":
			cfg.Flip.Debug = c.debug
		case "debug-color":
			cfg.Flip.DebugColor = c.debugColor
		case "format":
			cfg.Output.Format = c.format
		case "quality":
			cfg.Output.Quality = c.quality
		case "lossless":
			cfg.Output.Lossless = c.lossless
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &app{
		cfg: cfg,
		log: logging.New(stderr, "glyphflip", logging.ParseLevel(cfg.LogLevel)),
	}, nil
}

func (a *app) pipeline() (pipeline, error) {
	opts, err := a.cfg.FlipOptions()
	if err != nil {
		return nil, err
	}
	return newPipeline(a.cfg.Flip.Backend, opts, a.log)
}

func (a *app) s3() store.S3Options {
	return store.S3Options{
		Region:         a.cfg.Storage.S3Region,
		Endpoint:       a.cfg.Storage.S3Endpoint,
		ForcePathStyle: a.cfg.Storage.S3ForcePathStyle,
	}
}

// defaultOutput names the output for in: the input's stem plus the
// configured suffix, with the extension of the configured format or else of
// the input. Local outputs go to the output directory when one is set.
func defaultOutput(in string, out config.OutputConfig) string {
	ext := imaging.Format(strings.ToLower(out.Format)).Ext()
	if out.Format == "" {
		ext = imaging.FormatFromPath(in).Ext()
		if imaging.FormatFromPath(in) == imaging.FormatUnknown {
			ext = imaging.FormatPNG.Ext()
		}
	}

	if store.IsS3URL(in) {
		return strings.TrimSuffix(in, path.Ext(in)) + out.Suffix + ext
	}
	stem := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	dir := filepath.Dir(in)
	if out.Dir != "" {
		dir = out.Dir
	}
	return filepath.Join(dir, stem+out.Suffix+ext)
}

// flipFile runs the pipeline from the in reference to the out reference.
func (a *app) flipFile(ctx context.Context, p pipeline, in, out string, stdout io.Writer) error {
	src, name, err := store.Resolve(in, a.s3())
	if err != nil {
		return err
	}
	img, err := src.Load(ctx, name)
	if err != nil {
		return err
	}

	res, err := p.Run(img)
	if err != nil {
		return err
	}

	dst, dstName, err := store.Resolve(out, a.s3())
	if err != nil {
		return err
	}
	if err := dst.Save(ctx, dstName, res.Image, a.cfg.EncodeOptions()); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s -> %s: flipped %d characters, skipped %d narrow blobs (threshold %d)\n",
		in, out, len(res.Regions), res.Rejected, res.Threshold)
	return nil
}

func runFlip(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("flip", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return fmt.Errorf("%w: want <input> [output]", errUsage)
	}

	a, err := common.load(fs, stderr)
	if err != nil {
		return err
	}
	p, err := a.pipeline()
	if err != nil {
		return err
	}

	in, out := fs.Arg(0), fs.Arg(1)
	if out == "" {
		out = defaultOutput(in, a.cfg.Output)
	}
	return a.flipFile(ctx, p, in, out, stdout)
}

// detectOutput is what the detect command prints.
type detectOutput struct {
	Input     string              `json:"input"`
	RunID     string              `json:"run_id"`
	Width     int                 `json:"width"`
	Height    int                 `json:"height"`
	Threshold uint8               `json:"threshold"`
	Contours  int                 `json:"contours"`
	Rejected  int                 `json:"rejected"`
	Regions   []server.RegionInfo `json:"regions"`
}

func runDetect(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: want <input>", errUsage)
	}

	a, err := common.load(fs, stderr)
	if err != nil {
		return err
	}
	p, err := a.pipeline()
	if err != nil {
		return err
	}

	in := fs.Arg(0)
	src, name, err := store.Resolve(in, a.s3())
	if err != nil {
		return err
	}
	img, err := src.Load(ctx, name)
	if err != nil {
		return err
	}
	res, err := p.Detect(img)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(detectOutput{
		Input:     in,
		RunID:     res.RunID,
		Width:     img.Width,
		Height:    img.Height,
		Threshold: res.Threshold,
		Contours:  res.Contours,
		Rejected:  res.Rejected,
		Regions:   server.RegionInfos(res.Regions),
	})
}

func runCapture(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	from := fs.String("from", "", "replay this image file instead of running the capture command")
	dir := fs.String("dir", "", "directory for captured pictures")
	doFlip := fs.Bool("flip", false, "flip the captured picture")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("%w: capture takes no arguments", errUsage)
	}

	a, err := common.load(fs, stderr)
	if err != nil {
		return err
	}
	if *dir != "" {
		a.cfg.Capture.Dir = *dir
	}

	var cam capture.Camera = &capture.CommandCamera{
		Command: a.cfg.Capture.Command,
		Timeout: time.Duration(a.cfg.Capture.TimeoutSeconds) * time.Second,
	}
	if *from != "" {
		cam = &capture.FileCamera{Path: *from}
	}

	paths := make(chan string, 1)
	session := &capture.Session{
		Camera: cam,
		Dir:    a.cfg.Capture.Dir,
		Notify: paths,
		Log:    a.log.With("capture"),
	}
	if _, err := session.TakePicture(ctx); err != nil {
		return err
	}

	picture := <-paths
	fmt.Fprintln(stdout, picture)
	if !*doFlip {
		return nil
	}

	p, err := a.pipeline()
	if err != nil {
		return err
	}
	return a.flipFile(ctx, p, picture, defaultOutput(picture, a.cfg.Output), stdout)
}

func runServe(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("%w: serve takes no arguments", errUsage)
	}

	a, err := common.load(fs, stderr)
	if err != nil {
		return err
	}
	opts, err := a.cfg.FlipOptions()
	if err != nil {
		return err
	}
	backend, err := lookupBackend(a.cfg.Flip.Backend)
	if err != nil {
		return err
	}

	a.log.Debug("starting MCP server", "version", Version, "built", BuildTime, "commit", GitCommit,
		"backend", a.cfg.Flip.Backend)
	server.Version = Version
	srv := server.NewWithOptions(opts, a.cfg.EncodeOptions(), a.log.With("server"))
	srv.SetBackend(backend)
	return srv.Run()
}
