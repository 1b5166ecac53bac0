// Package config holds glyphflip's settings: a JSON file layered under
// GLYPHFLIP_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ironsheep/glyphflip/internal/flip"
	"github.com/ironsheep/glyphflip/internal/imaging"
)

// Backends accepted by FlipConfig.Backend.
const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

// Config holds the application configuration
type Config struct {
	Flip     FlipConfig    `json:"flip"`
	Output   OutputConfig  `json:"output"`
	Capture  CaptureConfig `json:"capture"`
	Storage  StorageConfig `json:"storage"`
	LogLevel string        `json:"log_level"`
}

// FlipConfig holds pipeline settings
type FlipConfig struct {
	WidthThreshold float64 `json:"width_threshold"`
	Backend        string  `json:"backend"`
	Debug          bool    `json:"debug"`
	DebugColor     string  `json:"debug_color"`
	DebugThickness int     `json:"debug_thickness"`
}

// OutputConfig holds settings for written images
type OutputConfig struct {
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
	Dir      string `json:"dir"`
	Suffix   string `json:"suffix"`
}

// CaptureConfig holds settings for the capture command
type CaptureConfig struct {
	// Command prints one encoded still image on stdout.
	Command        []string `json:"command"`
	Dir            string   `json:"dir"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

// StorageConfig holds settings for s3:// inputs and outputs
type StorageConfig struct {
	S3Region         string `json:"s3_region"`
	S3Endpoint       string `json:"s3_endpoint"`
	S3ForcePathStyle bool   `json:"s3_force_path_style"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Flip: FlipConfig{
			WidthThreshold: flip.DefaultWidthThreshold,
			Backend:        BackendNative,
			DebugColor:     "#ff0000",
			DebugThickness: 4,
		},
		Output: OutputConfig{
			Format:  "",
			Quality: 95,
			Dir:     "",
			Suffix:  "_flipped",
		},
		Capture: CaptureConfig{
			Command:        []string{"libcamera-still", "--nopreview", "-o", "-"},
			Dir:            filepath.Join(os.TempDir(), "glyphflip"),
			TimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			S3Region: "us-east-1",
		},
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Load reads filename when it is non-empty and exists, applies environment
// overrides and validates the result. A missing file at the default path is
// not an error; a missing file that was asked for explicitly is.
func Load(filename string) (*Config, error) {
	cfg := Default()

	path, explicit := filename, filename != ""
	if !explicit {
		path = GetConfigPath()
	}
	if path != "" {
		loaded, err := LoadFromFile(path)
		switch {
		case err == nil:
			cfg = loaded
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from GLYPHFLIP_* environment variables.
func (c *Config) ApplyEnv() error {
	var err error
	c.Flip.WidthThreshold, err = getEnvAsFloatOrDefault("GLYPHFLIP_WIDTH_THRESHOLD", c.Flip.WidthThreshold)
	if err != nil {
		return err
	}
	c.Flip.Backend = getEnvOrDefault("GLYPHFLIP_BACKEND", c.Flip.Backend)
	if c.Flip.Debug, err = getEnvAsBoolOrDefault("GLYPHFLIP_DEBUG", c.Flip.Debug); err != nil {
		return err
	}
	c.Flip.DebugColor = getEnvOrDefault("GLYPHFLIP_DEBUG_COLOR", c.Flip.DebugColor)

	c.Output.Format = getEnvOrDefault("GLYPHFLIP_OUTPUT_FORMAT", c.Output.Format)
	if c.Output.Quality, err = getEnvAsIntOrDefault("GLYPHFLIP_OUTPUT_QUALITY", c.Output.Quality); err != nil {
		return err
	}
	c.Output.Dir = getEnvOrDefault("GLYPHFLIP_OUTPUT_DIR", c.Output.Dir)

	if cmd := os.Getenv("GLYPHFLIP_CAPTURE_COMMAND"); cmd != "" {
		c.Capture.Command = strings.Fields(cmd)
	}
	c.Capture.Dir = getEnvOrDefault("GLYPHFLIP_CAPTURE_DIR", c.Capture.Dir)

	c.Storage.S3Region = getEnvOrDefault("GLYPHFLIP_S3_REGION", c.Storage.S3Region)
	c.Storage.S3Endpoint = getEnvOrDefault("GLYPHFLIP_S3_ENDPOINT", c.Storage.S3Endpoint)

	c.LogLevel = getEnvOrDefault("GLYPHFLIP_LOG_LEVEL", c.LogLevel)
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if w := c.Flip.WidthThreshold; w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("flip.width_threshold must be a finite non-negative number, got %g", w)
	}
	if c.Flip.Backend != BackendNative && c.Flip.Backend != BackendOpenCV {
		return fmt.Errorf("flip.backend must be %q or %q, got %q", BackendNative, BackendOpenCV, c.Flip.Backend)
	}
	if _, err := imaging.ParseColor(c.Flip.DebugColor); err != nil {
		return fmt.Errorf("flip.debug_color: %w", err)
	}
	if c.Flip.DebugThickness < 1 {
		return fmt.Errorf("flip.debug_thickness must be positive")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}
	if c.Output.Format != "" {
		switch imaging.Format(strings.ToLower(c.Output.Format)) {
		case imaging.FormatJPEG, imaging.FormatPNG, imaging.FormatGIF,
			imaging.FormatWebP, imaging.FormatBMP, imaging.FormatTIFF:
		default:
			return fmt.Errorf("output.format %q is not supported", c.Output.Format)
		}
	}

	if c.Capture.TimeoutSeconds < 1 {
		return fmt.Errorf("capture.timeout_seconds must be positive")
	}
	return nil
}

// FlipOptions converts the flip section into pipeline options.
func (c *Config) FlipOptions() (flip.Options, error) {
	opts := flip.DefaultOptions()
	opts.WidthThreshold = c.Flip.WidthThreshold
	opts.Debug = c.Flip.Debug
	opts.DebugThickness = c.Flip.DebugThickness

	col, err := imaging.ParseColor(c.Flip.DebugColor)
	if err != nil {
		return flip.Options{}, fmt.Errorf("flip.debug_color: %w", err)
	}
	opts.DebugColor = col
	return opts, nil
}

// EncodeOptions converts the output section into encoder options.
func (c *Config) EncodeOptions() imaging.EncodeOptions {
	return imaging.EncodeOptions{
		Format:   imaging.Format(strings.ToLower(c.Output.Format)),
		Quality:  c.Output.Quality,
		Lossless: c.Output.Lossless,
	}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	if p := os.Getenv("GLYPHFLIP_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "glyphflip", "config.json")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, value)
	}
	return f, nil
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	return b, nil
}
