package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/glyphflip/internal/imaging"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Flip.WidthThreshold != 20 {
		t.Errorf("WidthThreshold: got %v, want 20", cfg.Flip.WidthThreshold)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Flip.WidthThreshold = 12.5
	cfg.Flip.Debug = true
	cfg.Output.Format = "webp"
	cfg.Capture.Command = []string{"fswebcam", "-"}

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Flip.WidthThreshold != 12.5 || !loaded.Flip.Debug {
		t.Errorf("flip section not restored: %+v", loaded.Flip)
	}
	if loaded.Output.Format != "webp" {
		t.Errorf("Output.Format: got %q", loaded.Output.Format)
	}
	if strings.Join(loaded.Capture.Command, " ") != "fswebcam -" {
		t.Errorf("Capture.Command: got %v", loaded.Capture.Command)
	}
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"flip": {"debug": true}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if !cfg.Flip.Debug {
		t.Error("Debug should be read from the file")
	}
	if cfg.Flip.WidthThreshold != 20 || cfg.Output.Quality != 95 {
		t.Errorf("missing fields should keep defaults: %+v", cfg)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not json"), 0o644)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing default file is fine", func(t *testing.T) {
		t.Setenv("GLYPHFLIP_CONFIG", filepath.Join(t.TempDir(), "absent.json"))
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Flip.Backend != BackendNative {
			t.Errorf("Backend: got %q", cfg.Flip.Backend)
		}
	})

	t.Run("missing explicit file fails", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("expected error for an explicit missing file")
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		os.WriteFile(path, []byte(`{"flip": {"width_threshold": 10}}`), 0o644)
		t.Setenv("GLYPHFLIP_WIDTH_THRESHOLD", "33")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Flip.WidthThreshold != 33 {
			t.Errorf("WidthThreshold: got %v, want 33", cfg.Flip.WidthThreshold)
		}
	})

	t.Run("invalid result fails", func(t *testing.T) {
		t.Setenv("GLYPHFLIP_CONFIG", filepath.Join(t.TempDir(), "absent.json"))
		t.Setenv("GLYPHFLIP_BACKEND", "magic")
		if _, err := Load(""); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GLYPHFLIP_WIDTH_THRESHOLD", "25")
	t.Setenv("GLYPHFLIP_BACKEND", "opencv")
	t.Setenv("GLYPHFLIP_DEBUG", "true")
	t.Setenv("GLYPHFLIP_DEBUG_COLOR", "blue")
	t.Setenv("GLYPHFLIP_OUTPUT_FORMAT", "png")
	t.Setenv("GLYPHFLIP_OUTPUT_QUALITY", "70")
	t.Setenv("GLYPHFLIP_OUTPUT_DIR", "/srv/out")
	t.Setenv("GLYPHFLIP_CAPTURE_COMMAND", "raspistill -o -")
	t.Setenv("GLYPHFLIP_CAPTURE_DIR", "/srv/captures")
	t.Setenv("GLYPHFLIP_S3_REGION", "eu-west-1")
	t.Setenv("GLYPHFLIP_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("GLYPHFLIP_LOG_LEVEL", "debug")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Flip.WidthThreshold != 25 || cfg.Flip.Backend != "opencv" || !cfg.Flip.Debug || cfg.Flip.DebugColor != "blue" {
		t.Errorf("flip: %+v", cfg.Flip)
	}
	if cfg.Output.Format != "png" || cfg.Output.Quality != 70 || cfg.Output.Dir != "/srv/out" {
		t.Errorf("output: %+v", cfg.Output)
	}
	if len(cfg.Capture.Command) != 3 || cfg.Capture.Command[0] != "raspistill" || cfg.Capture.Dir != "/srv/captures" {
		t.Errorf("capture: %+v", cfg.Capture)
	}
	if cfg.Storage.S3Region != "eu-west-1" || cfg.Storage.S3Endpoint != "http://localhost:9000" {
		t.Errorf("storage: %+v", cfg.Storage)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q", cfg.LogLevel)
	}
}

func TestApplyEnv_BadValues(t *testing.T) {
	tests := []struct{ key, value string }{
		{"GLYPHFLIP_WIDTH_THRESHOLD", "wide"},
		{"GLYPHFLIP_DEBUG", "sometimes"},
		{"GLYPHFLIP_OUTPUT_QUALITY", "high"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if err := Default().ApplyEnv(); err == nil {
				t.Errorf("%s=%q should be rejected", tt.key, tt.value)
			}
		})
	}
}

func TestApplyEnv_NonFiniteThresholdFailsValidation(t *testing.T) {
	for _, value := range []string{"NaN", "Inf", "-Inf"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("GLYPHFLIP_WIDTH_THRESHOLD", value)
			cfg := Default()
			if err := cfg.ApplyEnv(); err != nil {
				t.Fatalf("ApplyEnv: %v", err)
			}
			if err := cfg.Validate(); err == nil {
				t.Errorf("width threshold %q should not validate", value)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative threshold", func(c *Config) { c.Flip.WidthThreshold = -1 }},
		{"NaN threshold", func(c *Config) { c.Flip.WidthThreshold = math.NaN() }},
		{"infinite threshold", func(c *Config) { c.Flip.WidthThreshold = math.Inf(1) }},
		{"unknown backend", func(c *Config) { c.Flip.Backend = "gpu" }},
		{"bad debug color", func(c *Config) { c.Flip.DebugColor = "#zzzzzz" }},
		{"zero thickness", func(c *Config) { c.Flip.DebugThickness = 0 }},
		{"quality too high", func(c *Config) { c.Output.Quality = 101 }},
		{"quality zero", func(c *Config) { c.Output.Quality = 0 }},
		{"unknown format", func(c *Config) { c.Output.Format = "heic" }},
		{"zero timeout", func(c *Config) { c.Capture.TimeoutSeconds = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFlipOptions(t *testing.T) {
	cfg := Default()
	cfg.Flip.WidthThreshold = 15
	cfg.Flip.Debug = true
	cfg.Flip.DebugColor = "#00ff00"
	cfg.Flip.DebugThickness = 2

	opts, err := cfg.FlipOptions()
	if err != nil {
		t.Fatalf("FlipOptions failed: %v", err)
	}
	if opts.WidthThreshold != 15 || !opts.Debug || opts.DebugThickness != 2 {
		t.Errorf("unexpected options: %+v", opts)
	}
	if got := imaging.HexColor(opts.DebugColor); got != "#00ff00" {
		t.Errorf("DebugColor: got %s", got)
	}
}

func TestEncodeOptions(t *testing.T) {
	cfg := Default()
	cfg.Output.Format = "JPEG"
	cfg.Output.Quality = 80

	opts := cfg.EncodeOptions()
	if opts.Format != imaging.FormatJPEG || opts.Quality != 80 {
		t.Errorf("unexpected encode options: %+v", opts)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("GLYPHFLIP_CONFIG", "/etc/glyphflip.json")
	if got := GetConfigPath(); got != "/etc/glyphflip.json" {
		t.Errorf("GetConfigPath: got %s", got)
	}
}
