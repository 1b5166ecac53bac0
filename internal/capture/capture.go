// Package capture takes a still picture and hands its file path on.
//
// A picture moves through three steps: the Camera returns encoded bytes,
// Save writes them to disk, and the path is sent to whoever is waiting on the
// Session's Notify channel. No decoding happens here beyond checking that
// the bytes are an image.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/glyphflip/internal/imaging"
	"github.com/ironsheep/glyphflip/internal/logging"
)

// Camera produces one encoded still image per call.
type Camera interface {
	Capture(ctx context.Context) ([]byte, error)
}

// CommandCamera runs an external still-capture program (libcamera-still,
// fswebcam, raspistill...) that writes the encoded picture to stdout.
type CommandCamera struct {
	Command []string
	Timeout time.Duration
}

// Capture runs the command and returns its stdout.
func (c *CommandCamera) Capture(ctx context.Context) ([]byte, error) {
	if len(c.Command) == 0 {
		return nil, errors.New("no capture command configured")
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("capture command %s: %w", c.Command[0], ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("capture command %s failed: %w", c.Command[0], err)
		}
		return nil, fmt.Errorf("capture command %s failed: %w: %s", c.Command[0], err, msg)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("capture command %s produced no data", c.Command[0])
	}
	return stdout.Bytes(), nil
}

// FileCamera replays an existing picture, for testing and offline use.
type FileCamera struct {
	Path string
}

// Capture returns the file's bytes.
func (c *FileCamera) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read picture: %w", err)
	}
	return data, nil
}

// Save writes data to path, creating parent directories. The file appears
// under its final name only once fully written.
func Save(data []byte, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create capture directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".capture-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write picture: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write picture: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move picture into place: %w", err)
	}
	return nil
}

// Session ties a Camera to an output directory and a consumer.
type Session struct {
	Camera Camera
	Dir    string

	// Notify receives the path of every saved picture. It may be nil.
	Notify chan<- string

	Log *logging.Logger
}

// TakePicture captures, saves the picture as capture-<uuid>.<ext> in Dir and
// sends the path on Notify. It returns the saved path.
//
// If ctx ends while waiting for the consumer the picture stays on disk and
// its path is returned together with the context error.
func (s *Session) TakePicture(ctx context.Context) (string, error) {
	data, err := s.Camera.Capture(ctx)
	if err != nil {
		return "", err
	}

	format, err := imaging.Sniff(data)
	if err != nil {
		return "", fmt.Errorf("camera returned data that is not an image: %w", err)
	}

	path := filepath.Join(s.Dir, "capture-"+uuid.NewString()+format.Ext())
	if err := Save(data, path); err != nil {
		return "", err
	}
	s.Log.Info("picture saved", "path", path, "format", format, "bytes", len(data))

	if s.Notify == nil {
		return path, nil
	}
	select {
	case s.Notify <- path:
		return path, nil
	case <-ctx.Done():
		return path, ctx.Err()
	}
}
