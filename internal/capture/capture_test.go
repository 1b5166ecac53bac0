package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeCamera returns canned data or an error
type fakeCamera struct {
	data []byte
	err  error
}

func (c *fakeCamera) Capture(ctx context.Context) ([]byte, error) {
	return c.data, c.err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "pic.jpg")
	if err := Save([]byte("payload"), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("content: got %q", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the saved file, found %d entries", len(entries))
	}
}

func TestSession_TakePicture(t *testing.T) {
	dir := t.TempDir()
	notify := make(chan string, 1)
	s := &Session{Camera: &fakeCamera{data: pngBytes(t)}, Dir: dir, Notify: notify}

	path, err := s.TakePicture(context.Background())
	if err != nil {
		t.Fatalf("TakePicture failed: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "capture-") || !strings.HasSuffix(base, ".png") {
		t.Errorf("unexpected file name %q", base)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("picture saved outside Dir: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("picture not on disk: %v", err)
	}

	select {
	case got := <-notify:
		if got != path {
			t.Errorf("notified %q, want %q", got, path)
		}
	default:
		t.Error("no notification sent")
	}
}

func TestSession_UniqueNames(t *testing.T) {
	s := &Session{Camera: &fakeCamera{data: pngBytes(t)}, Dir: t.TempDir()}

	first, err := s.TakePicture(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.TakePicture(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("two pictures should not share a file name")
	}
}

func TestSession_CameraError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("lens cap on")
	s := &Session{Camera: &fakeCamera{err: boom}, Dir: dir}

	if _, err := s.TakePicture(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected camera error, got %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Error("nothing should be written when capture fails")
	}
}

func TestSession_NotAnImage(t *testing.T) {
	dir := t.TempDir()
	s := &Session{Camera: &fakeCamera{data: []byte("definitely not a jpeg")}, Dir: dir}

	if _, err := s.TakePicture(context.Background()); err == nil {
		t.Error("expected error for non-image data")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Error("non-image data should not be saved")
	}
}

func TestSession_NotifyHonorsContext(t *testing.T) {
	notify := make(chan string) // nobody reads
	s := &Session{Camera: &fakeCamera{data: pngBytes(t)}, Dir: t.TempDir(), Notify: notify}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	path, err := s.TakePicture(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Errorf("picture should remain on disk: %v", statErr)
	}
}

func TestFileCamera(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	os.WriteFile(path, pngBytes(t), 0o644)

	data, err := (&FileCamera{Path: path}).Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected picture bytes")
	}

	if _, err := (&FileCamera{Path: path + ".missing"}).Capture(context.Background()); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestCommandCamera(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	want := pngBytes(t)
	os.WriteFile(path, want, 0o644)

	cam := &CommandCamera{Command: []string{"cat", path}, Timeout: 5 * time.Second}
	got, err := cam.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("stdout not returned verbatim")
	}
}

func TestCommandCamera_Errors(t *testing.T) {
	tests := []struct {
		name    string
		command []string
	}{
		{"empty", nil},
		{"fails", []string{"false"}},
		{"no output", []string{"true"}},
		{"missing binary", []string{"/nonexistent/camera-tool"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := &CommandCamera{Command: tt.command}
			if _, err := cam.Capture(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}
