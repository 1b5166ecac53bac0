package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/glyphflip/internal/imaging"
	"github.com/ironsheep/glyphflip/internal/raster"
)

// FileStore reads and writes image files. Relative names are resolved
// against Dir when it is set.
type FileStore struct {
	Dir string
}

func (s *FileStore) path(name string) string {
	if s.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// Load decodes the image file called name.
func (s *FileStore) Load(ctx context.Context, name string) (*raster.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imaging.Open(s.path(name))
}

// Save encodes img into the file called name, creating parent directories.
func (s *FileStore) Save(ctx context.Context, name string, img *raster.Image, opts imaging.EncodeOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return imaging.Save(p, img, opts)
}
