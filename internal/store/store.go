// Package store connects the flip pipeline to where images live: local
// files or objects in S3.
//
// A reference is either a filesystem path or an "s3://bucket/key" URL.
// Resolve picks the right Store for a reference. Both stores decode into
// RGB rasters and encode rasters with the imaging package.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ironsheep/glyphflip/internal/imaging"
	"github.com/ironsheep/glyphflip/internal/raster"
)

// Source supplies decoded rasters.
type Source interface {
	Load(ctx context.Context, name string) (*raster.Image, error)
}

// Sink persists rasters.
type Sink interface {
	Save(ctx context.Context, name string, img *raster.Image, opts imaging.EncodeOptions) error
}

// Store is both a Source and a Sink.
type Store interface {
	Source
	Sink
}

// S3Options configures S3 access for Resolve.
type S3Options struct {
	Region         string
	Endpoint       string
	ForcePathStyle bool
}

// IsS3URL reports whether ref uses the s3:// scheme.
func IsS3URL(ref string) bool {
	return strings.HasPrefix(ref, "s3://")
}

// ParseS3URL splits "s3://bucket/key" into bucket and key.
func ParseS3URL(ref string) (bucket, key string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 url %q: %w", ref, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("invalid s3 url %q: scheme must be s3", ref)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 url %q: want s3://bucket/key", ref)
	}
	return bucket, key, nil
}

// Resolve returns the store holding ref and the name of ref inside it.
func Resolve(ref string, opts S3Options) (Store, string, error) {
	if !IsS3URL(ref) {
		return &FileStore{}, ref, nil
	}
	bucket, key, err := ParseS3URL(ref)
	if err != nil {
		return nil, "", err
	}
	s, err := NewS3Store(bucket, opts)
	if err != nil {
		return nil, "", err
	}
	return s, key, nil
}
