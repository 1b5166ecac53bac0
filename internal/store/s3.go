package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/ironsheep/glyphflip/internal/imaging"
	"github.com/ironsheep/glyphflip/internal/raster"
)

// S3Store reads and writes images as objects in one bucket.
type S3Store struct {
	Bucket string

	downloader *s3manager.Downloader
	uploader   *s3manager.Uploader
}

// NewS3Store sets up an AWS session for bucket. Credentials come from the
// usual AWS environment variables, shared config or instance role.
func NewS3Store(bucket string, opts S3Options) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("no bucket set")
	}
	if opts.Region == "" {
		return nil, fmt.Errorf("no region set")
	}

	cfg := &aws.Config{
		Region: aws.String(opts.Region),
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
	}
	if opts.ForcePathStyle {
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up aws session: %w", err)
	}
	return &S3Store{
		Bucket:     bucket,
		downloader: s3manager.NewDownloader(sess),
		uploader:   s3manager.NewUploader(sess),
	}, nil
}

// Load downloads the object key and decodes it.
func (s *S3Store) Load(ctx context.Context, key string) (*raster.Image, error) {
	buf := aws.NewWriteAtBuffer(nil)
	_, err := s.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.Bucket, key, err)
	}
	return imaging.DecodeBytes(buf.Bytes())
}

// Save encodes img and uploads it as the object key. An empty opts.Format
// follows the key's extension.
func (s *S3Store) Save(ctx context.Context, key string, img *raster.Image, opts imaging.EncodeOptions) error {
	if opts.Format == "" {
		opts.Format = imaging.FormatFromPath(key)
		if opts.Format == imaging.FormatUnknown {
			opts.Format = imaging.FormatPNG
		}
	}

	var body bytes.Buffer
	if err := imaging.Encode(&body, img, opts); err != nil {
		return err
	}

	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body.Bytes()),
		ContentType: aws.String(opts.Format.MimeType()),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.Bucket, key, err)
	}
	return nil
}
