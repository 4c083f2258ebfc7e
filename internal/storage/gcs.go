package storage

import (
	"context"
	"io"

	gcs "cloud.google.com/go/storage"
)

type GCSReader struct {
	client *gcs.Client
}

func NewGCSReader(ctx context.Context) (*GCSReader, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSReader{client: c}, nil
}

func (g *GCSReader) Close() error { return g.client.Close() }

func (g *GCSReader) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, object, err := ParseGSURL(location)
	if err != nil {
		return nil, err
	}
	return g.client.Bucket(bucket).Object(object).NewReader(ctx)
}
