package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reader opens catalog source objects for reading.
type Reader interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// LocalReader reads catalog sources from the local filesystem.
type LocalReader struct{}

func (LocalReader) Open(_ context.Context, location string) (io.ReadCloser, error) {
	return os.Open(strings.TrimPrefix(location, "file://"))
}

// Router dispatches gs:// locations to GCS and everything else to disk.
type Router struct {
	GCS   Reader
	Local Reader
}

func (r Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "gs://") {
		if r.GCS == nil {
			return nil, fmt.Errorf("gcs source %q requested but no gcs client is configured", location)
		}
		return r.GCS.Open(ctx, location)
	}
	local := r.Local
	if local == nil {
		local = LocalReader{}
	}
	return local.Open(ctx, location)
}

// ParseGSURL splits gs://bucket/object/path into its bucket and object name.
func ParseGSURL(location string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(location, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// url: %q", location)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs url must be gs://bucket/object, got %q", location)
	}
	return bucket, object, nil
}
