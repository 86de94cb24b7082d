package regression

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Fetcher copies a remote object to a local file.
type Fetcher interface {
	Download(ctx context.Context, bucket, key, path string) error
}

// ArtifactLoader reads a model artifact from object storage into a local path
// and decodes it. With no fetcher or bucket it decodes the local path as is.
type ArtifactLoader struct {
	fetcher Fetcher
	bucket  string
	key     string
	path    string
}

func NewArtifactLoader(fetcher Fetcher, bucket, key, path string) *ArtifactLoader {
	return &ArtifactLoader{fetcher: fetcher, bucket: bucket, key: key, path: path}
}

func (l *ArtifactLoader) Load(ctx context.Context) (Model, error) {
	if l.fetcher != nil && l.bucket != "" {
		if err := l.fetcher.Download(ctx, l.bucket, l.key, l.path); err != nil {
			return nil, fmt.Errorf("download model artifact %s/%s: %w", l.bucket, l.key, err)
		}
		slog.Info("model artifact downloaded", "bucket", l.bucket, "key", l.key, "path", l.path)
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", l.path, err)
	}
	return m, nil
}

var _ Loader = (*ArtifactLoader)(nil)
