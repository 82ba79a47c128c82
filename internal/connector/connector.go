package connector

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Connector defines the interface all log sources must implement.
type Connector interface {
	// List resolves a wildcard pattern into the object paths it matches.
	List(ctx context.Context, pattern string) ([]string, error)

	// Open returns a reader over the raw bytes of one listed object.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// ConnectorConfig holds source connection settings.
type ConnectorConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Hidden reports whether the base name of p marks a hidden or Hadoop
// metadata file (_SUCCESS, .part.crc, ...). Such files are not logs.
func Hidden(p string) bool {
	base := path.Base(p)
	return strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".")
}

// OpenText opens path through c and transparently decompresses .gz objects.
func OpenText(ctx context.Context, c Connector, path string) (io.ReadCloser, error) {
	rc, err := c.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return rc, nil
	}
	zr, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("gunzip %s: %w", path, err)
	}
	return &gzipReadCloser{Reader: zr, underlying: rc}, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	underlying io.Closer
}

func (g *gzipReadCloser) Close() error {
	zerr := g.Reader.Close()
	if err := g.underlying.Close(); err != nil {
		return err
	}
	return zerr
}
