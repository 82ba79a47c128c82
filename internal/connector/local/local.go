package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crimson-sun/apptimeline/internal/connector"
)

func init() {
	connector.Register("file", func(connector.ConnectorConfig) (connector.Connector, error) {
		return &Connector{}, nil
	})
}

// Connector reads log files from the local filesystem.
type Connector struct{}

// List expands a filepath.Glob pattern and keeps regular, non-hidden files.
func (c *Connector) List(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pattern = strings.TrimPrefix(pattern, "file://")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("local connector: glob %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("local connector: stat %s: %w", m, err)
		}
		if info.Mode().IsRegular() && !connector.Hidden(m) {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (c *Connector) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("local connector: %w", err)
	}
	return f, nil
}
