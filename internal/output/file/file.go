package file

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/crimson-sun/apptimeline/internal/model"
	"github.com/crimson-sun/apptimeline/internal/output"
)

const defaultBufSize = 64 * 1024 // 64KB

// Paths names the three report files.
type Paths struct {
	Timeline       string
	ClusterSummary string
	Stats          string
}

// Option configures a file Output.
type Option func(*Output)

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// Output writes the CSV reports and the stats file.
type Output struct {
	paths   Paths
	bufSize int
}

// New creates a file output. Parent directories are created on Write.
func New(paths Paths, opts ...Option) *Output {
	o := &Output{paths: paths, bufSize: defaultBufSize}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Write stores the timeline CSV, the cluster summary CSV and then the stats
// file. A report without clusters removes any existing stats file and
// returns an error wrapping model.ErrNoClusters.
func (o *Output) Write(_ context.Context, report model.Report) error {
	err := o.writeFile(o.paths.Timeline, func(w io.Writer) error {
		return writeCSV(w, output.TimelineHeader, len(report.Timeline), func(i int) []string {
			return output.TimelineRecord(report.Timeline[i])
		})
	})
	if err != nil {
		return err
	}

	err = o.writeFile(o.paths.ClusterSummary, func(w io.Writer) error {
		return writeCSV(w, output.ClusterSummaryHeader, len(report.Clusters), func(i int) []string {
			return output.ClusterSummaryRecord(report.Clusters[i])
		})
	})
	if err != nil {
		return err
	}

	stats, err := report.Stats()
	if err != nil {
		// A stats file from an earlier run must not outlive its timeline.
		if rmErr := os.Remove(o.paths.Stats); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return errors.Join(fmt.Errorf("file output: stats: %w", err),
				fmt.Errorf("file output: remove stale %s: %w", o.paths.Stats, rmErr))
		}
		return fmt.Errorf("file output: stats: %w", err)
	}
	return o.writeFile(o.paths.Stats, func(w io.Writer) error {
		_, err := io.WriteString(w, output.StatsText(stats))
		return err
	})
}

func (o *Output) Close() error {
	return nil
}

// writeFile creates path (and its directory) and hands fill a buffered writer.
func (o *Output) writeFile(path string, fill func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("file output: mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("file output: create %s: %w", path, err)
	}
	w := bufio.NewWriterSize(f, o.bufSize)
	if err := fill(w); err != nil {
		f.Close()
		return fmt.Errorf("file output: write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("file output: flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("file output: close %s: %w", path, err)
	}
	slog.Info("wrote report file", "path", path)
	return nil
}

func writeCSV(w io.Writer, header []string, n int, record func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(record(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTimeline loads a timeline CSV written by Output. Columns are located
// by header name, so extra columns are ignored.
func ReadTimeline(path string) ([]model.TimelineRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read timeline %s: missing header", path)
		}
		return nil, fmt.Errorf("read timeline %s: %w", path, err)
	}
	col, err := columnIndex(header, output.TimelineHeader)
	if err != nil {
		return nil, fmt.Errorf("read timeline %s: %w", path, err)
	}

	var rows []model.TimelineRow
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read timeline %s: %w", path, err)
		}
		start, err := output.ParseTime(rec[col["start_time"]])
		if err != nil {
			return nil, fmt.Errorf("read timeline %s:%d: start_time: %w", path, line, err)
		}
		end, err := output.ParseTime(rec[col["end_time"]])
		if err != nil {
			return nil, fmt.Errorf("read timeline %s:%d: end_time: %w", path, line, err)
		}
		rows = append(rows, model.TimelineRow{
			ClusterID:     rec[col["cluster_id"]],
			ApplicationID: rec[col["application_id"]],
			AppNumber:     rec[col["app_number"]],
			StartTime:     start,
			EndTime:       end,
		})
	}
	return rows, nil
}

func columnIndex(header, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %s", strconv.Quote(name))
		}
	}
	return idx, nil
}
