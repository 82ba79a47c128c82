package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/apptimeline/internal/connector"
	"github.com/crimson-sun/apptimeline/internal/engine"
	"github.com/crimson-sun/apptimeline/internal/engine/aggregate"
	"github.com/crimson-sun/apptimeline/internal/model"
	"github.com/crimson-sun/apptimeline/internal/output"
	"github.com/crimson-sun/apptimeline/internal/telemetry"
)

// Pipeline connects a connector, engine, and output into one extraction run.
type Pipeline struct {
	connector connector.Connector
	engine    *engine.Engine
	output    output.Output
	workers   int
	newRunID  func() string
	tracer    trace.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets how many objects are read concurrently. Default: 1.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithRunID overrides run id generation.
func WithRunID(fn func() string) Option {
	return func(p *Pipeline) { p.newRunID = fn }
}

// New creates a Pipeline from the given components.
func New(conn connector.Connector, eng *engine.Engine, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		connector: conn,
		engine:    eng,
		output:    out,
		workers:   1,
		newRunID:  uuid.NewString,
		tracer:    telemetry.Tracer("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run lists the objects matching pattern, extracts and aggregates every
// line, and writes the resulting report to the output. The report is
// returned even when writing it fails.
func (p *Pipeline) Run(ctx context.Context, pattern string) (model.Report, error) {
	runID := p.newRunID()
	log := slog.With("run_id", runID)
	ctx, span := p.tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("pattern", pattern),
	))
	defer span.End()

	log.Info("reading logs", "step", "list", "pattern", pattern)
	paths, err := p.list(ctx, pattern)
	if err != nil {
		return model.Report{RunID: runID}, fail(span, fmt.Errorf("pipeline list: %w", err))
	}
	log.Info("listed objects", "step", "list", "files", len(paths))

	log.Info("extracting fields", "step", "extract", "workers", p.workers)
	start := time.Now()
	tl, scan, err := p.scan(ctx, paths)
	if err != nil {
		return model.Report{RunID: runID, Scan: scan}, fail(span, fmt.Errorf("pipeline scan: %w", err))
	}
	log.Info("extracted fields",
		"step", "extract",
		"files", scan.Files,
		"size", humanize.Bytes(uint64(scan.Bytes)),
		"lines", scan.Lines,
		"kept", scan.Kept,
		"no_timestamp", scan.NoTimestamp,
		"unparsable", scan.Unparsable,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	if scan.EmptyIDs > 0 {
		log.Warn("records with unmatched path identifiers", "step", "extract", "count", scan.EmptyIDs)
	}

	log.Info("generating timeline", "step", "aggregate")
	report := p.engine.Report(runID, tl, scan)
	span.SetAttributes(
		attribute.Int("applications", len(report.Timeline)),
		attribute.Int("clusters", len(report.Clusters)),
	)

	log.Info("writing reports", "step", "write", "applications", len(report.Timeline), "clusters", len(report.Clusters))
	if err := p.write(ctx, report); err != nil {
		return report, fail(span, fmt.Errorf("pipeline output: %w", err))
	}
	return report, nil
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}

func (p *Pipeline) list(ctx context.Context, pattern string) ([]string, error) {
	ctx, span := p.tracer.Start(ctx, "list")
	defer span.End()
	paths, err := p.connector.List(ctx, pattern)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("files", len(paths)))
	return paths, nil
}

// scan reads paths with up to p.workers goroutines. Each worker folds into
// its own timeline; partials are merged once all workers finish.
func (p *Pipeline) scan(ctx context.Context, paths []string) (*aggregate.Timeline, model.ScanStats, error) {
	ctx, span := p.tracer.Start(ctx, "scan")
	defer span.End()

	workers := p.workers
	if workers > len(paths) {
		workers = len(paths)
	}

	partials := make([]*aggregate.Timeline, workers)
	stats := make([]model.ScanStats, workers)
	work := make(chan string)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(work)
		for _, path := range paths {
			select {
			case work <- path:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for i := 0; i < workers; i++ {
		partials[i] = aggregate.NewTimeline()
		g.Go(func() error {
			for path := range work {
				st, err := p.scanFile(gctx, path, partials[i])
				stats[i].Add(st)
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	err := g.Wait()

	merged := aggregate.NewTimeline()
	var total model.ScanStats
	for i := range partials {
		merged.Merge(partials[i])
		total.Add(stats[i])
	}
	span.SetAttributes(
		attribute.Int("lines", total.Lines),
		attribute.Int("kept", total.Kept),
		attribute.Int("applications", merged.Len()),
	)
	if err != nil {
		return merged, total, fail(span, err)
	}
	return merged, total, nil
}

func (p *Pipeline) scanFile(ctx context.Context, path string, tl *aggregate.Timeline) (model.ScanStats, error) {
	rc, err := connector.OpenText(ctx, p.connector, path)
	if err != nil {
		return model.ScanStats{}, err
	}
	defer rc.Close()

	st, err := p.engine.ProcessReader(ctx, path, rc, tl)
	st.Files = 1
	if err != nil {
		return st, err
	}
	slog.Debug("scanned object", "path", path, "lines", st.Lines, "kept", st.Kept)
	return st, nil
}

func (p *Pipeline) write(ctx context.Context, report model.Report) error {
	ctx, span := p.tracer.Start(ctx, "write")
	defer span.End()
	if err := p.output.Write(ctx, report); err != nil {
		return fail(span, err)
	}
	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
