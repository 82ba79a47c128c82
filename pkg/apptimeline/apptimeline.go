package apptimeline

import (
	"context"
	"fmt"

	"github.com/crimson-sun/apptimeline/internal/connector"
	"github.com/crimson-sun/apptimeline/internal/engine"
	"github.com/crimson-sun/apptimeline/internal/engine/extract"
	"github.com/crimson-sun/apptimeline/internal/model"
	"github.com/crimson-sun/apptimeline/internal/output/multi"
	"github.com/crimson-sun/apptimeline/internal/pipeline"

	_ "github.com/crimson-sun/apptimeline/internal/connector/local"
	_ "github.com/crimson-sun/apptimeline/internal/connector/s3"
)

// ErrNoClusters is returned when no application identifiers were found.
var ErrNoClusters = model.ErrNoClusters

var lineExtractor = extract.New(false)

// ParseLine extracts the identifiers of path and the leading timestamp of
// line. ok is false when line does not start with a yy/MM/dd HH:mm:ss
// timestamp. Identifiers may be empty when path does not name an
// application.
func ParseLine(path, line string) (rec Record, ok bool) {
	parsed, outcome := lineExtractor.Extract(model.LogRecord{Path: path, Line: line})
	if outcome != extract.Kept {
		return Record{}, false
	}
	return toRecord(parsed), true
}

// Analyze reads every object matching pattern and returns the application
// timeline and cluster summary. Reports are not written anywhere.
func Analyze(ctx context.Context, pattern string, opts ...Option) (Report, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctor, err := connector.Resolve(pattern)
	if err != nil {
		return Report{}, fmt.Errorf("apptimeline: %w", err)
	}
	conn, err := ctor(connector.ConnectorConfig{
		Endpoint:  o.endpoint,
		Region:    o.region,
		AccessKey: o.accessKey,
		SecretKey: o.secretKey,
		UseSSL:    !o.insecure,
	})
	if err != nil {
		return Report{}, fmt.Errorf("apptimeline: %w", err)
	}

	p := pipeline.New(conn, engine.New(extract.New(o.strictIDs)), multi.New(), pipeline.WithWorkers(o.workers))
	defer p.Close()

	rep, err := p.Run(ctx, pattern)
	if err != nil {
		return Report{}, fmt.Errorf("apptimeline: %w", err)
	}
	return toReport(rep), nil
}
