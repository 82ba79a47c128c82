package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/crimson-sun/apptimeline/internal/engine/aggregate"
	"github.com/crimson-sun/apptimeline/internal/engine/extract"
	"github.com/crimson-sun/apptimeline/internal/model"
)

const (
	initialLineBuf = 64 * 1024
	maxLineSize    = 16 * 1024 * 1024
	ctxCheckEvery  = 4096
)

// Engine orchestrates the extract → aggregate steps.
type Engine struct {
	extractor *extract.Extractor
}

// New creates an Engine with the provided extractor.
func New(ext *extract.Extractor) *Engine {
	return &Engine{extractor: ext}
}

// Process extracts one record and folds it into tl when it survives.
// The returned counters describe that single record.
func (e *Engine) Process(rec model.LogRecord, tl *aggregate.Timeline) model.ScanStats {
	st := model.ScanStats{Lines: 1}
	parsed, outcome := e.extractor.Extract(rec)
	switch outcome {
	case extract.NoTimestamp:
		st.NoTimestamp = 1
	case extract.Unparsable:
		st.Unparsable = 1
	case extract.EmptyIDs:
		st.EmptyIDs = 1
	case extract.Kept:
		if !parsed.HasIDs() {
			st.EmptyIDs = 1
		}
		st.Kept = 1
		tl.Add(parsed)
	}
	return st
}

// processBatch runs Process over a slice of records into a fresh timeline.
func (e *Engine) processBatch(recs []model.LogRecord) (*aggregate.Timeline, model.ScanStats) {
	tl := aggregate.NewTimeline()
	var st model.ScanStats
	for _, rec := range recs {
		st.Add(e.Process(rec, tl))
	}
	return tl, st
}

// ProcessReader scans r line by line, attributing every line to path.
func (e *Engine) ProcessReader(ctx context.Context, path string, r io.Reader, tl *aggregate.Timeline) (model.ScanStats, error) {
	var st model.ScanStats
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, initialLineBuf), maxLineSize)
	for sc.Scan() {
		if st.Lines%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
		}
		line := sc.Text()
		st.Bytes += int64(len(line)) + 1
		st.Add(e.Process(model.LogRecord{Path: path, Line: line}, tl))
	}
	if err := sc.Err(); err != nil {
		return st, fmt.Errorf("engine: scan %s: %w", path, err)
	}
	return st, nil
}

// Report assembles the timeline and cluster summary for a finished scan.
func (e *Engine) Report(runID string, tl *aggregate.Timeline, scan model.ScanStats) model.Report {
	rows := tl.Rows()
	return model.Report{
		RunID:    runID,
		Timeline: rows,
		Clusters: aggregate.Summarize(rows),
		Scan:     scan,
	}
}
