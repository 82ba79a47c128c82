package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/apptimeline/internal/engine/aggregate"
	"github.com/crimson-sun/apptimeline/internal/engine/extract"
	"github.com/crimson-sun/apptimeline/internal/model"
)

const (
	app1 = "data/application_1443635451332_0001/container_1443635451332_0001_01_000001/stderr"
	app2 = "data/application_1443635451332_0002/container_1443635451332_0002_01_000001/stderr"
)

func TestProcessBatchCounters(t *testing.T) {
	eng := New(extract.New(false))
	recs := []model.LogRecord{
		{Path: app1, Line: "15/09/10 10:33:01 INFO starting"},
		{Path: app1, Line: "\tat org.apache.spark.Foo"},
		{Path: app1, Line: "15/13/10 10:33:01 bad month"},
		{Path: "data/misc/stderr", Line: "15/09/10 10:34:00 INFO orphan"},
		{Path: app1, Line: "15/09/10 10:40:00 INFO done"},
	}

	tl, st := eng.processBatch(recs)

	want := model.ScanStats{Lines: 5, Kept: 3, NoTimestamp: 1, Unparsable: 1, EmptyIDs: 1}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}
	if tl.Len() != 2 {
		t.Fatalf("timeline groups = %d, want 2 (one empty-key group)", tl.Len())
	}
}

func TestProcessBatchStrictIDs(t *testing.T) {
	eng := New(extract.New(true))
	tl, st := eng.processBatch([]model.LogRecord{
		{Path: "data/misc/stderr", Line: "15/09/10 10:34:00 INFO orphan"},
		{Path: app1, Line: "15/09/10 10:33:01 INFO starting"},
	})
	if st.Kept != 1 || st.EmptyIDs != 1 {
		t.Fatalf("stats = %+v, want Kept=1 EmptyIDs=1", st)
	}
	if tl.Len() != 1 {
		t.Fatalf("timeline groups = %d, want 1", tl.Len())
	}
}

func TestProcessReader(t *testing.T) {
	eng := New(extract.New(false))
	tl := aggregate.NewTimeline()
	input := strings.Join([]string{
		"15/09/10 10:00:00 INFO a",
		"continuation line",
		"15/09/10 10:10:00 INFO b\r",
		"",
	}, "\n")

	st, err := eng.ProcessReader(context.Background(), app1, strings.NewReader(input), tl)
	if err != nil {
		t.Fatalf("ProcessReader error: %v", err)
	}
	if st.Lines != 3 || st.Kept != 2 || st.NoTimestamp != 1 {
		t.Fatalf("stats = %+v", st)
	}
	rows := tl.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if d := rows[0].Duration(); d != 10*time.Minute {
		t.Fatalf("duration = %v, want 10m", d)
	}
}

func TestProcessReaderCancelled(t *testing.T) {
	eng := New(extract.New(false))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.ProcessReader(ctx, app1, strings.NewReader("15/09/10 10:00:00 INFO a\n"), aggregate.NewTimeline())
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestReportBuildsClusterSummary(t *testing.T) {
	eng := New(extract.New(false))
	tl, st := eng.processBatch([]model.LogRecord{
		{Path: app1, Line: "15/09/10 10:00:00 INFO"},
		{Path: app1, Line: "15/09/10 10:10:00 INFO"},
		{Path: app2, Line: "15/09/10 10:05:00 INFO"},
		{Path: app2, Line: "15/09/10 10:20:00 INFO"},
	})

	rep := eng.Report("run-1", tl, st)
	if rep.RunID != "run-1" {
		t.Errorf("RunID = %q", rep.RunID)
	}
	if len(rep.Timeline) != 2 {
		t.Fatalf("timeline rows = %d, want 2", len(rep.Timeline))
	}
	if len(rep.Clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(rep.Clusters))
	}
	cs := rep.Clusters[0]
	if cs.ClusterID != "1443635451332" || cs.NumApplications != 2 {
		t.Fatalf("cluster = %+v", cs)
	}
	if got := cs.FirstApp.Format("15:04"); got != "10:00" {
		t.Errorf("FirstApp = %s, want 10:00", got)
	}
	if got := cs.LastApp.Format("15:04"); got != "10:20" {
		t.Errorf("LastApp = %s, want 10:20", got)
	}
}
