package aggregate

import (
	"testing"
	"time"

	"github.com/crimson-sun/apptimeline/internal/model"
)

var t0 = time.Date(2015, 9, 10, 10, 0, 0, 0, time.UTC)

func record(cluster, app string, offset time.Duration) model.ParsedRecord {
	return model.ParsedRecord{
		ClusterID:     cluster,
		ApplicationID: "application_" + cluster + "_" + app,
		AppNumber:     app,
		Timestamp:     t0.Add(offset),
	}
}

func TestTimelineEmpty(t *testing.T) {
	tl := NewTimeline()
	if rows := tl.Rows(); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
	if got := Summarize(nil); got != nil {
		t.Fatalf("expected nil summary, got %v", got)
	}
}

func TestTimelineMinMaxPerApplication(t *testing.T) {
	tl := NewTimeline()
	tl.Add(record("100", "0001", 5*time.Minute))
	tl.Add(record("100", "0001", 0))
	tl.Add(record("100", "0001", 10*time.Minute))
	tl.Add(record("100", "0001", 3*time.Minute))

	rows := tl.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if !rows[0].StartTime.Equal(t0) {
		t.Errorf("StartTime = %v, want %v", rows[0].StartTime, t0)
	}
	if !rows[0].EndTime.Equal(t0.Add(10 * time.Minute)) {
		t.Errorf("EndTime = %v, want %v", rows[0].EndTime, t0.Add(10*time.Minute))
	}
}

func TestTimelineOrdering(t *testing.T) {
	tl := NewTimeline()
	tl.Add(record("200", "0002", 0))
	tl.Add(record("100", "0010", 0))
	tl.Add(record("200", "0001", 0))
	tl.Add(record("100", "0009", 0))
	tl.Add(record("", "", 0))

	rows := tl.Rows()
	want := []AppKey{
		{"", "application__", ""},
		{"100", "application_100_0009", "0009"},
		{"100", "application_100_0010", "0010"},
		{"200", "application_200_0001", "0001"},
		{"200", "application_200_0002", "0002"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, w := range want {
		got := AppKey{rows[i].ClusterID, rows[i].ApplicationID, rows[i].AppNumber}
		if got != w {
			t.Errorf("row %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestTimelineStartNotAfterEnd(t *testing.T) {
	tl := NewTimeline()
	offsets := []time.Duration{7, 3, 9, 1, 4, 8}
	for i, off := range offsets {
		app := "0001"
		if i%2 == 1 {
			app = "0002"
		}
		tl.Add(record("100", app, off*time.Minute))
	}
	for _, r := range tl.Rows() {
		if r.StartTime.After(r.EndTime) {
			t.Errorf("row %s: start %v after end %v", r.ApplicationID, r.StartTime, r.EndTime)
		}
	}
}

func TestMergeMatchesSinglePass(t *testing.T) {
	records := []model.ParsedRecord{
		record("100", "0001", 4*time.Minute),
		record("100", "0001", 1*time.Minute),
		record("100", "0002", 2*time.Minute),
		record("300", "0001", 9*time.Minute),
		record("100", "0001", 8*time.Minute),
		record("300", "0001", 0),
	}

	single := NewTimeline()
	for _, r := range records {
		single.Add(r)
	}

	a, b := NewTimeline(), NewTimeline()
	for i, r := range records {
		if i%2 == 0 {
			a.Add(r)
		} else {
			b.Add(r)
		}
	}
	a.Merge(b)

	want, got := single.Rows(), a.Rows()
	if len(got) != len(want) {
		t.Fatalf("merged rows = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSummarizeTwoOverlappingApplications(t *testing.T) {
	rows := []model.TimelineRow{
		{ClusterID: "100", ApplicationID: "application_100_0001", AppNumber: "0001",
			StartTime: t0, EndTime: t0.Add(10 * time.Minute)},
		{ClusterID: "100", ApplicationID: "application_100_0002", AppNumber: "0002",
			StartTime: t0.Add(5 * time.Minute), EndTime: t0.Add(20 * time.Minute)},
	}

	got := Summarize(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(got))
	}
	cs := got[0]
	if !cs.FirstApp.Equal(t0) {
		t.Errorf("FirstApp = %v, want %v", cs.FirstApp, t0)
	}
	if !cs.LastApp.Equal(t0.Add(20 * time.Minute)) {
		t.Errorf("LastApp = %v, want %v", cs.LastApp, t0.Add(20*time.Minute))
	}
	if cs.NumApplications != 2 {
		t.Errorf("NumApplications = %d, want 2", cs.NumApplications)
	}
}

func TestSummarizeCountsMatchTimeline(t *testing.T) {
	tl := NewTimeline()
	for _, c := range []string{"100", "200", "300"} {
		for _, app := range []string{"0001", "0002", "0003"} {
			if c == "300" && app != "0001" {
				continue
			}
			tl.Add(record(c, app, 0))
		}
	}
	rows := tl.Rows()
	summary := Summarize(rows)

	total := 0
	for i, cs := range summary {
		if cs.NumApplications < 1 {
			t.Errorf("cluster %s has %d applications", cs.ClusterID, cs.NumApplications)
		}
		if i > 0 && summary[i-1].ClusterID >= cs.ClusterID {
			t.Errorf("summary not ordered at %d: %s >= %s", i, summary[i-1].ClusterID, cs.ClusterID)
		}
		total += cs.NumApplications
	}
	if total != len(rows) {
		t.Fatalf("sum of num_applications = %d, want %d", total, len(rows))
	}

	counts := CountByCluster(rows)
	if counts["100"] != 3 || counts["200"] != 3 || counts["300"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
