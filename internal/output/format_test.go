package output

import (
	"testing"
	"time"

	"github.com/crimson-sun/apptimeline/internal/model"
)

func TestFormatTimeUTC(t *testing.T) {
	loc := time.FixedZone("EDT", -4*3600)
	ts := time.Date(2015, 9, 10, 6, 33, 1, 0, loc)
	if got := FormatTime(ts); got != "2015-09-10 10:33:01" {
		t.Fatalf("FormatTime = %q", got)
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2015, 9, 10, 10, 33, 1, 0, time.UTC)
	for _, in := range []string{"2015-09-10 10:33:01", "2015-09-10T10:33:01Z", "2015-09-10T12:33:01+02:00"} {
		got, err := ParseTime(in)
		if err != nil {
			t.Fatalf("ParseTime(%q) error: %v", in, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseTime(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseTime("yesterday"); err == nil {
		t.Fatal("expected error for garbage timestamp")
	}
}

func TestRecords(t *testing.T) {
	start := time.Date(2015, 9, 10, 10, 0, 0, 0, time.UTC)
	row := model.TimelineRow{
		ClusterID: "1443635451332", ApplicationID: "application_1443635451332_0001", AppNumber: "0001",
		StartTime: start, EndTime: start.Add(time.Hour),
	}
	got := TimelineRecord(row)
	want := []string{"1443635451332", "application_1443635451332_0001", "0001", "2015-09-10 10:00:00", "2015-09-10 11:00:00"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TimelineRecord[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if len(got) != len(TimelineHeader) {
		t.Errorf("record has %d fields, header has %d", len(got), len(TimelineHeader))
	}

	cs := ClusterSummaryRecord(model.ClusterSummary{ClusterID: "1", FirstApp: start, LastApp: start, NumApplications: 12})
	if cs[3] != "12" || len(cs) != len(ClusterSummaryHeader) {
		t.Errorf("ClusterSummaryRecord = %v", cs)
	}
}

func TestStatsText(t *testing.T) {
	got := StatsText(model.Stats{Clusters: 6, Applications: 194, AvgPerCluster: 194.0 / 6})
	want := "Total unique clusters: 6\nTotal applications: 194\nAverage applications per cluster: 32.33\n"
	if got != want {
		t.Fatalf("StatsText = %q, want %q", got, want)
	}
}

func TestNewSummary(t *testing.T) {
	empty := NewSummary(model.Report{RunID: "r0"})
	if empty.Stats != nil {
		t.Errorf("empty report should have no stats, got %+v", empty.Stats)
	}
	if empty.Clusters == nil {
		t.Error("clusters should encode as [] rather than null")
	}

	s := NewSummary(model.Report{
		RunID:    "r1",
		Timeline: make([]model.TimelineRow, 3),
		Clusters: make([]model.ClusterSummary, 2),
	})
	if s.Stats == nil || s.Stats.Applications != 3 || s.Stats.AvgPerCluster != 1.5 {
		t.Errorf("stats = %+v", s.Stats)
	}
}
