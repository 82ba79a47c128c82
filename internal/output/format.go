package output

import (
	"fmt"
	"strconv"
	"time"

	"github.com/crimson-sun/apptimeline/internal/model"
)

// CSV column sets of the two reports.
var (
	TimelineHeader       = []string{"cluster_id", "application_id", "app_number", "start_time", "end_time"}
	ClusterSummaryHeader = []string{"cluster_id", "cluster_first_app", "cluster_last_app", "num_applications"}
)

// FormatTime renders a timestamp the way the CSV reports store it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(model.TimeLayout)
}

// ParseTime reads a CSV timestamp. RFC 3339 is accepted as well so that
// hand-edited or converted reports still load.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(model.TimeLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q", s)
	}
	return t.UTC(), nil
}

// TimelineRecord converts a row to its CSV fields.
func TimelineRecord(r model.TimelineRow) []string {
	return []string{r.ClusterID, r.ApplicationID, r.AppNumber, FormatTime(r.StartTime), FormatTime(r.EndTime)}
}

// ClusterSummaryRecord converts a summary row to its CSV fields.
func ClusterSummaryRecord(c model.ClusterSummary) []string {
	return []string{c.ClusterID, FormatTime(c.FirstApp), FormatTime(c.LastApp), strconv.Itoa(c.NumApplications)}
}

// StatsText renders the three-line stats file.
func StatsText(s model.Stats) string {
	return fmt.Sprintf("Total unique clusters: %d\nTotal applications: %d\nAverage applications per cluster: %.2f\n",
		s.Clusters, s.Applications, s.AvgPerCluster)
}

// Summary is the JSON document emitted per report by the stdout and webhook
// sinks. The full timeline is left to the CSV report.
type Summary struct {
	RunID    string                 `json:"run_id"`
	Stats    *model.Stats           `json:"stats,omitempty"`
	Clusters []model.ClusterSummary `json:"clusters"`
	Scan     model.ScanStats        `json:"scan"`
}

// NewSummary builds the Summary of report. Stats are omitted when the report
// has no clusters.
func NewSummary(report model.Report) Summary {
	s := Summary{RunID: report.RunID, Clusters: report.Clusters, Scan: report.Scan}
	if s.Clusters == nil {
		s.Clusters = []model.ClusterSummary{}
	}
	if st, err := report.Stats(); err == nil {
		s.Stats = &st
	}
	return s
}
