package model

import (
	"errors"
	"time"
)

// TimeLayout is the timestamp rendering used in the CSV reports.
const TimeLayout = "2006-01-02 15:04:05"

// ErrNoClusters is returned when statistics are requested for an empty run.
var ErrNoClusters = errors.New("no clusters found")

// TimelineRow is the observed span of one application.
type TimelineRow struct {
	ClusterID     string    `json:"cluster_id"`
	ApplicationID string    `json:"application_id"`
	AppNumber     string    `json:"app_number"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

// Duration returns EndTime - StartTime.
func (r TimelineRow) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// ClusterSummary is the span and application count of one cluster.
type ClusterSummary struct {
	ClusterID       string    `json:"cluster_id"`
	FirstApp        time.Time `json:"cluster_first_app"`
	LastApp         time.Time `json:"cluster_last_app"`
	NumApplications int       `json:"num_applications"`
}

// ScanStats counts what happened to the input during extraction.
type ScanStats struct {
	Files       int   `json:"files"`
	Bytes       int64 `json:"bytes"`
	Lines       int   `json:"lines"`
	Kept        int   `json:"kept"`
	NoTimestamp int   `json:"no_timestamp"`
	Unparsable  int   `json:"unparsable"`
	EmptyIDs    int   `json:"empty_ids"` // kept or dropped depending on strict mode
}

// Add accumulates o into s.
func (s *ScanStats) Add(o ScanStats) {
	s.Files += o.Files
	s.Bytes += o.Bytes
	s.Lines += o.Lines
	s.Kept += o.Kept
	s.NoTimestamp += o.NoTimestamp
	s.Unparsable += o.Unparsable
	s.EmptyIDs += o.EmptyIDs
}

// Report is the output of one extraction run.
type Report struct {
	RunID    string           `json:"run_id"`
	Timeline []TimelineRow    `json:"-"`
	Clusters []ClusterSummary `json:"clusters"`
	Scan     ScanStats        `json:"scan"`
}

// Stats are the three scalar figures written to the stats file.
type Stats struct {
	Clusters      int     `json:"clusters"`
	Applications  int     `json:"applications"`
	AvgPerCluster float64 `json:"avg_applications_per_cluster"`
}

// Stats computes the report's scalar statistics. It returns ErrNoClusters
// when the report holds no cluster rows.
func (r Report) Stats() (Stats, error) {
	st := Stats{
		Clusters:     len(r.Clusters),
		Applications: len(r.Timeline),
	}
	if st.Clusters == 0 {
		return st, ErrNoClusters
	}
	st.AvgPerCluster = float64(st.Applications) / float64(st.Clusters)
	return st, nil
}
