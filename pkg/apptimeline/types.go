package apptimeline

import (
	"time"

	"github.com/crimson-sun/apptimeline/internal/model"
)

// Record is one log line reduced to its identifiers and timestamp.
type Record struct {
	ClusterID     string    `json:"cluster_id"`     // e.g. 1443635451332
	ApplicationID string    `json:"application_id"` // e.g. application_1443635451332_0001
	AppNumber     string    `json:"app_number"`     // e.g. 0001
	Timestamp     time.Time `json:"timestamp"`      // UTC
}

// Application is the observed lifetime of one application.
type Application struct {
	ClusterID     string    `json:"cluster_id"`
	ApplicationID string    `json:"application_id"`
	AppNumber     string    `json:"app_number"`
	Start         time.Time `json:"start_time"`
	End           time.Time `json:"end_time"`
}

// Duration returns End - Start.
func (a Application) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Cluster summarizes the applications of one cluster.
type Cluster struct {
	ID           string    `json:"cluster_id"`
	FirstApp     time.Time `json:"cluster_first_app"` // earliest start
	LastApp      time.Time `json:"cluster_last_app"`  // latest end
	Applications int       `json:"num_applications"`
}

// Report is the result of Analyze. Both slices are sorted by cluster id;
// applications are then sorted by app number.
type Report struct {
	RunID        string        `json:"run_id"`
	Applications []Application `json:"applications"`
	Clusters     []Cluster     `json:"clusters"`
	Lines        int           `json:"lines"` // lines read
	Kept         int           `json:"kept"`  // lines that carried a timestamp
}

// AveragePerCluster returns applications per cluster, or ErrNoClusters when
// the report is empty.
func (r Report) AveragePerCluster() (float64, error) {
	if len(r.Clusters) == 0 {
		return 0, ErrNoClusters
	}
	return float64(len(r.Applications)) / float64(len(r.Clusters)), nil
}

func toRecord(p model.ParsedRecord) Record {
	return Record{
		ClusterID:     p.ClusterID,
		ApplicationID: p.ApplicationID,
		AppNumber:     p.AppNumber,
		Timestamp:     p.Timestamp,
	}
}

func toReport(r model.Report) Report {
	out := Report{RunID: r.RunID, Lines: r.Scan.Lines, Kept: r.Scan.Kept}
	for _, row := range r.Timeline {
		out.Applications = append(out.Applications, Application{
			ClusterID:     row.ClusterID,
			ApplicationID: row.ApplicationID,
			AppNumber:     row.AppNumber,
			Start:         row.StartTime,
			End:           row.EndTime,
		})
	}
	for _, cs := range r.Clusters {
		out.Clusters = append(out.Clusters, Cluster{
			ID:           cs.ClusterID,
			FirstApp:     cs.FirstApp,
			LastApp:      cs.LastApp,
			Applications: cs.NumApplications,
		})
	}
	return out
}
