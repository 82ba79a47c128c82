package aggregate

import (
	"sort"
	"time"

	"github.com/crimson-sun/apptimeline/internal/model"
)

// AppKey identifies one application.
type AppKey struct {
	ClusterID     string
	ApplicationID string
	AppNumber     string
}

// span accumulates the earliest and latest timestamp of a group.
type span struct {
	first  time.Time
	latest time.Time
}

func (s *span) observe(ts time.Time) {
	if ts.Before(s.first) {
		s.first = ts
	}
	if ts.After(s.latest) {
		s.latest = ts
	}
}

// Timeline groups parsed records by application. Not safe for concurrent
// use; build one per worker and Merge them.
type Timeline struct {
	groups map[AppKey]*span
}

// NewTimeline creates an empty Timeline.
func NewTimeline() *Timeline {
	return &Timeline{groups: make(map[AppKey]*span)}
}

// Add folds one record into its application group.
func (t *Timeline) Add(r model.ParsedRecord) {
	key := AppKey{ClusterID: r.ClusterID, ApplicationID: r.ApplicationID, AppNumber: r.AppNumber}
	if g, ok := t.groups[key]; ok {
		g.observe(r.Timestamp)
		return
	}
	t.groups[key] = &span{first: r.Timestamp, latest: r.Timestamp}
}

// Merge folds every group of o into t.
func (t *Timeline) Merge(o *Timeline) {
	for key, og := range o.groups {
		g, ok := t.groups[key]
		if !ok {
			t.groups[key] = &span{first: og.first, latest: og.latest}
			continue
		}
		g.observe(og.first)
		g.observe(og.latest)
	}
}

// Len returns the number of distinct applications.
func (t *Timeline) Len() int {
	return len(t.groups)
}

// Rows returns one row per application, ordered by cluster id then app
// number as strings. Application id breaks remaining ties.
func (t *Timeline) Rows() []model.TimelineRow {
	rows := make([]model.TimelineRow, 0, len(t.groups))
	for key, g := range t.groups {
		rows = append(rows, model.TimelineRow{
			ClusterID:     key.ClusterID,
			ApplicationID: key.ApplicationID,
			AppNumber:     key.AppNumber,
			StartTime:     g.first,
			EndTime:       g.latest,
		})
	}
	SortRows(rows)
	return rows
}

// SortRows orders timeline rows the way Rows does.
func SortRows(rows []model.TimelineRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ClusterID != b.ClusterID {
			return a.ClusterID < b.ClusterID
		}
		if a.AppNumber != b.AppNumber {
			return a.AppNumber < b.AppNumber
		}
		return a.ApplicationID < b.ApplicationID
	})
}

// Summarize groups timeline rows by cluster: earliest start, latest end and
// application count. Output is ordered by cluster id.
func Summarize(rows []model.TimelineRow) []model.ClusterSummary {
	if len(rows) == 0 {
		return nil
	}

	byCluster := make(map[string]*model.ClusterSummary)
	var order []string
	for _, r := range rows {
		cs, ok := byCluster[r.ClusterID]
		if !ok {
			byCluster[r.ClusterID] = &model.ClusterSummary{
				ClusterID:       r.ClusterID,
				FirstApp:        r.StartTime,
				LastApp:         r.EndTime,
				NumApplications: 1,
			}
			order = append(order, r.ClusterID)
			continue
		}
		if r.StartTime.Before(cs.FirstApp) {
			cs.FirstApp = r.StartTime
		}
		if r.EndTime.After(cs.LastApp) {
			cs.LastApp = r.EndTime
		}
		cs.NumApplications++
	}

	sort.Strings(order)
	result := make([]model.ClusterSummary, 0, len(order))
	for _, id := range order {
		result = append(result, *byCluster[id])
	}
	return result
}

// CountByCluster returns the number of applications per cluster.
func CountByCluster(rows []model.TimelineRow) map[string]int {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.ClusterID]++
	}
	return counts
}
