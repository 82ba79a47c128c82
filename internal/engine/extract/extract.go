package extract

import (
	"regexp"
	"time"

	"github.com/crimson-sun/apptimeline/internal/model"
)

// TimestampLayout is the leading date-time format of YARN container logs (yy/MM/dd HH:mm:ss).
const TimestampLayout = "06/01/02 15:04:05"

var (
	clusterRe     = regexp.MustCompile(`application_(\d+)_`)
	applicationRe = regexp.MustCompile(`(application_\d+_\d+)`)
	appNumberRe   = regexp.MustCompile(`application_\d+_(\d+)`)
	timestampRe   = regexp.MustCompile(`^(\d{2}/\d{2}/\d{2} \d{2}:\d{2}:\d{2})`)
)

// Outcome describes what Extract did with a record.
type Outcome int

const (
	Kept Outcome = iota
	NoTimestamp
	Unparsable
	EmptyIDs // dropped in strict mode only
)

// Extractor pulls identifiers and timestamps out of log records.
type Extractor struct {
	strictIDs bool
	loc       *time.Location
}

// New creates an Extractor. When strictIDs is set, records whose path does
// not yield all three identifiers are dropped instead of kept with empty keys.
func New(strictIDs bool) *Extractor {
	return &Extractor{strictIDs: strictIDs, loc: time.UTC}
}

// Extract parses one record. The returned record is only meaningful when
// the outcome is Kept.
func (e *Extractor) Extract(rec model.LogRecord) (model.ParsedRecord, Outcome) {
	ids := PathIDs(rec.Path)

	raw := capture(timestampRe, rec.Line)
	if raw == "" {
		return ids, NoTimestamp
	}
	ts, err := e.parseTimestamp(raw)
	if err != nil {
		return ids, Unparsable
	}
	ids.Timestamp = ts

	if e.strictIDs && !ids.HasIDs() {
		return ids, EmptyIDs
	}
	return ids, Kept
}

// PathIDs captures cluster id, application id and app number from a path.
// Each capture is independent; a miss leaves that field empty.
func PathIDs(path string) model.ParsedRecord {
	return model.ParsedRecord{
		ClusterID:     capture(clusterRe, path),
		ApplicationID: capture(applicationRe, path),
		AppNumber:     capture(appNumberRe, path),
	}
}

// parseTimestamp reads a yy/MM/dd token. Two-digit years always land in
// 2000-2099, unlike Go's 1969 pivot.
func (e *Extractor) parseTimestamp(s string) (time.Time, error) {
	ts, err := time.ParseInLocation(TimestampLayout, s, e.loc)
	if err != nil {
		return time.Time{}, err
	}
	if ts.Year() < 2000 {
		ts = ts.AddDate(100, 0, 0)
	}
	return ts, nil
}

func capture(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
