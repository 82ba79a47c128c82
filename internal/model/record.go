package model

import "time"

// LogRecord is one raw line read from a source object.
type LogRecord struct {
	Path string // full object path or URI, e.g. s3a://bucket/data/application_.../stderr
	Line string
}

// ParsedRecord is a LogRecord with identifiers taken from its path and a
// timestamp taken from its leading date-time token.
type ParsedRecord struct {
	ClusterID     string
	ApplicationID string
	AppNumber     string
	Timestamp     time.Time
}

// HasIDs reports whether every path identifier was captured.
func (r ParsedRecord) HasIDs() bool {
	return r.ClusterID != "" && r.ApplicationID != "" && r.AppNumber != ""
}
