package types

import "time"

// LogEntry is the in-flight shape of a request log before it is persisted.
type LogEntry struct {
	ID              uint
	Method          string
	URL             string
	RequestBody     string
	ResponseBody    string
	RequestHeaders  string
	ResponseHeaders string
	StatusCode      int
	CreatedAt       time.Time
}
