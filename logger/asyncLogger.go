package logger

import (
	log_model "parcel-delivery/models/log"
	"parcel-delivery/types"

	"gorm.io/gorm"
)

// AsyncLogger persists request/response logs off the request path through a
// buffered channel.
type AsyncLogger struct {
	db      *gorm.DB
	channel chan types.LogEntry
}

func NewAsyncLogger(db *gorm.DB) *AsyncLogger {
	return &AsyncLogger{
		db:      db,
		channel: make(chan types.LogEntry, 100),
	}
}

// ProcessLog drains the channel until Close is called, persisting each
// entry. Run it in its own goroutine.
func (logger *AsyncLogger) ProcessLog() {
	Info("Starting asynchronous request logger")

	for logEntry := range logger.channel {
		dbLog := log_model.Log{
			Method:          logEntry.Method,
			URL:             logEntry.URL,
			RequestBody:     logEntry.RequestBody,
			ResponseBody:    logEntry.ResponseBody,
			RequestHeaders:  logEntry.RequestHeaders,
			ResponseHeaders: logEntry.ResponseHeaders,
			StatusCode:      logEntry.StatusCode,
			CreatedAt:       logEntry.CreatedAt,
		}

		if err := logger.db.Create(&dbLog).Error; err != nil {
			Error("Failed to persist request log", err)
		}
	}

	Info("Request logger drained")
}

// Log enqueues an entry without blocking: when the buffer is full the entry
// is dropped, so slow log writes never stall request handling.
func (logger *AsyncLogger) Log(entry types.LogEntry) {
	select {
	case logger.channel <- entry:
	default:
		Warning("Request log buffer full, entry dropped: " + entry.Method + " " + entry.URL)
	}
}

// Close stops the processor once the buffered entries have been persisted.
func (logger *AsyncLogger) Close() {
	close(logger.channel)
}
