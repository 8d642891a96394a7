package logger

import (
	"testing"
	"time"

	"parcel-delivery/types"
)

func TestAsyncLoggerLogNeverBlocks(t *testing.T) {
	// No processor running: once the buffer fills, further entries must be
	// dropped rather than stall the caller.
	l := NewAsyncLogger(nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			l.Log(types.LogEntry{Method: "GET", URL: "/api/bookings"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Log blocked on a full buffer")
	}
}

func TestAsyncLoggerCloseStopsProcessor(t *testing.T) {
	l := NewAsyncLogger(nil)

	stopped := make(chan struct{})
	go func() {
		l.ProcessLog()
		close(stopped)
	}()

	l.Close()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessLog did not return after Close")
	}
}
