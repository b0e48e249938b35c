package telemetry

import "context"

// ProgressEvent is one job progress update.
type ProgressEvent struct {
	Percent int
	Message string
}

// ProgressReporter fans progress events into a buffered channel for
// in-process consumers (CLI output, dashboards). It implements
// ProgressSink, so it can stand in for an external job handle.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel
// of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
		// Drop the event if the channel is full.
	}
}

// UpdateProgress implements ProgressSink.
func (pr *ProgressReporter) UpdateProgress(_ context.Context, percent int, message string) error {
	pr.Emit(ProgressEvent{Percent: percent, Message: message})
	return nil
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}
