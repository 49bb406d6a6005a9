package api

import "context"

// Batch is a set of records flushed together as one durable write.
type Batch []Record

// PendingWork is the two-phase durable-sink contract a tracking channel
// exposes to the host runtime.
//
// For each work batch the host calls MustCommit, then Commit, then Complete
// with the outcome of the surrounding transaction.
type PendingWork interface {
	// MustCommit reports whether the batch has to be committed. Tracking
	// channels always answer true.
	MustCommit(batch Batch) bool

	// Commit durably writes the batch. It blocks until the data is written
	// and the file handle released.
	Commit(ctx context.Context, batch Batch) error

	// Complete signals the end of the batch. succeeded is false when
	// Commit, or any other participant of the batch, failed.
	Complete(ctx context.Context, succeeded bool, batch Batch)
}

// EventSink receives raw runtime events for one workflow instance.
type EventSink interface {
	// OnEvent translates ev into a Record and adds it to the pending batch.
	// tracked is false when the profile filtered the event out.
	OnEvent(ctx context.Context, ev Event) (rec Record, tracked bool, err error)
}
