package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/petrijr/wftrack/internal/persistence"
	"github.com/petrijr/wftrack/pkg/api"
)

// ChannelState is the commit state of a Channel.
type ChannelState int

const (
	// StateUninitialized: no batch has been committed yet.
	StateUninitialized ChannelState = iota
	// StateCommitting: Commit ran and Complete has not been called.
	StateCommitting
	// StateCompleted: the last batch was completed. The next Commit starts
	// a new cycle.
	StateCompleted
)

func (s ChannelState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCommitting:
		return "committing"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("ChannelState(%d)", int(s))
	}
}

// Channel tracks one workflow instance. It translates runtime events into
// records, collects them into a pending batch and writes batches to the
// instance log when the runtime commits.
//
// A Channel is safe for concurrent use, but the instance log assumes one
// writer: open at most one channel per instance.
type Channel struct {
	svc        *Service
	instanceID string
	profile    api.TrackingProfile

	mu      sync.Mutex
	pending api.Batch
	helper  *persistence.Persistence
	state   ChannelState
}

var (
	_ api.PendingWork = (*Channel)(nil)
	_ api.EventSink   = (*Channel)(nil)
)

// InstanceID returns the tracked instance id.
func (c *Channel) InstanceID() string { return c.instanceID }

// State returns the current commit state.
func (c *Channel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns a copy of the batch collected since the last Flush.
func (c *Channel) Pending() api.Batch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(api.Batch(nil), c.pending...)
}

func (c *Channel) OnEvent(ctx context.Context, ev api.Event) (api.Record, bool, error) {
	if ev == nil {
		return nil, false, errors.New("nil event")
	}
	if !c.profile.Tracks(ev) {
		return nil, false, nil
	}

	rec, err := c.translate(ev)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.pending = append(c.pending, rec)
	c.mu.Unlock()
	return rec, true, nil
}

func (c *Channel) translate(ev api.Event) (api.Record, error) {
	base := api.TrackRecord{
		At:       ev.EventTime().Local(),
		Order:    ev.EventOrder(),
		Host:     c.svc.session.HostID,
		ThreadID: c.svc.session.ThreadID(),
	}

	switch e := ev.(type) {
	case api.WorkflowTrackingEvent:
		return &api.WorkflowRecord{TrackRecord: base, Event: e.Event}, nil
	case api.ActivityTrackingEvent:
		rec := &api.ActivityRecord{
			TrackRecord:   base,
			QualifiedName: e.QualifiedName,
			TypeName:      e.TypeName,
			Status:        e.Status,
		}
		if p, ok := payload(e, api.FieldTask); ok {
			rec.Task = p
		}
		if p, ok := payload(e, api.FieldRequestedTaskStatusInfo); ok {
			rec.StatusUpdate = p
		}
		return rec, nil
	case api.UserTrackingEvent:
		data := ""
		if e.Data != nil {
			data = fmt.Sprint(e.Data)
		}
		return &api.UserRecord{TrackRecord: base, Key: e.Key, Data: data}, nil
	default:
		return nil, fmt.Errorf("%w: %T", api.ErrUnknownRecordKind, ev)
	}
}

// payload returns the body item named field when it carries task data. Nil
// values, including typed nil pointers, carry none.
func payload(e api.ActivityTrackingEvent, field string) (api.TaskPayload, bool) {
	d, ok := e.Item(field)
	if !ok {
		return nil, false
	}
	p, ok := d.(api.TaskPayload)
	if !ok || isNil(p) {
		return nil, false
	}
	return p, true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// MustCommit always asks the runtime to commit: tracking data is never
// optional.
func (c *Channel) MustCommit(batch api.Batch) bool { return true }

// Commit writes batch to the instance log and mirrors it into the record
// index. The persistence helper is created on first use and released by
// Complete.
func (c *Channel) Commit(ctx context.Context, batch api.Batch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateCommitting {
		return fmt.Errorf("commit %s: %w: previous batch not completed", c.instanceID, api.ErrChannelState)
	}
	c.state = StateCommitting

	if c.helper == nil {
		h, err := persistence.Open(c.svc.dir, c.instanceID, c.svc.store)
		if err != nil {
			c.svc.observer.OnBatchFailed(ctx, c.instanceID, err)
			return fmt.Errorf("commit %s: %w", c.instanceID, err)
		}
		c.helper = h
	}

	start := time.Now()
	res, err := c.helper.Log.Persist(ctx, batch)
	if err != nil {
		c.svc.observer.OnBatchFailed(ctx, c.instanceID, err)
		return fmt.Errorf("commit %s: %w", c.instanceID, err)
	}
	c.svc.observer.OnBatchCommitted(ctx, c.instanceID, len(batch), res.Status, time.Since(start))

	status := res.Status
	if status == "" && res.Created {
		status = api.StatusCreated
	}
	if err := c.svc.index.IndexBatch(ctx, c.instanceID, status, res.Records); err != nil {
		c.svc.logger.WarnContext(ctx, "index_batch_failed",
			slog.String("instance_id", c.instanceID),
			slog.Any("error", err),
		)
		c.svc.observer.OnIndexFailed(ctx, c.instanceID, err)
	}
	return nil
}

// Complete ends the current batch and releases the persistence helper.
func (c *Channel) Complete(ctx context.Context, succeeded bool, batch api.Batch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.helper != nil {
		_ = c.helper.Close()
		c.helper = nil
	}
	c.state = StateCompleted

	if !succeeded {
		c.svc.logger.WarnContext(ctx, "batch_not_committed",
			slog.String("instance_id", c.instanceID),
			slog.Int("records", len(batch)),
		)
	}
}

// Flush runs MustCommit, Commit and Complete over the pending batch. A
// failed batch is dropped; retrying is up to the runtime.
func (c *Channel) Flush(ctx context.Context) error {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(batch) == 0 || !c.MustCommit(batch) {
		return nil
	}
	err := c.Commit(ctx, batch)
	if errors.Is(err, api.ErrChannelState) {
		// The open cycle belongs to another Commit; leave it for its Complete.
		return err
	}
	c.Complete(ctx, err == nil, batch)
	return err
}
