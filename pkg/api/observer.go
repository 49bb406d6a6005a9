package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from tracking channels for logging and metrics.
//
// Implementations should be fast and non-blocking; commits are synchronous
// and every callback runs on the committing goroutine.
type Observer interface {
	// OnBatchCommitted is called after a batch has been written to the
	// instance log. status is empty when the batch carried no status change.
	OnBatchCommitted(ctx context.Context, instanceID string, records int, status InstanceStatus, d time.Duration)

	// OnBatchFailed is called when writing a batch to the instance log failed.
	OnBatchFailed(ctx context.Context, instanceID string, err error)

	// OnDefinitionPersisted is called when a new or changed definition
	// document has been written for an instance.
	OnDefinitionPersisted(ctx context.Context, instanceID string, buildTime time.Time)

	// OnIndexFailed is called when mirroring a committed batch into the
	// secondary record index failed.
	OnIndexFailed(ctx context.Context, instanceID string, err error)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnBatchCommitted(ctx context.Context, instanceID string, n int, status InstanceStatus, d time.Duration) {
}
func (NoopObserver) OnBatchFailed(ctx context.Context, instanceID string, err error)             {}
func (NoopObserver) OnDefinitionPersisted(ctx context.Context, instanceID string, t time.Time) {}
func (NoopObserver) OnIndexFailed(ctx context.Context, instanceID string, err error)             {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnBatchCommitted(ctx context.Context, instanceID string, n int, status InstanceStatus, d time.Duration) {
	for _, o := range c.observers {
		o.OnBatchCommitted(ctx, instanceID, n, status, d)
	}
}

func (c *CompositeObserver) OnBatchFailed(ctx context.Context, instanceID string, err error) {
	for _, o := range c.observers {
		o.OnBatchFailed(ctx, instanceID, err)
	}
}

func (c *CompositeObserver) OnDefinitionPersisted(ctx context.Context, instanceID string, t time.Time) {
	for _, o := range c.observers {
		o.OnDefinitionPersisted(ctx, instanceID, t)
	}
}

func (c *CompositeObserver) OnIndexFailed(ctx context.Context, instanceID string, err error) {
	for _, o := range c.observers {
		o.OnIndexFailed(ctx, instanceID, err)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs tracking events using the
// provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnBatchCommitted(ctx context.Context, instanceID string, n int, status InstanceStatus, d time.Duration) {
	o.Logger.DebugContext(ctx, "batch_committed",
		slog.String("instance_id", instanceID),
		slog.Int("records", n),
		slog.String("status", string(status)),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver) OnBatchFailed(ctx context.Context, instanceID string, err error) {
	o.Logger.ErrorContext(ctx, "batch_failed",
		slog.String("instance_id", instanceID),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnDefinitionPersisted(ctx context.Context, instanceID string, t time.Time) {
	o.Logger.InfoContext(ctx, "definition_persisted",
		slog.String("instance_id", instanceID),
		slog.Time("build_time", t),
	)
}

func (o *LoggingObserver) OnIndexFailed(ctx context.Context, instanceID string, err error) {
	o.Logger.WarnContext(ctx, "index_failed",
		slog.String("instance_id", instanceID),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters and aggregate commit durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	batchesCommitted     atomic.Int64
	batchesFailed        atomic.Int64
	recordsWritten       atomic.Int64
	definitionsPersisted atomic.Int64
	indexFailures        atomic.Int64
	totalCommitDuration  atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	BatchesCommitted     int64
	BatchesFailed        int64
	RecordsWritten       int64
	DefinitionsPersisted int64
	IndexFailures        int64

	AvgCommitDuration time.Duration
}

func (m *BasicMetrics) OnBatchCommitted(ctx context.Context, instanceID string, n int, status InstanceStatus, d time.Duration) {
	m.batchesCommitted.Add(1)
	m.recordsWritten.Add(int64(n))
	m.totalCommitDuration.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnBatchFailed(ctx context.Context, instanceID string, err error) {
	m.batchesFailed.Add(1)
}

func (m *BasicMetrics) OnDefinitionPersisted(ctx context.Context, instanceID string, t time.Time) {
	m.definitionsPersisted.Add(1)
}

func (m *BasicMetrics) OnIndexFailed(ctx context.Context, instanceID string, err error) {
	m.indexFailures.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	committed := m.batchesCommitted.Load()
	totalNs := m.totalCommitDuration.Load()

	var avg time.Duration
	if committed > 0 {
		avg = time.Duration(totalNs / committed)
	}

	return BasicMetricsSnapshot{
		BatchesCommitted:     committed,
		BatchesFailed:        m.batchesFailed.Load(),
		RecordsWritten:       m.recordsWritten.Load(),
		DefinitionsPersisted: m.definitionsPersisted.Load(),
		IndexFailures:        m.indexFailures.Load(),
		AvgCommitDuration:    avg,
	}
}
