package wftrack

import (
	"context"
	"errors"
	"log/slog"

	"github.com/petrijr/wftrack/internal/config"
	"github.com/petrijr/wftrack/internal/logging"
	"github.com/petrijr/wftrack/internal/persistence"
	"github.com/petrijr/wftrack/internal/query"
	"github.com/petrijr/wftrack/internal/tracking"
	"github.com/petrijr/wftrack/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Record          = api.Record
	TrackRecord     = api.TrackRecord
	WorkflowRecord  = api.WorkflowRecord
	ActivityRecord  = api.ActivityRecord
	UserRecord      = api.UserRecord
	Batch           = api.Batch
	InstanceHistory = api.InstanceHistory
	ActivitySummary = api.ActivitySummary
	Activity        = api.Activity
	TaskPayload     = api.TaskPayload
	TaskInfo        = api.TaskInfo
	Event           = api.Event
	DataItem        = api.DataItem

	WorkflowTrackingEvent = api.WorkflowTrackingEvent
	ActivityTrackingEvent = api.ActivityTrackingEvent
	UserTrackingEvent     = api.UserTrackingEvent

	WorkflowEvent  = api.WorkflowEvent
	InstanceStatus = api.InstanceStatus
	ActivityStatus = api.ActivityStatus

	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver

	Service       = tracking.Service
	ServiceConfig = tracking.Config
	Session       = tracking.Session
	Channel       = tracking.Channel
	ChannelParams = tracking.ChannelParams
	QueryManager  = query.Manager
	InstanceFile  = query.InstanceFile
	RecordIndex   = persistence.RecordIndex
	Config        = config.Config
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export status values for convenience.

const (
	StatusCreated    = api.StatusCreated
	StatusRunning    = api.StatusRunning
	StatusSuspended  = api.StatusSuspended
	StatusCompleted  = api.StatusCompleted
	StatusTerminated = api.StatusTerminated
)

// NewService returns a tracking service writing instance logs to
// cfg.LogLocation.
func NewService(cfg ServiceConfig) (*Service, error) {
	return tracking.NewService(cfg)
}

// NewQueryManager returns a reader for tracking logs. A nil logger uses
// slog.Default().
func NewQueryManager(logger *slog.Logger) *QueryManager {
	return query.New(logger)
}

// NewMemoryRecordIndex returns an in-process RecordIndex.
func NewMemoryRecordIndex() RecordIndex {
	return persistence.NewMemoryRecordIndex()
}

// LoadConfig reads and validates configuration from path, WFTRACK_*
// environment variables and defaults. An empty path searches .wftrack.yaml
// in the working directory and ~/.config/wftrack.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Open builds a Service from cfg: it constructs the logger, opens the
// configured record index and wires a LoggingObserver. obs, when non-nil, is
// combined with the logging observer. The returned close function releases
// the index.
func Open(ctx context.Context, cfg *Config, obs Observer) (*Service, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	idx, closeIndex, err := config.OpenIndex(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	observer := NewLoggingObserver(logger)
	if obs != nil {
		observer = NewCompositeObserver(observer, obs)
	}

	svc, err := tracking.NewService(tracking.Config{
		LogLocation:      cfg.LogLocation,
		ConnectionString: cfg.PersistenceConnectionString,
		Session:          tracking.Session{HostID: cfg.HostID},
		Index:            idx,
		Observer:         observer,
		Logger:           logger,
	})
	if err != nil {
		return nil, nil, errors.Join(err, closeIndex())
	}
	return svc, closeIndex, nil
}
