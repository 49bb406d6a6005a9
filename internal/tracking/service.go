// Package tracking connects a workflow runtime to the file-based tracking
// store. A Service hands out one Channel per workflow instance; the runtime
// feeds events into the channel and drives its two-phase commit.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/wftrack/internal/codec"
	"github.com/petrijr/wftrack/internal/persistence"
	"github.com/petrijr/wftrack/internal/topology"
	"github.com/petrijr/wftrack/pkg/api"
)

var storeNamePattern = regexp.MustCompile(`(?i)\bInitial\s*Catalog\s*=([^;]*)(;|$)`)

// StoreName extracts the database name from a persistence connection
// string ("...;Initial Catalog=WorkflowStore;..."). It returns "" when the
// connection string names no catalog.
func StoreName(connectionString string) string {
	m := storeNamePattern.FindStringSubmatch(connectionString)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Session identifies the writer stamped on every record.
type Session struct {
	// HostID is written as WfHost, conventionally "<machine>-<process>".
	HostID string
	// ThreadID returns the ThreadId written on each record.
	ThreadID func() int
}

// DefaultSession derives the host id from the running process. Go has no
// stable thread identity, so the thread id is the process id.
func DefaultSession() Session {
	return Session{
		HostID:   persistence.CurrentProcess().HostID(),
		ThreadID: os.Getpid,
	}
}

// Config describes how to construct a Service.
type Config struct {
	// LogLocation is the directory holding instance logs. It is created
	// when missing.
	LogLocation string
	// ConnectionString is the workflow persistence connection string; only
	// its Initial Catalog is used, as the store name in log headers.
	ConnectionString string

	// Session defaults to DefaultSession.
	Session Session
	// Index mirrors committed batches. Defaults to NoopRecordIndex.
	Index persistence.RecordIndex
	// Observer defaults to NoopObserver.
	Observer api.Observer
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// BuildTime stamps definition documents. Defaults to
	// topology.BuildTimestamp.
	BuildTime func() time.Time
}

// Service creates tracking channels. It is safe for concurrent use.
type Service struct {
	dir       string
	store     string
	session   Session
	index     persistence.RecordIndex
	observer  api.Observer
	logger    *slog.Logger
	buildTime func() time.Time
	profile   api.TrackingProfile
}

// NewService validates cfg, creates the log location and writes the startup
// line to the host log.
func NewService(cfg Config) (*Service, error) {
	if cfg.LogLocation == "" {
		return nil, errors.New("log location is required")
	}
	store := StoreName(cfg.ConnectionString)
	if err := codec.ValidateStore(store); err != nil {
		return nil, fmt.Errorf("store name %q: %w", store, err)
	}
	if err := os.MkdirAll(cfg.LogLocation, 0o755); err != nil {
		return nil, fmt.Errorf("create log location: %w", err)
	}

	s := &Service{
		dir:       cfg.LogLocation,
		store:     store,
		session:   cfg.Session,
		index:     cfg.Index,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
		buildTime: cfg.BuildTime,
		profile:   api.DefaultProfile(),
	}
	if s.index == nil {
		s.index = persistence.NoopRecordIndex{}
	}
	if s.observer == nil {
		s.observer = api.NoopObserver{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.buildTime == nil {
		s.buildTime = topology.BuildTimestamp
	}

	proc := persistence.CurrentProcess()
	if s.session.HostID == "" {
		s.session.HostID = proc.HostID()
	}
	if s.session.ThreadID == nil {
		s.session.ThreadID = os.Getpid
	}

	persistence.NewHostLog(s.dir, proc.Machine).Append(proc.StartupLine())
	s.logger.Info("tracking_service_started",
		slog.String("log_location", s.dir),
		slog.String("store", s.store),
		slog.String("host_id", s.session.HostID),
	)
	return s, nil
}

// LogLocation returns the directory holding instance logs.
func (s *Service) LogLocation() string { return s.dir }

// Store returns the store name written to log headers.
func (s *Service) Store() string { return s.store }

// Session returns the writer identity stamped on records.
func (s *Service) Session() Session { return s.session }

// Profile returns the tracking profile for a workflow type. Every type gets
// the default profile.
func (s *Service) Profile(workflowType string) api.TrackingProfile {
	return s.profile
}

// InstanceProfile is not supported: profiles are per workflow type only.
func (s *Service) InstanceProfile(instanceID uuid.UUID) (api.TrackingProfile, error) {
	return api.TrackingProfile{}, fmt.Errorf("instance profile for %s: %w", instanceID, api.ErrUnsupported)
}

// ReloadProfile is not supported: profiles never change at runtime.
func (s *Service) ReloadProfile(workflowType string, instanceID uuid.UUID) (api.TrackingProfile, error) {
	return api.TrackingProfile{}, fmt.Errorf("reload profile for %s: %w", instanceID, api.ErrUnsupported)
}

// ChannelParams identifies the workflow instance a channel tracks.
type ChannelParams struct {
	InstanceID   uuid.UUID
	WorkflowType string
	// Root is the live activity tree. When set, its topology is written to
	// the definition document if the build changed since the last write.
	Root api.Activity
}

// OpenChannel returns a channel for one workflow instance.
func (s *Service) OpenChannel(ctx context.Context, p ChannelParams) (*Channel, error) {
	if p.InstanceID == uuid.Nil {
		return nil, errors.New("instance id is required")
	}
	id := p.InstanceID.String()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log location: %w", err)
	}

	if p.Root != nil {
		if err := s.persistDefinition(ctx, id, p.Root); err != nil {
			return nil, err
		}
	}

	return &Channel{
		svc:        s,
		instanceID: id,
		profile:    s.Profile(p.WorkflowType),
	}, nil
}

func (s *Service) persistDefinition(ctx context.Context, instanceID string, root api.Activity) error {
	def := persistence.NewDefinitionFile(persistence.DefinitionPath(s.dir, instanceID), instanceID)
	built := s.buildTime()
	if !def.IsNewOrUpdated(built) {
		return nil
	}
	if err := def.Save(topology.Build(root), built); err != nil {
		return fmt.Errorf("save definition for %s: %w", instanceID, err)
	}
	s.observer.OnDefinitionPersisted(ctx, instanceID, built)
	return nil
}
