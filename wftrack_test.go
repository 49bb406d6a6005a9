package wftrack

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/wftrack/internal/config"
	"github.com/petrijr/wftrack/pkg/api"
)

func sampleTree() *TreeBuilder {
	return NewTree("ApprovalWorkflow", "root").
		Activity("CodeActivity", "intake").
		Sequence("SequenceActivity", "review", func(b *TreeBuilder) {
			b.Activity("ApprovalActivity", "approve").
				DisabledActivity("AuditActivity", "audit")
		}).
		Sequence("SequenceActivity", "archive", nil)
}

func TestTreeBuilder(t *testing.T) {
	root := sampleTree().Build()
	require.Equal(t, "root", root.QualifiedName())
	require.Nil(t, root.Parent())
	require.Len(t, root.Activities(), 3)

	review, ok := api.AsComposite(root.Activities()[1])
	require.True(t, ok)
	require.Equal(t, "root", review.Parent().QualifiedName())
	require.Len(t, review.Activities(), 2)
	require.False(t, review.Activities()[1].Enabled())

	s := sampleTree().Summary()
	require.Equal(t, 5, s.Count())
	require.Nil(t, s.Find("audit"))
	require.NotNil(t, s.Find("archive"))
}

func TestTreeBuilder_PanicsOnEmptyNames(t *testing.T) {
	require.Panics(t, func() { NewTree("T", "") })
	require.Panics(t, func() { NewTree("", "root").Activity("T", "x") })
	require.Panics(t, func() { NewTree("T", "root").Activity("", "x") })
}

func TestOpen_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		LogLocation:                 t.TempDir(),
		PersistenceConnectionString: "Initial Catalog=WorkflowStore;",
		HostID:                      "web01-trackd",
		Log:                         config.LogConfig{Level: "error", Format: "json"},
		Index:                       config.IndexConfig{Driver: config.DriverMemory},
	}
	metrics := &BasicMetrics{}

	svc, closeFn, err := Open(ctx, cfg, metrics)
	require.NoError(t, err)
	defer func() { require.NoError(t, closeFn()) }()
	require.Equal(t, "web01-trackd", svc.Session().HostID)

	id := uuid.New()
	ch, err := svc.OpenChannel(ctx, ChannelParams{InstanceID: id, WorkflowType: "ApprovalWorkflow", Root: sampleTree().Build()})
	require.NoError(t, err)

	now := time.Now().UTC()
	for _, ev := range []Event{
		WorkflowTrackingEvent{At: now, Order: 1, Event: api.EventCreated},
		ActivityTrackingEvent{At: now, Order: 2, QualifiedName: "approve", TypeName: "ApprovalActivity", Status: api.ActivityClosed},
		UserTrackingEvent{At: now, Order: 3, Key: "Amount", Data: 1200},
		WorkflowTrackingEvent{At: now, Order: 4, Event: api.EventCompleted},
	} {
		_, tracked, err := ch.OnEvent(ctx, ev)
		require.NoError(t, err)
		require.True(t, tracked)
	}
	require.NoError(t, ch.Flush(ctx))

	qm := NewQueryManager(nil)
	files, err := qm.ListInstanceFiles(svc.LogLocation())
	require.NoError(t, err)
	require.Len(t, files, 1)

	h, err := qm.LoadInstance(files[0].Path)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, h.Status)
	require.Equal(t, id.String(), h.InstanceID)
	require.Len(t, h.Records, 4)
	require.Equal(t, "1200", h.UserRecords()[0].Data)

	doc, err := qm.GetDefinition(h)
	require.NoError(t, err)
	require.Contains(t, doc, `QualifiedName="approve"`)
	require.NotContains(t, doc, `QualifiedName="audit"`)

	snap := metrics.Snapshot()
	require.EqualValues(t, 1, snap.BatchesCommitted)
	require.EqualValues(t, 1, snap.DefinitionsPersisted)
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{}, nil)
	require.Error(t, err)
}
