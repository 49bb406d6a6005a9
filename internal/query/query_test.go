package query

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/wftrack/internal/codec"
	"github.com/petrijr/wftrack/internal/persistence"
	"github.com/petrijr/wftrack/pkg/api"
)

const (
	idA = "3fa85f64-5717-4562-b3fc-2c963f66afa6"
	idB = "9b2e1c3d-0a4f-4e21-8d7c-6f5a4b3c2d1e"
	idC = "c4d5e6f7-1a2b-4c3d-9e8f-0a1b2c3d4e5f"
)

func rec(order int, ev api.WorkflowEvent) *api.WorkflowRecord {
	return &api.WorkflowRecord{
		TrackRecord: api.TrackRecord{At: time.Now(), Order: order, Host: "web01-svc", ThreadID: 1},
		Event:       ev,
	}
}

func writeInstance(t *testing.T, dir, id string, batches ...api.Batch) string {
	t.Helper()
	l, err := persistence.NewInstanceLog(persistence.InstancePath(dir, id), "WorkflowStore")
	require.NoError(t, err)
	for _, b := range batches {
		_, err := l.Persist(context.Background(), b)
		require.NoError(t, err)
	}
	return l.Path()
}

func TestListInstanceFiles_FiltersByName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{idA + ".xml", "notes.txt", "bad-name.xml", idA + "_def.xml", "web01.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	m := New(nil)
	files, err := m.ListInstanceFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, idA+".xml", files[0].Name)
	require.Equal(t, idA, files[0].InstanceID)
	require.Equal(t, filepath.Join(dir, idA+".xml"), files[0].Path)
}

func TestListInstanceFiles_SortedByName(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []string{idB, idA} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, id+".xml"), nil, 0o644))
	}

	files, err := New(nil).ListInstanceFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, idA, files[0].InstanceID)
	require.Equal(t, idB, files[1].InstanceID)
}

func TestLoadInstance_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	activity := &api.ActivityRecord{
		TrackRecord:   api.TrackRecord{At: time.Now(), Order: 2, Host: "web01-svc", ThreadID: 1},
		QualifiedName: "approve",
		TypeName:      "ApprovalActivity",
		Status:        api.ActivityClosed,
		DisplayName:   "Approve",
	}
	path := writeInstance(t, dir, idA,
		api.Batch{rec(1, api.EventCreated), activity},
		api.Batch{&api.UserRecord{Key: "Amount", Data: "10"}, rec(3, api.EventCompleted)},
	)

	h, err := New(nil).LoadInstance(path)
	require.NoError(t, err)
	require.Equal(t, idA, h.InstanceID)
	require.Equal(t, path, h.Path)
	require.Equal(t, api.StatusCompleted, h.Status)
	require.Equal(t, "WorkflowStore", h.Store)
	require.False(t, h.LastWrite.IsZero())

	require.Len(t, h.Records, 4)
	require.Len(t, h.WorkflowRecords(), 2)
	require.Len(t, h.UserRecords(), 1)
	acts := h.ActivityRecords()
	require.Len(t, acts, 1)
	require.Equal(t, "Approve", acts[0].DisplayName)
	require.NoError(t, h.CheckOrder())
}

func TestLoadInstance_DetectsDecreasingOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeInstance(t, dir, idA, api.Batch{rec(5, api.EventCreated), rec(2, api.EventStarted)})

	h, err := New(nil).LoadInstance(path)
	require.NoError(t, err)

	var oe *api.OrderError
	require.True(t, errors.As(h.CheckOrder(), &oe))
	require.Equal(t, 5, oe.Previous)
	require.Equal(t, 2, oe.Current)
}

func TestLoadInstance_TolerantDecoding(t *testing.T) {
	header, err := codec.EncodeHeader(api.StatusRunning, "db")
	require.NoError(t, err)
	content := header +
		`<WFTR datetime="garbage" wfStatus="Started" order="1" WfHost="h" ThreadId="1"/>` + "\n" +
		"some stray text\n" +
		`<ATR name="a" Type="T" wfStatus="Unknown" order="2"/>` + "\n"
	// No closing tag: the last batch was interrupted.
	path := filepath.Join(t.TempDir(), idA+".xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	h, err := New(nil).LoadInstance(path)
	require.NoError(t, err)
	require.Len(t, h.Records, 2)

	w := h.Records[0].(*api.WorkflowRecord)
	require.Equal(t, api.EventStarted, w.Event)
	require.True(t, w.At.IsZero())

	a := h.Records[1].(*api.ActivityRecord)
	require.Equal(t, "a", a.QualifiedName)
	require.Empty(t, a.Status)
	require.Equal(t, 2, a.Order)
}

func TestLoadInstance_NotATrackingLog(t *testing.T) {
	dir := t.TempDir()

	junk := filepath.Join(dir, idA+".xml")
	require.NoError(t, os.WriteFile(junk, []byte("<html>\n</html>\n"), 0o644))
	_, err := New(nil).LoadInstance(junk)
	require.ErrorIs(t, err, api.ErrNotTrackingLog)

	empty := filepath.Join(dir, idB+".xml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = New(nil).LoadInstance(empty)
	require.ErrorIs(t, err, api.ErrNotTrackingLog)

	_, err = New(nil).LoadInstance(filepath.Join(dir, "missing.xml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRecords_IndependentOfFileContext(t *testing.T) {
	lines := []string{
		`<ATR name="b" order="2"/>`,
		codec.ClosingTag,
		`<k:v/>`,
		`<WFTR wfStatus="Idle" order="1"/>`,
	}
	recs := New(nil).ParseRecords(lines)
	require.Len(t, recs, 3)
	require.Equal(t, api.KindActivity, recs[0].Kind())
	require.Equal(t, api.KindUser, recs[1].Kind())
	require.Equal(t, api.KindWorkflow, recs[2].Kind())
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeInstance(t, dir, idB, api.Batch{rec(1, api.EventCreated)})
	writeInstance(t, dir, idA, api.Batch{rec(1, api.EventCreated), rec(2, api.EventSuspended)})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	hs, err := New(nil).LoadDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	require.Equal(t, idA, hs[0].InstanceID)
	require.Equal(t, api.StatusSuspended, hs[0].Status)
	require.Equal(t, idB, hs[1].InstanceID)
	require.Equal(t, api.StatusCreated, hs[1].Status)
}

func TestLoadDirectory_SkipsLogsWithoutHeader(t *testing.T) {
	dir := t.TempDir()
	writeInstance(t, dir, idA, api.Batch{rec(1, api.EventCreated)})
	// A log between its exclusive create and the header write is empty.
	require.NoError(t, os.WriteFile(filepath.Join(dir, idB+".xml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, idC+".xml"), []byte("junk\n"), 0o644))

	hs, err := New(nil).LoadDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	require.Equal(t, idA, hs[0].InstanceID)
}

func TestLoadDirectory_PropagatesCancellation(t *testing.T) {
	dir := t.TempDir()
	writeInstance(t, dir, idA, api.Batch{rec(1, api.EventCreated)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).LoadDirectory(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGetDefinition(t *testing.T) {
	dir := t.TempDir()
	path := writeInstance(t, dir, idA, api.Batch{rec(1, api.EventCreated)})
	m := New(nil)

	h, err := m.LoadInstance(path)
	require.NoError(t, err)

	_, err = m.GetDefinition(h)
	var due *api.DefinitionUnavailableError
	require.True(t, errors.As(err, &due))
	require.Equal(t, idA, due.InstanceID)

	summary := &api.ActivitySummary{TypeName: "Seq", QualifiedName: "root"}
	def := persistence.NewDefinitionFile(persistence.DefinitionPath(dir, idA), idA)
	require.NoError(t, def.Save(summary, time.Now()))

	doc, err := m.GetDefinition(h)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(doc, `<Activity Type="Seq" QualifiedName="root"`))
}

func TestWatch_ReportsWrittenInstances(t *testing.T) {
	dir := t.TempDir()
	m := New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan *api.InstanceHistory, 16)
	done := make(chan error, 1)
	go func() {
		done <- m.Watch(ctx, dir, func(h *api.InstanceHistory) { seen <- h })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	writeInstance(t, dir, idA, api.Batch{rec(1, api.EventCreated), rec(2, api.EventCompleted)})

	deadline := time.After(5 * time.Second)
	for {
		select {
		case h := <-seen:
			require.Equal(t, idA, h.InstanceID)
			if h.Status != api.StatusCompleted {
				continue
			}
			cancel()
			require.NoError(t, <-done)
			return
		case <-deadline:
			t.Fatal("watcher did not report the completed instance")
		}
	}
}
