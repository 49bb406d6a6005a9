package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/petrijr/wftrack/internal/persistence"
	"github.com/petrijr/wftrack/pkg/api"
)

const (
	idA = "3fa85f64-5717-4562-b3fc-2c963f66afa6"
	idB = "9b2e1c3d-0a4f-4e21-8d7c-6f5a4b3c2d1e"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	// Keep a stray .wftrack.yaml from leaking into tests.
	cfg := filepath.Join(t.TempDir(), "wftrack.yaml")
	if !containsFlag(args, "--config") {
		require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: error\n"), 0o644))
		args = append(args, "--config", cfg)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func containsFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func seed(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	at := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.Local)

	write := func(id string, batch api.Batch) {
		l, err := persistence.NewInstanceLog(persistence.InstancePath(dir, id), "WorkflowStore")
		require.NoError(t, err)
		_, err = l.Persist(context.Background(), batch)
		require.NoError(t, err)
	}
	write(idA, api.Batch{
		&api.WorkflowRecord{TrackRecord: api.TrackRecord{At: at, Order: 1, Host: "web01-svc", ThreadID: 4}, Event: api.EventCreated},
		&api.ActivityRecord{
			TrackRecord:   api.TrackRecord{At: at, Order: 2, Host: "web01-svc", ThreadID: 4},
			QualifiedName: "approve", TypeName: "ApprovalActivity", Status: api.ActivityClosed, User: "approver",
		},
		&api.UserRecord{TrackRecord: api.TrackRecord{At: at, Order: 3}, Key: "Amount", Data: "1200"},
		&api.WorkflowRecord{TrackRecord: api.TrackRecord{At: at, Order: 4}, Event: api.EventCompleted},
	})
	write(idB, api.Batch{
		&api.WorkflowRecord{TrackRecord: api.TrackRecord{At: at, Order: 1}, Event: api.EventCreated},
	})
	return dir
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "trackctl dev")
	require.Contains(t, out, "commit: none")
}

func TestListCmd(t *testing.T) {
	dir := seed(t)

	out, err := run(t, "list", "--dir", dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "INSTANCE")
	require.Contains(t, lines[1], idA)
	require.Contains(t, lines[1], "Completed")
	require.Contains(t, lines[2], idB)
	require.Contains(t, lines[2], "Created")

	out, err = run(t, "list", "--dir", dir, "-o", "json")
	require.NoError(t, err)
	var views []instanceView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	require.Equal(t, 4, views[0].Records)
}

func TestListCmd_RequiresDirectory(t *testing.T) {
	_, err := run(t, "list")
	require.ErrorContains(t, err, "log_location")
}

func TestShowCmd(t *testing.T) {
	dir := seed(t)

	out, err := run(t, "show", idA, "--dir", dir)
	require.NoError(t, err)
	require.Regexp(t, `Status\s+Completed`, out)
	require.Contains(t, out, "approve (ApprovalActivity) Closed user=approver")
	require.Contains(t, out, "Amount=1200")

	out, err = run(t, "show", persistence.InstancePath(dir, idA), "--dir", dir, "-o", "yaml")
	require.NoError(t, err)
	var view historyView
	require.NoError(t, yaml.Unmarshal([]byte(out), &view))
	require.Equal(t, idA, view.InstanceID)
	require.Equal(t, "WorkflowStore", view.Store)
	require.Len(t, view.Records, 4)
	require.Equal(t, "activity", view.Records[1].Kind)
	require.Equal(t, "approver", view.Records[1].User)

	_, err = run(t, "show", idA, "--dir", dir, "-o", "xml")
	require.ErrorContains(t, err, "unknown output format")
}

func TestDefinitionCmd(t *testing.T) {
	dir := seed(t)

	_, err := run(t, "definition", idA, "--dir", dir)
	require.ErrorIs(t, err, api.ErrDefinitionUnavailable)

	def := persistence.NewDefinitionFile(persistence.DefinitionPath(dir, idA), idA)
	require.NoError(t, def.Save(&api.ActivitySummary{TypeName: "Seq", QualifiedName: "root"}, time.Now()))

	out, err := run(t, "definition", idA, "--dir", dir)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, `<Activity Type="Seq" QualifiedName="root"`))
}

func TestIndexCmd(t *testing.T) {
	dir := seed(t)
	dsn := filepath.Join(t.TempDir(), "index.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	idx, err := persistence.NewSQLiteRecordIndex(db)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, idx.IndexBatch(ctx, idA, api.StatusCompleted, []api.Record{
		&api.WorkflowRecord{TrackRecord: api.TrackRecord{Order: 1}, Event: api.EventCompleted},
	}))
	require.NoError(t, idx.IndexBatch(ctx, idB, api.StatusCreated, []api.Record{
		&api.WorkflowRecord{TrackRecord: api.TrackRecord{Order: 1}, Event: api.EventCreated},
	}))
	require.NoError(t, db.Close())

	cfg := filepath.Join(t.TempDir(), "wftrack.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log_location: "+dir+"\nindex:\n  driver: sqlite\n  dsn: "+dsn+"\n"), 0o644))

	out, err := run(t, "index", "--config", cfg, "--status", "completed")
	require.NoError(t, err)
	require.Contains(t, out, idA)
	require.NotContains(t, out, idB)

	out, err = run(t, "index", idB, "--config", cfg, "-o", "json")
	require.NoError(t, err)
	var recs []recordView
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	require.Equal(t, "Created", recs[0].Event)
}

func TestIndexCmd_RequiresDriver(t *testing.T) {
	_, err := run(t, "index", "--dir", t.TempDir())
	require.ErrorContains(t, err, "no record index configured")
}
