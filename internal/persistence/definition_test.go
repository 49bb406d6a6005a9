package persistence

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/wftrack/pkg/api"
)

func sampleSummary() *api.ActivitySummary {
	root := &api.ActivitySummary{TypeName: "ApprovalWorkflow", QualifiedName: "root"}
	root.AddChild(&api.ActivitySummary{TypeName: "CodeActivity", QualifiedName: "intake"})
	return root
}

func TestDefinitionFile_SaveLoadAndChangeDetection(t *testing.T) {
	d := NewDefinitionFile(DefinitionPath(t.TempDir(), testInstanceID), testInstanceID)
	built := time.Date(2024, time.May, 2, 8, 15, 0, 0, time.Local)

	require.True(t, d.IsNewOrUpdated(built))

	require.NoError(t, d.Save(sampleSummary(), built))
	require.False(t, d.IsNewOrUpdated(built))
	require.True(t, d.IsNewOrUpdated(built.Add(time.Hour)))

	data, err := d.Load()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), `<Activity Type="ApprovalWorkflow" QualifiedName="root" WfCompliteTime="05-02-2024 08:15:00 AM">`))

	require.NoError(t, d.Save(sampleSummary(), built.Add(time.Hour)))
	require.False(t, d.IsNewOrUpdated(built.Add(time.Hour)))
}

func TestDefinitionFile_LoadMissingNamesInstance(t *testing.T) {
	d := NewDefinitionFile(DefinitionPath(t.TempDir(), testInstanceID), testInstanceID)

	_, err := d.Load()
	var due *api.DefinitionUnavailableError
	require.True(t, errors.As(err, &due))
	require.Equal(t, testInstanceID, due.InstanceID)
	require.ErrorIs(t, err, api.ErrDefinitionUnavailable)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestHostLog_AppendAndStartupLine(t *testing.T) {
	dir := t.TempDir()
	h := NewHostLog(dir, "web01")

	p := ProcessInfo{Machine: "web01", Name: "trackd", PID: 42, Started: time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)}
	require.Equal(t, "web01-trackd", p.HostID())
	require.Equal(t, "trackd PID=42 started @ 2024-01-02 03:04:05", p.StartupLine())

	h.Append(p.StartupLine())
	h.Append("second")

	data, err := os.ReadFile(h.Path())
	require.NoError(t, err)
	require.Equal(t, p.StartupLine()+"\nsecond\n", string(data))
}

func TestHostLog_FailuresAreSwallowed(t *testing.T) {
	h := NewHostLog(t.TempDir()+"/does/not/exist", "web01")
	require.NotPanics(t, func() { h.Append("ignored") })
}

func TestCurrentProcess(t *testing.T) {
	p := CurrentProcess()
	require.Equal(t, os.Getpid(), p.PID)
	require.NotEmpty(t, p.Name)
	require.False(t, p.Started.IsZero())
}
