package persistence

import (
	"os"
	"time"

	"github.com/petrijr/wftrack/internal/topology"
	"github.com/petrijr/wftrack/pkg/api"
)

// DefinitionFile is the static activity topology document of one instance.
type DefinitionFile struct {
	path       string
	instanceID string
}

// NewDefinitionFile returns the definition document at path.
func NewDefinitionFile(path, instanceID string) *DefinitionFile {
	return &DefinitionFile{path: path, instanceID: instanceID}
}

// Path returns the document path.
func (d *DefinitionFile) Path() string { return d.path }

// Load returns the raw document. Any failure is reported as a
// *api.DefinitionUnavailableError naming the instance.
func (d *DefinitionFile) Load() ([]byte, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, &api.DefinitionUnavailableError{InstanceID: d.instanceID, Err: err}
	}
	return data, nil
}

// Save replaces the document with the topology of summary stamped with
// buildTime. Readers see either the old or the new document.
func (d *DefinitionFile) Save(summary *api.ActivitySummary, buildTime time.Time) error {
	data, err := topology.MarshalDefinition(summary, buildTime)
	if err != nil {
		return err
	}
	return atomicWriteFile(d.path, data, 0o644)
}

// IsNewOrUpdated reports whether the stored document is missing or was
// written for a build other than live.
func (d *DefinitionFile) IsNewOrUpdated(live time.Time) bool {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return true
	}
	return topology.IsNewOrUpdated(data, live)
}
