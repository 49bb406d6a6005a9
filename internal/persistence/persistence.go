// Package persistence writes tracking data to disk: the per-instance log,
// the per-instance definition document and the per-machine host log. It
// also provides secondary record indexes that mirror committed batches into
// a database.
package persistence

import (
	"path/filepath"
	"strings"
)

// File name suffixes inside a log location.
const (
	InstanceExt   = ".xml"
	DefinitionExt = "_def.xml"
	HostLogExt    = ".log"
)

// InstancePath returns the path of the instance log for instanceID.
func InstancePath(dir, instanceID string) string {
	return filepath.Join(dir, instanceID+InstanceExt)
}

// DefinitionPath returns the path of the definition document for instanceID.
func DefinitionPath(dir, instanceID string) string {
	return filepath.Join(dir, instanceID+DefinitionExt)
}

// InstanceID returns the instance id encoded in an instance log path.
func InstanceID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), InstanceExt)
}

// Persistence bundles the files written for one workflow instance. A
// tracking channel creates one lazily on commit and closes it when the batch
// completes.
type Persistence struct {
	Log        *InstanceLog
	Definition *DefinitionFile
}

// Open prepares the instance log and definition file for instanceID under
// dir. No file is touched until the first write.
func Open(dir, instanceID, store string) (*Persistence, error) {
	log, err := NewInstanceLog(InstancePath(dir, instanceID), store)
	if err != nil {
		return nil, err
	}
	return &Persistence{
		Log:        log,
		Definition: NewDefinitionFile(DefinitionPath(dir, instanceID), instanceID),
	}, nil
}

// Close releases the helper. Every write already closes its file handle, so
// Close only drops references.
func (p *Persistence) Close() error {
	p.Log = nil
	p.Definition = nil
	return nil
}
