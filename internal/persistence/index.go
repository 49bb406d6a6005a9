package persistence

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/petrijr/wftrack/internal/codec"
	"github.com/petrijr/wftrack/pkg/api"
)

// ErrInstanceNotIndexed is returned by ListRecords for an unknown instance.
var ErrInstanceNotIndexed = errors.New("instance not indexed")

// IndexFilter selects instances from a RecordIndex. An empty Status means
// "no filter".
type IndexFilter struct {
	Status api.InstanceStatus
}

// IndexedInstance is the summary a RecordIndex keeps per instance.
type IndexedInstance struct {
	InstanceID string
	Status     api.InstanceStatus
	Records    int
	UpdatedAt  time.Time
}

// RecordIndex mirrors committed batches into a queryable store. The instance
// log stays authoritative; an index may lag or miss batches.
type RecordIndex interface {
	// IndexBatch appends records for instanceID. status is "" when the
	// batch did not change the instance status.
	IndexBatch(ctx context.Context, instanceID string, status api.InstanceStatus, records []api.Record) error
	// ListRecords returns the indexed records of an instance in commit order.
	ListRecords(ctx context.Context, instanceID string) ([]api.Record, error)
	// ListInstances returns indexed instances ordered by id.
	ListInstances(ctx context.Context, filter IndexFilter) ([]IndexedInstance, error)
	Close() error
}

// indexRow is one record as stored by an index.
type indexRow struct {
	Kind  api.Kind
	Order int
	Line  string
}

func encodeRows(records []api.Record) ([]indexRow, error) {
	rows := make([]indexRow, 0, len(records))
	for _, rec := range records {
		line, err := codec.Encode(rec)
		if err != nil {
			return nil, fmt.Errorf("index: %w", err)
		}
		rows = append(rows, indexRow{Kind: rec.Kind(), Order: rec.Base().Order, Line: line})
	}
	return rows, nil
}

func decodeLines(lines []string) ([]api.Record, error) {
	out := make([]api.Record, 0, len(lines))
	for _, line := range lines {
		rec, err := codec.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("index: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// NoopRecordIndex discards all batches.
type NoopRecordIndex struct{}

var _ RecordIndex = NoopRecordIndex{}

func (NoopRecordIndex) IndexBatch(ctx context.Context, instanceID string, status api.InstanceStatus, records []api.Record) error {
	return nil
}
func (NoopRecordIndex) ListRecords(ctx context.Context, instanceID string) ([]api.Record, error) {
	return nil, ErrInstanceNotIndexed
}
func (NoopRecordIndex) ListInstances(ctx context.Context, filter IndexFilter) ([]IndexedInstance, error) {
	return nil, nil
}
func (NoopRecordIndex) Close() error { return nil }

// MemoryRecordIndex is a RecordIndex kept in process memory.
type MemoryRecordIndex struct {
	mu        sync.RWMutex
	instances map[string]*IndexedInstance
	lines     map[string][]string
}

var _ RecordIndex = (*MemoryRecordIndex)(nil)

func NewMemoryRecordIndex() *MemoryRecordIndex {
	return &MemoryRecordIndex{
		instances: make(map[string]*IndexedInstance),
		lines:     make(map[string][]string),
	}
}

func (m *MemoryRecordIndex) IndexBatch(ctx context.Context, instanceID string, status api.InstanceStatus, records []api.Record) error {
	rows, err := encodeRows(records)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[instanceID]
	if !ok {
		inst = &IndexedInstance{InstanceID: instanceID}
		m.instances[instanceID] = inst
	}
	if status != "" {
		inst.Status = status
	}
	inst.Records += len(rows)
	inst.UpdatedAt = time.Now()
	for _, r := range rows {
		m.lines[instanceID] = append(m.lines[instanceID], r.Line)
	}
	return nil
}

func (m *MemoryRecordIndex) ListRecords(ctx context.Context, instanceID string) ([]api.Record, error) {
	m.mu.RLock()
	lines, ok := m.lines[instanceID]
	lines = slices.Clone(lines)
	m.mu.RUnlock()

	if !ok {
		return nil, ErrInstanceNotIndexed
	}
	return decodeLines(lines)
}

func (m *MemoryRecordIndex) ListInstances(ctx context.Context, filter IndexFilter) ([]IndexedInstance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]IndexedInstance, 0, len(m.instances))
	for _, inst := range m.instances {
		if filter.Status != "" && inst.Status != filter.Status {
			continue
		}
		out = append(out, *inst)
	}
	slices.SortFunc(out, func(a, b IndexedInstance) int {
		return strings.Compare(a.InstanceID, b.InstanceID)
	})
	return out, nil
}

func (m *MemoryRecordIndex) Close() error { return nil }
