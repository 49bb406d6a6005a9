package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	_ "modernc.org/sqlite"

	"github.com/petrijr/wftrack/pkg/api"
)

const (
	instanceA = "11111111-1111-1111-1111-111111111111"
	instanceB = "22222222-2222-2222-2222-222222222222"
	instanceC = "33333333-3333-3333-3333-333333333333"
)

// RecordIndexTestSuite runs the same contract against every RecordIndex
// backend. newIndex must return an empty index.
type RecordIndexTestSuite struct {
	suite.Suite
	newIndex func() RecordIndex
	index    RecordIndex
	ctx      context.Context
}

func (s *RecordIndexTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.index = s.newIndex()
}

func (s *RecordIndexTestSuite) TearDownTest() {
	s.NoError(s.index.Close())
}

func (s *RecordIndexTestSuite) TestIndexBatch_ListRecordsInCommitOrder() {
	first := []api.Record{wf(1, api.EventCreated), act(2, "intake", api.ActivityExecuting)}
	second := []api.Record{act(3, "intake", api.ActivityClosed), &api.UserRecord{Key: "Amount", Data: "12"}}

	s.Require().NoError(s.index.IndexBatch(s.ctx, instanceA, api.StatusCreated, first))
	s.Require().NoError(s.index.IndexBatch(s.ctx, instanceA, "", second))

	recs, err := s.index.ListRecords(s.ctx, instanceA)
	s.Require().NoError(err)
	s.Require().Len(recs, 4)

	s.Equal(api.EventCreated, recs[0].(*api.WorkflowRecord).Event)
	s.Equal(2, recs[1].Base().Order)
	s.Equal(api.ActivityClosed, recs[2].(*api.ActivityRecord).Status)
	s.Equal("Amount", recs[3].(*api.UserRecord).Key)
}

func (s *RecordIndexTestSuite) TestListInstances_FiltersByStatus() {
	s.Require().NoError(s.index.IndexBatch(s.ctx, instanceB, api.StatusCreated, []api.Record{wf(1, api.EventCreated)}))
	s.Require().NoError(s.index.IndexBatch(s.ctx, instanceA, api.StatusCreated, []api.Record{wf(1, api.EventCreated)}))
	s.Require().NoError(s.index.IndexBatch(s.ctx, instanceC, api.StatusCreated, []api.Record{wf(1, api.EventCreated)}))
	s.Require().NoError(s.index.IndexBatch(s.ctx, instanceA, api.StatusCompleted, []api.Record{wf(2, api.EventCompleted)}))
	s.Require().NoError(s.index.IndexBatch(s.ctx, instanceB, "", []api.Record{act(2, "x", api.ActivityExecuting)}))

	all, err := s.index.ListInstances(s.ctx, IndexFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(instanceA, all[0].InstanceID)
	s.Equal(api.StatusCompleted, all[0].Status)
	s.Equal(2, all[0].Records)
	s.Equal(instanceB, all[1].InstanceID)
	s.Equal(api.StatusCreated, all[1].Status)
	s.False(all[1].UpdatedAt.IsZero())

	created, err := s.index.ListInstances(s.ctx, IndexFilter{Status: api.StatusCreated})
	s.Require().NoError(err)
	s.Require().Len(created, 2)
	s.Equal(instanceB, created[0].InstanceID)
	s.Equal(instanceC, created[1].InstanceID)

	completed, err := s.index.ListInstances(s.ctx, IndexFilter{Status: api.StatusCompleted})
	s.Require().NoError(err)
	s.Require().Len(completed, 1)
}

func (s *RecordIndexTestSuite) TestListRecords_UnknownInstance() {
	_, err := s.index.ListRecords(s.ctx, "44444444-4444-4444-4444-444444444444")
	s.ErrorIs(err, ErrInstanceNotIndexed)
}

func TestMemoryRecordIndex(t *testing.T) {
	suite.Run(t, &RecordIndexTestSuite{
		newIndex: func() RecordIndex { return NewMemoryRecordIndex() },
	})
}

func TestSQLiteRecordIndex(t *testing.T) {
	ts := &RecordIndexTestSuite{}
	ts.newIndex = func() RecordIndex {
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = db.Close() })

		idx, err := NewSQLiteRecordIndex(db)
		if err != nil {
			t.Fatalf("init sqlite index: %v", err)
		}
		return idx
	}
	suite.Run(t, ts)
}

func TestNoopRecordIndex(t *testing.T) {
	var idx RecordIndex = NoopRecordIndex{}
	ctx := context.Background()

	if err := idx.IndexBatch(ctx, instanceA, api.StatusCreated, []api.Record{wf(1, api.EventCreated)}); err != nil {
		t.Fatalf("IndexBatch: %v", err)
	}
	if got, _ := idx.ListInstances(ctx, IndexFilter{}); len(got) != 0 {
		t.Fatalf("expected no instances, got %d", len(got))
	}
}
