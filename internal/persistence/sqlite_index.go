package persistence

import "database/sql"

// SQLiteRecordIndex is a RecordIndex backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteRecordIndex struct {
	sqlRecordIndex
}

var _ RecordIndex = (*SQLiteRecordIndex)(nil)

// NewSQLiteRecordIndex initializes the required schema in the given
// database and returns a new SQLiteRecordIndex.
func NewSQLiteRecordIndex(db *sql.DB) (*SQLiteRecordIndex, error) {
	s := &SQLiteRecordIndex{sqlRecordIndex{db: db}}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteRecordIndex) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tracked_instances (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT '',
			records INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS tracked_records (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			instance_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			ord INTEGER NOT NULL,
			line TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tracked_records_instance ON tracked_records(instance_id, seq);
		CREATE INDEX IF NOT EXISTS idx_tracked_instances_status ON tracked_instances(status);
	`)
	return err
}
