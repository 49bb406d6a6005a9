package persistence

import "database/sql"

// PostgresRecordIndex is a RecordIndex backed by PostgreSQL.
//
// It expects an *sql.DB that uses a PostgreSQL driver (for example,
// "github.com/jackc/pgx/v5/stdlib").
//
// The caller is responsible for:
//   - importing the driver for its side effects, e.g.:
//     _ "github.com/jackc/pgx/v5/stdlib"
//   - providing a DSN via sql.Open.
type PostgresRecordIndex struct {
	sqlRecordIndex
}

var _ RecordIndex = (*PostgresRecordIndex)(nil)

// NewPostgresRecordIndex initializes the required schema in the given
// database and returns a new PostgresRecordIndex.
func NewPostgresRecordIndex(db *sql.DB) (*PostgresRecordIndex, error) {
	s := &PostgresRecordIndex{sqlRecordIndex{db: db, dollar: true}}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresRecordIndex) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tracked_instances (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT '',
			records INTEGER NOT NULL DEFAULT 0,
			updated_at BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS tracked_records (
			seq BIGSERIAL PRIMARY KEY,
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
