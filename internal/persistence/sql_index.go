package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/petrijr/wftrack/pkg/api"
)

// sqlRecordIndex is the RecordIndex shared by the SQLite and PostgreSQL
// backends. Queries are written with ? placeholders and rebound for
// drivers that use $n.
type sqlRecordIndex struct {
	db     *sql.DB
	dollar bool
}

func (s *sqlRecordIndex) bind(query string) string {
	if !s.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlRecordIndex) IndexBatch(ctx context.Context, instanceID string, status api.InstanceStatus, records []api.Record) error {
	rows, err := encodeRows(records)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UnixNano()
	_, err = tx.ExecContext(ctx, s.bind(`
		INSERT INTO tracked_instances (id, status, records, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = CASE WHEN excluded.status = '' THEN tracked_instances.status ELSE excluded.status END,
			records = tracked_instances.records + excluded.records,
			updated_at = excluded.updated_at`),
		instanceID, string(status), len(rows), now,
	)
	if err != nil {
		return fmt.Errorf("upsert instance %s: %w", instanceID, err)
	}

	insert := s.bind(`
		INSERT INTO tracked_records (instance_id, kind, ord, line)
		VALUES (?, ?, ?, ?)`)
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, insert, instanceID, string(r.Kind), r.Order, r.Line); err != nil {
			return fmt.Errorf("insert record for %s: %w", instanceID, err)
		}
	}
	return tx.Commit()
}

func (s *sqlRecordIndex) ListRecords(ctx context.Context, instanceID string) ([]api.Record, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT 1 FROM tracked_instances WHERE id = ?`), instanceID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInstanceNotIndexed
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.bind(`
		SELECT line FROM tracked_records
		WHERE instance_id = ?
		ORDER BY seq ASC`), instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return decodeLines(lines)
}

func (s *sqlRecordIndex) ListInstances(ctx context.Context, filter IndexFilter) ([]IndexedInstance, error) {
	query := `SELECT id, status, records, updated_at FROM tracked_instances`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, s.bind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IndexedInstance
	for rows.Next() {
		var (
			id      string
			status  string
			count   int
			updated int64
		)
		if err := rows.Scan(&id, &status, &count, &updated); err != nil {
			return nil, err
		}
		out = append(out, IndexedInstance{
			InstanceID: id,
			Status:     api.InstanceStatus(status),
			Records:    count,
			UpdatedAt:  time.Unix(0, updated),
		})
	}
	return out, rows.Err()
}

// Close does not close the underlying *sql.DB; it belongs to the caller.
func (s *sqlRecordIndex) Close() error { return nil }
