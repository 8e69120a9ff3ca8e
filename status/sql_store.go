package status

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/taskcores/database"
	"github.com/mensylisir/taskcores/outcome"
)

// SQLStore persists one snapshot per invocation in the task_status and
// task_status_meta tables (see migrations/). Save is an upsert: the
// accumulator replaces the whole snapshot on every callback.
type SQLStore struct {
	db      *database.DB
	timeout time.Duration
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a Store over an open connection.
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{
		db:      db,
		timeout: 10 * time.Second,
	}
}

func (s *SQLStore) GetLatest(invocationID string) (*outcome.Outcome, bool, error) {
	return s.Get(invocationID)
}

func (s *SQLStore) Get(invocationID string) (*outcome.Outcome, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var statusName, message string
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT status, message FROM task_status WHERE invocation_id = $1"),
		invocationID).Scan(&statusName, &message)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to load status for invocation %s", invocationID)
	}

	out := outcome.New(outcome.ParseStatus(statusName), message)

	type metaRow struct{ key, value string }
	rows, err := database.Query(ctx, s.db,
		func(r *sql.Rows) (metaRow, error) {
			var m metaRow
			err := r.Scan(&m.key, &m.value)
			return m, err
		},
		s.rebind("SELECT meta_key, meta_value FROM task_status_meta WHERE invocation_id = $1"),
		invocationID)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to load metadata for invocation %s", invocationID)
	}
	for _, m := range rows {
		out.AddMetadata(m.key, m.value)
	}
	return out, true, nil
}

func (s *SQLStore) Save(invocationID string, out *outcome.Outcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin status transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.upsertStatement(), invocationID, out.Status().String(), out.Message())
	if err != nil {
		return errors.Wrapf(err, "failed to save status for invocation %s", invocationID)
	}

	if _, err := tx.ExecContext(ctx,
		s.rebind("DELETE FROM task_status_meta WHERE invocation_id = $1"), invocationID); err != nil {
		return errors.Wrapf(err, "failed to clear metadata for invocation %s", invocationID)
	}
	for key, value := range out.Metadata() {
		if _, err := tx.ExecContext(ctx,
			s.rebind("INSERT INTO task_status_meta (invocation_id, meta_key, meta_value) VALUES ($1, $2, $3)"),
			invocationID, key, value); err != nil {
			return errors.Wrapf(err, "failed to save metadata %s for invocation %s", key, invocationID)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) upsertStatement() string {
	if s.db.Driver() == database.DriverMySQL {
		return "INSERT INTO task_status (invocation_id, status, message, updated_at) VALUES (?, ?, ?, NOW())" +
			" ON DUPLICATE KEY UPDATE status = VALUES(status), message = VALUES(message), updated_at = NOW()"
	}
	return "INSERT INTO task_status (invocation_id, status, message, updated_at) VALUES ($1, $2, $3, NOW())" +
		" ON CONFLICT (invocation_id) DO UPDATE SET status = EXCLUDED.status, message = EXCLUDED.message, updated_at = NOW()"
}

// rebind rewrites postgres-style placeholders for mysql.
func (s *SQLStore) rebind(query string) string {
	if s.db.Driver() != database.DriverMySQL {
		return query
	}
	out := make([]byte, 0, len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' {
			out = append(out, '?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// SQLItemStatus pushes per-item status transitions into the check_item
// table. Failures are logged, not returned: the push is fire-and-forget.
type SQLItemStatus struct {
	db  *database.DB
	log *logrus.Entry
}

var _ ItemStatus = (*SQLItemStatus)(nil)

// NewSQLItemStatus creates an ItemStatus over an open connection.
func NewSQLItemStatus(db *database.DB, log *logrus.Entry) *SQLItemStatus {
	return &SQLItemStatus{db: db, log: log}
}

func (s *SQLItemStatus) Transition(itemID, newStatus string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := "UPDATE check_item SET status = $1 WHERE id = $2"
	if s.db.Driver() == database.DriverMySQL {
		query = "UPDATE check_item SET status = ? WHERE id = ?"
	}
	if _, err := database.Update(ctx, s.db, query, newStatus, itemID); err != nil {
		s.log.Errorf("Failed to transition item %s to %s: %v", itemID, newStatus, err)
	}
}
