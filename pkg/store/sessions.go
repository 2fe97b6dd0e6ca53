package store

import (
	"context"
	"database/sql"
	"errors"

	"ula/pkg/common"
)

const sessionColumns = "id, name, filesystem_id, filesystem_name, username, service_type, active"

// InsertSession stores sess, copying the current name of its filesystem.
func (s *Store) InsertSession(ctx context.Context, sess *common.Session) (int64, error) {
	if sess.ServiceType == "" {
		sess.ServiceType = common.ServiceShell
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (name, filesystem_id, filesystem_name, username, service_type, active)
		 SELECT ?, id, name, ?, ?, ? FROM filesystems WHERE id = ?`,
		sess.Name, sess.Username, string(sess.ServiceType), sess.Active, sess.FilesystemID,
	)
	if err != nil {
		return 0, err
	}
	if err := affectedOne(res); err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	sess.ID = id
	return id, nil
}

// UpdateFilesystemNamesForAllSessions refreshes the denormalized
// filesystem name on every session.
func (s *Store) UpdateFilesystemNamesForAllSessions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET filesystem_name =
		 (SELECT name FROM filesystems WHERE filesystems.id = sessions.filesystem_id)
		 WHERE filesystem_id IN (SELECT id FROM filesystems)`)
	return err
}

func (s *Store) SetSessionActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE sessions SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (s *Store) DeleteSession(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (s *Store) GetSession(ctx context.Context, id int64) (*common.Session, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sess, err
}

func (s *Store) ListSessions(ctx context.Context) ([]*common.Session, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+sessionColumns+" FROM sessions ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*common.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func scanSession(row scanner) (*common.Session, error) {
	var sess common.Session
	var service string
	err := row.Scan(&sess.ID, &sess.Name, &sess.FilesystemID, &sess.FilesystemName,
		&sess.Username, &service, &sess.Active)
	if err != nil {
		return nil, err
	}
	sess.ServiceType = common.ServiceType(service)
	return &sess, nil
}
