package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ula/pkg/common"
)

const filesystemColumns = "id, name, distribution_type, arch_type, default_username, is_created_from_backup, is_extracted, created_at"

// InsertFilesystem stores fs and returns the generated id. fs.ID and
// fs.CreatedAt are filled in.
func (s *Store) InsertFilesystem(ctx context.Context, fs *common.Filesystem) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO filesystems (name, distribution_type, arch_type, default_username, is_created_from_backup, is_extracted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fs.Name, fs.DistributionType, string(fs.ArchType), fs.DefaultUsername,
		fs.IsCreatedFromBackup, fs.IsExtracted, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	fs.ID = id
	fs.CreatedAt = now
	return id, nil
}

// UpdateFilesystem overwrites the mutable fields of the row with fs.ID.
func (s *Store) UpdateFilesystem(ctx context.Context, fs *common.Filesystem) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE filesystems SET name = ?, distribution_type = ?, arch_type = ?, default_username = ?,
		 is_created_from_backup = ?, is_extracted = ? WHERE id = ?`,
		fs.Name, fs.DistributionType, string(fs.ArchType), fs.DefaultUsername,
		fs.IsCreatedFromBackup, fs.IsExtracted, fs.ID,
	)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// DeleteFilesystem removes the row and, by cascade, its sessions.
func (s *Store) DeleteFilesystem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM filesystems WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (s *Store) GetFilesystem(ctx context.Context, id int64) (*common.Filesystem, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+filesystemColumns+" FROM filesystems WHERE id = ?", id)
	fs, err := scanFilesystem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return fs, err
}

func (s *Store) ListFilesystems(ctx context.Context) ([]*common.Filesystem, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+filesystemColumns+" FROM filesystems ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*common.Filesystem
	for rows.Next() {
		fs, err := scanFilesystem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFilesystem(row scanner) (*common.Filesystem, error) {
	var fs common.Filesystem
	var arch, created string
	err := row.Scan(&fs.ID, &fs.Name, &fs.DistributionType, &arch, &fs.DefaultUsername,
		&fs.IsCreatedFromBackup, &fs.IsExtracted, &created)
	if err != nil {
		return nil, err
	}
	fs.ArchType = common.ArchType(arch)
	fs.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &fs, nil
}
