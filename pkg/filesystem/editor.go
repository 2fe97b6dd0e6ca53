// Package filesystem edits filesystem records and imports, exports and
// verifies rootfs backups.
//
// Files for a filesystem live under <filesDir>/<id>/; an imported backup
// lands in <filesDir>/<id>/support/rootfs.tar.gz.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"ula/pkg/common"
	"ula/pkg/display"
	"ula/pkg/downloader"
)

// ErrNoBackupURI is returned by ImportBackup when no source is staged.
var ErrNoBackupURI = errors.New("no backup uri selected")

// Database is the part of the store the editor writes to.
type Database interface {
	InsertFilesystem(ctx context.Context, fs *common.Filesystem) (int64, error)
	UpdateFilesystem(ctx context.Context, fs *common.Filesystem) error
	DeleteFilesystem(ctx context.Context, id int64) error
	UpdateFilesystemNamesForAllSessions(ctx context.Context) error
}

// Mutable
type editor struct {
	db      Database
	opener  downloader.Opener
	display display.Display

	mu        sync.Mutex
	backupURI string

	postMu   sync.Mutex
	statuses chan ImportStatus

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Editor = *editor

// NewEditor creates an editor writing through db and reading backups
// through opener. d may be nil.
func NewEditor(db Database, opener downloader.Opener, d display.Display) Editor {
	ctx, cancel := context.WithCancel(context.Background())
	return &editor{
		db:       db,
		opener:   opener,
		display:  d,
		statuses: make(chan ImportStatus, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetBackupURI stages the source for the next import. The last writer wins.
func (e *editor) SetBackupURI(uri string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.backupURI = uri
}

func (e *editor) BackupURI() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backupURI
}

// ImportStatuses delivers import outcomes. Only the latest undelivered
// status is kept; an observer that falls behind sees the newest one.
func (e *editor) ImportStatuses() <-chan ImportStatus {
	return e.statuses
}

func (e *editor) InsertFilesystem(ctx context.Context, fs *common.Filesystem) (int64, error) {
	id, err := e.db.InsertFilesystem(ctx, fs)
	if err != nil {
		return 0, fmt.Errorf("insert filesystem %q: %w", fs.Name, err)
	}
	return id, nil
}

// UpdateFilesystem saves fs and refreshes the filesystem name on sessions.
func (e *editor) UpdateFilesystem(ctx context.Context, fs *common.Filesystem) error {
	if err := e.db.UpdateFilesystem(ctx, fs); err != nil {
		return fmt.Errorf("update filesystem %d: %w", fs.ID, err)
	}
	if err := e.db.UpdateFilesystemNamesForAllSessions(ctx); err != nil {
		return fmt.Errorf("refresh session names: %w", err)
	}
	return nil
}

// DeleteFilesystem removes the row (and its sessions) and the files.
func (e *editor) DeleteFilesystem(ctx context.Context, id int64, filesDir string) error {
	if err := e.db.DeleteFilesystem(ctx, id); err != nil {
		return fmt.Errorf("delete filesystem %d: %w", id, err)
	}
	if err := os.RemoveAll(Dir(filesDir, id)); err != nil {
		return fmt.Errorf("remove files of filesystem %d: %w", id, err)
	}
	return nil
}

// InsertFilesystemFromBackup imports the staged backup on a background
// goroutine and posts exactly one status to ImportStatuses. The returned
// channel is closed once the import has finished.
func (e *editor) InsertFilesystemFromBackup(fs *common.Filesystem, filesDir string) <-chan struct{} {
	done := make(chan struct{})
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(done)

		_, err := e.ImportBackup(e.ctx, fs, filesDir)
		switch {
		case errors.Is(err, ErrNoBackupURI):
			e.post(URIUnselected{})
		case err != nil:
			slog.Warn("Backup import failed", "name", fs.Name, "error", err)
			e.post(ImportFailure{Reason: err.Error()})
		default:
			e.post(ImportSuccess{})
		}
	}()
	return done
}

// ImportBackup copies the staged backup into a staging file under
// filesDir, and only then inserts fs (marked as created from backup) and
// moves the copy to <filesDir>/<id>/support/rootfs.tar.gz. Nothing is
// left in the database when it fails. The staged URI is cleared whatever
// the outcome.
func (e *editor) ImportBackup(ctx context.Context, fs *common.Filesystem, filesDir string) (int64, error) {
	uri := e.BackupURI()
	defer e.SetBackupURI("")
	if uri == "" {
		return 0, ErrNoBackupURI
	}

	staged, err := e.stage(ctx, uri, filesDir)
	if err != nil {
		return 0, err
	}
	defer os.Remove(staged)

	fs.IsCreatedFromBackup = true
	id, err := e.db.InsertFilesystem(ctx, fs)
	if err != nil {
		return 0, fmt.Errorf("insert filesystem %q: %w", fs.Name, err)
	}

	if err := place(staged, filesDir, id); err != nil {
		e.rollback(ctx, id, filesDir)
		return 0, err
	}
	slog.Info("Imported backup", "id", id, "name", fs.Name, "source", uri)
	return id, nil
}

// stage copies uri into a uniquely named file under filesDir.
func (e *editor) stage(ctx context.Context, uri, filesDir string) (string, error) {
	if err := os.MkdirAll(filesDir, 0755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}

	src, size, err := e.opener.Open(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("open backup: %w", err)
	}
	defer src.Close()

	path := filepath.Join(filesDir, ".import-"+uuid.NewString())
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}

	task := e.startTask("Import")
	defer task.Done()
	task.SetStage("Copy", uri)

	_, err = downloader.Copy(ctx, dst, src, size, task)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("copy backup: %w", err)
	}
	return path, nil
}

func place(staged, filesDir string, id int64) error {
	if err := os.MkdirAll(SupportDir(filesDir, id), 0755); err != nil {
		return fmt.Errorf("create support dir: %w", err)
	}
	if err := os.Rename(staged, ArchivePath(filesDir, id)); err != nil {
		return fmt.Errorf("move backup into place: %w", err)
	}
	return nil
}

func (e *editor) rollback(ctx context.Context, id int64, filesDir string) {
	ctx = context.WithoutCancel(ctx)
	if err := e.db.DeleteFilesystem(ctx, id); err != nil {
		slog.Error("Failed to roll back filesystem row", "id", id, "error", err)
	}
	if err := os.RemoveAll(Dir(filesDir, id)); err != nil {
		slog.Error("Failed to roll back filesystem files", "id", id, "error", err)
	}
}

// post replaces any undelivered status with s.
func (e *editor) post(s ImportStatus) {
	e.postMu.Lock()
	defer e.postMu.Unlock()
	select {
	case <-e.statuses:
	default:
	}
	e.statuses <- s
}

func (e *editor) startTask(name string) display.Task {
	if e.display == nil {
		return display.NopTask{}
	}
	return e.display.StartTask(name)
}

// Close cancels in-flight imports and waits for them to post their status.
func (e *editor) Close() {
	e.cancel()
	e.wg.Wait()
}
