package filesystem

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ula/pkg/archive"
)

// Export packs the extracted tree of filesystem id into a gzip tarball at
// dest, leaving out ula's support/ directory.
func Export(ctx context.Context, filesDir string, id int64, dest string) error {
	dir := Dir(filesDir, id)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("filesystem %d has no files: %w", id, err)
	}
	if err := archive.CreateTarGz(ctx, dir, dest, []string{"support"}); err != nil {
		return fmt.Errorf("export filesystem %d: %w", id, err)
	}
	slog.Info("Exported filesystem", "id", id, "dest", dest)
	return nil
}

// VerifyBackup checks that path is a readable rootfs archive.
func VerifyBackup(path string) (archive.Summary, error) {
	sum, err := archive.Inspect(path)
	if err != nil {
		return sum, fmt.Errorf("verify %s: %w", path, err)
	}
	return sum, nil
}
