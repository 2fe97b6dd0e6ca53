// Package provision puts a rootfs in place for a filesystem record:
// it downloads the catalog archive into support/, unpacks it into the
// filesystem directory and links the host support files next to it.
package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ula/pkg/common"
	"ula/pkg/config"
	"ula/pkg/display"
	"ula/pkg/downloader"
	"ula/pkg/filesystem"
)

// Plan contains the paths for provisioning one filesystem.
type Plan struct {
	// Filesystem is the record being provisioned.
	Filesystem *common.Filesystem
	// URL is the rootfs archive to download. Empty when the archive is
	// already in place (imported backups).
	URL string
	// ArchivePath is <filesDir>/<id>/support/rootfs.tar.gz.
	ArchivePath string
	// InstallPath is the directory the rootfs is unpacked into.
	InstallPath string
	// SupportAssetsDir holds host files linked into support/.
	SupportAssetsDir string
}

// Stage is one step of provisioning.
type Stage func(ctx context.Context, p *Provisioner, plan *Plan, task display.Task) error

// NewPlan computes the paths for fs under the configured files dir.
func NewPlan(cfg config.ReadOnly, fs *common.Filesystem, url string) (*Plan, error) {
	if fs.ID == 0 {
		return nil, fmt.Errorf("filesystem %q has not been saved", fs.Name)
	}
	filesDir := cfg.GetFilesDir()
	if err := os.MkdirAll(filesystem.SupportDir(filesDir, fs.ID), 0755); err != nil {
		return nil, err
	}
	return &Plan{
		Filesystem:       fs,
		URL:              url,
		ArchivePath:      filesystem.ArchivePath(filesDir, fs.ID),
		InstallPath:      filesystem.Dir(filesDir, fs.ID),
		SupportAssetsDir: cfg.GetSupportAssetsDir(),
	}, nil
}

// extractedMarker exists once the archive has been fully unpacked.
func (p *Plan) extractedMarker() string {
	return filepath.Join(p.InstallPath, "support", ".extracted")
}

// Mutable
type Provisioner struct {
	downloader downloader.Downloader
}

// New creates a provisioner fetching archives through d.
func New(d downloader.Downloader) *Provisioner {
	return &Provisioner{downloader: d}
}
