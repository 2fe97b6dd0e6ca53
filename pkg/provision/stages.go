package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ula/pkg/archive"
	"ula/pkg/cache"
	"ula/pkg/display"
	"ula/pkg/platform"
)

// DownloadStage retrieves the rootfs archive unless it is already in place.
func DownloadStage(ctx context.Context, p *Provisioner, plan *Plan, task display.Task) error {
	if _, err := os.Stat(plan.ArchivePath); err == nil {
		slog.Debug("Rootfs archive present", "path", plan.ArchivePath)
		return nil
	}
	if plan.URL == "" {
		return fmt.Errorf("no archive at %s and no url to fetch it from", plan.ArchivePath)
	}

	task.SetStage("Download", plan.URL)
	slog.Info("Downloading rootfs", "url", plan.URL, "path", plan.ArchivePath)
	return cache.Ensure(ctx, plan.ArchivePath, func(ctx context.Context) error {
		tmp := plan.ArchivePath + ".part"
		f, err := os.Create(tmp)
		if err != nil {
			return err
		}
		defer os.Remove(tmp)

		err = p.downloader.Download(ctx, plan.URL, f, task)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		return os.Rename(tmp, plan.ArchivePath)
	})
}

// ExtractStage unpacks the archive into a scratch directory next to the
// install path, then moves the entries in. support/ is left alone.
func ExtractStage(ctx context.Context, p *Provisioner, plan *Plan, task display.Task) error {
	task.SetStage("Extract", plan.InstallPath)
	slog.Info("Extracting rootfs", "path", plan.InstallPath)
	return cache.Ensure(ctx, plan.extractedMarker(), func(ctx context.Context) error {
		tmpDir := plan.InstallPath + ".extracting"
		if err := os.RemoveAll(tmpDir); err != nil {
			return err
		}
		if err := os.MkdirAll(tmpDir, 0755); err != nil {
			return err
		}
		defer os.RemoveAll(tmpDir)

		if err := archive.Extract(ctx, plan.ArchivePath, tmpDir); err != nil {
			return err
		}
		if err := moveEntries(tmpDir, plan.InstallPath); err != nil {
			return err
		}
		return os.WriteFile(plan.extractedMarker(), nil, 0644)
	})
}

func moveEntries(from, to string) error {
	entries, err := os.ReadDir(from)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name() == "support" {
			continue
		}
		dest := filepath.Join(to, e.Name())
		if err := os.RemoveAll(dest); err != nil {
			return err
		}
		if err := os.Rename(filepath.Join(from, e.Name()), dest); err != nil {
			return err
		}
	}
	return nil
}

// LinkStage links every file of the support assets dir into support/.
func LinkStage(ctx context.Context, p *Provisioner, plan *Plan, task display.Task) error {
	if plan.SupportAssetsDir == "" {
		return nil
	}
	if _, err := os.Stat(plan.SupportAssetsDir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	task.SetStage("Link", plan.SupportAssetsDir)
	links, err := platform.DiscoverSymlinks(plan.SupportAssetsDir, map[string]string{"*": "support"})
	if err != nil {
		return err
	}
	return platform.Symlinker{}.CreateSymlinks(plan.InstallPath, links)
}

// Provision runs download, extract and link. It returns early when the
// filesystem has already been extracted. On success fs.IsExtracted is set;
// persisting the record is up to the caller.
func (p *Provisioner) Provision(ctx context.Context, plan *Plan, task display.Task) error {
	return p.run(ctx, plan, task, []namedStage{
		{"download", DownloadStage},
		{"extract", ExtractStage},
		{"link", LinkStage},
	})
}

// Extract is Provision without the download, for archives already in place.
func (p *Provisioner) Extract(ctx context.Context, plan *Plan, task display.Task) error {
	return p.run(ctx, plan, task, []namedStage{
		{"extract", ExtractStage},
		{"link", LinkStage},
	})
}

type namedStage struct {
	name string
	fn   Stage
}

func (p *Provisioner) run(ctx context.Context, plan *Plan, task display.Task, stages []namedStage) error {
	if _, err := os.Stat(plan.extractedMarker()); err == nil {
		slog.Debug("Filesystem already extracted", "path", plan.InstallPath)
		plan.Filesystem.IsExtracted = true
		return nil
	}
	for _, s := range stages {
		if err := s.fn(ctx, p, plan, task); err != nil {
			return fmt.Errorf("%s stage failed: %w", s.name, err)
		}
	}
	plan.Filesystem.IsExtracted = true
	slog.Info("Provisioning complete", "filesystem", plan.Filesystem.Name, "id", plan.Filesystem.ID)
	return nil
}
