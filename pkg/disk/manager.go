// Package disk reports and reclaims the local storage used by ula.
package disk

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ula/pkg/common"
	"ula/pkg/platform"
)

func (m *manager) Info() (*common.ExecutionResult, error) {
	stats, total := m.GetInfo()
	table := &common.Table{
		Header: []string{"Type", "Size", "Items", "Path"},
	}
	for _, s := range stats {
		table.Rows = append(table.Rows, []string{s.Label, FormatSize(s.Size), fmt.Sprintf("%d", s.Items), s.Path})
	}

	out := &common.Output{
		Table: table,
		KV:    []common.KV{{Key: "Total", Value: FormatSize(total)}},
	}
	if free, err := m.Free(); err == nil {
		out.KV = append(out.KV, common.KV{Key: "Free", Value: free.Available()})
	} else {
		slog.Debug("Cannot read free space", "error", err)
	}
	return &common.ExecutionResult{Output: out}, nil
}

// Free measures the space left on the state directory's filesystem.
func (m *manager) Free() (*platform.StorageUtility, error) {
	dir := m.cfg.GetStateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	stat, err := platform.Statfs(dir)
	if err != nil {
		return nil, err
	}
	return platform.NewStorageUtility(stat), nil
}

func (m *manager) CleanDir() (*common.ExecutionResult, error) {
	cleaned := m.Clean()
	for _, p := range cleaned {
		slog.Info("Cleaning", "path", p)
	}
	return &common.ExecutionResult{
		Output: &common.Output{
			Message: fmt.Sprintf("Clean complete (%d removed)", len(cleaned)),
		},
	}, nil
}

func (m *manager) GetInfo() ([]Usage, int64) {
	entries := []struct{ label, path string }{
		{"Filesystems", m.cfg.GetFilesDir()},
		{"Apps", m.cfg.GetAppsDir()},
		{"Support", m.cfg.GetSupportAssetsDir()},
		{"Downloads", m.cfg.GetDownloadDir()},
	}
	var total int64
	var stats []Usage
	for _, e := range entries {
		size, count := DirSize(e.path)
		// apps/ lives inside the files dir.
		if e.label != "Apps" {
			total += size
		}
		stats = append(stats, Usage{Label: e.label, Size: size, Items: count, Path: e.path})
	}
	return stats, total
}

// Clean empties the download cache and removes leftovers of interrupted
// imports (".import-*" staging files) and extractions ("*.extracting").
func (m *manager) Clean() []string {
	var cleaned []string
	if dir := m.cfg.GetDownloadDir(); exists(dir) {
		os.RemoveAll(dir)
		os.MkdirAll(dir, 0755)
		cleaned = append(cleaned, dir)
	}

	entries, err := os.ReadDir(m.cfg.GetFilesDir())
	if err != nil {
		return cleaned
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".import-") || strings.HasSuffix(name, ".extracting") {
			p := filepath.Join(m.cfg.GetFilesDir(), name)
			if err := os.RemoveAll(p); err == nil {
				cleaned = append(cleaned, p)
			}
		}
	}
	return cleaned
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
