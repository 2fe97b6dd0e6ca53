package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ula/pkg/common"
)

// Symlinker creates symbolic links.
type Symlinker struct{}

// CreateSymlink creates linkPath pointing at targetPath.
func (Symlinker) CreateSymlink(targetPath, linkPath string) error {
	return os.Symlink(targetPath, linkPath)
}

// CreateSymlinks creates each link beneath root, making parent directories
// and replacing whatever already sits at the link path.
func (s Symlinker) CreateSymlinks(root string, links []common.Symlink) error {
	for _, l := range links {
		linkPath := filepath.Join(root, l.Target)

		if err := os.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
			return err
		}
		if _, err := os.Lstat(linkPath); err == nil {
			if err := os.Remove(linkPath); err != nil {
				return err
			}
		}
		if err := s.CreateSymlink(l.Source, linkPath); err != nil {
			return err
		}
	}
	return nil
}

// DiscoverSymlinks expands patterns of the form {"dir/*": "dest"} (or
// {"*": "dest"} for srcRoot itself) into one link per regular, non-hidden
// file. Other patterns map a single path.
func DiscoverSymlinks(srcRoot string, patterns map[string]string) ([]common.Symlink, error) {
	var links []common.Symlink
	for src, dest := range patterns {
		if src != "*" && !strings.HasSuffix(src, "/*") {
			links = append(links, common.Symlink{
				Source: filepath.Join(srcRoot, src),
				Target: dest,
			})
			continue
		}

		dir := filepath.Join(srcRoot, strings.TrimSuffix(src, "*"))
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read expansion directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			links = append(links, common.Symlink{
				Source: filepath.Join(dir, e.Name()),
				Target: filepath.Join(dest, e.Name()),
			})
		}
	}
	return links, nil
}
