// Package catalog locates downloadable rootfs archives for an architecture.
//
// A catalog is either a GitHub repository publishing rootfs files as
// release assets ("owner/repo") or a plain HTML index page linking to them.
// Either way assets are recognised by name: "<arch>-rootfs.tar.gz".
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"ula/pkg/common"
	"ula/pkg/downloader"
)

// ErrNoAsset is returned when a catalog has nothing for the architecture.
var ErrNoAsset = errors.New("no rootfs asset for architecture")

// Asset is one downloadable rootfs archive.
type Asset struct {
	Name    string
	URL     string
	Version string
	// Size is in bytes, or 0 when the catalog does not say.
	Size int64
}

// Source lists the assets a catalog offers for arch, newest first.
type Source interface {
	Assets(ctx context.Context, arch common.ArchType) ([]Asset, error)
}

var githubRepo = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// SourceFor picks the source type from the configured catalog location.
func SourceFor(location string, opener downloader.Opener) (Source, error) {
	switch {
	case githubRepo.MatchString(location):
		return NewGitHubReleases(location, opener), nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"), strings.HasPrefix(location, "file://"):
		return NewHTMLIndex(location, opener), nil
	}
	return nil, fmt.Errorf("unrecognised catalog location %q", location)
}

// Latest returns the first asset src offers for arch.
func Latest(ctx context.Context, src Source, arch common.ArchType) (Asset, error) {
	assets, err := src.Assets(ctx, arch)
	if err != nil {
		return Asset{}, err
	}
	if len(assets) == 0 {
		return Asset{}, fmt.Errorf("%w %s", ErrNoAsset, arch)
	}
	return assets[0], nil
}

// AssetSuffix is the file name suffix of rootfs archives for arch.
func AssetSuffix(arch common.ArchType) string {
	return string(arch) + "-rootfs.tar.gz"
}

func fetch(ctx context.Context, opener downloader.Opener, uri string) ([]byte, error) {
	rc, _, err := opener.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog %s: %w", uri, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
