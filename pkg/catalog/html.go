package catalog

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ula/pkg/common"
	"ula/pkg/downloader"
)

// Immutable
type htmlIndex struct {
	pageURL string
	opener  downloader.Opener
}

type HTMLIndex = *htmlIndex

// NewHTMLIndex reads asset links from an index page such as an Apache or
// nginx directory listing.
func NewHTMLIndex(pageURL string, opener downloader.Opener) HTMLIndex {
	return &htmlIndex{pageURL: pageURL, opener: opener}
}

// Assets returns matching links in page order, reversed so that the
// last listed (usually newest) comes first.
func (h *htmlIndex) Assets(ctx context.Context, arch common.ArchType) ([]Asset, error) {
	base, err := url.Parse(h.pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	body, err := fetch(ctx, h.opener, h.pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse catalog page: %w", err)
	}

	suffix := AssetSuffix(arch)
	seen := map[string]bool{}
	var assets []Asset
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil || !strings.HasSuffix(ref.Path, suffix) {
			return
		}
		abs := base.ResolveReference(ref).String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		assets = append(assets, Asset{
			Name:    path.Base(ref.Path),
			URL:     abs,
			Version: versionFromPath(ref.Path),
		})
	})

	for i, j := 0, len(assets)-1; i < j; i, j = i+1, j-1 {
		assets[i], assets[j] = assets[j], assets[i]
	}
	return assets, nil
}

// versionFromPath takes the parent directory name, if any, as the version
// ("v4.0/arm64-rootfs.tar.gz" -> "v4.0").
func versionFromPath(p string) string {
	dir := path.Base(path.Dir(p))
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
