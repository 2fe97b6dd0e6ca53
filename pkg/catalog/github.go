package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/itchyny/gojq"

	"ula/pkg/common"
	"ula/pkg/downloader"
)

// DefaultGitHubAPI is the base URL of the GitHub REST API.
const DefaultGitHubAPI = "https://api.github.com"

const releaseQuery = `
.[]
| select((.draft | not) and (.prerelease | not))
| .tag_name as $version
| .assets[]
| select(.name | endswith($suffix))
| {name: .name, url: .browser_download_url, size: (.size // 0), version: $version}
`

var releaseCode = mustCompile(releaseQuery, "$suffix")

func mustCompile(src string, vars ...string) *gojq.Code {
	q, err := gojq.Parse(src)
	if err != nil {
		panic(err)
	}
	code, err := gojq.Compile(q, gojq.WithVariables(vars))
	if err != nil {
		panic(err)
	}
	return code
}

// Immutable
type gitHubReleases struct {
	repo    string
	apiBase string
	opener  downloader.Opener
}

type GitHubReleases = *gitHubReleases

// NewGitHubReleases reads release assets of repo ("owner/name").
func NewGitHubReleases(repo string, opener downloader.Opener) GitHubReleases {
	return &gitHubReleases{repo: repo, apiBase: DefaultGitHubAPI, opener: opener}
}

// WithAPIBase points the source at another API endpoint.
func (g *gitHubReleases) WithAPIBase(base string) GitHubReleases {
	c := *g
	c.apiBase = base
	return &c
}

func (g *gitHubReleases) Assets(ctx context.Context, arch common.ArchType) ([]Asset, error) {
	uri := fmt.Sprintf("%s/repos/%s/releases", g.apiBase, g.repo)
	body, err := fetch(ctx, g.opener, uri)
	if err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode releases of %s: %w", g.repo, err)
	}

	var assets []Asset
	iter := releaseCode.RunWithContext(ctx, payload, AssetSuffix(arch))
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("query releases of %s: %w", g.repo, err)
		}
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		assets = append(assets, Asset{
			Name:    str(m["name"]),
			URL:     str(m["url"]),
			Version: str(m["version"]),
			Size:    num(m["size"]),
		})
	}
	slog.Debug("Read GitHub releases", "repo", g.repo, "arch", arch, "assets", len(assets))
	return assets, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	}
	return 0
}
