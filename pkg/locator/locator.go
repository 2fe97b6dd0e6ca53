// Package locator finds per-app assets (icon, description) kept under the
// apps directory, laid out as <appsDir>/<app>/<app>.png and <app>.txt.
package locator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"ula/pkg/display"
	"ula/pkg/downloader"
)

// Immutable
type locator struct {
	appsDir             string
	defaultIconURI      string
	descriptionNotFound string
}

type Locator = *locator

// New creates a locator rooted at appsDir. defaultIconURI and
// descriptionNotFound are returned when an asset is missing.
func New(appsDir, defaultIconURI, descriptionNotFound string) Locator {
	return &locator{
		appsDir:             appsDir,
		defaultIconURI:      defaultIconURI,
		descriptionNotFound: descriptionNotFound,
	}
}

// ErrInvalidAppName is returned for names that are not a single path element.
var ErrInvalidAppName = errors.New("invalid app name")

func validApp(app string) bool {
	return app != "" && app != "." && app != ".." && filepath.Base(app) == app
}

func (l *locator) iconPath(app string) string {
	return filepath.Join(l.appsDir, app, app+".png")
}

func (l *locator) descriptionPath(app string) string {
	return filepath.Join(l.appsDir, app, app+".txt")
}

// FindIconURI returns a file URI for the app icon, or the default icon URI.
func (l *locator) FindIconURI(app string) string {
	if !validApp(app) {
		return l.defaultIconURI
	}
	p := l.iconPath(app)
	if info, err := os.Stat(p); err != nil || info.IsDir() {
		return l.defaultIconURI
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// FindAppDescription returns the description text, or the not-found text.
func (l *locator) FindAppDescription(app string) string {
	if !validApp(app) {
		return l.descriptionNotFound
	}
	b, err := os.ReadFile(l.descriptionPath(app))
	if err != nil {
		return l.descriptionNotFound
	}
	return string(b)
}

// ListApps returns the apps that have a description file, sorted.
func (l *locator) ListApps() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(l.appsDir), "*/*.txt")
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	var apps []string
	for _, m := range matches {
		dir, file := path.Split(m)
		app := strings.TrimSuffix(dir, "/")
		if file == app+".txt" {
			apps = append(apps, app)
		}
	}
	sort.Strings(apps)
	return apps, nil
}

// FetchAssets downloads the icon and description of app from
// <baseURL>/<app>/ into the apps directory, both at once.
func (l *locator) FetchAssets(ctx context.Context, d downloader.Downloader, disp display.Display, app, baseURL string) error {
	if !validApp(app) {
		return fmt.Errorf("%w: %q", ErrInvalidAppName, app)
	}
	if err := os.MkdirAll(filepath.Join(l.appsDir, app), 0755); err != nil {
		return fmt.Errorf("create app dir: %w", err)
	}
	base := strings.TrimSuffix(baseURL, "/") + "/" + url.PathEscape(app) + "/"

	g, ctx := errgroup.WithContext(ctx)
	for _, dest := range []string{l.iconPath(app), l.descriptionPath(app)} {
		g.Go(func() error {
			uri := base + filepath.Base(dest)
			var task display.Task = display.NopTask{}
			if disp != nil {
				task = disp.StartTask(filepath.Base(dest))
				defer task.Done()
			}
			return fetchFile(ctx, d, uri, dest, task)
		})
	}
	return g.Wait()
}

func fetchFile(ctx context.Context, d downloader.Downloader, uri, dest string, task display.Task) error {
	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	err = d.Download(ctx, uri, f, task)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("fetch %s: %w", uri, err)
	}
	slog.Debug("Fetched app asset", "uri", uri, "dest", dest)
	return os.Rename(tmp, dest)
}

// Assets reports which assets of app are present.
func (l *locator) Assets(app string) (icon, description bool) {
	if !validApp(app) {
		return false, false
	}
	return exists(l.iconPath(app)), exists(l.descriptionPath(app))
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
