package provision

import (
	"archive/tar"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/gzip"

	"ula/pkg/common"
	"ula/pkg/config"
	"ula/pkg/display"
	"ula/pkg/downloader"
)

func rootfsServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gw := gzip.NewWriter(w)
		tw := tar.NewWriter(gw)

		content := []byte("ID=debian\n")
		tw.WriteHeader(&tar.Header{Name: "etc/", Typeflag: tar.TypeDir, Mode: 0755})
		tw.WriteHeader(&tar.Header{Name: "etc/os-release", Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(content))})
		tw.Write(content)

		tw.Close()
		gw.Close()
	}))
}

func newConfig(t *testing.T) config.ReadOnly {
	dir := t.TempDir()
	return config.NewForDirs(filepath.Join(dir, "cache"), filepath.Join(dir, "config"), filepath.Join(dir, "state"))
}

func TestProvision(t *testing.T) {
	var hits atomic.Int32
	ts := rootfsServer(t, &hits)
	defer ts.Close()

	cfg := newConfig(t)
	assets := cfg.GetSupportAssetsDir()
	if err := os.MkdirAll(assets, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assets, "busybox"), []byte("#!"), 0755); err != nil {
		t.Fatal(err)
	}

	fs := &common.Filesystem{ID: 1, Name: "debian"}
	plan, err := NewPlan(cfg, fs, ts.URL+"/arm64-rootfs.tar.gz")
	if err != nil {
		t.Fatal(err)
	}

	p := New(downloader.NewDownloader(0))
	if err := p.Provision(context.Background(), plan, display.NopTask{}); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if !fs.IsExtracted {
		t.Error("filesystem should be marked extracted")
	}

	if _, err := os.Stat(plan.ArchivePath); err != nil {
		t.Errorf("archive missing: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(plan.InstallPath, "etc", "os-release"))
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if string(content) != "ID=debian\n" {
		t.Errorf("content mismatch: %q", content)
	}
	link, err := os.Readlink(filepath.Join(plan.InstallPath, "support", "busybox"))
	if err != nil || link != filepath.Join(assets, "busybox") {
		t.Errorf("support link = %q, %v", link, err)
	}

	// Second run is a no-op.
	if err := p.Provision(context.Background(), plan, display.NopTask{}); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("archive downloaded %d times", n)
	}
}

func TestExtractWithoutURL(t *testing.T) {
	var hits atomic.Int32
	ts := rootfsServer(t, &hits)
	defer ts.Close()

	cfg := newConfig(t)
	fs := &common.Filesystem{ID: 2, Name: "restored", IsCreatedFromBackup: true}
	plan, err := NewPlan(cfg, fs, "")
	if err != nil {
		t.Fatal(err)
	}

	p := New(downloader.NewDownloader(0))
	if err := p.Provision(context.Background(), plan, display.NopTask{}); err == nil {
		t.Fatal("expected error without archive or url")
	}

	// Place an archive as an import would.
	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	f, _ := os.Create(plan.ArchivePath)
	f.ReadFrom(resp.Body)
	f.Close()
	resp.Body.Close()

	if err := p.Extract(context.Background(), plan, display.NopTask{}); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(plan.InstallPath, "etc", "os-release")); err != nil {
		t.Errorf("extracted file missing: %v", err)
	}
}

func TestNewPlanRequiresID(t *testing.T) {
	if _, err := NewPlan(newConfig(t), &common.Filesystem{Name: "unsaved"}, ""); err == nil {
		t.Error("expected error for unsaved filesystem")
	}
}
