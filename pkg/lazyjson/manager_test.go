package lazyjson

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type testSettings struct {
	DownloadURL string `json:"download_url"`
	Retries     int    `json:"retries"`
	Verbose     bool   `json:"verbose"`
}

func TestNewIsLazy(t *testing.T) {
	mgr := New[testSettings](filepath.Join(t.TempDir(), "settings.json"))
	if mgr.IsLoaded() {
		t.Error("expected manager to not be loaded initially")
	}
	if mgr.IsDirty() {
		t.Error("expected manager to not be dirty initially")
	}
}

func TestMissingFileCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	mgr := New[testSettings](path, WithDefaultValue(func() *testSettings {
		return &testSettings{DownloadURL: "https://example.com", Retries: 3}
	}))

	s, err := mgr.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.DownloadURL != "https://example.com" || s.Retries != 3 {
		t.Errorf("unexpected default: %+v", s)
	}
	if !mgr.IsDirty() {
		t.Error("a freshly created document should be dirty")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Get must not write the file")
	}
}

func TestExistingFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"retries":7}`), 0644); err != nil {
		t.Fatal(err)
	}
	mgr := New[testSettings](path, WithDefaultValue(func() *testSettings {
		return &testSettings{DownloadURL: "https://example.com", Retries: 3}
	}))

	s, err := mgr.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Retries != 7 {
		t.Errorf("Retries = %d, want 7", s.Retries)
	}
	if s.DownloadURL != "https://example.com" {
		t.Errorf("DownloadURL = %q, want default kept", s.DownloadURL)
	}
	if mgr.IsDirty() {
		t.Error("expected clean state after load")
	}
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	mgr := New[testSettings](path)

	err := mgr.Update(func(s *testSettings) error {
		s.Verbose = true
		s.Retries = 2
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if mgr.IsDirty() {
		t.Error("expected clean state after Update")
	}

	again := New[testSettings](path)
	s, err := again.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !s.Verbose || s.Retries != 2 {
		t.Errorf("unexpected persisted value: %+v", s)
	}
}

func TestSaveNotDirtyIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"retries":1}`), 0644); err != nil {
		t.Fatal(err)
	}
	mgr := New[testSettings](path)
	if _, err := mgr.Get(); err != nil {
		t.Fatal(err)
	}
	before, _ := os.Stat(path)
	if err := mgr.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	after, _ := os.Stat(path)
	if !before.ModTime().Equal(after.ModTime()) {
		t.Error("file should not be rewritten")
	}
}

func TestReloadDiscardsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"download_url":"initial"}`), 0644); err != nil {
		t.Fatal(err)
	}
	mgr := New[testSettings](path)
	mgr.Modify(func(s *testSettings) error {
		s.DownloadURL = "changed"
		return nil
	})
	if err := mgr.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	s, _ := mgr.Get()
	if s.DownloadURL != "initial" {
		t.Errorf("DownloadURL = %q, want initial", s.DownloadURL)
	}
}

func TestCreateIfMissingFalse(t *testing.T) {
	mgr := New[testSettings](filepath.Join(t.TempDir(), "none.json"), WithCreateIfMissing[testSettings](false))
	if _, err := mgr.Get(); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCompactAndMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	mgr := New[testSettings](path, WithIndent[testSettings](""), WithFileMode[testSettings](0600))
	if err := mgr.Update(func(s *testSettings) error { s.Retries = 1; return nil }); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %o, want 600", info.Mode().Perm())
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != `{"download_url":"","retries":1,"verbose":false}` {
		t.Errorf("unexpected compact output: %s", raw)
	}
}

func TestConcurrentAccess(t *testing.T) {
	mgr := New[testSettings](filepath.Join(t.TempDir(), "settings.json"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := mgr.Get(); err != nil {
					t.Errorf("Get: %v", err)
				}
			}
		}()
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				mgr.Modify(func(s *testSettings) error {
					s.Retries = id*100 + j
					return nil
				})
			}
		}(i)
	}
	wg.Wait()

	if err := mgr.Save(); err != nil {
		t.Errorf("Save: %v", err)
	}
}
