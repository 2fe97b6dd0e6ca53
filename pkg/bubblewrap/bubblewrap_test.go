package bubblewrap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ula/pkg/common"
)

func TestAddEnvFirst(t *testing.T) {
	b := Create()
	b.SetEnv("TEST_VAR", "a:b:c")

	b.AddEnvFirst("TEST_VAR", "d")
	if b.envs["TEST_VAR"] != "d:a:b:c" {
		t.Errorf("Expected d:a:b:c, got %s", b.envs["TEST_VAR"])
	}

	b.AddEnvFirst("TEST_VAR", "b")
	if b.envs["TEST_VAR"] != "b:d:a:c" {
		t.Errorf("Expected b:d:a:c, got %s", b.envs["TEST_VAR"])
	}

	b.AddEnvFirst("TEST_VAR", "b")
	if b.envs["TEST_VAR"] != "b:d:a:c" {
		t.Errorf("Expected b:d:a:c, got %s", b.envs["TEST_VAR"])
	}

	b.AddEnvFirst("NEW_VAR", "foo")
	if b.envs["NEW_VAR"] != "foo" {
		t.Errorf("Expected foo, got %s", b.envs["NEW_VAR"])
	}
}

func TestCmdGeneration(t *testing.T) {
	b := Create()
	b.SetCommand("/bin/bash", "-c", "echo hello")
	b.AddBind(BIND_RO, "/etc")
	b.AddMapBind(BIND, "/data/fs/1", "/")
	b.AddVirtual(PROC, "/proc")
	b.SetEnv("PATH", "/usr/bin")
	b.AddEnvFirst("PATH", "/custom/bin")

	args := strings.Join(b.Cmd().Args, " ")
	for _, sub := range []string{
		"--clearenv",
		"--bind /data/fs/1 / --ro-bind /etc /etc --proc /proc",
		"--setenv PATH /custom/bin:/usr/bin",
		"-- /bin/bash -c echo hello",
	} {
		if !strings.Contains(args, sub) {
			t.Errorf("Expected args to contain %q, got: %s", sub, args)
		}
	}
}

func TestForSession(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "bin"), 0755); err != nil {
		t.Fatal(err)
	}
	assets := t.TempDir()

	cfg, err := ForSession(SessionInfo{
		RootDir:          root,
		SupportAssetsDir: assets,
		Session:          &common.Session{Name: "dev", Username: "user", ServiceType: common.ServiceSSH},
	})
	if err != nil {
		t.Fatalf("ForSession: %v", err)
	}

	if cfg.Exe != "/usr/sbin/sshd" {
		t.Errorf("Exe = %q", cfg.Exe)
	}
	if cfg.Binds[0].Target != "/" || cfg.Binds[0].Source != root {
		t.Errorf("first bind must be the rootfs, got %+v", cfg.Binds[0])
	}
	args := strings.Join(Args(cfg), " ")
	for _, sub := range []string{
		"--ro-bind " + assets + " " + assets,
		"--setenv HOME /home/user",
		"--setenv PATH /support:" + DefaultPath,
		"--chdir /home/user",
	} {
		if !strings.Contains(args, sub) {
			t.Errorf("Expected args to contain %q, got: %s", sub, args)
		}
	}
}

func TestForSessionRequiresExtraction(t *testing.T) {
	_, err := ForSession(SessionInfo{RootDir: t.TempDir(), Session: &common.Session{Name: "x"}})
	if err == nil {
		t.Fatal("expected error for unextracted filesystem")
	}
}

func TestServiceCommand(t *testing.T) {
	if _, err := ServiceCommand("telnet"); err == nil {
		t.Error("expected error for unknown service")
	}
	cmd, err := ServiceCommand(common.ServiceShell)
	if err != nil || cmd[0] != "/bin/sh" {
		t.Errorf("shell command = %v, %v", cmd, err)
	}
}
