package bubblewrap

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"ula/pkg/common"
)

// SessionInfo is what a session sandbox is built from.
type SessionInfo struct {
	// RootDir is the extracted filesystem, mounted as the guest "/".
	RootDir string
	// SupportAssetsDir is bound read-only at the same path so that the
	// links in support/ resolve inside the guest.
	SupportAssetsDir string
	Session          *common.Session
	// Command overrides the service's default command.
	Command []string
}

// GuestHome is the home directory of user inside the guest.
func GuestHome(user string) string {
	if user == "" || user == "root" {
		return "/root"
	}
	return path.Join("/home", user)
}

// ServiceCommand is what a session of the given type runs by default.
func ServiceCommand(service common.ServiceType) ([]string, error) {
	switch service {
	case common.ServiceShell, "":
		return []string{"/bin/sh", "-l"}, nil
	case common.ServiceSSH:
		return []string{"/usr/sbin/sshd", "-D", "-p", "2022"}, nil
	case common.ServiceVNC:
		return []string{"/usr/bin/vncserver", ":51", "-fg", "-localhost", "no"}, nil
	}
	return nil, fmt.Errorf("unknown service type %q", service)
}

// ForSession builds the sandbox that runs info.Session.
func ForSession(info SessionInfo) (*common.SandboxConfig, error) {
	if _, err := os.Stat(filepath.Join(info.RootDir, "bin")); err != nil {
		return nil, fmt.Errorf("filesystem at %s is not extracted: %w", info.RootDir, err)
	}

	command := info.Command
	if len(command) == 0 {
		var err error
		if command, err = ServiceCommand(info.Session.ServiceType); err != nil {
			return nil, err
		}
	}

	b := Create()
	b.AddFlag("--unshare-pid", "--die-with-parent")

	b.AddMapBind(BIND, info.RootDir, "/")
	b.AddVirtual(PROC, "/proc")
	b.AddVirtual(DEV, "/dev")
	b.AddVirtual(TMPFS, "/tmp")
	b.AddBind(BIND_RO, "/sys")
	b.AddBind(BIND_RO_TRY, "/etc/resolv.conf")
	if info.SupportAssetsDir != "" {
		if _, err := os.Stat(info.SupportAssetsDir); err == nil {
			b.AddBind(BIND_RO, info.SupportAssetsDir)
		}
	}

	user := info.Session.Username
	if user == "" {
		user = "root"
	}
	b.SetEnv("HOME", GuestHome(user))
	b.SetEnv("USER", user)
	b.SetEnv("LANG", "C.UTF-8")
	b.SetEnv("PATH", DefaultPath)
	b.AddEnvFirst("PATH", "/support")
	if term := os.Getenv("TERM"); term != "" {
		b.SetEnv("TERM", term)
	}
	b.SetEnv("ULA_SESSION", info.Session.Name)

	b.AddFlag("--chdir", GuestHome(user))
	b.SetCommand(command[0], command[1:]...)
	return b.Config(), nil
}
