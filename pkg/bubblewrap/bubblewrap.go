// Package bubblewrap builds bwrap(1) command lines that run a session
// inside an extracted rootfs.
package bubblewrap

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"ula/pkg/common"
)

// BindType is a bwrap mount option.
type BindType = string

const (
	BIND        BindType = "--bind"
	BIND_TRY    BindType = "--bind-try"
	BIND_DEV    BindType = "--dev-bind"
	BIND_RO     BindType = "--ro-bind"
	BIND_RO_TRY BindType = "--ro-bind-try"

	PROC  BindType = "--proc"
	DEV   BindType = "--dev"
	TMPFS BindType = "--tmpfs"
	DIR   BindType = "--dir"
)

// DefaultPath is the guest PATH before support/ is prepended.
const DefaultPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

type bindPair struct {
	guestTarget string
	hostSource  string
	bindType    BindType
}

// Bubblewrap is a sandbox being assembled. Binds are emitted sorted by
// guest path, so a bind on "/" always precedes the mounts inside it.
// Mutable
type Bubblewrap struct {
	binds      map[string]bindPair
	envs       map[string]string
	flags      []string
	executable string
	cmdline    []string
}

// Create starts an empty sandbox. The guest does not inherit the host
// environment.
func Create() *Bubblewrap {
	return &Bubblewrap{
		binds: make(map[string]bindPair),
		envs:  make(map[string]string),
		flags: []string{"--clearenv"},
	}
}

// AddBind mounts path at the same location in the guest.
func (b *Bubblewrap) AddBind(typ BindType, path string) {
	b.binds[path] = bindPair{path, path, typ}
}

// AddMapBind mounts hostPath at guestPath.
func (b *Bubblewrap) AddMapBind(typ BindType, hostPath, guestPath string) {
	b.binds[guestPath] = bindPair{guestPath, hostPath, typ}
}

// AddVirtual mounts a filesystem with no host source (proc, dev, tmpfs).
func (b *Bubblewrap) AddVirtual(typ BindType, path string) {
	b.binds[path] = bindPair{path, "", typ}
}

func (b *Bubblewrap) AddFlag(flag ...string) {
	b.flags = append(b.flags, flag...)
}

func (b *Bubblewrap) SetEnv(name, value string) {
	b.envs[name] = value
}

// AddEnvFirst puts entry at the front of a colon separated list,
// removing any later duplicate.
func (b *Bubblewrap) AddEnvFirst(name string, entry string) {
	parts := []string{entry}
	for _, p := range strings.Split(b.envs[name], ":") {
		if p != "" && p != entry {
			parts = append(parts, p)
		}
	}
	b.envs[name] = strings.Join(parts, ":")
}

func (b *Bubblewrap) SetCommand(executable string, cmdline ...string) {
	b.executable = executable
	b.cmdline = cmdline
}

// Config snapshots the sandbox into a serialisable description.
func (b *Bubblewrap) Config() *common.SandboxConfig {
	cfg := &common.SandboxConfig{
		Exe:   b.executable,
		Args:  append([]string(nil), b.cmdline...),
		Flags: append([]string(nil), b.flags...),
	}
	for _, key := range sortedKeys(b.binds) {
		bind := b.binds[key]
		cfg.Binds = append(cfg.Binds, common.SandboxBind{
			Source: bind.hostSource,
			Target: bind.guestTarget,
			Type:   bind.bindType,
		})
	}
	for _, k := range sortedKeys(b.envs) {
		cfg.Env = append(cfg.Env, k+"="+b.envs[k])
	}
	return cfg
}

// Cmd returns the bwrap invocation for this sandbox.
func (b *Bubblewrap) Cmd() *exec.Cmd {
	return CmdFromSandbox(b.Config())
}

// Path locates the bwrap binary.
func Path() string {
	if p, err := exec.LookPath("bwrap"); err == nil {
		return p
	}
	return "/usr/bin/bwrap"
}

// Args renders s as bwrap arguments (without argv[0]).
func Args(s *common.SandboxConfig) []string {
	var args []string
	if s == nil {
		return args
	}
	args = append(args, s.Flags...)
	for _, bind := range s.Binds {
		if bind.Source == "" {
			args = append(args, bind.Type, bind.Target)
		} else {
			args = append(args, bind.Type, bind.Source, bind.Target)
		}
	}
	for _, env := range s.Env {
		if k, v, ok := strings.Cut(env, "="); ok {
			args = append(args, "--setenv", k, v)
		}
	}
	if s.Exe != "" {
		args = append(args, "--", s.Exe)
		args = append(args, s.Args...)
	}
	return args
}

func CmdFromSandbox(s *common.SandboxConfig) *exec.Cmd {
	return exec.Command(Path(), Args(s)...)
}

// Spawn runs the sandbox attached to the current terminal and waits.
func Spawn(s *common.SandboxConfig) error {
	cmd := CmdFromSandbox(s)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}

// Exec replaces the current process with cmd.
func Exec(cmd *exec.Cmd) error {
	if cmd.Path == "" {
		return fmt.Errorf("command path is empty")
	}
	env := cmd.Env
	if env == nil {
		env = os.Environ()
	}
	return unix.Exec(cmd.Path, cmd.Args, env)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
