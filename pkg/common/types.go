// Package common provides shared types used across the ula tool.
// It includes the persisted filesystem and session records, system types
// (OS, Arch) and the execution results passed from commands to the console.
package common

import (
	"time"
)

// Filesystem is a Linux root filesystem managed by ula.
// Its files live under <filesDir>/<ID>/.
type Filesystem struct {
	// ID is the generated row identity. Zero until the record is inserted.
	ID int64 `json:"id"`
	// Name is the display name chosen by the user.
	Name string `json:"name"`
	// DistributionType identifies the distribution (e.g. "debian", "alpine").
	DistributionType string `json:"distribution_type"`
	// ArchType is the architecture the rootfs was built for.
	ArchType ArchType `json:"arch_type"`
	// DefaultUsername is the account sessions log in as.
	DefaultUsername string `json:"default_username"`
	// IsCreatedFromBackup is set when the rootfs came from a user backup.
	IsCreatedFromBackup bool `json:"is_created_from_backup"`
	// IsExtracted is set once support/rootfs.tar.gz has been unpacked.
	IsExtracted bool `json:"is_extracted"`
	// CreatedAt is when the record was first inserted.
	CreatedAt time.Time `json:"created_at"`
}

// ServiceType is how a session is served to the user.
type ServiceType string

const (
	ServiceShell ServiceType = "shell"
	ServiceSSH   ServiceType = "ssh"
	ServiceVNC   ServiceType = "vnc"
)

// Session is a named way of running a filesystem.
// FilesystemName is denormalized and refreshed whenever filesystems are renamed.
type Session struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	FilesystemID   int64       `json:"filesystem_id"`
	FilesystemName string      `json:"filesystem_name"`
	Username       string      `json:"username"`
	ServiceType    ServiceType `json:"service_type"`
	Active         bool        `json:"active"`
}

// Symlink represents a symlink that should be created inside a directory tree.
type Symlink struct {
	Source string // Path the link points to
	Target string // Relative path of the link itself
}

// ExecutionResult represents the outcome of a ula command.
// It either carries output for the console, or a sandbox to exec into.
type ExecutionResult struct {
	// ExitCode is the status code to return when not launching a sandbox.
	ExitCode int
	// Output is rendered by the display after the command returns.
	Output *Output
	// Sandbox, when set, is exec'd in place of the current process.
	Sandbox *SandboxConfig
}

// SandboxConfig holds the metadata for wrapping a command in a sandbox.
type SandboxConfig struct {
	// Exe is the path to the executable to run within the sandbox.
	Exe string
	// Args contains the command-line arguments for the process.
	Args []string
	// Env contains environment variables to be set within the sandbox.
	Env []string
	// Binds defines the filesystem bindings for the sandbox.
	Binds []SandboxBind
	// Flags are extra arguments for the sandbox engine (e.g. --unshare-pid).
	Flags []string
}

// SandboxBind represents a filesystem mount or virtual filesystem in the sandbox.
type SandboxBind struct {
	Source string
	Target string
	Type   string // e.g., "--bind", "--ro-bind", "--proc", "--tmpfs"
}

// Output is structured command output.
type Output struct {
	Message string
	KV      []KV
	Table   *Table
}

// KV is a labelled value printed as "key: value".
type KV struct {
	Key   string
	Value string
}

// Table is a simple header + rows table.
type Table struct {
	Header []string
	Rows   [][]string
}
