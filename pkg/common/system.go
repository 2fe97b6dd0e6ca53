package common

import (
	"fmt"
	"strings"
)

// OSType represents a host operating system.
type OSType string

const (
	// OSLinux represents desktop or server Linux.
	OSLinux OSType = "linux"
	// OSAndroid represents an Android device.
	OSAndroid OSType = "android"
	// OSUnknown is used when the operating system cannot be determined.
	OSUnknown OSType = "unknown"
)

// ArchType is the canonical architecture tag used to pick rootfs assets.
type ArchType string

const (
	ArchArm64   ArchType = "arm64"
	ArchArm     ArchType = "arm"
	ArchX86_64  ArchType = "x86_64"
	ArchX86     ArchType = "x86"
	ArchUnknown ArchType = "unknown"
)

// ParseOS converts a string representation of an operating system into an OSType.
func ParseOS(os string) (OSType, error) {
	switch strings.ToLower(os) {
	case "linux":
		return OSLinux, nil
	case "android":
		return OSAndroid, nil
	case "unknown":
		return OSUnknown, nil
	default:
		return OSUnknown, fmt.Errorf("unsupported operating system: %s", os)
	}
}

// ParseArch converts a canonical tag or a common alias into an ArchType.
// It accepts the Go names ("amd64", "386") as well as the tags themselves.
func ParseArch(arch string) (ArchType, error) {
	switch strings.ToLower(arch) {
	case "arm64", "aarch64":
		return ArchArm64, nil
	case "arm", "armhf", "armv7l":
		return ArchArm, nil
	case "x86_64", "amd64", "x64":
		return ArchX86_64, nil
	case "x86", "386", "i386", "i686":
		return ArchX86, nil
	case "unknown":
		return ArchUnknown, nil
	default:
		return ArchUnknown, fmt.Errorf("unsupported architecture: %s", arch)
	}
}

// String returns the string representation of the OSType.
func (o OSType) String() string {
	return string(o)
}

// String returns the string representation of the ArchType.
func (a ArchType) String() string {
	return string(a)
}
