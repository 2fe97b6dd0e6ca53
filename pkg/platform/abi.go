// Package platform exposes the device facts ula depends on: the
// architecture tag, free storage, screen resolution and symlink creation.
package platform

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"ula/pkg/common"
)

// ErrNoSupportedABI means none of the device's ABIs maps to a supported
// architecture. ula cannot run on such hardware.
var ErrNoSupportedABI = errors.New("no supported ABI")

var abiTranslation = map[string]common.ArchType{
	"arm64-v8a":   common.ArchArm64,
	"armeabi-v7a": common.ArchArm,
	"x86_64":      common.ArchX86_64,
	"x86":         common.ArchX86,
}

var supportedArchs = []common.ArchType{
	common.ArchArm64,
	common.ArchArm,
	common.ArchX86_64,
	common.ArchX86,
}

// ABISource lists the ABIs the device supports, most preferred first.
type ABISource func() ([]string, error)

// BuildWrapper resolves the architecture tag of the running device.
// Immutable
type BuildWrapper struct {
	source ABISource
}

// NewBuildWrapper returns a BuildWrapper reading the host's ABI list.
func NewBuildWrapper() *BuildWrapper {
	return &BuildWrapper{source: SupportedABIs}
}

// NewBuildWrapperWithSource returns a BuildWrapper reading ABIs from src.
func NewBuildWrapperWithSource(src ABISource) *BuildWrapper {
	return &BuildWrapper{source: src}
}

// GetArchType returns the first supported architecture of the device.
func (b *BuildWrapper) GetArchType() (common.ArchType, error) {
	abis, err := b.source()
	if err != nil {
		return common.ArchUnknown, fmt.Errorf("failed to list ABIs: %w", err)
	}
	return ArchTypeFor(abis)
}

// ArchTypeFor translates abis in order and returns the first supported
// entry. Unknown ABIs are skipped.
func ArchTypeFor(abis []string) (common.ArchType, error) {
	for _, abi := range abis {
		arch := TranslateABI(abi)
		if IsSupported(arch) {
			return arch, nil
		}
	}
	return common.ArchUnknown, fmt.Errorf("%w: %s", ErrNoSupportedABI, strings.Join(abis, ","))
}

// TranslateABI maps an Android ABI name to an architecture tag, or "" if unknown.
func TranslateABI(abi string) common.ArchType {
	return abiTranslation[strings.TrimSpace(abi)]
}

// IsSupported reports whether arch is one ula ships filesystems for.
func IsSupported(arch common.ArchType) bool {
	for _, a := range supportedArchs {
		if a == arch {
			return true
		}
	}
	return false
}

// SupportedABIs reads ro.product.cpu.abilist on Android and falls back to
// the ABI matching the running binary elsewhere.
func SupportedABIs() ([]string, error) {
	if abis := getpropABIs(); len(abis) > 0 {
		return abis, nil
	}
	if abi := goarchABI(runtime.GOARCH); abi != "" {
		return []string{abi}, nil
	}
	return nil, fmt.Errorf("unknown GOARCH %s", runtime.GOARCH)
}

func getpropABIs() []string {
	path, err := exec.LookPath("getprop")
	if err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "ro.product.cpu.abilist").Output()
	if err != nil {
		return nil
	}
	var abis []string
	for _, abi := range strings.Split(strings.TrimSpace(string(out)), ",") {
		if abi = strings.TrimSpace(abi); abi != "" {
			abis = append(abis, abi)
		}
	}
	return abis
}

func goarchABI(goarch string) string {
	switch goarch {
	case "arm64":
		return "arm64-v8a"
	case "arm":
		return "armeabi-v7a"
	case "amd64":
		return "x86_64"
	case "386":
		return "x86"
	}
	return ""
}
