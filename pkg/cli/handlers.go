package cli

import (
	"context"
	"fmt"

	"ula/pkg/common"
	"ula/pkg/config"
	"ula/pkg/disk"
	"ula/pkg/display"
	"ula/pkg/downloader"
	"ula/pkg/filesystem"
	"ula/pkg/locator"
	"ula/pkg/platform"
	"ula/pkg/provision"
	"ula/pkg/store"
)

// Managers are the services command handlers work with.
type Managers struct {
	Cfg         config.ReadOnly
	Disp        display.Display
	Store       *store.Store
	Editor      filesystem.Editor
	Downloader  downloader.Downloader
	Locator     locator.Locator
	Provisioner *provision.Provisioner
	DiskMgr     disk.Manager
	Build       *platform.BuildWrapper
}

// DefaultHandlers implements every command in cli.def.
type DefaultHandlers struct {
	Mgr *Managers
}

// RegisterHandlers binds all commands of cli.def to h.
func RegisterHandlers(e *Engine, h *DefaultHandlers) {
	routes := map[string]HandlerFunc{
		"fs/list":      h.FsList,
		"fs/create":    h.FsCreate,
		"fs/rename":    h.FsRename,
		"fs/delete":    h.FsDelete,
		"fs/import":    h.FsImport,
		"fs/export":    h.FsExport,
		"fs/verify":    h.FsVerify,
		"fs/provision": h.FsProvision,
		"fs/extract":   h.FsExtract,

		"session/list":   h.SessionList,
		"session/create": h.SessionCreate,
		"session/start":  h.SessionStart,
		"session/delete": h.SessionDelete,

		"app/list":  h.AppList,
		"app/icon":  h.AppIcon,
		"app/info":  h.AppInfo,
		"app/fetch": h.AppFetch,

		"device/arch":    h.DeviceArch,
		"device/storage": h.DeviceStorage,
		"device/screen":  h.DeviceScreen,

		"fetch":      h.Fetch,
		"disk/info":  h.DiskInfo,
		"disk/clean": h.DiskClean,
		"version":    h.Version,
	}
	for path, fn := range routes {
		e.Register(path, fn)
	}
}

func message(format string, args ...any) *common.ExecutionResult {
	return &common.ExecutionResult{Output: &common.Output{Message: fmt.Sprintf(format, args...)}}
}

func (h *DefaultHandlers) Version(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	return message("%s", config.GetBuildInfo()), nil
}

func (h *DefaultHandlers) DiskInfo(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	return h.Mgr.DiskMgr.Info()
}

func (h *DefaultHandlers) DiskClean(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	return h.Mgr.DiskMgr.CleanDir()
}
