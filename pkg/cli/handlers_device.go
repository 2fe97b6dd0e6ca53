package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ula/pkg/common"
	"ula/pkg/platform"
)

func (h *DefaultHandlers) AppList(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	apps, err := h.Mgr.Locator.ListApps()
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return message("No apps. Fetch one with 'ula app fetch <name>'."), nil
	}
	table := &common.Table{Header: []string{"App", "Icon", "Description"}}
	for _, app := range apps {
		icon, desc := h.Mgr.Locator.Assets(app)
		table.Rows = append(table.Rows, []string{app, yesNo(icon), yesNo(desc)})
	}
	return &common.ExecutionResult{Output: &common.Output{Table: table}}, nil
}

func (h *DefaultHandlers) AppIcon(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	return message("%s", h.Mgr.Locator.FindIconURI(inv.Args["name"])), nil
}

func (h *DefaultHandlers) AppInfo(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	return message("%s", strings.TrimSpace(h.Mgr.Locator.FindAppDescription(inv.Args["name"]))), nil
}

func (h *DefaultHandlers) AppFetch(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	app := inv.Args["name"]
	base := inv.String("base")
	if base == "" {
		base = h.Mgr.Cfg.GetSettings().AppsBaseURL
	}
	if err := h.Mgr.Locator.FetchAssets(ctx, h.Mgr.Downloader, h.Mgr.Disp, app, base); err != nil {
		return nil, err
	}
	return message("Fetched assets for %s", app), nil
}

func (h *DefaultHandlers) DeviceArch(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	arch, err := h.Mgr.Build.GetArchType()
	if err != nil {
		return nil, err
	}
	return message("%s", arch), nil
}

func (h *DefaultHandlers) DeviceStorage(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	free, err := h.Mgr.DiskMgr.Free()
	if err != nil {
		return nil, fmt.Errorf("statfs: %w", err)
	}
	return &common.ExecutionResult{Output: &common.Output{KV: []common.KV{
		{Key: "Free", Value: free.Available()},
		{Key: "Free MB", Value: fmt.Sprintf("%d", free.AvailableMB())},
		{Key: "Path", Value: h.Mgr.Cfg.GetStateDir()},
	}}}, nil
}

// DeviceScreen computes the resolution VNC sessions should use.
func (h *DefaultHandlers) DeviceScreen(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	orientation, err := platform.ParseOrientation(inv.String("orientation"))
	if err != nil {
		return nil, err
	}

	var m platform.DisplayMetrics
	if size := inv.String("real"); size != "" {
		if m.Real, err = platform.ParseSize(size); err != nil {
			return nil, err
		}
		m.App = m.Real
	} else if m, err = platform.QueryDisplayMetrics(ctx); err != nil {
		return nil, fmt.Errorf("no --real size given and %w", err)
	}
	if app := inv.String("app"); app != "" {
		if m.App, err = platform.ParseSize(app); err != nil {
			return nil, err
		}
	}

	dims := platform.NewDeviceDimensions()
	dims.SaveDeviceDimensions(m, orientation)
	return message("%s", dims.ScreenResolution()), nil
}

// Fetch downloads url to dest through the same openers imports use.
func (h *DefaultHandlers) Fetch(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	url, dest := inv.Args["url"], inv.Args["dest"]
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	part := dest + ".part"
	f, err := os.Create(part)
	if err != nil {
		return nil, err
	}
	defer os.Remove(part)

	task := h.Mgr.Disp.StartTask(filepath.Base(dest))
	err = h.Mgr.Downloader.Download(ctx, url, f, task)
	task.Done()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if err := os.Rename(part, dest); err != nil {
		return nil, err
	}
	return message("Saved %s", dest), nil
}
