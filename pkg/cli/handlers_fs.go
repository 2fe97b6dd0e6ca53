package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"ula/pkg/catalog"
	"ula/pkg/common"
	"ula/pkg/display"
	"ula/pkg/filesystem"
	"ula/pkg/provision"
	"ula/pkg/store"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (h *DefaultHandlers) FsList(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	list, err := h.Mgr.Store.ListFilesystems(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return message("No filesystems. Create one with 'ula fs create' or 'ula fs import'."), nil
	}
	table := &common.Table{Header: []string{"ID", "Name", "Distro", "Arch", "User", "Backup", "Extracted", "Created"}}
	for _, fs := range list {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(fs.ID, 10), fs.Name, fs.DistributionType, string(fs.ArchType),
			fs.DefaultUsername, yesNo(fs.IsCreatedFromBackup), yesNo(fs.IsExtracted),
			humanize.Time(fs.CreatedAt),
		})
	}
	return &common.ExecutionResult{Output: &common.Output{Table: table}}, nil
}

// newFilesystem fills a record from the common create/import flags.
func (h *DefaultHandlers) newFilesystem(inv *Invocation) (*common.Filesystem, error) {
	fs := &common.Filesystem{
		Name:             inv.Args["name"],
		DistributionType: inv.String("distro"),
		DefaultUsername:  inv.String("user"),
	}
	if fs.DefaultUsername == "" {
		fs.DefaultUsername = "user"
	}
	if a := inv.String("arch"); a != "" {
		arch, err := common.ParseArch(a)
		if err != nil {
			return nil, err
		}
		fs.ArchType = arch
		return fs, nil
	}
	arch, err := h.Mgr.Build.GetArchType()
	if err != nil {
		return nil, err
	}
	fs.ArchType = arch
	return fs, nil
}

func (h *DefaultHandlers) FsCreate(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	fs, err := h.newFilesystem(inv)
	if err != nil {
		return nil, err
	}
	id, err := h.Mgr.Editor.InsertFilesystem(ctx, fs)
	if err != nil {
		return nil, err
	}
	return message("Created filesystem %d (%s, %s)", id, fs.Name, fs.ArchType), nil
}

func (h *DefaultHandlers) getFilesystem(ctx context.Context, inv *Invocation) (*common.Filesystem, error) {
	id, err := inv.ID("id")
	if err != nil {
		return nil, err
	}
	fs, err := h.Mgr.Store.GetFilesystem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("filesystem %d: %w", id, err)
	}
	return fs, err
}

func (h *DefaultHandlers) FsRename(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	fs, err := h.getFilesystem(ctx, inv)
	if err != nil {
		return nil, err
	}
	old := fs.Name
	fs.Name = inv.Args["name"]
	if err := h.Mgr.Editor.UpdateFilesystem(ctx, fs); err != nil {
		return nil, err
	}
	return message("Renamed filesystem %d: %s -> %s", fs.ID, old, fs.Name), nil
}

func (h *DefaultHandlers) FsDelete(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	id, err := inv.ID("id")
	if err != nil {
		return nil, err
	}
	if err := h.Mgr.Editor.DeleteFilesystem(ctx, id, h.Mgr.Cfg.GetFilesDir()); err != nil {
		return nil, err
	}
	return message("Deleted filesystem %d", id), nil
}

// FsImport stages the uri and runs the background import, then reports
// the status it posted.
func (h *DefaultHandlers) FsImport(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	fs, err := h.newFilesystem(inv)
	if err != nil {
		return nil, err
	}
	ed := h.Mgr.Editor
	ed.SetBackupURI(inv.Args["uri"])

	select {
	case <-ed.InsertFilesystemFromBackup(fs, h.Mgr.Cfg.GetFilesDir()):
	case <-ctx.Done():
		ed.Close()
		return nil, ctx.Err()
	}

	switch s := (<-ed.ImportStatuses()).(type) {
	case filesystem.ImportSuccess:
		return message("Imported filesystem %d (%s). Run 'ula fs extract %d' to unpack it.", fs.ID, fs.Name, fs.ID), nil
	case filesystem.URIUnselected:
		return nil, filesystem.ErrNoBackupURI
	case filesystem.ImportFailure:
		return nil, errors.New(s.Reason)
	default:
		return nil, fmt.Errorf("unexpected import status %v", s)
	}
}

func (h *DefaultHandlers) FsExport(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	id, err := inv.ID("id")
	if err != nil {
		return nil, err
	}
	dest := inv.Args["dest"]
	if err := filesystem.Export(ctx, h.Mgr.Cfg.GetFilesDir(), id, dest); err != nil {
		return nil, err
	}
	return message("Exported filesystem %d to %s", id, dest), nil
}

func (h *DefaultHandlers) FsVerify(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	sum, err := filesystem.VerifyBackup(inv.Args["path"])
	if err != nil {
		return nil, err
	}
	return &common.ExecutionResult{Output: &common.Output{
		Message: "Archive OK",
		KV: []common.KV{
			{Key: "Format", Value: string(sum.Format)},
			{Key: "Entries", Value: humanize.Comma(int64(sum.Entries))},
			{Key: "Size", Value: humanize.IBytes(uint64(sum.Size))},
		},
	}}, nil
}

func (h *DefaultHandlers) FsProvision(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	fs, err := h.getFilesystem(ctx, inv)
	if err != nil {
		return nil, err
	}
	url := inv.String("url")
	if url == "" {
		src, err := catalog.SourceFor(h.Mgr.Cfg.GetSettings().CatalogURL, h.Mgr.Downloader)
		if err != nil {
			return nil, err
		}
		asset, err := catalog.Latest(ctx, src, fs.ArchType)
		if err != nil {
			return nil, err
		}
		url = asset.URL
	}
	return h.runProvision(ctx, fs, url, h.Mgr.Provisioner.Provision)
}

func (h *DefaultHandlers) FsExtract(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	fs, err := h.getFilesystem(ctx, inv)
	if err != nil {
		return nil, err
	}
	return h.runProvision(ctx, fs, "", h.Mgr.Provisioner.Extract)
}

type provisionFunc func(ctx context.Context, plan *provision.Plan, task display.Task) error

func (h *DefaultHandlers) runProvision(ctx context.Context, fs *common.Filesystem, url string, run provisionFunc) (*common.ExecutionResult, error) {
	plan, err := provision.NewPlan(h.Mgr.Cfg, fs, url)
	if err != nil {
		return nil, err
	}
	task := h.Mgr.Disp.StartTask(fs.Name)
	err = run(ctx, plan, task)
	task.Done()
	if err != nil {
		return nil, err
	}
	if err := h.Mgr.Editor.UpdateFilesystem(ctx, fs); err != nil {
		return nil, err
	}
	return message("Filesystem %d is ready at %s", fs.ID, plan.InstallPath), nil
}
