package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"ula/pkg/bubblewrap"
	"ula/pkg/common"
	"ula/pkg/filesystem"
	"ula/pkg/store"
)

func (h *DefaultHandlers) SessionList(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	list, err := h.Mgr.Store.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return message("No sessions."), nil
	}
	table := &common.Table{Header: []string{"ID", "Name", "Filesystem", "User", "Service", "Active"}}
	for _, s := range list {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(s.ID, 10), s.Name,
			fmt.Sprintf("%s (%d)", s.FilesystemName, s.FilesystemID),
			s.Username, string(s.ServiceType), yesNo(s.Active),
		})
	}
	return &common.ExecutionResult{Output: &common.Output{Table: table}}, nil
}

func parseService(s string) (common.ServiceType, error) {
	switch st := common.ServiceType(strings.ToLower(s)); st {
	case "":
		return common.ServiceShell, nil
	case common.ServiceShell, common.ServiceSSH, common.ServiceVNC:
		return st, nil
	}
	return "", fmt.Errorf("unknown service %q (want shell, ssh or vnc)", s)
}

func (h *DefaultHandlers) SessionCreate(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	service, err := parseService(inv.String("service"))
	if err != nil {
		return nil, err
	}
	fsID, err := inv.ID("fsid")
	if err != nil {
		return nil, err
	}
	fs, err := h.Mgr.Store.GetFilesystem(ctx, fsID)
	if err != nil {
		return nil, fmt.Errorf("filesystem %d: %w", fsID, err)
	}
	sess := &common.Session{
		Name:         inv.Args["name"],
		FilesystemID: fsID,
		Username:     inv.String("user"),
		ServiceType:  service,
	}
	if sess.Username == "" {
		sess.Username = fs.DefaultUsername
	}
	id, err := h.Mgr.Store.InsertSession(ctx, sess)
	if err != nil {
		return nil, err
	}
	return message("Created session %d (%s on %s)", id, sess.Name, fs.Name), nil
}

// SessionStart runs a session in bubblewrap. With --exec the sandbox is
// handed back to main, which replaces the process with it.
func (h *DefaultHandlers) SessionStart(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	id, err := inv.ID("id")
	if err != nil {
		return nil, err
	}
	sess, err := h.Mgr.Store.GetSession(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("session %d: %w", id, err)
	} else if err != nil {
		return nil, err
	}

	sandbox, err := bubblewrap.ForSession(bubblewrap.SessionInfo{
		RootDir:          filesystem.Dir(h.Mgr.Cfg.GetFilesDir(), sess.FilesystemID),
		SupportAssetsDir: h.Mgr.Cfg.GetSupportAssetsDir(),
		Session:          sess,
	})
	if err != nil {
		return nil, err
	}

	if inv.Bool("dry-run") {
		line := append([]string{bubblewrap.Path()}, bubblewrap.Args(sandbox)...)
		return message("%s", strings.Join(line, " ")), nil
	}
	if inv.Bool("exec") {
		return &common.ExecutionResult{Sandbox: sandbox}, nil
	}

	if err := h.Mgr.Store.SetSessionActive(ctx, id, true); err != nil {
		return nil, err
	}
	defer func() {
		if err := h.Mgr.Store.SetSessionActive(context.WithoutCancel(ctx), id, false); err != nil {
			slog.Warn("Cannot mark session inactive", "id", id, "error", err)
		}
	}()
	slog.Debug("Starting session", "id", id, "service", sess.ServiceType)
	if err := bubblewrap.Spawn(sandbox); err != nil {
		return nil, fmt.Errorf("session %d: %w", id, err)
	}
	return &common.ExecutionResult{}, nil
}

func (h *DefaultHandlers) SessionDelete(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	id, err := inv.ID("id")
	if err != nil {
		return nil, err
	}
	if err := h.Mgr.Store.DeleteSession(ctx, id); err != nil {
		return nil, fmt.Errorf("session %d: %w", id, err)
	}
	return message("Deleted session %d", id), nil
}
