// Package cache guards shared on-disk artifacts (downloaded rootfs
// archives, extracted trees) with PID lock files so that concurrent ula
// processes never produce the same artifact twice.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// pollInterval is how long a waiter sleeps while a live process holds the lock.
var pollInterval = 200 * time.Millisecond

// Unlock releases a lock obtained from Lock.
type Unlock func() error

// Lock takes the lock for target by exclusively creating "<target>.lock"
// holding "<timestamp> <pid>". A lock whose PID is gone (or whose content
// cannot be parsed) is treated as stale and removed. While the holder is
// alive Lock waits until ctx is done.
func Lock(ctx context.Context, target string) (Unlock, error) {
	lockFile := target + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockFile), 0755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	for {
		ok, err := tryCreate(lockFile)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() error { return os.Remove(lockFile) }, nil
		}

		pid, err := readHolder(lockFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			continue
		case err != nil:
			slog.Debug("removing unreadable lock", "lock", lockFile, "error", err)
			os.Remove(lockFile)
			continue
		case !pidAlive(pid):
			slog.Debug("removing stale lock", "lock", lockFile, "pid", pid)
			os.Remove(lockFile)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", lockFile, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func tryCreate(lockFile string) (bool, error) {
	f, err := os.OpenFile(lockFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	defer f.Close()

	content := fmt.Sprintf("%s %d", time.Now().Format(time.RFC3339), os.Getpid())
	if _, err := f.WriteString(content); err != nil {
		os.Remove(lockFile)
		return false, fmt.Errorf("write lock: %w", err)
	}
	return true, nil
}

// readHolder returns the PID recorded in lockFile.
func readHolder(lockFile string) (int, error) {
	content, err := os.ReadFile(lockFile)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(content))
	if len(fields) < 2 {
		return 0, fmt.Errorf("malformed lock %q", content)
	}
	return strconv.Atoi(fields[len(fields)-1])
}

func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	// EPERM means the process exists but belongs to someone else.
	return err == nil || errors.Is(err, unix.EPERM)
}
