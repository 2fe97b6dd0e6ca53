package cache

import (
	"context"
	"os"
)

// Ensure runs fn to produce target unless target already exists.
// Concurrent callers (in this or another process) serialize on the lock
// and only the first one runs fn.
func Ensure(ctx context.Context, target string, fn func(ctx context.Context) error) error {
	if exists(target) {
		return nil
	}

	unlock, err := Lock(ctx, target)
	if err != nil {
		return err
	}
	defer unlock()

	// Someone may have finished while we waited.
	if exists(target) {
		return nil
	}
	return fn(ctx)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
