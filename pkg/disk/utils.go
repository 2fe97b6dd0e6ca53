package disk

import (
	"os"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
)

// DirSize returns the total size and count of non-directory entries under
// path. Symlinks are counted but not followed. A missing path is empty.
func DirSize(path string) (int64, int) {
	var size atomic.Int64
	var count atomic.Int64

	conf := fastwalk.Config{Follow: false}
	_ = fastwalk.Walk(&conf, path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size.Add(info.Size())
		}
		count.Add(1)
		return nil
	})
	return size.Load(), int(count.Load())
}

// FormatSize converts bytes to a human-readable string.
func FormatSize(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}
