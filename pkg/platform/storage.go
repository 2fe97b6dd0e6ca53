package platform

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

const bytesInMB = 1048576

// StatFS is the subset of filesystem statistics needed to compute free space.
type StatFS interface {
	BlockSize() int64
	AvailableBlocks() int64
}

// FSStat is a StatFS snapshot.
type FSStat struct {
	Bsize  int64
	Bavail int64
}

func (s FSStat) BlockSize() int64       { return s.Bsize }
func (s FSStat) AvailableBlocks() int64 { return s.Bavail }

// Statfs reads the statistics of the filesystem holding path.
func Statfs(path string) (FSStat, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSStat{}, fmt.Errorf("statfs %s: %w", path, err)
	}
	return FSStat{Bsize: int64(st.Bsize), Bavail: int64(st.Bavail)}, nil
}

// StorageUtility reports free space from a StatFS.
// Immutable
type StorageUtility struct {
	stat StatFS
}

func NewStorageUtility(stat StatFS) *StorageUtility {
	return &StorageUtility{stat: stat}
}

// AvailableBytes returns blockSize * availableBlocks.
func (s *StorageUtility) AvailableBytes() int64 {
	return s.stat.BlockSize() * s.stat.AvailableBlocks()
}

// AvailableMB returns the free space in whole mebibytes, truncated.
func (s *StorageUtility) AvailableMB() int64 {
	return s.AvailableBytes() / bytesInMB
}

// Available returns the free space formatted for humans (e.g. "1.0 MiB").
func (s *StorageUtility) Available() string {
	return humanize.IBytes(uint64(s.AvailableBytes()))
}
