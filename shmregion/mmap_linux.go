//go:build linux

package shmregion

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Mmap is the true cross-process Provider: it backs a region with an
// anonymous memfd mapped MAP_SHARED, so any process handed the same file
// descriptor (over a unix socket, or inherited across fork/exec) maps the
// identical bytes a slab.Pool built over the result writes into. This is
// the same mmap-a-fd-then-close-it pattern the storj jobqueue package
// uses for its own memory-mapped record array.
type Mmap struct{}

// NewMmap returns an Mmap provider.
func NewMmap() *Mmap { return &Mmap{} }

// Acquire creates an anonymous memfd, sizes it, and maps it MAP_SHARED.
func (Mmap) Acquire(name string, size int) ([]byte, error) {
	fd, err := unix.MemfdCreate(name, 0)
	if err != nil {
		return nil, errors.Wrap(err, "shmregion: memfd_create")
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		return nil, errors.Wrap(err, "shmregion: ftruncate")
	}

	region, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrap(err, "shmregion: mmap")
	}
	return region, nil
}

// Release unmaps a region returned by Acquire.
func (Mmap) Release(region []byte) error {
	return unix.Munmap(region)
}
