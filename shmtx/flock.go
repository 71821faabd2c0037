package shmtx

import (
	"os"

	"golang.org/x/sys/unix"
)

// FlockMutex is the fallback Mutex for shared filesystems or platforms
// where an atomic CAS on the mapped region cannot be trusted: a blocking
// or non-blocking flock on a regular file, exactly the preference-2 path
// ngx_shmtx takes when NGX_HAVE_ATOMIC_OPS is unavailable.
type FlockMutex struct {
	f *os.File
}

// NewFlockMutex opens (creating if necessary) the lock file at path.
func NewFlockMutex(path string) (*FlockMutex, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	return &FlockMutex{f: f}, nil
}

func (m *FlockMutex) Create(string) error { return nil }

func (m *FlockMutex) Destroy() error {
	return m.f.Close()
}

// TryLock attempts a non-blocking exclusive flock.
func (m *FlockMutex) TryLock() bool {
	return unix.Flock(int(m.f.Fd()), unix.LOCK_EX|unix.LOCK_NB) == nil
}

// Lock takes a blocking exclusive flock.
func (m *FlockMutex) Lock() {
	for {
		if err := unix.Flock(int(m.f.Fd()), unix.LOCK_EX); err == nil {
			return
		}
	}
}

func (m *FlockMutex) Unlock() {
	_ = unix.Flock(int(m.f.Fd()), unix.LOCK_UN)
}

// ForceUnlock has no meaning for an flock, which carries no holder
// identity; it always reports false.
func (m *FlockMutex) ForceUnlock(uint32) bool {
	return false
}
