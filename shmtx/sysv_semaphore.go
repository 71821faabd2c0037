//go:build linux

package shmtx

import "golang.org/x/sys/unix"

// SysVSemaphore adapts a SysV semaphore -- visible to every process that
// knows its key, unlike a Go channel -- to the Semaphore interface
// AtomicMutex falls back to once spinning has failed. Go has no binding
// for POSIX named semaphores in golang.org/x/sys/unix; SysV semaphores are
// the equivalent cross-process primitive it does expose.
type SysVSemaphore struct {
	id int
}

// NewSysVSemaphore creates (or attaches to, if create is false) a
// one-member SysV semaphore set identified by key. A freshly created
// semaphore starts at value 0, which is exactly the "nobody has posted
// yet" state Wait should block on.
func NewSysVSemaphore(key int, create bool) (*SysVSemaphore, error) {
	flags := 0
	if create {
		flags = unix.IPC_CREAT | 0600
	}
	id, err := unix.Semget(key, 1, flags)
	if err != nil {
		return nil, err
	}
	return &SysVSemaphore{id: id}, nil
}

// Wait decrements the semaphore, blocking until it is non-zero.
func (s *SysVSemaphore) Wait() {
	op := []unix.Sembuf{{SemNum: 0, SemOp: -1, SemFlg: 0}}
	for {
		if err := unix.Semop(s.id, op); err == nil || err != unix.EINTR {
			return
		}
	}
}

// Post increments the semaphore, waking one waiter if any are blocked.
func (s *SysVSemaphore) Post() {
	op := []unix.Sembuf{{SemNum: 0, SemOp: 1, SemFlg: 0}}
	_ = unix.Semop(s.id, op)
}
