package shmtx

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
)

// Semaphore is the blocking primitive AtomicMutex falls back to once
// spinning has failed to observe the lock word go to zero, mirroring the
// POSIX semaphore ngx_shmtx_lock falls back to after ngx_shmtx_spin
// iterations. See NewSysVSemaphore for the cross-process implementation;
// tests may substitute anything satisfying this interface.
type Semaphore interface {
	Wait()
	Post()
}

const lockFree = 0

// AtomicMutex is the primary Mutex implementation: a compare-and-swap on
// a word living in shared memory, spun on for a bounded number of
// iterations before falling back to a Semaphore wait. Every process that
// wants to contend on the same lock must build an AtomicMutex over the
// same underlying bytes (typically a small slice carved off the front of
// the same shared region the slab pool itself lives in) and the same
// semaphore.
type AtomicMutex struct {
	lock *uint32 // 0 = free, otherwise the id of the holder
	wait *uint32 // count of waiters blocked on sem
	sem  Semaphore
	spin int
	self uint32
}

// NewAtomicMutex builds an AtomicMutex over state, which must be at least
// 8 bytes of shared memory: the first 4 bytes are the lock word, the next
// 4 the waiter count. self identifies this lock's caller (process or
// goroutine) as a holder for ForceUnlock and must be non-zero. sem may be
// nil, in which case Lock degrades to a pure spin loop past the initial
// spin budget rather than sleeping.
func NewAtomicMutex(state []byte, sem Semaphore, spin int, self uint32) (*AtomicMutex, error) {
	if len(state) < 8 {
		return nil, errors.New("shmtx: atomic mutex state must be at least 8 bytes")
	}
	if self == lockFree {
		return nil, errors.New("shmtx: self id must be non-zero")
	}
	if spin <= 0 {
		spin = 2048
	}
	return &AtomicMutex{
		lock: (*uint32)(unsafe.Pointer(&state[0])),
		wait: (*uint32)(unsafe.Pointer(&state[4])),
		sem:  sem,
		spin: spin,
		self: self,
	}, nil
}

func (m *AtomicMutex) Create(string) error { return nil }
func (m *AtomicMutex) Destroy() error      { return nil }

// TryLock attempts to take the lock without blocking.
func (m *AtomicMutex) TryLock() bool {
	return atomic.CompareAndSwapUint32(m.lock, lockFree, m.self)
}

// Lock spins for up to m.spin attempts, yielding the goroutine between
// each, then blocks on the semaphore (or keeps spinning, if none was
// configured) until TryLock succeeds.
func (m *AtomicMutex) Lock() {
	for i := 0; i < m.spin; i++ {
		if m.TryLock() {
			return
		}
		runtime.Gosched()
	}

	if m.sem == nil {
		for !m.TryLock() {
			runtime.Gosched()
		}
		return
	}

	for {
		atomic.AddUint32(m.wait, 1)
		if m.TryLock() {
			return
		}
		m.sem.Wait()
		if m.TryLock() {
			return
		}
	}
}

// Unlock releases the lock and, if any waiter has registered itself,
// wakes exactly one by decrementing the waiter count and posting once.
func (m *AtomicMutex) Unlock() {
	atomic.StoreUint32(m.lock, lockFree)
	if m.sem == nil {
		return
	}
	for {
		w := atomic.LoadUint32(m.wait)
		if w == 0 {
			return
		}
		if atomic.CompareAndSwapUint32(m.wait, w, w-1) {
			m.sem.Post()
			return
		}
	}
}

// ForceUnlock clears the lock iff it is currently held by holder.
func (m *AtomicMutex) ForceUnlock(holder uint32) bool {
	return atomic.CompareAndSwapUint32(m.lock, holder, lockFree)
}
