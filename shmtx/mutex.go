// Package shmtx implements the cross-process mutual exclusion primitive a
// shared slab pool needs to serialize Alloc/Free across the processes
// mapping it, modeled on nginx's ngx_shmtx: an atomic compare-and-swap
// over a word embedded in shared memory as the fast path, and a lower-rate
// blocking fallback (a semaphore, or a plain file lock) for when spinning
// doesn't pay off.
package shmtx

// Mutex is the contract slab.Pool's lock field requires. Create/Destroy
// exist for implementations with external resources (a semaphore set, an
// open file) to set up and tear down; implementations with none may make
// them no-ops.
type Mutex interface {
	Create(name string) error
	Destroy() error
	TryLock() bool
	Lock()
	Unlock()
	// ForceUnlock clears the lock unconditionally if it is currently
	// held by holder, for recovering from a crashed holder. It reports
	// whether it actually cleared anything.
	ForceUnlock(holder uint32) bool
}
