package slab

// LockedPool wraps a *Pool with the lock/defer-unlock pattern every
// multi-process caller needs: Pool's own methods assume the caller
// already holds the lock, matching ngx_slab_alloc/free's contract with
// ngx_shmtx, so this is the type actual callers should reach for.
type LockedPool struct {
	pool *Pool
}

// NewLockedPool wraps pool; pool must already have been built with the
// same Mutex LockedPool will drive.
func NewLockedPool(pool *Pool) *LockedPool {
	return &LockedPool{pool: pool}
}

// Pool returns the wrapped, unlocked Pool for callers that need to read
// geometry (Start, End, PageSize, Stats) without taking the lock.
func (lp *LockedPool) Pool() *Pool { return lp.pool }

func (lp *LockedPool) Alloc(size int) (uintptr, error) {
	lp.pool.lock.Lock()
	defer lp.pool.lock.Unlock()
	return lp.pool.Alloc(size)
}

func (lp *LockedPool) Calloc(size int) (uintptr, error) {
	lp.pool.lock.Lock()
	defer lp.pool.lock.Unlock()
	return lp.pool.Calloc(size)
}

func (lp *LockedPool) Free(off uintptr) error {
	lp.pool.lock.Lock()
	defer lp.pool.lock.Unlock()
	return lp.pool.Free(off)
}

func (lp *LockedPool) Realloc(off uintptr, oldSize, newSize int) (uintptr, error) {
	lp.pool.lock.Lock()
	defer lp.pool.lock.Unlock()
	return lp.pool.Realloc(off, oldSize, newSize)
}
