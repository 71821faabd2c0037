// Package palloc implements a per-process bump allocator in the style of
// ngx_palloc.c: a run of small, short-lived allocations are carved out of
// a growable block with a simple pointer bump, while requests too large
// for the current block go on a side list and are tracked individually so
// Destroy can release every one of them. Unlike slab.Pool, palloc.Pool is
// private to one process and carries no cross-process visibility
// contract; it exists for the same reason ngx_palloc.c does alongside
// ngx_slab.c in nginx -- transient per-request scratch space that never
// needs to survive past one request.
package palloc

import "github.com/pkg/errors"

const defaultAlignment = 16

// Cleanup is a callback registered against a Pool and run, most recently
// registered first, when the Pool is destroyed -- ngx_pool_cleanup_t's
// role, minus the intermediate allocation: Go closures already capture
// what ngx_pool_cleanup_t's data pointer exists to carry.
type Cleanup func()

// Pool is a per-process bump allocator.
type Pool struct {
	block    []byte
	used     int
	blockCap int

	large    [][]byte
	cleanups []Cleanup
}

// New creates a Pool backed by an initial arena of size bytes (4096 if
// size is not positive).
func New(size int) *Pool {
	if size <= 0 {
		size = 4096
	}
	return &Pool{block: make([]byte, size), blockCap: size}
}

func align(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// Alloc returns size bytes aligned to a pointer-friendly boundary.
func (p *Pool) Alloc(size int) ([]byte, error) {
	return p.alloc(size, defaultAlignment)
}

// AllocUnaligned returns size bytes packed tightly against the previous
// allocation, with no alignment guarantee.
func (p *Pool) AllocUnaligned(size int) ([]byte, error) {
	return p.alloc(size, 1)
}

// Calloc is Alloc with the returned memory explicitly zeroed.
func (p *Pool) Calloc(size int) ([]byte, error) {
	b, err := p.Alloc(size)
	if err != nil {
		return nil, err
	}
	clear(b)
	return b, nil
}

// Memalign returns size bytes aligned to alignTo, which must be a power
// of two.
func (p *Pool) Memalign(size, alignTo int) ([]byte, error) {
	return p.alloc(size, alignTo)
}

func (p *Pool) alloc(size, alignTo int) ([]byte, error) {
	if size < 0 {
		return nil, errors.New("palloc: negative size")
	}

	start := align(p.used, alignTo)
	if start+size <= p.blockCap {
		b := p.block[start : start+size]
		p.used = start + size
		return b, nil
	}

	if size > p.blockCap/2 {
		b := make([]byte, size)
		p.large = append(p.large, b)
		return b, nil
	}

	p.block = make([]byte, p.blockCap)
	p.used = size
	return p.block[:size], nil
}

// Free releases a large allocation obtained from this Pool. Allocations
// still living in the bump block are only reclaimed by Reset or Destroy,
// exactly as ngx_pfree only ever succeeds for the large-allocation list.
func (p *Pool) Free(b []byte) error {
	if len(b) == 0 {
		return errors.New("palloc: cannot free an empty slice")
	}
	for i, l := range p.large {
		if &l[0] == &b[0] {
			p.large = append(p.large[:i], p.large[i+1:]...)
			return nil
		}
	}
	return errors.New("palloc: not a large allocation owned by this pool")
}

// Reset discards every small allocation (rewinding the bump pointer) and
// the large-allocation side list, without running cleanups.
func (p *Pool) Reset() {
	p.used = 0
	p.large = nil
}

// CleanupAdd registers fn to run when Destroy is called.
func (p *Pool) CleanupAdd(fn Cleanup) {
	p.cleanups = append(p.cleanups, fn)
}

// Destroy runs every registered cleanup, most recently added first, then
// releases the pool's memory.
func (p *Pool) Destroy() {
	for i := len(p.cleanups) - 1; i >= 0; i-- {
		p.cleanups[i]()
	}
	p.cleanups = nil
	p.block = nil
	p.large = nil
}
