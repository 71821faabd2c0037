// Package array implements a growable contiguous sequence in the style of
// ngx_array_t: elements are packed into a backing store drawn from an
// enclosing pool, and growth replaces that store wholesale (doubling
// capacity) rather than ever shrinking or releasing the old one early.
package array

import (
	"unsafe"

	"github.com/LLHFWT/nginx/palloc"
)

// Array is a growable sequence of T, backed by storage drawn from a
// *palloc.Pool.
type Array[T any] struct {
	pool *palloc.Pool
	data []T
}

// New creates an Array with room for n elements, drawn from pool.
func New[T any](pool *palloc.Pool, n int) *Array[T] {
	a := &Array[T]{pool: pool}
	if n > 0 {
		a.data = allocSlice[T](pool, n)[:0]
	}
	return a
}

// Push appends v, growing the backing storage if it is already full.
func (a *Array[T]) Push(v T) {
	a.growFor(1)
	a.data = append(a.data, v)
}

// PushN appends vs as a block, growing the backing storage once for the
// whole batch rather than element by element.
func (a *Array[T]) PushN(vs []T) {
	a.growFor(len(vs))
	a.data = append(a.data, vs...)
}

func (a *Array[T]) growFor(n int) {
	if len(a.data)+n <= cap(a.data) {
		return
	}
	newCap := cap(a.data)*2 + n
	if newCap < 1 {
		newCap = 1
	}
	grown := allocSlice[T](a.pool, newCap)[:len(a.data)]
	copy(grown, a.data)
	a.data = grown
}

// Len is the number of elements currently pushed.
func (a *Array[T]) Len() int { return len(a.data) }

// At returns the element at index i.
func (a *Array[T]) At(i int) T { return a.data[i] }

// Slice returns the current backing slice, valid until the next Push or
// PushN triggers a grow.
func (a *Array[T]) Slice() []T { return a.data }

// allocSlice draws n*sizeof(T) bytes from pool and reinterprets them as a
// []T, the same cast-bytes-to-typed-slice approach slab.sliceOverlay
// uses over shared memory, here applied to palloc's private arena so
// Array's growth genuinely comes from the enclosing pool rather than a
// bare make().
func allocSlice[T any](pool *palloc.Pool, n int) []T {
	if n == 0 {
		return nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return make([]T, n)
	}
	raw, err := pool.Alloc(n * elemSize)
	if err != nil {
		raw = make([]byte, n*elemSize)
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&raw[0])), n)
}
