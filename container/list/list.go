// Package list implements a singly-linked chain of fixed-capacity nodes
// in the style of ngx_list_t: each node is a small bump-array of
// elements drawn from an enclosing pool, and a new node is appended only
// once the current tail fills up. Like ngx_list_t, there is no remove.
package list

import (
	"unsafe"

	"github.com/LLHFWT/nginx/palloc"
)

type node[T any] struct {
	items []T
	next  *node[T]
}

// List is a singly-linked chain of fixed-capacity nodes.
type List[T any] struct {
	pool   *palloc.Pool
	nalloc int
	first  *node[T]
	last   *node[T]
}

// New creates a List whose nodes each hold up to nalloc elements, drawn
// from pool.
func New[T any](pool *palloc.Pool, nalloc int) *List[T] {
	n := newNode[T](pool, nalloc)
	return &List[T]{pool: pool, nalloc: nalloc, first: n, last: n}
}

// Push appends v, allocating a fresh node from the pool once the current
// tail node is full.
func (l *List[T]) Push(v T) {
	if len(l.last.items) == cap(l.last.items) {
		n := newNode[T](l.pool, l.nalloc)
		l.last.next = n
		l.last = n
	}
	l.last.items = append(l.last.items, v)
}

// Each walks the chain node by node, and within each node its elements in
// push order.
func (l *List[T]) Each(fn func(T)) {
	for n := l.first; n != nil; n = n.next {
		for _, v := range n.items {
			fn(v)
		}
	}
}

func newNode[T any](pool *palloc.Pool, nalloc int) *node[T] {
	if nalloc <= 0 {
		nalloc = 1
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return &node[T]{items: make([]T, 0, nalloc)}
	}
	raw, err := pool.Alloc(nalloc * elemSize)
	if err != nil {
		raw = make([]byte, nalloc*elemSize)
	}
	items := unsafe.Slice((*T)(unsafe.Pointer(&raw[0])), nalloc)[:0]
	return &node[T]{items: items}
}
