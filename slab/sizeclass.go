package slab

import "math/bits"

// sizesInit derives the geometry ngx_slab_init computes once from the
// page size alone: the exact-fit shift (one bitmap bit per chunk, so
// pageSize/chunkSize must not exceed the bitmap's bit width) and the
// largest sub-page size still worth tracking at all.
func sizesInit(pageShift uint) sizeConfig {
	pageSize := 1 << pageShift
	exactShift := pageShift - 6 // 64-bit bitmap: exact class has 64 chunks/page
	return sizeConfig{
		pageSize:   pageSize,
		pageShift:  pageShift,
		exactShift: exactShift,
		maxSize:    pageSize / 2,
	}
}

// classify maps a request size to the (shift, slot) pair identifying its
// size class: shift is log2 of the class's chunk size, rounded up so that
// every chunk in the class can hold size bytes, and slot is shift's
// zero-based index among the classes the pool tracks (slot 0 is the
// smallest, minShift-sized class).
func (p *Pool) classify(size int) (shift uint, slot int) {
	if size <= p.minSize {
		shift = p.minShift
	} else {
		shift = uint(bits.Len(uint(size - 1)))
	}
	slot = int(shift - p.minShift)
	return shift, slot
}

// chunkSize is the usable size of every chunk in the class identified by
// shift.
func chunkSize(shift uint) int {
	return 1 << shift
}
