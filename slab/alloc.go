package slab

import "github.com/pkg/errors"

// Alloc returns the region-relative byte offset of a freshly carved chunk
// (or page run, for requests above the per-page threshold) of at least
// size bytes. Callers turn the offset into bytes with Bytes. Alloc itself
// does not lock; see LockedPool for the safe wrapper every multi-process
// caller should use.
func (p *Pool) Alloc(size int) (uintptr, error) {
	if size <= 0 {
		return 0, &SlabError{Kind: ErrOutOfRange, Msg: "size must be positive"}
	}

	if size > p.cfg.maxSize {
		n := pagesNeeded(size, p.cfg.pageSize)
		idx, err := p.allocPages(int32(n))
		if err != nil {
			return 0, err
		}
		return p.pageOffset(idx), nil
	}

	shift, slot := p.classify(size)
	switch {
	case shift < p.cfg.exactShift:
		return p.allocSmall(slot, shift)
	case shift == p.cfg.exactShift:
		return p.allocExact(slot)
	default:
		return p.allocBig(slot, shift)
	}
}

// Calloc is Alloc with the returned bytes zeroed.
func (p *Pool) Calloc(size int) (uintptr, error) {
	off, err := p.Alloc(size)
	if err != nil {
		return 0, err
	}
	clear(p.region[off : int(off)+size])
	return off, nil
}

// Bytes returns the size bytes at region-relative offset off, as returned
// by Alloc/Calloc.
func (p *Pool) Bytes(off uintptr, size int) []byte {
	return p.region[off : int(off)+size]
}

func pagesNeeded(size, pageSize int) int {
	return (size + pageSize - 1) / pageSize
}

// Free releases the chunk or page run at region-relative offset off,
// dispatching on the descriptor of the page it falls in.
func (p *Pool) Free(off uintptr) error {
	if off < p.Start() || off >= p.End() {
		p.logAlert("pointer %#x is outside the pool", off)
		return &SlabError{Kind: ErrOutOfRange}
	}

	pageNo := int(off-p.Start()) / p.cfg.pageSize
	idx := p.pageIdxOf(pageNo)
	d := p.desc(idx)
	inPage := off - p.pageOffset(idx)

	switch d.kind {
	case pageKindPage:
		return p.freePage(idx, d, off)
	case pageKindSmall:
		slot := int(uint(d.shift) - p.minShift)
		return p.freeSmall(idx, d, slot, inPage)
	case pageKindExact:
		slot := int(uint(d.shift) - p.minShift)
		return p.freeExact(idx, d, slot, inPage)
	case pageKindBig:
		slot := int(uint(d.shift) - p.minShift)
		return p.freeBig(idx, d, slot, inPage)
	default:
		p.logAlert("pointer %#x: page %d has no recognizable kind", off, idx)
		return &SlabError{Kind: ErrWrongPage}
	}
}

// freePage releases a whole-page (or multi-page run) allocation. off must
// be exactly the run's starting byte offset, and the run must currently
// be marked allocated, not an interior/tail page of some other run.
func (p *Pool) freePage(idx pageIdx, d *pageDesc, off uintptr) error {
	if off != p.pageOffset(idx) {
		p.logAlert("pointer %#x is not page-aligned", off)
		return &SlabError{Kind: ErrMisaligned}
	}
	if !d.allocated || d.busy || d.freeInterior {
		p.logAlert("pointer %#x: wrong page or already free", off)
		return &SlabError{Kind: ErrWrongPage}
	}
	n := d.runLength
	p.freePages(idx, n)
	return nil
}

// Realloc grows or shrinks the allocation at off in place when the chunk
// already hosting it has room (shrinking within the same size class
// always does; growing only does when the new size still fits the same
// class), falling back to Alloc+copy+Free otherwise.
func (p *Pool) Realloc(off uintptr, oldSize, newSize int) (uintptr, error) {
	if newSize <= 0 {
		return 0, &SlabError{Kind: ErrOutOfRange, Msg: "size must be positive"}
	}
	if oldSize > p.cfg.maxSize || newSize > p.cfg.maxSize {
		return p.reallocCopy(off, oldSize, newSize)
	}
	oldShift, _ := p.classify(oldSize)
	newShift, _ := p.classify(newSize)
	if oldShift == newShift {
		return off, nil
	}
	return p.reallocCopy(off, oldSize, newSize)
}

func (p *Pool) reallocCopy(off uintptr, oldSize, newSize int) (uintptr, error) {
	newOff, err := p.Alloc(newSize)
	if err != nil {
		return 0, err
	}
	n := oldSize
	if newSize < n {
		n = newSize
	}
	copy(p.Bytes(newOff, newSize), p.Bytes(off, n))
	if err := p.Free(off); err != nil {
		return 0, errors.Wrap(err, "slab: realloc: freeing old allocation")
	}
	return newOff, nil
}
