package slab

// allocSmall serves a request whose shift is below the exact-fit
// threshold, where a single page can hold more chunks than a 64-bit
// bitmap addresses. The bitmap itself lives in the page's own data bytes
// (see inPageBitmap); the chunks it occupies are reserved the moment the
// page joins this class and never handed out.
func (p *Pool) allocSmall(slot int, shift uint) (uintptr, error) {
	p.stats[slot].reqs++

	chunkSz := chunkSize(shift)
	chunksPerPage := p.cfg.pageSize / chunkSz
	bitmapBytes := ((chunksPerPage + 63) / 64) * 8
	reserved := (bitmapBytes + chunkSz - 1) / chunkSz
	sentinel := slotSentinel(slot)

	for idx := p.slots[slot].next; idx != sentinel; {
		d := p.desc(idx)
		next := d.next
		bm := newInPageBitmap(p.pageBytes(idx), chunksPerPage)
		if bit := bm.firstFree(); bit >= 0 {
			bm.set(bit)
			if bm.used() == chunksPerPage {
				p.listUnlink(idx)
			}
			p.stats[slot].used++
			return p.pageOffset(idx) + uintptr(bit*chunkSz), nil
		}
		idx = next
	}

	idx, err := p.allocPages(1)
	if err != nil {
		p.stats[slot].fails++
		return 0, err
	}

	*p.desc(idx) = pageDesc{kind: pageKindSmall, shift: uint8(shift), allocated: true}
	page := p.pageBytes(idx)
	for i := 0; i < bitmapBytes; i++ {
		page[i] = 0
	}
	bm := newInPageBitmap(page, chunksPerPage)
	for i := 0; i < reserved; i++ {
		bm.set(i)
	}

	p.stats[slot].total += int64(chunksPerPage - reserved)
	if reserved >= chunksPerPage {
		p.stats[slot].fails++
		return 0, &SlabError{Kind: ErrOOM, Msg: "chunk size too small to host its own bitmap"}
	}

	bit := reserved
	bm.set(bit)
	if bm.used() < chunksPerPage {
		p.listInsertHead(sentinel, idx)
	}
	p.stats[slot].used++
	return p.pageOffset(idx) + uintptr(bit*chunkSz), nil
}

// freeSmall releases the chunk at the given byte offset within page idx,
// whose class carries shift, and relinks the page into its slot's free
// list if it had previously filled up.
func (p *Pool) freeSmall(idx pageIdx, d *pageDesc, slot int, inPage uintptr) error {
	shift := uint(d.shift)
	chunkSz := chunkSize(shift)
	if inPage%uintptr(chunkSz) != 0 {
		p.logAlert("page %d: pointer is not chunk-aligned", idx)
		return &SlabError{Kind: ErrMisaligned}
	}

	chunksPerPage := p.cfg.pageSize / chunkSz
	bitmapBytes := ((chunksPerPage + 63) / 64) * 8
	reserved := (bitmapBytes + chunkSz - 1) / chunkSz
	bit := int(inPage) / chunkSz
	if bit < reserved || bit >= chunksPerPage {
		p.logAlert("page %d: pointer is outside the chunk range for its class", idx)
		return &SlabError{Kind: ErrWrongPage}
	}

	bm := newInPageBitmap(p.pageBytes(idx), chunksPerPage)
	if !bm.isSet(bit) {
		p.logAlert("page %d bit %d: already free", idx, bit)
		return &SlabError{Kind: ErrDoubleFree}
	}

	wasFull := bm.used() == chunksPerPage
	bm.clear(bit)
	p.stats[slot].used--

	if wasFull {
		p.listInsertHead(slotSentinel(slot), idx)
	}
	if bm.used() == reserved {
		p.listUnlink(idx)
		p.stats[slot].total -= int64(chunksPerPage - reserved)
		p.freePages(idx, 1)
	}
	return nil
}
