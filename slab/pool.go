package slab

import (
	"unsafe"

	"github.com/pkg/errors"
)

// New lays out a fresh pool over region: a page-descriptor table sized to
// fit as many data pages as the remainder of region allows, a slot table
// with one free-list sentinel per size class between minShift and
// pageShift, and a stats table alongside it. region is expected to be
// zeroed (a freshly mmap'd or ftruncate'd region already is); New does
// not rely on that, but does not re-verify it either.
//
// mu guards every mutating Pool method; New does not take or require the
// lock itself, since region is assumed private to the caller until New
// returns a *Pool it can publish.
func New(region []byte, minShift, pageShift uint, mu Mutex, log Logger) (*Pool, error) {
	if len(region) == 0 {
		return nil, errors.New("slab: empty region")
	}
	if pageShift <= minShift {
		return nil, errors.Errorf("slab: page_shift %d must exceed min_shift %d", pageShift, minShift)
	}

	cfg := sizesInit(pageShift)
	nSlots := int(pageShift - minShift)

	headerSize := roundup(int(unsafe.Sizeof(poolHeader{})), 8)
	slotsSize := roundup(nSlots*int(unsafe.Sizeof(pageDesc{})), 8)
	statsSize := roundup(nSlots*int(unsafe.Sizeof(classStats{})), 8)
	descSize := int(unsafe.Sizeof(pageDesc{}))

	fixed := headerSize + slotsSize + statsSize
	if fixed >= len(region) {
		return nil, errors.New("slab: region too small for pool metadata")
	}

	nPages := (len(region) - fixed) / (cfg.pageSize + descSize)
	var dataStart int
	for {
		if nPages <= 0 {
			return nil, errors.New("slab: region too small for even one data page")
		}
		dataStart = roundup(fixed+nPages*descSize, cfg.pageSize)
		if dataStart+nPages*cfg.pageSize <= len(region) {
			break
		}
		nPages--
	}

	p := &Pool{
		region:   region,
		cfg:      cfg,
		minShift: minShift,
		minSize:  1 << minShift,
		lock:     mu,
		log:      log,
		LogNoMem: true,
	}
	p.header = (*poolHeader)(unsafe.Pointer(&region[0]))
	p.slots = sliceOverlay[pageDesc](region, headerSize, nSlots)
	p.stats = sliceOverlay[classStats](region, headerSize+slotsSize, nSlots)
	p.pages = sliceOverlay[pageDesc](region, headerSize+slotsSize+statsSize, nPages)

	*p.header = poolHeader{
		pfree:     int32(nPages),
		start:     int32(dataStart),
		end:       int32(dataStart + nPages*cfg.pageSize),
		nPages:    int32(nPages),
		minShift:  uint8(minShift),
		pageShift: uint8(pageShift),
	}
	for k := range p.slots {
		p.slots[k] = pageDesc{}
	}
	for k := range p.stats {
		p.stats[k] = classStats{}
	}
	for i := range p.pages {
		p.pages[i] = pageDesc{}
	}

	p.listInit(freeListSentinel)
	for k := range p.slots {
		p.listInit(slotSentinel(k))
	}

	head := p.desc(p.pageIdxOf(0))
	*head = pageDesc{kind: pageKindPage, runLength: int32(nPages)}
	p.listInsertHead(freeListSentinel, p.pageIdxOf(0))
	p.markRunTail(p.pageIdxOf(0), int32(nPages))

	return p, nil
}

// Open reattaches to a region a prior New call already laid out (in this
// process or another one sharing the same mapping), reconstructing the
// Go-side slices purely from the values New wrote into the header, so two
// processes that agree on nothing but the region's bytes still agree on
// the layout.
func Open(region []byte, mu Mutex, log Logger) (*Pool, error) {
	if len(region) < int(unsafe.Sizeof(poolHeader{})) {
		return nil, errors.New("slab: region too small to hold a pool header")
	}
	hdr := (*poolHeader)(unsafe.Pointer(&region[0]))
	if hdr.pageShift == 0 || hdr.pageShift <= hdr.minShift {
		return nil, errors.New("slab: region does not contain an initialized pool")
	}

	cfg := sizesInit(uint(hdr.pageShift))
	nSlots := int(hdr.pageShift - hdr.minShift)
	headerSize := roundup(int(unsafe.Sizeof(poolHeader{})), 8)
	slotsSize := roundup(nSlots*int(unsafe.Sizeof(pageDesc{})), 8)
	statsSize := roundup(nSlots*int(unsafe.Sizeof(classStats{})), 8)

	p := &Pool{
		region:   region,
		cfg:      cfg,
		minShift: uint(hdr.minShift),
		minSize:  1 << hdr.minShift,
		lock:     mu,
		log:      log,
		LogNoMem: true,
	}
	p.header = hdr
	p.slots = sliceOverlay[pageDesc](region, headerSize, nSlots)
	p.stats = sliceOverlay[classStats](region, headerSize+slotsSize, nSlots)
	p.pages = sliceOverlay[pageDesc](region, headerSize+slotsSize+statsSize, int(hdr.nPages))
	return p, nil
}

func (p *Pool) pageIdxOf(dataPageNo int) pageIdx { return pageIdx(dataPageNo + 1) }
func (p *Pool) dataPageIndex(idx pageIdx) int     { return int(idx) - 1 }

// pageOffset is the region-relative byte offset of data page idx.
func (p *Pool) pageOffset(idx pageIdx) uintptr {
	return uintptr(p.header.start) + uintptr(idx-1)*uintptr(p.cfg.pageSize)
}

func (p *Pool) pageBytes(idx pageIdx) []byte {
	off := p.pageOffset(idx)
	return p.region[off : off+uintptr(p.cfg.pageSize)]
}

// Start is the region-relative byte offset of the first data page.
func (p *Pool) Start() uintptr { return uintptr(p.header.start) }

// End is the region-relative byte offset one past the last data page.
func (p *Pool) End() uintptr { return uintptr(p.header.end) }

// PFree is the number of whole data pages not currently part of any
// allocated run.
func (p *Pool) PFree() int { return int(p.header.pfree) }

// PageSize is the data page size this pool was created with.
func (p *Pool) PageSize() int { return p.cfg.pageSize }

// ClassStats is a snapshot of one size class's bookkeeping, returned by
// Stats for diagnostics and tests.
type ClassStats struct {
	ChunkSize int
	Total     int64
	Used      int64
	Requests  int64
	Failures  int64
}

// Stats returns a snapshot of every size class's counters, ordered from
// smallest to largest chunk size.
func (p *Pool) Stats() []ClassStats {
	out := make([]ClassStats, len(p.slots))
	for k := range p.slots {
		shift := p.minShift + uint(k)
		out[k] = ClassStats{
			ChunkSize: chunkSize(shift),
			Total:     p.stats[k].total,
			Used:      p.stats[k].used,
			Requests:  p.stats[k].reqs,
			Failures:  p.stats[k].fails,
		}
	}
	return out
}

func (p *Pool) logAlert(format string, args ...interface{}) {
	if p.log != nil {
		p.log.Alertf(format, args...)
	}
}

func (p *Pool) logCrit(format string, args ...interface{}) {
	if p.log != nil {
		p.log.Critf(format, args...)
	}
}
