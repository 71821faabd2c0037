package slab

import (
	"sync"
	"testing"
)

type noopMutex struct{ mu sync.Mutex }

func (m *noopMutex) Lock()   { m.mu.Lock() }
func (m *noopMutex) Unlock() { m.mu.Unlock() }

func newTestPool(t *testing.T, regionSize int, pageShift, minShift uint) *Pool {
	t.Helper()
	region := make([]byte, regionSize)
	p, err := New(region, minShift, pageShift, &noopMutex{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNewLaysOutDistinctZones(t *testing.T) {
	p := newTestPool(t, 1<<20, 12, 4)
	if p.PageSize() != 1<<12 {
		t.Fatalf("PageSize = %d, want %d", p.PageSize(), 1<<12)
	}
	if p.PFree() <= 0 {
		t.Fatalf("PFree = %d, want > 0", p.PFree())
	}
	if p.Start() == 0 {
		t.Fatalf("Start = 0, want data zone placed after the header/slot/stats/descriptor zones")
	}
	// End must track the actual data-page extent (start + nPages*pageSize),
	// not len(region): the nPages search in New stops at the first size
	// that fits, which can leave slack between the last real page and
	// the end of the backing region.
	if want := p.Start() + uintptr(p.PFree())*uintptr(p.PageSize()); p.End() != want {
		t.Fatalf("End = %d, want %d (start + nPages*pageSize)", p.End(), want)
	}
	if p.End() > uintptr(1<<20) {
		t.Fatalf("End = %d, want <= region size %d", p.End(), 1<<20)
	}
}

func TestAllocFreeRoundTripsEachClass(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"small", 24},
		{"exact", 1 << 6},
		{"big", 1 << 9},
		{"page", 1 << 12},
		{"multi-page", 3 << 12},
	}
	p := newTestPool(t, 1<<22, 12, 4)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off, err := p.Alloc(tt.size)
			if err != nil {
				t.Fatalf("Alloc(%d): %v", tt.size, err)
			}
			if off < p.Start() || off >= p.End() {
				t.Fatalf("Alloc(%d) = %#x, out of pool range [%#x, %#x)", tt.size, off, p.Start(), p.End())
			}
			if err := p.Free(off); err != nil {
				t.Fatalf("Free(%#x): %v", off, err)
			}
		})
	}
}

func TestCallocZeroesMemory(t *testing.T) {
	p := newTestPool(t, 1<<20, 12, 4)
	off, err := p.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	for i := range p.Bytes(off, 64) {
		p.Bytes(off, 64)[i] = 0xff
	}
	if err := p.Free(off); err != nil {
		t.Fatalf("Free: %v", err)
	}

	off2, err := p.Calloc(64)
	if err != nil {
		t.Fatalf("Calloc: %v", err)
	}
	for i, b := range p.Bytes(off2, 64) {
		if b != 0 {
			t.Fatalf("Calloc byte %d = %#x, want 0", i, b)
		}
	}
}

func TestDoubleFreeIsRejected(t *testing.T) {
	p := newTestPool(t, 1<<20, 12, 4)
	off, err := p.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := p.Free(off); err != nil {
		t.Fatalf("first Free: %v", err)
	}
	err = p.Free(off)
	if err == nil {
		t.Fatal("second Free succeeded, want an error")
	}
}

func TestFreeOutOfRangeIsRejected(t *testing.T) {
	const regionSize = 1 << 16
	p := newTestPool(t, regionSize, 12, 4)
	if err := p.Free(p.End() + 1); errKind(err) != ErrOutOfRange {
		t.Fatalf("Free(past end) kind = %v, want ErrOutOfRange", errKind(err))
	}
	if err := p.Free(0); errKind(err) != ErrOutOfRange {
		t.Fatalf("Free(0) kind = %v, want ErrOutOfRange", errKind(err))
	}
	// Slack zone: len(region) rounds nPages down to whatever fits, so
	// End() can sit well short of regionSize. An offset in that gap must
	// still be rejected rather than resolving to an out-of-range page
	// descriptor index and panicking.
	if p.End() < uintptr(regionSize) {
		if err := p.Free(uintptr(regionSize) - 1); errKind(err) != ErrOutOfRange {
			t.Fatalf("Free(in slack zone) kind = %v, want ErrOutOfRange", errKind(err))
		}
	}
}

func TestFreePageMisalignedIsRejected(t *testing.T) {
	p := newTestPool(t, 1<<16, 12, 4)
	off, err := p.Alloc(1 << 12)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := p.Free(off + 1); errKind(err) != ErrMisaligned {
		t.Fatalf("Free(off+1) kind = %v, want ErrMisaligned", errKind(err))
	}
}

func TestPageRunAllocationExhaustsAndFails(t *testing.T) {
	p := newTestPool(t, 1<<16, 12, 4)
	nPages := p.PFree()

	var offs []uintptr
	for i := 0; i < nPages; i++ {
		off, err := p.Alloc(1 << 12)
		if err != nil {
			t.Fatalf("Alloc page %d: %v", i, err)
		}
		offs = append(offs, off)
	}

	if _, err := p.Alloc(1 << 12); errKind(err) != ErrOOM {
		t.Fatalf("Alloc beyond capacity kind = %v, want ErrOOM", errKind(err))
	}

	for _, off := range offs {
		if err := p.Free(off); err != nil {
			t.Fatalf("Free(%#x): %v", off, err)
		}
	}

	if got := p.PFree(); got != nPages {
		t.Fatalf("PFree after freeing everything = %d, want %d", got, nPages)
	}

	// Freeing every page back should have coalesced into one run again,
	// so the full capacity should be available as a single allocation.
	big := nPages << 12
	off, err := p.Alloc(big)
	if err != nil {
		t.Fatalf("Alloc(%d) after full coalesce: %v", big, err)
	}
	if err := p.Free(off); err != nil {
		t.Fatalf("Free: %v", err)
	}
}

func TestForwardAndBackwardCoalesceRestoreSingleRun(t *testing.T) {
	p := newTestPool(t, 1<<16, 12, 4)
	nPages := p.PFree()

	a, err := p.Alloc(1 << 12)
	if err != nil {
		t.Fatalf("Alloc a: %v", err)
	}
	b, err := p.Alloc(1 << 12)
	if err != nil {
		t.Fatalf("Alloc b: %v", err)
	}
	c, err := p.Alloc(1 << 12)
	if err != nil {
		t.Fatalf("Alloc c: %v", err)
	}

	// Free the middle page first: no coalescing is possible yet, it
	// should become its own one-page free run.
	if err := p.Free(b); err != nil {
		t.Fatalf("Free b: %v", err)
	}
	// Freeing a coalesces forward into b's run.
	if err := p.Free(a); err != nil {
		t.Fatalf("Free a: %v", err)
	}
	// Freeing c coalesces backward into the (a,b) run.
	if err := p.Free(c); err != nil {
		t.Fatalf("Free c: %v", err)
	}

	if got := p.PFree(); got != nPages {
		t.Fatalf("PFree = %d, want %d (fully reclaimed and merged)", got, nPages)
	}

	off, err := p.Alloc(nPages << 12)
	if err != nil {
		t.Fatalf("Alloc(whole region) after coalesce: %v", err)
	}
	if err := p.Free(off); err != nil {
		t.Fatalf("Free: %v", err)
	}
}

func TestSmallClassReusesFreedSlot(t *testing.T) {
	p := newTestPool(t, 1<<20, 12, 4)
	chunksBefore := p.Stats()[0].Total

	var offs []uintptr
	for i := 0; i < 8; i++ {
		off, err := p.Alloc(16)
		if err != nil {
			t.Fatalf("Alloc %d: %v", i, err)
		}
		offs = append(offs, off)
	}
	for _, off := range offs {
		if err := p.Free(off); err != nil {
			t.Fatalf("Free(%#x): %v", off, err)
		}
	}

	off, err := p.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc after freeing all: %v", err)
	}
	if err := p.Free(off); err != nil {
		t.Fatalf("Free: %v", err)
	}

	if got := p.Stats()[0].Total; got != chunksBefore {
		t.Fatalf("class 0 total = %d, want %d (no net new page reserved for reused slots)", got, chunksBefore)
	}
}
