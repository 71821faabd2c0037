package shmregion

import "github.com/dsnet/golib/memfile"

// MemFile is a Provider for tests that want a second, independent
// io.ReaderAt/io.WriterAt view onto the same bytes a Pool is mutating,
// without any real OS-level mapping: github.com/dsnet/golib/memfile wraps
// a plain []byte with that interface, backed by the identical array the
// returned region aliases.
type MemFile struct {
	last *memfile.File
}

// NewMemFile returns a MemFile provider.
func NewMemFile() *MemFile { return &MemFile{} }

// Acquire allocates a zeroed []byte of size bytes and wraps it in a
// memfile.File, retained so View can hand back a ReaderAt/WriterAt over
// the same storage.
func (p *MemFile) Acquire(_ string, size int) ([]byte, error) {
	buf := make([]byte, size)
	p.last = memfile.New(buf)
	return buf, nil
}

// Release is a no-op; the backing array is reclaimed once unreferenced.
func (p *MemFile) Release([]byte) error { return nil }

// View returns an io.ReaderAt/io.WriterAt over the most recently acquired
// region.
func (p *MemFile) View() *memfile.File { return p.last }
