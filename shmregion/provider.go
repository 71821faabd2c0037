// Package shmregion supplies the backing memory a slab.Pool is built
// over. This is deliberately out of the slab package's scope (spec §1
// treats ngx_shm_alloc/free as an external collaborator): a Pool only
// needs a []byte, and how that byte slice comes to be visible to more
// than one process is an orthogonal concern with several valid answers.
package shmregion

// Provider acquires and releases named regions of memory. Acquire's name
// argument is advisory for implementations that need one (e.g. for
// debugging a memfd's /proc/self/fd entry); implementations that don't
// need a name may ignore it.
type Provider interface {
	Acquire(name string, size int) ([]byte, error)
	Release(region []byte) error
}
