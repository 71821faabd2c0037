// Package slab implements a shared-memory slab allocator modeled on
// nginx's ngx_slab.c: a fixed-size region, carved once at Create time into
// a page-descriptor table and a data-page area, is used to satisfy many
// small, same-lifetime-class allocations without ever growing.
//
// The region backing a Pool is expected to come from shared memory (see
// the shmregion package) so that several processes mapping the same
// region observe the same allocator state; a Pool itself holds no
// process-private bookkeeping beyond its Go-side accessor slices, which
// are themselves just typed views over the shared bytes.
//
// Requests are bucketed by size into four regimes:
//
//   - small: sub-page sizes below the exact-fit threshold, packed many
//     to a page and tracked with an in-page bitmap;
//   - exact: sizes exactly at the chunk-per-bitmap-bit threshold;
//   - big: sub-page sizes above the exact threshold but still smaller
//     than a page, tracked with the low bits of the page descriptor's
//     bitmap word;
//   - page: whole pages or runs of pages, handed out by a first-fit
//     search over a doubly linked free-run list with forward and
//     backward coalescing on free.
//
// Every mutating operation assumes the caller already holds Pool's lock
// (see LockedPool for a safe wrapper); nothing here is safe for
// concurrent use on its own, exactly as ngx_slab_alloc/free require
// ngx_shmtx_lock/unlock around them.
package slab
