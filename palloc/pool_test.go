package palloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocPacksSmallRequestsIntoOneBlock(t *testing.T) {
	p := New(4096)
	a, err := p.Alloc(32)
	require.NoError(t, err)
	b, err := p.Alloc(32)
	require.NoError(t, err)

	assert.NotEqual(t, &a[0], &b[0])
	assert.GreaterOrEqual(t, int(uintptr(len(a))), 32)
}

func TestCallocZeroesMemory(t *testing.T) {
	p := New(4096)
	b, err := p.Alloc(16)
	require.NoError(t, err)
	for i := range b {
		b[i] = 0xff
	}

	z, err := p.Calloc(16)
	require.NoError(t, err)
	for _, v := range z {
		assert.Zero(t, v)
	}
}

func TestLargeAllocationsGoOnTheSideListAndCanBeFreed(t *testing.T) {
	p := New(128)
	big, err := p.Alloc(1024)
	require.NoError(t, err)
	require.Len(t, p.large, 1)

	require.NoError(t, p.Free(big))
	assert.Len(t, p.large, 0)
}

func TestFreeRejectsUnknownSlice(t *testing.T) {
	p := New(4096)
	other := make([]byte, 8)
	assert.Error(t, p.Free(other))
}

func TestResetRewindsTheBumpPointerWithoutRunningCleanups(t *testing.T) {
	p := New(4096)
	ran := false
	p.CleanupAdd(func() { ran = true })

	_, err := p.Alloc(64)
	require.NoError(t, err)
	require.Equal(t, 64, p.used)

	p.Reset()
	assert.False(t, ran)
	assert.Equal(t, 0, p.used)
}

func TestDestroyRunsCleanupsMostRecentFirst(t *testing.T) {
	p := New(4096)
	var order []int
	p.CleanupAdd(func() { order = append(order, 1) })
	p.CleanupAdd(func() { order = append(order, 2) })
	p.CleanupAdd(func() { order = append(order, 3) })

	p.Destroy()
	assert.Equal(t, []int{3, 2, 1}, order)
}
