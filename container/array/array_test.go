package array

import (
	"testing"

	"github.com/LLHFWT/nginx/palloc"
)

func TestPushGrowsPastInitialCapacity(t *testing.T) {
	pool := palloc.New(4096)
	a := New[int](pool, 2)

	for i := 0; i < 100; i++ {
		a.Push(i)
	}

	if got := a.Len(); got != 100 {
		t.Fatalf("Len = %d, want 100", got)
	}
	for i := 0; i < 100; i++ {
		if got := a.At(i); got != i {
			t.Fatalf("At(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestPushNAppendsContiguousBlock(t *testing.T) {
	pool := palloc.New(4096)
	a := New[string](pool, 0)

	a.PushN([]string{"a", "b", "c"})
	if got := a.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}
	if got := a.Slice()[1]; got != "b" {
		t.Fatalf("Slice()[1] = %q, want %q", got, "b")
	}
}
