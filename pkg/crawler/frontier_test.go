package crawler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontierFIFO(t *testing.T) {
	f := newFrontier(0)
	assert.True(t, f.Push("http://example.com/a"))
	assert.True(t, f.Push("http://example.com/b"))
	assert.False(t, f.Push("http://example.com/a"))
	assert.Equal(t, 2, f.Len())

	next, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, "http://example.com/a", next)

	// visited URLs are never queued again
	assert.False(t, f.Push("http://example.com/a"))
	assert.True(t, f.Seen("http://example.com/a"))
	assert.True(t, f.Seen("http://example.com/b"))
	assert.False(t, f.Seen("http://example.com/c"))

	next, _ = f.Pop()
	assert.Equal(t, "http://example.com/b", next)
	_, ok = f.Pop()
	assert.False(t, ok)
	assert.Equal(t, []string{"http://example.com/a", "http://example.com/b"}, f.Visited())
}

func TestFrontierMarkVisited(t *testing.T) {
	f := newFrontier(0)
	f.Push("http://example.com/a")
	f.Push("http://example.com/b")
	f.Push("http://example.com/c")

	f.MarkVisited("http://example.com/b")
	f.MarkVisited("http://example.com/z")

	assert.Equal(t, 2, f.Len())
	assert.False(t, f.Push("http://example.com/z"))
	first, _ := f.Pop()
	second, _ := f.Pop()
	assert.Equal(t, []string{"http://example.com/a", "http://example.com/c"}, []string{first, second})
	assert.Equal(t, 2, f.VisitedCount())
}

func TestFrontierQueuedAndVisitedDisjoint(t *testing.T) {
	f := newFrontier(16)
	for i := 0; i < 5000; i++ {
		f.Push(fmt.Sprintf("http://example.com/%d", i%2500))
		if i%3 == 0 {
			f.Pop()
		}
	}
	for u := range f.queued {
		assert.False(t, f.visited[u], u)
	}
	assert.Equal(t, 2500, len(f.queued)+len(f.visited))
}
