package crawler

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// frontier is the FIFO queue of discovered URLs plus the set of URLs
// already handed out. A URL is in at most one of the two.
type frontier struct {
	queue   []string
	queued  map[string]bool
	visited map[string]bool
	order   []string
	// seen answers most "never saw it" checks without touching the maps
	seen *bloom.BloomFilter
}

func newFrontier(expected uint) *frontier {
	if expected < 1024 {
		expected = 1024
	}
	return &frontier{
		queued:  make(map[string]bool),
		visited: make(map[string]bool),
		seen:    bloom.NewWithEstimates(expected, 0.001),
	}
}

// Seen reports whether pageURL was ever queued or visited
func (f *frontier) Seen(pageURL string) bool {
	if !f.seen.TestString(pageURL) {
		return false
	}
	return f.queued[pageURL] || f.visited[pageURL]
}

// Push queues pageURL unless it was seen before and reports whether it did
func (f *frontier) Push(pageURL string) bool {
	if f.Seen(pageURL) {
		return false
	}
	f.seen.AddString(pageURL)
	f.queued[pageURL] = true
	f.queue = append(f.queue, pageURL)
	return true
}

// Pop removes the oldest queued URL and marks it visited
func (f *frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	next := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	delete(f.queued, next)
	f.visited[next] = true
	f.order = append(f.order, next)
	return next, true
}

// MarkVisited records pageURL as visited without it passing through the
// queue, used for the URL a redirect landed on.
func (f *frontier) MarkVisited(pageURL string) {
	if f.visited[pageURL] {
		return
	}
	f.seen.AddString(pageURL)
	if f.queued[pageURL] {
		delete(f.queued, pageURL)
		for i, u := range f.queue {
			if u == pageURL {
				f.queue = append(f.queue[:i], f.queue[i+1:]...)
				break
			}
		}
	}
	f.visited[pageURL] = true
}

func (f *frontier) Len() int {
	return len(f.queue)
}

// Visited returns visited URLs in the order they were popped
func (f *frontier) Visited() []string {
	return append([]string(nil), f.order...)
}

func (f *frontier) VisitedCount() int {
	return len(f.order)
}
