// Package index holds the inverted index built by a crawl: for every word,
// the pages it occurs on and how often.
package index

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"sync"
	"time"

	"github.com/amosWeiskopf/indexsmith/internal/models"
)

// ErrCorruptSnapshot is returned when a snapshot's index and page registry
// disagree.
var ErrCorruptSnapshot = errors.New("corrupt index snapshot")

// Index is an inverted index from word to page URL to occurrence count.
//
// Recording a page that is already indexed replaces its previous counts, so
// indexing the same content twice leaves the index unchanged. Pages keep the
// position at which they were first recorded; Ordinal exposes it for stable
// tie-breaking.
type Index struct {
	mu      sync.RWMutex
	entries map[string]map[string]int // word -> page URL -> count
	pages   []models.Page
	ordinal map[string]int // page URL -> position in pages
	now     func() time.Time
}

func New() *Index {
	return &Index{
		entries: make(map[string]map[string]int),
		ordinal: make(map[string]int),
		now:     time.Now,
	}
}

// Record indexes the tokens of pageURL, replacing anything previously
// recorded for it.
func (i *Index) Record(pageURL string, tokens iter.Seq[string]) {
	var words []string
	for tok := range tokens {
		if tok != "" {
			words = append(words, tok)
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	page := models.Page{
		URL:       pageURL,
		Words:     words,
		WordCount: len(words),
		CrawledAt: i.now(),
	}

	if pos, ok := i.ordinal[pageURL]; ok {
		i.removeLocked(i.pages[pos])
		i.pages[pos] = page
	} else {
		i.ordinal[pageURL] = len(i.pages)
		i.pages = append(i.pages, page)
	}

	for _, w := range words {
		postings, ok := i.entries[w]
		if !ok {
			postings = make(map[string]int)
			i.entries[w] = postings
		}
		postings[pageURL]++
	}
}

func (i *Index) removeLocked(old models.Page) {
	for _, w := range old.Words {
		postings, ok := i.entries[w]
		if !ok {
			continue
		}
		delete(postings, old.URL)
		if len(postings) == 0 {
			delete(i.entries, w)
		}
	}
}

// WordCount returns how often word occurs on pageURL, or 0.
func (i *Index) WordCount(word, pageURL string) int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.entries[word][pageURL]
}

// PagesContaining returns a copy of the page URL to count mapping for word.
// The map is empty, never nil, when word is not indexed.
func (i *Index) PagesContaining(word string) map[string]int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	postings := i.entries[word]
	if postings == nil {
		return map[string]int{}
	}
	return maps.Clone(postings)
}

// Ordinal returns the position at which pageURL was first recorded.
func (i *Index) Ordinal(pageURL string) (int, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	pos, ok := i.ordinal[pageURL]
	return pos, ok
}

// Page returns the indexed page for pageURL.
func (i *Index) Page(pageURL string) (models.Page, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	pos, ok := i.ordinal[pageURL]
	if !ok {
		return models.Page{}, false
	}
	return i.pages[pos], true
}

// Pages returns the indexed pages in insertion order.
func (i *Index) Pages() []models.Page {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]models.Page, len(i.pages))
	copy(out, i.pages)
	return out
}

// Len returns the number of indexed pages.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.pages)
}

// Vocabulary returns the number of distinct indexed words.
func (i *Index) Vocabulary() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Snapshot copies the index into its persisted form. Crawl details are
// taken from crawl when it is non-nil.
func (i *Index) Snapshot(crawl *models.CrawlResult) *models.Snapshot {
	i.mu.RLock()
	defer i.mu.RUnlock()

	snap := &models.Snapshot{
		Meta: models.SnapshotMeta{
			SavedAt:   i.now(),
			PageCount: len(i.pages),
			Pages:     make([]models.Page, len(i.pages)),
		},
		Index: make(map[string]map[string]int, len(i.entries)),
	}
	copy(snap.Meta.Pages, i.pages)
	for w, postings := range i.entries {
		snap.Index[w] = maps.Clone(postings)
	}
	if crawl != nil {
		snap.Meta.CrawlID = crawl.ID
		snap.Meta.Seed = crawl.Seed
		snap.Meta.Domain = crawl.Domain
		snap.Meta.Visited = append([]string(nil), crawl.Visited...)
	}
	return snap
}

// FromSnapshot rebuilds an index from its persisted form.
func FromSnapshot(snap *models.Snapshot) (*Index, error) {
	idx := New()
	if snap == nil {
		return idx, nil
	}
	if snap.Meta.PageCount != len(snap.Meta.Pages) {
		return nil, fmt.Errorf("%w: page_count %d but %d pages", ErrCorruptSnapshot, snap.Meta.PageCount, len(snap.Meta.Pages))
	}

	// postings are rebuilt from each page's words, which a later Record
	// relies on to remove them; the stored index must agree
	for pos, p := range snap.Meta.Pages {
		if _, dup := idx.ordinal[p.URL]; dup {
			return nil, fmt.Errorf("%w: page %s listed twice", ErrCorruptSnapshot, p.URL)
		}
		idx.ordinal[p.URL] = pos
		idx.pages = append(idx.pages, p)
		for _, w := range p.Words {
			postings, ok := idx.entries[w]
			if !ok {
				postings = make(map[string]int)
				idx.entries[w] = postings
			}
			postings[p.URL]++
		}
	}

	stored := 0
	for w, postings := range snap.Index {
		if len(postings) == 0 {
			continue
		}
		stored++
		for pageURL, count := range postings {
			if count < 1 {
				return nil, fmt.Errorf("%w: word %q has count %d on %s", ErrCorruptSnapshot, w, count, pageURL)
			}
			if _, ok := idx.ordinal[pageURL]; !ok {
				return nil, fmt.Errorf("%w: word %q points at unknown page %s", ErrCorruptSnapshot, w, pageURL)
			}
		}
		if !maps.Equal(postings, idx.entries[w]) {
			return nil, fmt.Errorf("%w: postings of %q disagree with page words", ErrCorruptSnapshot, w)
		}
	}
	if stored != len(idx.entries) {
		return nil, fmt.Errorf("%w: %d indexed words but pages hold %d", ErrCorruptSnapshot, stored, len(idx.entries))
	}
	return idx, nil
}
