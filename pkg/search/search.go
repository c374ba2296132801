package search

import (
	"math"
	"sort"

	"github.com/amosWeiskopf/indexsmith/internal/models"
	"github.com/amosWeiskopf/indexsmith/pkg/utils"
)

// DefaultTopN is the number of results Search returns unless configured
const DefaultTopN = 5

// Index is the read side of the inverted index the engine queries
type Index interface {
	PagesContaining(word string) map[string]int
	Ordinal(pageURL string) (int, bool)
}

// Engine answers word lookups and ranked searches against an index
type Engine struct {
	index Index
	topN  int
}

// New creates an Engine returning at most topN search results
func New(index Index, topN int) *Engine {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Engine{index: index, topN: topN}
}

// Lookup returns every page containing word with its exact count, most
// occurrences first. Pages with equal counts keep insertion order.
func (e *Engine) Lookup(word string) []models.WordHit {
	term := utils.Normalize(word)
	if term == "" {
		return nil
	}

	postings := e.index.PagesContaining(term)
	hits := make([]models.WordHit, 0, len(postings))
	for url, count := range postings {
		hits = append(hits, models.WordHit{URL: url, Count: count})
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Count != hits[b].Count {
			return hits[a].Count > hits[b].Count
		}
		return e.before(hits[a].URL, hits[b].URL)
	})
	return hits
}

// Search scores every page containing at least one term by the sum of the
// terms' counts on it and returns the best topN. A term repeated in the
// query is only counted once.
func (e *Engine) Search(terms []string) []models.SearchResult {
	seen := make(map[string]bool)
	scores := make(map[string]int)
	for _, raw := range terms {
		term := utils.Normalize(raw)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		for url, count := range e.index.PagesContaining(term) {
			scores[url] += count
		}
	}

	results := make([]models.SearchResult, 0, len(scores))
	for url, score := range scores {
		if score <= 0 {
			continue
		}
		results = append(results, models.SearchResult{URL: url, Score: score})
	}
	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return e.before(results[a].URL, results[b].URL)
	})

	if len(results) > e.topN {
		results = results[:e.topN]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// before orders pages by insertion, then URL for pages the index no longer
// knows.
func (e *Engine) before(a, b string) bool {
	oa, oka := e.index.Ordinal(a)
	ob, okb := e.index.Ordinal(b)
	if !oka {
		oa = math.MaxInt
	}
	if !okb {
		ob = math.MaxInt
	}
	if oa != ob {
		return oa < ob
	}
	return a < b
}
