package index

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/indexsmith/internal/models"
	"github.com/amosWeiskopf/indexsmith/pkg/utils"
)

func TestRecordCountsExactly(t *testing.T) {
	idx := New()
	text := "The Kingdom of Fife. A kingdom, a KINGDOM!"
	idx.Record("http://example.com/fife", utils.Tokens(text))

	// every word's count matches a direct count over the tokens
	want := map[string]int{}
	for _, w := range utils.Words(text) {
		want[w]++
	}
	for w, n := range want {
		assert.Equal(t, n, idx.WordCount(w, "http://example.com/fife"), w)
	}
	assert.Equal(t, 3, idx.WordCount("kingdom", "http://example.com/fife"))
	assert.Equal(t, 0, idx.WordCount("kingdom", "http://example.com/other"))
	assert.Equal(t, 0, idx.WordCount("castle", "http://example.com/fife"))

	page, ok := idx.Page("http://example.com/fife")
	require.True(t, ok)
	assert.Equal(t, 8, page.WordCount)
	assert.Equal(t, utils.Words(text), page.Words)
}

func TestPagesContaining(t *testing.T) {
	idx := New()
	idx.Record("http://example.com/a", utils.Tokens("kingdom castle"))
	idx.Record("http://example.com/b", utils.Tokens("kingdom kingdom"))

	assert.Equal(t, map[string]int{
		"http://example.com/a": 1,
		"http://example.com/b": 2,
	}, idx.PagesContaining("kingdom"))

	unseen := idx.PagesContaining("dragon")
	assert.NotNil(t, unseen)
	assert.Empty(t, unseen)

	// callers get a copy
	got := idx.PagesContaining("castle")
	got["http://example.com/z"] = 9
	assert.Len(t, idx.PagesContaining("castle"), 1)
}

func TestRecordOverwrites(t *testing.T) {
	idx := New()
	idx.Record("http://example.com/a", utils.Tokens("kingdom castle castle"))
	idx.Record("http://example.com/b", utils.Tokens("castle"))
	idx.Record("http://example.com/a", utils.Tokens("kingdom moat"))

	assert.Equal(t, 1, idx.WordCount("kingdom", "http://example.com/a"))
	assert.Equal(t, 0, idx.WordCount("castle", "http://example.com/a"))
	assert.Equal(t, 1, idx.WordCount("moat", "http://example.com/a"))
	assert.Equal(t, map[string]int{"http://example.com/b": 1}, idx.PagesContaining("castle"))
	assert.Equal(t, 2, idx.Len())

	pos, ok := idx.Ordinal("http://example.com/a")
	require.True(t, ok)
	assert.Equal(t, 0, pos, "re-recorded page keeps its first position")
}

func TestRecordSameContentIsIdempotent(t *testing.T) {
	idx := New()
	idx.Record("http://example.com/a", utils.Tokens("kingdom castle"))
	first := idx.Snapshot(nil).Index

	idx.Record("http://example.com/a", utils.Tokens("kingdom castle"))
	assert.Equal(t, first, idx.Snapshot(nil).Index)
}

func TestRecordDropsWordsThatDisappear(t *testing.T) {
	idx := New()
	idx.Record("http://example.com/a", utils.Tokens("dragon"))
	idx.Record("http://example.com/a", utils.Tokens("kingdom"))

	assert.Equal(t, 1, idx.Vocabulary())
	_, ok := idx.Snapshot(nil).Index["dragon"]
	assert.False(t, ok)
}

func TestRecordEmptyPage(t *testing.T) {
	idx := New()
	idx.Record("http://example.com/empty", utils.Tokens("  ...  "))

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 0, idx.Vocabulary())
}

func TestSnapshotRoundTrip(t *testing.T) {
	idx := New()
	idx.Record("http://example.com/", utils.Tokens("kingdom of fife"))
	idx.Record("http://example.com/b", utils.Tokens("kingdom"))

	crawl := &models.CrawlResult{
		ID:      "crawl-1",
		Seed:    "http://example.com/",
		Domain:  "example.com",
		Visited: []string{"http://example.com/", "http://example.com/b", "http://example.com/broken"},
	}
	snap := idx.Snapshot(crawl)
	assert.Equal(t, "crawl-1", snap.Meta.CrawlID)
	assert.Equal(t, 2, snap.Meta.PageCount)
	assert.Equal(t, crawl.Visited, snap.Meta.Visited)

	restored, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, idx.PagesContaining("kingdom"), restored.PagesContaining("kingdom"))
	assert.Equal(t, idx.Vocabulary(), restored.Vocabulary())

	urls := make([]string, 0)
	for _, p := range restored.Pages() {
		urls = append(urls, p.URL)
	}
	assert.True(t, slices.Equal([]string{"http://example.com/", "http://example.com/b"}, urls))

	// restored pages can still be overwritten cleanly
	restored.Record("http://example.com/b", utils.Tokens("castle"))
	assert.Equal(t, map[string]int{"http://example.com/": 1}, restored.PagesContaining("kingdom"))
}

func TestFromSnapshotRejectsCorruptData(t *testing.T) {
	pages := []models.Page{{URL: "http://example.com/"}}
	tests := []struct {
		name string
		snap *models.Snapshot
	}{
		{"page count mismatch", &models.Snapshot{Meta: models.SnapshotMeta{PageCount: 2, Pages: pages}}},
		{"duplicate page", &models.Snapshot{Meta: models.SnapshotMeta{PageCount: 2, Pages: append(pages, pages[0])}}},
		{"zero count", &models.Snapshot{
			Meta:  models.SnapshotMeta{PageCount: 1, Pages: pages},
			Index: map[string]map[string]int{"kingdom": {"http://example.com/": 0}},
		}},
		{"unknown page", &models.Snapshot{
			Meta:  models.SnapshotMeta{PageCount: 1, Pages: pages},
			Index: map[string]map[string]int{"kingdom": {"http://example.com/missing": 1}},
		}},
		{"word missing from page", &models.Snapshot{
			Meta:  models.SnapshotMeta{PageCount: 1, Pages: pages},
			Index: map[string]map[string]int{"kingdom": {"http://example.com/": 1}},
		}},
		{"count disagrees with page", &models.Snapshot{
			Meta:  models.SnapshotMeta{PageCount: 1, Pages: []models.Page{{URL: "http://example.com/", Words: []string{"kingdom"}}}},
			Index: map[string]map[string]int{"kingdom": {"http://example.com/": 3}},
		}},
		{"page word not indexed", &models.Snapshot{
			Meta: models.SnapshotMeta{PageCount: 1, Pages: []models.Page{{URL: "http://example.com/", Words: []string{"kingdom"}}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSnapshot(tt.snap)
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}

func TestFromSnapshotNil(t *testing.T) {
	idx, err := FromSnapshot(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
}
