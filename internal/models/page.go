package models

import "time"

// Page represents an indexed web page
type Page struct {
	URL       string    `json:"url"`
	Words     []string  `json:"words"`
	WordCount int       `json:"word_count"`
	CrawledAt time.Time `json:"crawled_at"`
}

// FailedPage records a URL that was visited but could not be indexed
type FailedPage struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// CrawlResult contains the results of a crawl operation
type CrawlResult struct {
	ID         string       `json:"id"`
	Seed       string       `json:"seed"`
	Domain     string       `json:"domain"`
	Visited    []string     `json:"visited"`
	Indexed    int          `json:"indexed"`
	Failed     []FailedPage `json:"failed"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// WordHit is one page containing a looked-up word
type WordHit struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// SearchResult is one ranked page of a multi-word search
type SearchResult struct {
	Rank  int    `json:"rank"`
	URL   string `json:"url"`
	Score int    `json:"score"`
}

// Snapshot is the persisted form of an index and the crawl that built it
type Snapshot struct {
	Meta  SnapshotMeta              `json:"meta"`
	Index map[string]map[string]int `json:"index"`
}

// SnapshotMeta describes the pages and crawl behind a Snapshot
type SnapshotMeta struct {
	CrawlID   string    `json:"crawl_id"`
	Seed      string    `json:"seed"`
	Domain    string    `json:"domain"`
	SavedAt   time.Time `json:"saved_at"`
	PageCount int       `json:"page_count"`
	Pages     []Page    `json:"pages"`
	Visited   []string  `json:"visited"`
}
