package crawler

import (
	"context"
	"iter"
	"time"

	"github.com/amosWeiskopf/indexsmith/internal/config"
	"github.com/amosWeiskopf/indexsmith/internal/models"
	"github.com/amosWeiskopf/indexsmith/pkg/extractor"
)

// Indexer receives the tokens of every page the crawler fetches
type Indexer interface {
	Record(pageURL string, tokens iter.Seq[string])
}

// Fetcher retrieves a single page
type Fetcher interface {
	// Fetch returns the HTML body of pageURL and the URL it was finally
	// served from after redirects.
	Fetch(ctx context.Context, pageURL string) (body []byte, finalURL string, err error)
}

// CheckpointFunc is called with the crawl so far after every few indexed
// pages. Returning an error only logs it; the crawl keeps going.
type CheckpointFunc func(progress *models.CrawlResult) error

// Options contains configuration for the crawler
type Options struct {
	MaxPages          int           // Stop after visiting this many URLs, 0 for no limit
	CrawlDelay        time.Duration // Minimum gap between requests
	Timeout           time.Duration // Per-request timeout
	UserAgent         string        // User-Agent header
	Domain            string        // Target host, taken from the seed when empty
	IncludeSubdomains bool          // Follow links to other hosts of the same site
	TextMode          extractor.Mode
	MaxBodyBytes      int64 // Largest body read per page
	CheckpointEvery   int   // Indexed pages between checkpoints, 0 disables
}

// OptionsFromConfig maps the crawler section of the configuration
func OptionsFromConfig(cfg config.CrawlerConfig) Options {
	return Options{
		MaxPages:          cfg.MaxPages,
		CrawlDelay:        cfg.CrawlDelay,
		Timeout:           cfg.Timeout,
		UserAgent:         cfg.UserAgent,
		Domain:            cfg.Domain,
		IncludeSubdomains: cfg.IncludeSubdomains,
		TextMode:          extractor.Mode(cfg.TextMode),
		MaxBodyBytes:      cfg.MaxBodyBytes,
		CheckpointEvery:   cfg.SaveEvery,
	}
}
