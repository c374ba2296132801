// Package crawler walks a single website breadth-first and feeds the text of
// every page it fetches to an Indexer.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/amosWeiskopf/indexsmith/internal/models"
	"github.com/amosWeiskopf/indexsmith/pkg/extractor"
	"github.com/amosWeiskopf/indexsmith/pkg/utils"
)

// ErrInvalidSeed is returned when the seed is not an absolute http(s) URL
var ErrInvalidSeed = errors.New("invalid seed URL")

type Crawler struct {
	opts       Options
	index      Indexer
	fetcher    Fetcher
	logger     zerolog.Logger
	checkpoint CheckpointFunc
	now        func() time.Time
}

// New creates a crawler that records pages into index
func New(opts Options, index Indexer, logger zerolog.Logger) *Crawler {
	return &Crawler{
		opts:    opts,
		index:   index,
		fetcher: NewHTTPFetcher(opts.Timeout, opts.UserAgent, opts.MaxBodyBytes),
		logger:  logger.With().Str("component", "crawler").Logger(),
		now:     time.Now,
	}
}

// SetFetcher replaces the HTTP fetcher
func (c *Crawler) SetFetcher(f Fetcher) {
	c.fetcher = f
}

// OnCheckpoint registers fn to run every Options.CheckpointEvery indexed pages
func (c *Crawler) OnCheckpoint(fn CheckpointFunc) {
	c.checkpoint = fn
}

func (c *Crawler) limiter() *rate.Limiter {
	if c.opts.CrawlDelay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(c.opts.CrawlDelay), 1)
}

// Crawl visits pages reachable from seed on the target domain, one at a
// time in discovery order, until no unvisited URL is left or MaxPages URLs
// have been visited. Pages that fail to fetch are recorded in the result
// and skipped. When ctx is cancelled the partial result is returned along
// with the context's error.
func (c *Crawler) Crawl(ctx context.Context, seed string) (*models.CrawlResult, error) {
	start, err := parseSeed(seed)
	if err != nil {
		return nil, err
	}

	domain := c.opts.Domain
	if domain == "" {
		domain = start.Hostname()
	}
	ex := extractor.New(c.opts.TextMode, extractor.NewDomainFilter(domain, c.opts.IncludeSubdomains))

	result := &models.CrawlResult{
		ID:        uuid.NewString(),
		Seed:      start.String(),
		Domain:    ex.Domain(),
		StartedAt: c.now(),
	}
	log := c.logger.With().Str("crawl_id", result.ID).Logger()
	log.Info().Str("seed", result.Seed).Str("domain", result.Domain).Int("max_pages", c.opts.MaxPages).Msg("Starting crawl")

	front := newFrontier(uint(max(c.opts.MaxPages, 0)) * 16)
	front.Push(result.Seed)
	limiter := c.limiter()

	finish := func() {
		result.Visited = front.Visited()
		result.FinishedAt = c.now()
	}

	for front.Len() > 0 {
		if c.opts.MaxPages > 0 && front.VisitedCount() >= c.opts.MaxPages {
			log.Info().Int("pending", front.Len()).Msg("Page limit reached")
			break
		}
		if err := ctx.Err(); err != nil {
			finish()
			return result, err
		}

		pageURL, _ := front.Pop()
		if err := limiter.Wait(ctx); err != nil {
			finish()
			return result, err
		}
		log.Info().Str("url", pageURL).Int("pending", front.Len()).Msg("Crawling")

		body, finalURL, err := c.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				finish()
				return result, ctxErr
			}
			ev := log.Warn()
			if isContentError(err) {
				ev = log.Debug()
			}
			ev.Err(err).Str("url", pageURL).Msg("Skipping page")
			result.Failed = append(result.Failed, models.FailedPage{URL: pageURL, Reason: err.Error()})
			continue
		}

		base, err := url.Parse(finalURL)
		if err != nil || finalURL == "" {
			base, _ = url.Parse(pageURL)
		} else if !ex.Allows(base) {
			log.Debug().Str("url", pageURL).Str("landed", finalURL).Msg("Skipping page redirected off domain")
			result.Failed = append(result.Failed, models.FailedPage{URL: pageURL, Reason: "redirected off domain to " + finalURL})
			continue
		} else if landed, err := utils.NormalizeURL(finalURL); err == nil && landed != pageURL {
			front.MarkVisited(landed)
		}

		c.index.Record(pageURL, utils.Tokens(ex.Text(body)))
		result.Indexed++
		c.maybeCheckpoint(result, front, log)

		queued := 0
		for _, link := range ex.Links(body, base) {
			u, err := url.Parse(link)
			if err != nil || !utils.IsWebpageURL(u) {
				continue
			}
			if front.Push(link) {
				queued++
			}
		}
		log.Debug().Str("url", pageURL).Int("new_links", queued).Msg("Indexed page")
	}

	finish()
	log.Info().
		Int("visited", len(result.Visited)).
		Int("indexed", result.Indexed).
		Int("failed", len(result.Failed)).
		Dur("took", result.FinishedAt.Sub(result.StartedAt)).
		Msg("Crawl finished")
	return result, nil
}

func (c *Crawler) maybeCheckpoint(result *models.CrawlResult, front *frontier, log zerolog.Logger) {
	if c.checkpoint == nil || c.opts.CheckpointEvery <= 0 || result.Indexed%c.opts.CheckpointEvery != 0 {
		return
	}
	progress := *result
	progress.Visited = front.Visited()
	progress.Failed = append([]models.FailedPage(nil), result.Failed...)
	progress.FinishedAt = c.now()
	if err := c.checkpoint(&progress); err != nil {
		log.Error().Err(err).Int("indexed", result.Indexed).Msg("Checkpoint failed")
	}
}

func parseSeed(seed string) (*url.URL, error) {
	normalized, err := utils.NormalizeURL(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidSeed, u.Scheme)
	}
	return u, nil
}
