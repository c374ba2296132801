// Package shell runs the interactive command loop over an index: crawling
// a site into it, persisting it and querying it.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/amosWeiskopf/indexsmith/internal/config"
	"github.com/amosWeiskopf/indexsmith/internal/models"
	"github.com/amosWeiskopf/indexsmith/pkg/crawler"
	"github.com/amosWeiskopf/indexsmith/pkg/index"
	"github.com/amosWeiskopf/indexsmith/pkg/reporter"
	"github.com/amosWeiskopf/indexsmith/pkg/search"
	"github.com/amosWeiskopf/indexsmith/pkg/store"
)

const (
	unknownCommandMsg = "Command not found, type 'help' to see the available commands."
	noIndexMsg        = "No index to print from. Please load or build a new index."
	crawlWarning      = "An index is already loaded. Building again will overwrite the current index."
	loadWarning       = "An index is already loaded. Loading from file will overwrite the current index."
	confirmPrompt     = "Continue? (y/N): "
)

// Shell owns the current index and executes commands against it
type Shell struct {
	cfg     *config.Config
	store   store.Store
	in      *bufio.Scanner
	report  *reporter.Reporter
	logger  zerolog.Logger
	fetcher crawler.Fetcher

	index  *index.Index
	engine *search.Engine
	// crawl describes how the current index was built, nil if unknown
	crawl *models.CrawlResult
}

// New creates a shell with an empty index. in is only read by Run and the
// overwrite confirmation.
func New(cfg *config.Config, st store.Store, in io.Reader, out io.Writer, format reporter.Format, logger zerolog.Logger) *Shell {
	s := &Shell{
		cfg:    cfg,
		store:  st,
		in:     bufio.NewScanner(in),
		report: reporter.New(out, format),
		logger: logger.With().Str("component", "shell").Logger(),
	}
	s.swap(index.New(), nil)
	return s
}

// SetFetcher makes crawls use f instead of HTTP
func (s *Shell) SetFetcher(f crawler.Fetcher) {
	s.fetcher = f
}

// Index returns the current index
func (s *Shell) Index() *index.Index {
	return s.index
}

func (s *Shell) swap(idx *index.Index, crawl *models.CrawlResult) {
	s.index = idx
	s.engine = search.New(idx, s.cfg.Search.TopN)
	s.crawl = crawl
}

// Autoload loads the saved index from the configured store. A missing
// snapshot is not an error.
func (s *Shell) Autoload() error {
	snap, err := s.store.Load()
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Debug().Str("store", s.store.Location()).Msg("No saved index to load")
		return nil
	}
	if err != nil {
		return err
	}
	idx, err := index.FromSnapshot(snap)
	if err != nil {
		return err
	}
	s.swap(idx, crawlFromSnapshot(snap))
	s.logger.Info().Str("store", s.store.Location()).Int("pages", idx.Len()).Msg("Loaded saved index")
	return nil
}

// Run reads commands until exit, end of input or ctx is done
func (s *Shell) Run(ctx context.Context) error {
	s.report.Println("Type 'help' to see the available commands.")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.report.Printf("%s", s.cfg.Shell.Prompt)
		if !s.in.Scan() {
			s.report.Println()
			return s.in.Err()
		}

		cmd, err := Parse(s.in.Text())
		if err != nil {
			s.report.Println(err)
			continue
		}
		if cmd == nil {
			continue
		}

		exit, err := s.Execute(ctx, cmd)
		if exit {
			return nil
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		if err != nil {
			s.logger.Error().Err(err).Str("command", cmd.name()).Msg("Command failed")
			s.report.Printf("Error: %v\n", err)
		}
	}
}

// Execute runs a single command and reports whether the shell should exit
func (s *Shell) Execute(ctx context.Context, cmd Command) (bool, error) {
	switch c := cmd.(type) {
	case CrawlCommand:
		return false, s.runCrawl(ctx, c)
	case LoadCommand:
		return false, s.load(c.Path)
	case SaveCommand:
		return false, s.save(c.Path)
	case PrintCommand:
		if s.index.Len() == 0 {
			s.report.Println(noIndexMsg)
			return false, nil
		}
		return false, s.report.WordHits(c.Word, s.engine.Lookup(c.Word))
	case SearchCommand:
		if s.index.Len() == 0 {
			s.report.Println(noIndexMsg)
			return false, nil
		}
		return false, s.report.SearchResults(c.Terms, s.engine.Search(c.Terms))
	case HelpCommand:
		return false, s.report.Help(HelpEntries())
	case ExitCommand:
		return true, nil
	case UnknownCommand:
		s.report.Println(unknownCommandMsg)
		return false, nil
	default:
		return false, fmt.Errorf("unhandled command %T", cmd)
	}
}

// confirmOverwrite asks before a loaded index is replaced. It is true when
// there is nothing to lose or confirmation is turned off.
func (s *Shell) confirmOverwrite(warning string) bool {
	if s.index.Len() == 0 || !s.cfg.Shell.ConfirmOverwrite {
		return true
	}
	s.report.Println(warning)
	s.report.Printf("%s", confirmPrompt)
	if !s.in.Scan() {
		s.report.Println()
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(s.in.Text()))
	return answer == "y" || answer == "yes"
}

// runCrawl builds a fresh index and swaps it in once the crawl ends, so
// queries keep answering from the old index until then. Progress and the
// final index go to c.SavePath, or the configured store when it is empty.
func (s *Shell) runCrawl(ctx context.Context, c CrawlCommand) error {
	if !s.confirmOverwrite(crawlWarning) {
		s.report.Println("Crawl cancelled.")
		return nil
	}
	st, done, err := s.storeFor(c.SavePath)
	if err != nil {
		return err
	}
	defer done()

	opts := crawler.OptionsFromConfig(s.cfg.Crawler)
	seed := s.cfg.Crawler.SeedURL
	if c.URL != "" {
		seed = c.URL
		// an explicit URL picks its own domain
		opts.Domain = ""
	}

	fresh := index.New()
	cr := crawler.New(opts, fresh, s.logger)
	if s.fetcher != nil {
		cr.SetFetcher(s.fetcher)
	}
	cr.OnCheckpoint(func(progress *models.CrawlResult) error {
		return st.Save(fresh.Snapshot(progress))
	})

	if s.report.Format() == reporter.FormatText {
		s.report.Printf("Crawling %s ...\n", seed)
	}
	result, err := cr.Crawl(ctx, seed)
	if errors.Is(err, crawler.ErrInvalidSeed) {
		s.report.Printf("Invalid URL: %s\n", seed)
		return nil
	}
	if result == nil {
		return err
	}
	if err != nil {
		s.report.Printf("Crawl interrupted after %d pages.\n", len(result.Visited))
	}

	s.swap(fresh, result)
	if saveErr := st.Save(fresh.Snapshot(result)); saveErr != nil {
		return errors.Join(err, fmt.Errorf("save index to %s: %w", st.Location(), saveErr))
	}
	if reportErr := s.report.CrawlSummary(result, fresh.Len(), fresh.Vocabulary()); reportErr != nil {
		return errors.Join(err, reportErr)
	}
	return err
}

// storeFor opens the store at path, or returns the configured store when
// path is empty or names it.
func (s *Shell) storeFor(path string) (store.Store, func(), error) {
	if path == "" || path == s.store.Location() {
		return s.store, func() {}, nil
	}
	st, err := store.OpenPath(path)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { st.Close() }, nil
}

func (s *Shell) load(path string) error {
	if !s.confirmOverwrite(loadWarning) {
		s.report.Println("Load cancelled.")
		return nil
	}
	st, done, err := s.storeFor(path)
	if err != nil {
		return err
	}
	defer done()

	snap, err := st.Load()
	if errors.Is(err, store.ErrNotFound) {
		s.report.Printf("No saved index at %s. Has an index been built?\n", st.Location())
		return nil
	}
	if err != nil {
		return err
	}
	idx, err := index.FromSnapshot(snap)
	if err != nil {
		return err
	}
	s.swap(idx, crawlFromSnapshot(snap))
	s.report.Printf("Loaded %d pages from %s.\n", idx.Len(), st.Location())
	return nil
}

func (s *Shell) save(path string) error {
	if path == "" && s.cfg.Storage.Type == config.StorageNone {
		s.report.Println("Storage is disabled. Usage: save <path>")
		return nil
	}
	st, done, err := s.storeFor(path)
	if err != nil {
		return err
	}
	defer done()

	if err := st.Save(s.index.Snapshot(s.crawl)); err != nil {
		return fmt.Errorf("save index to %s: %w", st.Location(), err)
	}
	s.report.Printf("Saved %d pages to %s.\n", s.index.Len(), st.Location())
	return nil
}

func crawlFromSnapshot(snap *models.Snapshot) *models.CrawlResult {
	if snap.Meta.CrawlID == "" && snap.Meta.Seed == "" {
		return nil
	}
	return &models.CrawlResult{
		ID:      snap.Meta.CrawlID,
		Seed:    snap.Meta.Seed,
		Domain:  snap.Meta.Domain,
		Visited: snap.Meta.Visited,
		Indexed: snap.Meta.PageCount,
	}
}
