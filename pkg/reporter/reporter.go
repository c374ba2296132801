package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rodaine/table"

	"github.com/amosWeiskopf/indexsmith/internal/models"
)

// Format selects how results are written
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name, defaulting to text
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// HelpEntry is one row of the command help table
type HelpEntry struct {
	Usage       string `json:"usage"`
	Description string `json:"description"`
}

// Reporter writes query results and crawl summaries
type Reporter struct {
	out    io.Writer
	format Format
}

// New creates a new Reporter writing to out
func New(out io.Writer, format Format) *Reporter {
	if format == "" {
		format = FormatText
	}
	return &Reporter{out: out, format: format}
}

func (r *Reporter) Format() Format {
	return r.format
}

// Println writes a plain message line regardless of format
func (r *Reporter) Println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

// Printf writes a plain formatted message regardless of format
func (r *Reporter) Printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

type wordReport struct {
	Word    string           `json:"word"`
	Results []models.WordHit `json:"results"`
}

// WordHits reports every page a single word occurs on
func (r *Reporter) WordHits(word string, hits []models.WordHit) error {
	switch r.format {
	case FormatJSON:
		if hits == nil {
			hits = []models.WordHit{}
		}
		return r.writeJSON(wordReport{Word: word, Results: hits})
	case FormatMarkdown:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "## Results for word: %s\n\n", word)
		if len(hits) == 0 {
			fmt.Fprintf(&buf, "No results for word: %s\n", word)
		} else {
			fmt.Fprintf(&buf, "| Page | Word Count |\n")
			fmt.Fprintf(&buf, "|------|------------|\n")
			for _, h := range hits {
				fmt.Fprintf(&buf, "| %s | %d |\n", h.URL, h.Count)
			}
		}
		_, err := r.out.Write(buf.Bytes())
		return err
	}

	if len(hits) == 0 {
		_, err := fmt.Fprintf(r.out, "No results for word: %s\n", word)
		return err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Results for word: %s\n", word)
	for _, h := range hits {
		fmt.Fprintf(&buf, "Page: %s, Word Count: %d\n", h.URL, h.Count)
	}
	_, err := r.out.Write(buf.Bytes())
	return err
}

type queryReport struct {
	Query   []string              `json:"query"`
	Results []models.SearchResult `json:"results"`
}

// SearchResults reports the ranked pages of a multi-word search
func (r *Reporter) SearchResults(terms []string, results []models.SearchResult) error {
	query := strings.Join(terms, " ")
	switch r.format {
	case FormatJSON:
		if results == nil {
			results = []models.SearchResult{}
		}
		return r.writeJSON(queryReport{Query: terms, Results: results})
	case FormatMarkdown:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "## Results for query: '%s'\n\n", query)
		if len(results) == 0 {
			fmt.Fprintf(&buf, "No results to show. Please check your query.\n")
		} else {
			fmt.Fprintf(&buf, "| Rank | Page | Score |\n")
			fmt.Fprintf(&buf, "|------|------|-------|\n")
			for _, res := range results {
				fmt.Fprintf(&buf, "| %d | %s | %d |\n", res.Rank, res.URL, res.Score)
			}
		}
		_, err := r.out.Write(buf.Bytes())
		return err
	}

	if len(results) == 0 {
		_, err := fmt.Fprintln(r.out, "No results to show. Please check your query.")
		return err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Results for query: '%s'\n", query)
	for _, res := range results {
		fmt.Fprintf(&buf, "%d. %s, rank: %d\n", res.Rank, res.URL, res.Score)
	}
	_, err := r.out.Write(buf.Bytes())
	return err
}

type crawlReport struct {
	*models.CrawlResult
	Pages      int `json:"pages"`
	Vocabulary int `json:"vocabulary"`
}

// CrawlSummary reports the outcome of a crawl and the size of the index it
// left behind
func (r *Reporter) CrawlSummary(res *models.CrawlResult, pages, vocabulary int) error {
	if r.format == FormatJSON {
		return r.writeJSON(crawlReport{CrawlResult: res, Pages: pages, Vocabulary: vocabulary})
	}

	var buf bytes.Buffer
	took := res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond)
	if r.format == FormatMarkdown {
		fmt.Fprintf(&buf, "## Crawl of %s\n\n", res.Seed)
		fmt.Fprintf(&buf, "| Metric | Value |\n")
		fmt.Fprintf(&buf, "|--------|-------|\n")
		fmt.Fprintf(&buf, "| Visited | %d |\n", len(res.Visited))
		fmt.Fprintf(&buf, "| Indexed | %d |\n", res.Indexed)
		fmt.Fprintf(&buf, "| Failed | %d |\n", len(res.Failed))
		fmt.Fprintf(&buf, "| Words | %d |\n", vocabulary)
		fmt.Fprintf(&buf, "| Duration | %s |\n", took)
		if len(res.Failed) > 0 {
			fmt.Fprintf(&buf, "\n### Failed pages\n\n")
			for _, f := range res.Failed {
				fmt.Fprintf(&buf, "- %s: %s\n", f.URL, f.Reason)
			}
		}
	} else {
		fmt.Fprintf(&buf, "Crawled %d pages of %s in %s: %d indexed, %d failed\n",
			len(res.Visited), res.Domain, took, res.Indexed, len(res.Failed))
		for _, f := range res.Failed {
			fmt.Fprintf(&buf, "  failed %s: %s\n", f.URL, f.Reason)
		}
		fmt.Fprintf(&buf, "Index holds %d pages and %d distinct words\n", pages, vocabulary)
	}
	_, err := r.out.Write(buf.Bytes())
	return err
}

// Help prints the command table
func (r *Reporter) Help(entries []HelpEntry) error {
	if r.format == FormatJSON {
		return r.writeJSON(entries)
	}
	tbl := table.New("Command", "Description").WithWriter(r.out)
	for _, e := range entries {
		tbl.AddRow(e.Usage, e.Description)
	}
	tbl.Print()
	return nil
}

func (r *Reporter) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = r.out.Write(data)
	return err
}
