// Package search runs card queries for the two places cards are searched:
// the visible workspace, and the cards outside the active group when looking
// for candidates to add. Both go through the same cardquery program.
package search

import (
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/starford/mindvault/internal/cardquery"
	"github.com/starford/mindvault/internal/logging"
	"github.com/starford/mindvault/internal/metrics"
	"github.com/starford/mindvault/internal/models"
)

// Blank query policies for workspace search.
const (
	BlankNone = "none"
	BlankAll  = "all"
)

// DefaultMaxQueryLength caps the query text, in bytes, that gets compiled.
const DefaultMaxQueryLength = 1024

// Result is the outcome of one search.
type Result struct {
	Cards []models.Card `json:"cards"`
	IDs   []string      `json:"ids"`
	Count int           `json:"count"`
}

func newResult(cards []models.Card) Result {
	if cards == nil {
		cards = []models.Card{}
	}
	ids := make([]string, len(cards))
	for i := range cards {
		ids[i] = cards[i].ID
	}
	return Result{Cards: cards, IDs: ids, Count: len(cards)}
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Searcher) { s.logger = l }
}

// WithBlankQuery sets what a blank workspace query returns: BlankNone or
// BlankAll. Unknown values fall back to BlankNone.
func WithBlankQuery(policy string) Option {
	return func(s *Searcher) { s.blank = policy }
}

// WithMaxQueryLength sets the query length cap. Longer queries are truncated
// on a rune boundary. n <= 0 keeps the default.
func WithMaxQueryLength(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.maxLen = n
		}
	}
}

// Searcher is safe for concurrent use. It remembers the last compiled query
// so repeated searches with the same text skip compilation.
type Searcher struct {
	logger *slog.Logger
	blank  string
	maxLen int
	last   atomic.Pointer[cardquery.Query]
}

// New creates a Searcher.
func New(opts ...Option) *Searcher {
	s := &Searcher{blank: BlankNone, maxLen: DefaultMaxQueryLength}
	for _, opt := range opts {
		opt(s)
	}
	if s.blank != BlankAll {
		s.blank = BlankNone
	}
	s.logger = logging.Component(s.logger, "search")
	return s
}

// Compile returns the compiled program for query, reusing the previous one
// when the text is unchanged.
func (s *Searcher) Compile(query string) *cardquery.Query {
	query = truncate(query, s.maxLen)
	if q := s.last.Load(); q != nil && q.Raw() == query {
		return q
	}
	q := cardquery.Compile(query)
	s.last.Store(q)
	return q
}

// Workspace filters the visible cards, which callers have already narrowed
// by group and tags. Matches keep their input order.
func (s *Searcher) Workspace(query string, visible []models.Card) Result {
	start := time.Now()

	var matched []models.Card
	switch {
	case strings.TrimSpace(query) == "":
		if s.blank == BlankAll {
			matched = visible
		}
	default:
		matched = s.Compile(query).Filter(visible)
	}

	res := newResult(matched)
	s.observe(metrics.SiteWorkspace, query, res.Count, start)
	return res
}

// OutsideGroup filters the cards not in group. With no active group, or a
// blank query, the result is empty.
func (s *Searcher) OutsideGroup(query string, all []models.Card, group *models.Group) Result {
	start := time.Now()

	var matched []models.Card
	if group != nil && strings.TrimSpace(query) != "" {
		matched = s.Compile(query).Filter(NotInGroup(all, group))
	}

	res := newResult(matched)
	s.observe(metrics.SiteOutside, query, res.Count, start)
	return res
}

func (s *Searcher) observe(site, query string, count int, start time.Time) {
	took := time.Since(start)
	metrics.ObserveSearch(site, count, took)
	s.logger.Debug("search",
		slog.String("site", site),
		slog.String("query", query),
		slog.Int("count", count),
		slog.Duration("took", took))
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
