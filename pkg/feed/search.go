package feed

import (
	"context"
	"sync"
	"time"

	"github.com/lukefarrell/snapfeed/pkg/model"
	"github.com/lukefarrell/snapfeed/pkg/query"
	"github.com/lukefarrell/snapfeed/pkg/util"
)

// DebounceDelay is the quiet period after the last keystroke before a search
// fetch is issued.
const DebounceDelay = 500 * time.Millisecond

// FetchSearch performs a single non-paginated full-text query for the term.
type FetchSearch func(ctx context.Context, term string) ([]model.Post, error)

// Search is the debounced overlay over the discovery feed. While the
// debounced term is non-empty the overlay is active: the discovery feed is
// not advanced or displayed, but its pagination state is preserved. Clearing
// the term deactivates the overlay; the feed resumes from its retained
// cursor. Superseded keystrokes are simply never issued; the debounce is the
// cancellation mechanism.
type Search struct {
	mu      sync.Mutex
	client  *query.Client
	fetch   FetchSearch
	delay   time.Duration
	ctx     context.Context
	timer   *time.Timer
	raw     string
	term    string
	results []model.Post
	status  query.Status
	err     error
}

func NewSearch(ctx context.Context, client *query.Client, fetch FetchSearch) *Search {
	return newSearch(ctx, client, fetch, DebounceDelay)
}

func newSearch(ctx context.Context, client *query.Client, fetch FetchSearch, delay time.Duration) *Search {
	return &Search{
		client: client,
		fetch:  fetch,
		delay:  delay,
		ctx:    ctx,
	}
}

// SetTerm records a keystroke. Each call resets the quiet-period timer; the
// fetch fires only once input has been stable for the full delay.
func (s *Search) SetTerm(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.raw = raw
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.settle(raw)
	})
}

// settle promotes a stable raw term to the debounced term and, when
// non-empty, issues the search query. The read is keyed by the hashed term,
// so repeating a previous search is served from cache.
func (s *Search) settle(term string) {
	s.mu.Lock()
	s.term = term
	if term == "" {
		s.results = nil
		s.status = query.StatusIdle
		s.err = nil
		s.mu.Unlock()
		return
	}
	s.status = query.StatusLoading
	s.mu.Unlock()

	key := query.KeySearchPosts.With(util.Hash(term))
	var posts []model.Post
	status, err := s.client.Query(s.ctx, query.Ref{Key: key, Enabled: true}, func(ctx context.Context) (any, error) {
		return s.fetch(ctx, term)
	}, &posts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.term != term {
		// A newer term settled while this fetch was in flight.
		return
	}
	s.results = posts
	s.status = status
	s.err = err
}

// Active reports whether the overlay currently supersedes the discovery
// feed: true iff the debounced term is non-empty.
func (s *Search) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term != ""
}

// Pending reports whether any raw input is present, settled or not. The
// discovery feed's visibility trigger is gated on this rather than on the
// debounced term, so the feed stops advancing on the first keystroke.
func (s *Search) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw != ""
}

// Term returns the current debounced term.
func (s *Search) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Results returns the latest settled search results and their status.
func (s *Search) Results() ([]model.Post, query.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results, s.status, s.err
}
