package feed

import (
	"context"
	"sync"

	"github.com/lukefarrell/snapfeed/pkg/model"
	"github.com/lukefarrell/snapfeed/pkg/query"
)

// Page is one fetched batch of posts plus the cursor used to request the
// next batch (the ID of the batch's last document).
type Page struct {
	Posts  []model.Post `msgpack:"p"`
	Cursor string       `msgpack:"c,omitempty"`
}

// FetchPage requests up to limit posts ordered by descending creation time,
// starting strictly after cursor when cursor is non-empty.
type FetchPage func(ctx context.Context, cursor string, limit int) ([]model.Post, error)

// Feed is the cursor-pagination state machine for one feed view. Initial
// state: no cursor, hasMore true, no pages. Invalidation of the feed's query
// key resets the machine before the next fetch.
type Feed struct {
	mu       sync.Mutex
	client   *query.Client
	key      string
	pageSize int
	fetch    FetchPage

	pages    []Page
	cursor   string
	hasMore  bool
	fetching bool
}

func New(client *query.Client, key string, pageSize int, fetch FetchPage) *Feed {
	return &Feed{
		client:   client,
		key:      key,
		pageSize: pageSize,
		fetch:    fetch,
		hasMore:  true,
	}
}

// FetchNext appends the next page. It is a no-op when the feed is exhausted
// or a fetch is already in flight. A fetch error propagates and leaves the
// cursor and hasMore untouched, so the caller can retry.
func (f *Feed) FetchNext(ctx context.Context) error {
	f.mu.Lock()
	if f.client.Stale(f.key) {
		f.resetLocked()
	}
	if !f.hasMore || f.fetching {
		f.mu.Unlock()
		return nil
	}
	f.fetching = true
	cursor := f.cursor
	f.mu.Unlock()

	posts, err := f.fetch(ctx, cursor, f.pageSize)

	f.mu.Lock()
	f.fetching = false
	if err != nil {
		f.mu.Unlock()
		f.client.SetError(f.key, err)
		return err
	}

	if len(posts) == 0 {
		f.hasMore = false
	} else {
		f.cursor = posts[len(posts)-1].ID
		f.hasMore = true
		f.pages = append(f.pages, Page{Posts: posts, Cursor: f.cursor})
	}
	pages := f.snapshotLocked()
	f.mu.Unlock()

	return f.client.SetSuccess(f.key, pages)
}

// OnVisible is the level-triggered sentinel hook: it fetches only while the
// feed has more pages. Callers re-sample visibility after each completion.
func (f *Feed) OnVisible(ctx context.Context) error {
	f.mu.Lock()
	stale := f.client.Stale(f.key)
	more := f.hasMore
	f.mu.Unlock()

	if !stale && !more {
		return nil
	}
	return f.FetchNext(ctx)
}

// Posts returns all fetched posts in page order.
func (f *Feed) Posts() []model.Post {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []model.Post
	for _, page := range f.pages {
		result = append(result, page.Posts...)
	}
	return result
}

func (f *Feed) Pages() []Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

func (f *Feed) Cursor() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

func (f *Feed) resetLocked() {
	f.pages = nil
	f.cursor = ""
	f.hasMore = true
}

func (f *Feed) snapshotLocked() []Page {
	pages := make([]Page, len(f.pages))
	copy(pages, f.pages)
	return pages
}
