package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/lukefarrell/snapfeed/pkg/model"
	"github.com/lukefarrell/snapfeed/pkg/query"
)

func posts(ids ...string) []model.Post {
	result := make([]model.Post, len(ids))
	for i, id := range ids {
		result[i] = model.Post{ID: id, CreatorID: "creator"}
	}
	return result
}

// pageFetcher serves canned pages keyed by cursor and records every request.
type pageFetcher struct {
	pages    map[string][]model.Post
	requests []string
	err      error
}

func (p *pageFetcher) fetch(ctx context.Context, cursor string, limit int) ([]model.Post, error) {
	p.requests = append(p.requests, cursor)
	if p.err != nil {
		return nil, p.err
	}
	return p.pages[cursor], nil
}

func newTestFeed(fetcher *pageFetcher) (*Feed, *query.Client) {
	client := query.NewClient(query.NewMemoryStore())
	return New(client, query.KeyInfinitePosts.String(), 3, fetcher.fetch), client
}

func TestFetchNextChainsCursors(t *testing.T) {
	fetcher := &pageFetcher{pages: map[string][]model.Post{
		"":  posts("a", "b", "c"),
		"c": posts("d", "e"),
		"e": nil,
	}}
	feed, _ := newTestFeed(fetcher)

	// Page 1: cursor none.
	err := feed.FetchNext(context.Background())
	assert.Equal(t, err, nil)
	assert.Equal(t, feed.Cursor(), "c")
	assert.Equal(t, feed.HasMore(), true)

	// Page 2 requests strictly after page 1's last document.
	err = feed.FetchNext(context.Background())
	assert.Equal(t, err, nil)
	assert.Equal(t, feed.Cursor(), "e")

	// Empty batch: terminal state.
	err = feed.FetchNext(context.Background())
	assert.Equal(t, err, nil)
	assert.Equal(t, feed.HasMore(), false)

	assert.Equal(t, fetcher.requests, []string{"", "c", "e"})
	assert.Equal(t, len(feed.Posts()), 5)

	pages := feed.Pages()
	assert.Equal(t, len(pages), 2)
	assert.Equal(t, pages[0].Cursor, "c")
	assert.Equal(t, pages[1].Cursor, "e")
}

func TestFetchNextExhaustedIsNoOp(t *testing.T) {
	fetcher := &pageFetcher{pages: map[string][]model.Post{}}
	feed, _ := newTestFeed(fetcher)

	feed.FetchNext(context.Background()) // empty first page, exhausts the feed
	assert.Equal(t, feed.HasMore(), false)

	before := len(fetcher.requests)
	assert.Equal(t, feed.FetchNext(context.Background()), nil)
	assert.Equal(t, feed.OnVisible(context.Background()), nil)
	assert.Equal(t, len(fetcher.requests), before)
}

func TestInvalidationResetsFeed(t *testing.T) {
	fetcher := &pageFetcher{pages: map[string][]model.Post{
		"":  posts("a", "b", "c"),
		"c": posts("d", "e"),
	}}
	feed, client := newTestFeed(fetcher)

	feed.FetchNext(context.Background())
	feed.FetchNext(context.Background())
	assert.Equal(t, feed.Cursor(), "e")

	// A write invalidates the feed's view; the next fetch starts over from
	// cursor none.
	client.Invalidate(query.KeyInfinitePosts.String())
	err := feed.FetchNext(context.Background())
	assert.Equal(t, err, nil)
	assert.Equal(t, fetcher.requests, []string{"", "c", ""})
	assert.Equal(t, feed.Cursor(), "c")
	assert.Equal(t, len(feed.Posts()), 3)
	assert.Equal(t, client.Stale(query.KeyInfinitePosts.String()), false)
}

func TestFetchErrorPropagatesAndPreservesState(t *testing.T) {
	fetcher := &pageFetcher{pages: map[string][]model.Post{
		"": posts("a", "b", "c"),
	}}
	feed, client := newTestFeed(fetcher)
	feed.FetchNext(context.Background())

	fetcher.err = errors.New("network down")
	err := feed.FetchNext(context.Background())
	if err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	assert.Equal(t, feed.Cursor(), "c")
	assert.Equal(t, feed.HasMore(), true)
	assert.Equal(t, client.Status(query.KeyInfinitePosts.String()), query.StatusError)

	// Recovery: the retry resumes from the retained cursor.
	fetcher.err = nil
	fetcher.pages["c"] = posts("d")
	assert.Equal(t, feed.FetchNext(context.Background()), nil)
	assert.Equal(t, feed.Cursor(), "d")
}

func TestOnVisibleIsLevelTriggered(t *testing.T) {
	pages := map[string][]model.Post{"": posts("a", "b", "c")}
	fetcher := &pageFetcher{pages: pages}
	// Build enough pages for repeated visibility samples.
	last := "c"
	for i := 0; i < 3; i++ {
		next := posts(fmt.Sprintf("p%d-1", i), fmt.Sprintf("p%d-2", i))
		pages[last] = next
		last = next[len(next)-1].ID
	}
	pages[last] = nil

	feed, _ := newTestFeed(fetcher)

	// The sentinel stays visible: keep sampling until the feed reports no
	// more pages.
	for feed.HasMore() {
		if err := feed.OnVisible(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	assert.Equal(t, feed.HasMore(), false)
	assert.Equal(t, len(feed.Posts()), 9)
}
