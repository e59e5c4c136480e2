package query

import (
	"context"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/lukefarrell/snapfeed/pkg/util"
	"github.com/vmihailenco/msgpack/v5"
)

// Status is the lifecycle state of a cache entry.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "idle"
}

type entry struct {
	status  Status
	stale   bool
	err     error
	hasData bool
}

// flight is one in-progress fetch. Concurrent readers of the same key wait
// on done and observe the same result instead of issuing a duplicate request.
type flight struct {
	done chan struct{}
	data []byte
	err  error
}

// Ref identifies one cached read. Enabled=false gates the read: the current
// entry is observed but a fetch is never triggered.
type Ref struct {
	Key     string
	Enabled bool
}

type FetchFunc func(ctx context.Context) (any, error)

type MutateFunc func(ctx context.Context) (any, error)

// Client is the cache and invalidation layer. One instance is shared by the
// whole application; construct it once at startup and inject it.
type Client struct {
	mu       sync.Mutex
	store    Store
	ttl      time.Duration
	entries  map[string]*entry
	inflight map[string]*flight
	subs     map[string][]chan struct{}
}

func NewClient(store Store) *Client {
	return &Client{
		store:    store,
		ttl:      DefaultTTL,
		entries:  make(map[string]*entry),
		inflight: make(map[string]*flight),
		subs:     make(map[string][]chan struct{}),
	}
}

func (c *Client) Close() {
	c.store.Close()
}

// entryLocked returns the entry for a key, creating it lazily. Caller holds
// c.mu.
func (c *Client) entryLocked(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{status: StatusIdle}
		c.entries[key] = e
	}
	return e
}

// Query is the read path. A fresh successful entry is served from the store;
// a stale or missing one triggers the fetch function, with at most one fetch
// in flight per key. Readers arriving during a flight wait for its result.
func (c *Client) Query(ctx context.Context, ref Ref, fetch FetchFunc, out any) (Status, error) {
	if !ref.Enabled {
		return c.peek(ref.Key, out)
	}

	for {
		c.mu.Lock()
		e := c.entryLocked(ref.Key)

		if e.status == StatusSuccess && !e.stale {
			c.mu.Unlock()
			data, found := c.store.Get(ref.Key)
			if found {
				return StatusSuccess, decode(data, out)
			}
			// The store evicted the payload; re-fetch.
			c.mu.Lock()
			e.stale = true
			c.mu.Unlock()
			continue
		}

		if f, ok := c.inflight[ref.Key]; ok {
			c.mu.Unlock()
			select {
			case <-f.done:
			case <-ctx.Done():
				return StatusLoading, ctx.Err()
			}
			if f.err != nil {
				return StatusError, f.err
			}
			return StatusSuccess, decode(f.data, out)
		}

		f := &flight{done: make(chan struct{})}
		c.inflight[ref.Key] = f
		e.status = StatusLoading
		c.mu.Unlock()
		c.notify(ref.Key)

		value, err := fetch(ctx)
		var data []byte
		if err == nil {
			data, err = msgpack.Marshal(value)
			if err != nil {
				err = util.WrapErr("failed to encode payload", err)
			}
		}
		if err == nil {
			c.store.Set(ref.Key, data, c.ttl)
		}

		c.mu.Lock()
		delete(c.inflight, ref.Key)
		if err != nil {
			e.status = StatusError
			e.err = err
		} else {
			e.status = StatusSuccess
			e.err = nil
			e.stale = false
			e.hasData = true
		}
		f.data, f.err = data, err
		close(f.done)
		c.mu.Unlock()
		c.notify(ref.Key)

		if err != nil {
			return StatusError, err
		}
		return StatusSuccess, decode(data, out)
	}
}

// peek observes an entry without ever fetching. Used for disabled reads.
func (c *Client) peek(key string, out any) (Status, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return StatusIdle, nil
	}
	status, err, hasData := e.status, e.err, e.hasData
	c.mu.Unlock()

	if hasData && out != nil {
		if data, found := c.store.Get(key); found {
			if decodeErr := decode(data, out); decodeErr != nil {
				return StatusError, decodeErr
			}
		}
	}
	return status, err
}

// Mutate is the write path. The invalidation set is applied strictly after
// the operation succeeds; on failure nothing is invalidated. No automatic
// retry.
func (c *Client) Mutate(ctx context.Context, run MutateFunc, invalidates func(result any) mapset.Set[string]) (any, error) {
	result, err := run(ctx)
	if err != nil {
		return nil, err
	}

	if invalidates != nil {
		if set := invalidates(result); set != nil {
			c.Invalidate(set.ToSlice()...)
		}
	}
	return result, nil
}

// Invalidate marks every cache entry covered by the given targets as stale.
// The next read of a stale entry re-fetches. Invalidating an already-stale
// or absent entry is a no-op beyond notification.
func (c *Client) Invalidate(targets ...string) {
	changed := make([]string, 0, len(targets))

	c.mu.Lock()
	for _, target := range targets {
		for key, e := range c.entries {
			if matches(target, key) {
				e.stale = true
				changed = append(changed, key)
			}
		}
	}
	c.mu.Unlock()

	for _, key := range changed {
		c.notify(key)
	}
}

// Stale reports whether the entry exists and is marked stale.
func (c *Client) Stale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.stale
}

// Status returns the entry's current status without triggering a fetch.
func (c *Client) Status(key string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return StatusIdle
	}
	return e.status
}

// SetSuccess records an externally produced value for a key, marking the
// entry fresh. Used by the pagination engine, which manages its own fetches.
func (c *Client) SetSuccess(key string, value any) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return util.WrapErr("failed to encode payload", err)
	}
	c.store.Set(key, data, c.ttl)

	c.mu.Lock()
	e := c.entryLocked(key)
	e.status = StatusSuccess
	e.err = nil
	e.stale = false
	e.hasData = true
	c.mu.Unlock()
	c.notify(key)
	return nil
}

// SetError records a failed externally managed fetch. Prior payload bytes
// are left in place.
func (c *Client) SetError(key string, err error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.status = StatusError
	e.err = err
	c.mu.Unlock()
	c.notify(key)
}

// Subscribe returns a channel that receives a signal whenever the entry for
// the given key (or any composite under it) changes. Sends never block; a
// slow subscriber coalesces signals.
func (c *Client) Subscribe(key string) <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subs[key] = append(c.subs[key], ch)
	c.mu.Unlock()
	return ch
}

func (c *Client) Unsubscribe(key string, ch <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	channels := c.subs[key]
	for i, existing := range channels {
		if existing == ch {
			c.subs[key] = append(channels[:i], channels[i+1:]...)
			break
		}
	}
}

func (c *Client) notify(changed string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for subKey, channels := range c.subs {
		if !matches(subKey, changed) {
			continue
		}
		for _, ch := range channels {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

func decode(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return util.WrapErr("failed to decode payload", err)
	}
	return nil
}
