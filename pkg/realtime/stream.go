package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorilla/websocket"
	"github.com/lukefarrell/snapfeed/pkg/query"
	"github.com/lukefarrell/snapfeed/pkg/util"
)

const (
	WorkerPoolSize   = 1
	StreamBufferSize = 1024
	ErrorThreshold   = 10
)

// Event is a document change pushed by the remote service's realtime
// channel.
type Event struct {
	Collection string `json:"collection"`
	Operation  string `json:"operation"` // create, update, delete
	DocumentID string `json:"documentId"`
}

// Collections maps the collection IDs this listener watches.
type Collections struct {
	Posts string
	Users string
	Saves string
}

// Listener subscribes to the remote service's realtime channel and marks
// the affected cached views stale, so other sessions' writes show up without
// a local mutation.
type Listener struct {
	url         string
	queries     *query.Client
	collections Collections
}

func New(url string, queries *query.Client, collections Collections) *Listener {
	return &Listener{
		url:         url,
		queries:     queries,
		collections: collections,
	}
}

// Run connects and processes events until the context is canceled or too
// many read errors occur.
func (l *Listener) Run(ctx context.Context) error {
	slog.Info("starting realtime listener")

	// Start worker threads
	var wg sync.WaitGroup
	wg.Add(WorkerPoolSize)
	stream := make(chan Event, StreamBufferSize)
	shutdown := make(chan struct{})
	for i := 0; i < WorkerPoolSize; i++ {
		go l.worker(i+1, stream, shutdown, &wg)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return util.WrapErr("failed to dial realtime endpoint", err)
	}
	defer conn.Close()

	// Unblock the read loop on cancellation
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	errors := 0
	for {
		event := Event{}
		err := conn.ReadJSON(&event)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			errors++
			slog.Warn(util.WrapErr("failed to read json", err).Error())

			if errors > ErrorThreshold {
				slog.Error("encountered too many errors reading from realtime channel")
				break
			}

			continue
		}

		stream <- event
	}

	// Signal workers to exit, and wait for them to finish
	close(shutdown)
	wg.Wait()
	return nil
}

func (l *Listener) worker(id int, stream chan Event, shutdown chan struct{}, wg *sync.WaitGroup) {
	slog.Info(fmt.Sprintf("starting worker %d", id))
	defer wg.Done()

	for {
		var event Event
		select {
		case event = <-stream:
		case <-shutdown:
			slog.Info(fmt.Sprintf("shutting down worker %d", id))
			return
		}

		keys := l.keysFor(event)
		if len(keys) == 0 {
			continue
		}
		l.queries.Invalidate(keys...)
		slog.Debug("invalidated keys for remote event", "collection", event.Collection, "document", event.DocumentID)
	}
}

// keysFor maps a document event to the cached views it affects.
func (l *Listener) keysFor(event Event) []string {
	keys := mapset.NewSet[string]()

	switch event.Collection {
	case l.collections.Posts:
		keys.Add(query.KeyRecentPosts.String())
		keys.Add(query.KeyInfinitePosts.String())
		keys.Add(query.KeySearchPosts.String())
		if event.DocumentID != "" {
			keys.Add(query.KeyPostByID.With(event.DocumentID))
		}
	case l.collections.Users:
		keys.Add(query.KeyUsers.String())
		keys.Add(query.KeyTopCreators.String())
		keys.Add(query.KeyCurrentUser.String())
		if event.DocumentID != "" {
			keys.Add(query.KeyUserByID.With(event.DocumentID))
		}
	case l.collections.Saves:
		keys.Add(query.KeyCurrentUser.String())
	}

	return keys.ToSlice()
}
