package app

import (
	"context"

	"github.com/lukefarrell/snapfeed/pkg/config"
	"github.com/lukefarrell/snapfeed/pkg/feed"
	"github.com/lukefarrell/snapfeed/pkg/gateway"
	"github.com/lukefarrell/snapfeed/pkg/query"
	"github.com/lukefarrell/snapfeed/pkg/realtime"
	"github.com/lukefarrell/snapfeed/pkg/secrets"
	"github.com/lukefarrell/snapfeed/pkg/util"
)

const (
	RecentPageSize   = 15
	DiscoverPageSize = 9

	previewWidth   = 2000
	previewHeight  = 2000
	previewGravity = "top"
	previewQuality = 100

	topCreatorCount = 5
)

// App wires the gateway, the cache/invalidation client, and the two feed
// state machines into one shared instance per running application.
type App struct {
	Config   config.Config
	Gateway  Gateway
	Queries  *query.Client
	Recent   *feed.Feed
	Discover *feed.Feed
	Search   *feed.Search
}

func NewApp() (*App, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	if cfg.APIKey == "" && cfg.APIKeySecretName != "" {
		sm, err := secrets.New()
		if err != nil {
			return nil, util.WrapErr("failed to create secrets manager", err)
		}
		cfg.APIKey, err = sm.GetServiceAPIKey(cfg.APIKeySecretName)
		if err != nil {
			return nil, util.WrapErr("failed to load service api key", err)
		}
	}

	var store query.Store
	if cfg.SharedCacheEnabled {
		store, err = query.NewValkeyStore(cfg.ValkeyAddress, cfg.ValkeyTLSEnabled)
		if err != nil {
			return nil, util.WrapErr("failed to create valkey store", err)
		}
	} else {
		store = query.NewMemoryStore()
	}

	gw := gateway.New(gateway.Config{
		Endpoint:   cfg.Endpoint,
		ProjectID:  cfg.ProjectID,
		DatabaseID: cfg.DatabaseID,
		APIKey:     cfg.APIKey,
	}, nil)

	return newApp(cfg, gw, query.NewClient(store)), nil
}

// newApp finishes wiring with the given collaborators. Split out so tests
// can inject a mock gateway and an in-memory store.
func newApp(cfg config.Config, gw Gateway, queries *query.Client) *App {
	app := &App{
		Config:  cfg,
		Gateway: gw,
		Queries: queries,
	}
	app.Recent = feed.New(queries, query.KeyRecentPosts.String(), RecentPageSize, app.fetchPostsPage)
	app.Discover = feed.New(queries, query.KeyInfinitePosts.String(), DiscoverPageSize, app.fetchPostsPage)
	app.Search = feed.NewSearch(context.Background(), queries, app.searchPosts)
	return app
}

func (a *App) Close() {
	a.Queries.Close()
}

// Run processes the remote service's realtime channel until the context is
// canceled, keeping cached views in sync with other sessions' writes.
func (a *App) Run(ctx context.Context) error {
	listener := realtime.New(a.Config.RealtimeEndpoint, a.Queries, realtime.Collections{
		Posts: a.Config.PostCollectionID,
		Users: a.Config.UserCollectionID,
		Saves: a.Config.SavesCollectionID,
	})
	return listener.Run(ctx)
}

// RecentVisible advances the recency feed when its sentinel is visible.
func (a *App) RecentVisible(ctx context.Context) error {
	return a.Recent.OnVisible(ctx)
}

// DiscoverVisible advances the discovery feed, unless a search term is
// present: the search overlay supersedes the feed without resetting it.
func (a *App) DiscoverVisible(ctx context.Context) error {
	if a.Search.Pending() {
		return nil
	}
	return a.Discover.OnVisible(ctx)
}
