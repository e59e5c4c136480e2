package app

import (
	"context"
	"fmt"

	"github.com/lukefarrell/snapfeed/pkg/gateway"
	"github.com/lukefarrell/snapfeed/pkg/model"
	"github.com/lukefarrell/snapfeed/pkg/query"
)

// GetCurrentUser returns the signed-in account's user document.
func (a *App) GetCurrentUser(ctx context.Context) (model.User, query.Status, error) {
	var user model.User
	status, err := a.Queries.Query(ctx, query.Ref{Key: query.KeyCurrentUser.String(), Enabled: true}, func(ctx context.Context) (any, error) {
		return a.fetchCurrentUser(ctx)
	}, &user)
	return user, status, err
}

func (a *App) fetchCurrentUser(ctx context.Context) (model.User, error) {
	account, err := a.Gateway.GetCurrentAccount(ctx)
	if err != nil {
		return model.User{}, err
	}

	list, err := a.Gateway.ListDocuments(ctx, a.Config.UserCollectionID,
		gateway.Equal("accountId", account.ID),
		gateway.Limit(1),
	)
	if err != nil {
		return model.User{}, err
	}
	if len(list.Documents) == 0 {
		return model.User{}, fmt.Errorf("no user document for account %s: %w", account.ID, gateway.ErrNotFound)
	}

	return model.UserFromDocument(list.Documents[0])
}

// GetPostByID is gated on a non-empty ID: with an empty ID the cache entry
// is observed but no fetch is triggered.
func (a *App) GetPostByID(ctx context.Context, id string) (model.Post, query.Status, error) {
	var post model.Post
	status, err := a.Queries.Query(ctx, query.Ref{Key: query.KeyPostByID.With(id), Enabled: id != ""}, func(ctx context.Context) (any, error) {
		doc, err := a.Gateway.GetDocument(ctx, a.Config.PostCollectionID, id)
		if err != nil {
			return nil, err
		}
		return model.PostFromDocument(doc)
	}, &post)
	return post, status, err
}

func (a *App) GetUserByID(ctx context.Context, id string) (model.User, query.Status, error) {
	var user model.User
	status, err := a.Queries.Query(ctx, query.Ref{Key: query.KeyUserByID.With(id), Enabled: id != ""}, func(ctx context.Context) (any, error) {
		doc, err := a.Gateway.GetDocument(ctx, a.Config.UserCollectionID, id)
		if err != nil {
			return nil, err
		}
		return model.UserFromDocument(doc)
	}, &user)
	return user, status, err
}

func (a *App) GetUsers(ctx context.Context) ([]model.User, query.Status, error) {
	var users []model.User
	status, err := a.Queries.Query(ctx, query.Ref{Key: query.KeyUsers.String(), Enabled: true}, func(ctx context.Context) (any, error) {
		list, err := a.Gateway.ListDocuments(ctx, a.Config.UserCollectionID, gateway.OrderDesc("$createdAt"))
		if err != nil {
			return nil, err
		}
		return model.UsersFromList(list)
	}, &users)
	return users, status, err
}

// fetchPostsPage is the shared page fetcher behind both feeds: newest first,
// starting strictly after the cursor when one is set.
func (a *App) fetchPostsPage(ctx context.Context, cursor string, limit int) ([]model.Post, error) {
	filters := []gateway.Filter{
		gateway.OrderDesc("$createdAt"),
		gateway.Limit(limit),
	}
	if cursor != "" {
		filters = append(filters, gateway.CursorAfter(cursor))
	}

	list, err := a.Gateway.ListDocuments(ctx, a.Config.PostCollectionID, filters...)
	if err != nil {
		return nil, err
	}
	return model.PostsFromList(list)
}

// searchPosts is the single non-paginated full-text query behind the search
// overlay.
func (a *App) searchPosts(ctx context.Context, term string) ([]model.Post, error) {
	list, err := a.Gateway.ListDocuments(ctx, a.Config.PostCollectionID, gateway.Search("caption", term))
	if err != nil {
		return nil, err
	}
	return model.PostsFromList(list)
}
