package app

import (
	"context"
	"sort"

	"github.com/lukefarrell/snapfeed/pkg/model"
	"github.com/lukefarrell/snapfeed/pkg/query"
)

// GetTopCreators ranks users by post count and returns the top five. This is
// a plain derived read: the full user list is recomputed on every fresh
// fetch, which is fine at small scale.
func (a *App) GetTopCreators(ctx context.Context) ([]model.User, query.Status, error) {
	var creators []model.User
	status, err := a.Queries.Query(ctx, query.Ref{Key: query.KeyTopCreators.String(), Enabled: true}, func(ctx context.Context) (any, error) {
		list, err := a.Gateway.ListDocuments(ctx, a.Config.UserCollectionID)
		if err != nil {
			return nil, err
		}

		users, err := model.UsersFromList(list)
		if err != nil {
			return nil, err
		}

		sort.SliceStable(users, func(i, j int) bool {
			return len(users[i].Posts) > len(users[j].Posts)
		})
		if len(users) > topCreatorCount {
			users = users[:topCreatorCount]
		}
		return users, nil
	}, &creators)
	return creators, status, err
}
