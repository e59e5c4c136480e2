package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/lukefarrell/snapfeed/pkg/gateway"
	"github.com/lukefarrell/snapfeed/pkg/model"
	"github.com/lukefarrell/snapfeed/pkg/query"
	"github.com/lukefarrell/snapfeed/pkg/util"
)

// SignUp registers an account and creates its user document, with the
// service's initials avatar as the starting profile image.
func (a *App) SignUp(ctx context.Context, user NewUser) (model.User, error) {
	result, err := a.Queries.Mutate(ctx, func(ctx context.Context) (any, error) {
		account, err := a.Gateway.CreateAccount(ctx, user.Email, user.Password, user.Name)
		if err != nil {
			return nil, util.WrapErr("failed to create account", err)
		}

		doc, err := a.Gateway.CreateDocument(ctx, a.Config.UserCollectionID, gateway.NewID(), gateway.Fields{
			"accountId": account.ID,
			"email":     account.Email,
			"name":      account.Name,
			"username":  user.Username,
			"imageUrl":  a.Gateway.AvatarInitialsURL(user.Name),
		})
		if err != nil {
			return nil, util.WrapErr("failed to save user", err)
		}
		return model.UserFromDocument(doc)
	}, nil)
	if err != nil {
		return model.User{}, err
	}
	return result.(model.User), nil
}

func (a *App) SignIn(ctx context.Context, email, password string) (gateway.Session, error) {
	result, err := a.Queries.Mutate(ctx, func(ctx context.Context) (any, error) {
		return a.Gateway.CreateSession(ctx, email, password)
	}, nil)
	if err != nil {
		return gateway.Session{}, err
	}
	return result.(gateway.Session), nil
}

func (a *App) SignOut(ctx context.Context) error {
	_, err := a.Queries.Mutate(ctx, func(ctx context.Context) (any, error) {
		return nil, a.Gateway.DeleteSession(ctx)
	}, nil)
	return err
}

// CreatePost uploads the image, then creates the post document. If the
// document write fails after a successful upload, the uploaded file is
// deleted so no orphaned storage is left behind.
func (a *App) CreatePost(ctx context.Context, post NewPost) (model.Post, error) {
	result, err := a.Queries.Mutate(ctx, func(ctx context.Context) (any, error) {
		return a.createPost(ctx, post)
	}, func(any) mapset.Set[string] {
		return mapset.NewSet(query.KeyRecentPosts.String())
	})
	if err != nil {
		return model.Post{}, err
	}
	return result.(model.Post), nil
}

func (a *App) createPost(ctx context.Context, post NewPost) (model.Post, error) {
	file, err := a.Gateway.CreateFile(ctx, a.Config.StorageBucketID, gateway.NewID(), post.File.Name, post.File.Data)
	if err != nil {
		return model.Post{}, util.WrapErr("failed to upload image", err)
	}

	imageURL := a.Gateway.FilePreviewURL(a.Config.StorageBucketID, file.ID, previewWidth, previewHeight, previewGravity, previewQuality)
	if imageURL == "" {
		a.deleteFileQuiet(ctx, file.ID)
		return model.Post{}, errors.New("failed to build image preview url")
	}

	doc, err := a.Gateway.CreateDocument(ctx, a.Config.PostCollectionID, gateway.NewID(), gateway.Fields{
		"creator":  post.UserID,
		"caption":  post.Caption,
		"imageUrl": imageURL,
		"imageId":  file.ID,
		"location": post.Location,
		"tags":     splitTags(post.Tags),
	})
	if err != nil {
		a.deleteFileQuiet(ctx, file.ID)
		return model.Post{}, util.WrapErr("failed to save post", err)
	}

	return model.PostFromDocument(doc)
}

// UpdatePost replaces the post's fields. A new image is uploaded before the
// document update: if the update fails the new file is removed and the
// previous image reference survives; if it succeeds the previous file is
// deleted only then.
func (a *App) UpdatePost(ctx context.Context, post PostUpdate) (model.Post, error) {
	result, err := a.Queries.Mutate(ctx, func(ctx context.Context) (any, error) {
		return a.updatePost(ctx, post)
	}, func(result any) mapset.Set[string] {
		updated := result.(model.Post)
		return mapset.NewSet(query.KeyPostByID.With(updated.ID))
	})
	if err != nil {
		return model.Post{}, err
	}
	return result.(model.Post), nil
}

func (a *App) updatePost(ctx context.Context, post PostUpdate) (model.Post, error) {
	imageURL, imageID := post.ImageURL, post.ImageID
	uploadedID := ""

	if post.File != nil {
		file, err := a.Gateway.CreateFile(ctx, a.Config.StorageBucketID, gateway.NewID(), post.File.Name, post.File.Data)
		if err != nil {
			return model.Post{}, util.WrapErr("failed to upload image", err)
		}
		uploadedID = file.ID
		imageID = file.ID
		imageURL = a.Gateway.FilePreviewURL(a.Config.StorageBucketID, file.ID, previewWidth, previewHeight, previewGravity, previewQuality)
	}

	doc, err := a.Gateway.UpdateDocument(ctx, a.Config.PostCollectionID, post.PostID, gateway.Fields{
		"caption":  post.Caption,
		"imageUrl": imageURL,
		"imageId":  imageID,
		"location": post.Location,
		"tags":     splitTags(post.Tags),
	})
	if err != nil {
		if uploadedID != "" {
			a.deleteFileQuiet(ctx, uploadedID)
		}
		return model.Post{}, util.WrapErr("failed to update post", err)
	}

	// The old image is removed only after the update is confirmed.
	if uploadedID != "" && post.ImageID != "" {
		a.deleteFileQuiet(ctx, post.ImageID)
	}

	return model.PostFromDocument(doc)
}

// DeletePost removes the post document, then its image file.
func (a *App) DeletePost(ctx context.Context, postID, imageID string) error {
	_, err := a.Queries.Mutate(ctx, func(ctx context.Context) (any, error) {
		if err := a.Gateway.DeleteDocument(ctx, a.Config.PostCollectionID, postID); err != nil {
			return nil, util.WrapErr("failed to delete post", err)
		}
		if imageID != "" {
			a.deleteFileQuiet(ctx, imageID)
		}
		return nil, nil
	}, func(any) mapset.Set[string] {
		return mapset.NewSet(query.KeyRecentPosts.String())
	})
	return err
}

// LikePost replaces the post's likes list with the given one. The UI toggles
// its local state optimistically before calling this; the invalidated reads
// reconcile it with the confirmed server state.
func (a *App) LikePost(ctx context.Context, postID string, likes []string) (model.Post, error) {
	result, err := a.Queries.Mutate(ctx, func(ctx context.Context) (any, error) {
		doc, err := a.Gateway.UpdateDocument(ctx, a.Config.PostCollectionID, postID, gateway.Fields{
			"likes": likes,
		})
		if err != nil {
			return nil, util.WrapErr("failed to like post", err)
		}
		return model.PostFromDocument(doc)
	}, func(result any) mapset.Set[string] {
		updated := result.(model.Post)
		return mapset.NewSet(
			query.KeyPostByID.With(updated.ID),
			query.KeyRecentPosts.String(),
			query.KeyInfinitePosts.String(),
			query.KeyCurrentUser.String(),
		)
	})
	if err != nil {
		return model.Post{}, err
	}
	return result.(model.Post), nil
}

func (a *App) SavePost(ctx context.Context, postID, userID string) (model.SavedRecord, error) {
	result, err := a.Queries.Mutate(ctx, func(ctx context.Context) (any, error) {
		doc, err := a.Gateway.CreateDocument(ctx, a.Config.SavesCollectionID, gateway.NewID(), gateway.Fields{
			"user": userID,
			"post": postID,
		})
		if err != nil {
			return nil, util.WrapErr("failed to save post", err)
		}
		return model.SavedRecordFromDocument(doc)
	}, func(any) mapset.Set[string] {
		return mapset.NewSet(
			query.KeyRecentPosts.String(),
			query.KeyInfinitePosts.String(),
			query.KeyCurrentUser.String(),
		)
	})
	if err != nil {
		return model.SavedRecord{}, err
	}
	return result.(model.SavedRecord), nil
}

func (a *App) UnsavePost(ctx context.Context, savedRecordID string) error {
	_, err := a.Queries.Mutate(ctx, func(ctx context.Context) (any, error) {
		if err := a.Gateway.DeleteDocument(ctx, a.Config.SavesCollectionID, savedRecordID); err != nil {
			return nil, util.WrapErr("failed to delete saved post", err)
		}
		return nil, nil
	}, func(any) mapset.Set[string] {
		return mapset.NewSet(
			query.KeyRecentPosts.String(),
			query.KeyInfinitePosts.String(),
			query.KeyCurrentUser.String(),
		)
	})
	return err
}

// UpdateProfile edits the user document, with the same image replacement
// compensation as UpdatePost.
func (a *App) UpdateProfile(ctx context.Context, profile ProfileUpdate) (model.User, error) {
	result, err := a.Queries.Mutate(ctx, func(ctx context.Context) (any, error) {
		return a.updateProfile(ctx, profile)
	}, func(result any) mapset.Set[string] {
		updated := result.(model.User)
		return mapset.NewSet(
			query.KeyCurrentUser.String(),
			query.KeyUserByID.With(updated.ID),
		)
	})
	if err != nil {
		return model.User{}, err
	}
	return result.(model.User), nil
}

func (a *App) updateProfile(ctx context.Context, profile ProfileUpdate) (model.User, error) {
	imageURL, imageID := profile.ImageURL, profile.ImageID
	uploadedID := ""

	if profile.File != nil {
		file, err := a.Gateway.CreateFile(ctx, a.Config.StorageBucketID, gateway.NewID(), profile.File.Name, profile.File.Data)
		if err != nil {
			return model.User{}, util.WrapErr("failed to upload image", err)
		}
		uploadedID = file.ID
		imageID = file.ID
		imageURL = a.Gateway.FilePreviewURL(a.Config.StorageBucketID, file.ID, previewWidth, previewHeight, previewGravity, previewQuality)
	}

	doc, err := a.Gateway.UpdateDocument(ctx, a.Config.UserCollectionID, profile.UserID, gateway.Fields{
		"name":     profile.Name,
		"bio":      profile.Bio,
		"imageUrl": imageURL,
		"imageId":  imageID,
	})
	if err != nil {
		if uploadedID != "" {
			a.deleteFileQuiet(ctx, uploadedID)
		}
		return model.User{}, util.WrapErr("failed to update profile", err)
	}

	if uploadedID != "" && profile.ImageID != "" {
		a.deleteFileQuiet(ctx, profile.ImageID)
	}

	return model.UserFromDocument(doc)
}

// deleteFileQuiet is the best-effort cleanup used by compensation paths. A
// failed cleanup may leak a remote file; it is logged and never retried.
func (a *App) deleteFileQuiet(ctx context.Context, fileID string) {
	if err := a.Gateway.DeleteFile(ctx, a.Config.StorageBucketID, fileID); err != nil {
		slog.Warn("failed to delete file during cleanup", "file", fileID, "error", err)
	}
}

// splitTags converts user-typed comma-separated tags into a list, dropping
// whitespace.
func splitTags(tags string) []string {
	trimmed := strings.ReplaceAll(tags, " ", "")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, ",")
}
