package model

import (
	"github.com/lukefarrell/snapfeed/pkg/gateway"
	"github.com/lukefarrell/snapfeed/pkg/util"
)

// Post is the schema of a document in the posts collection.
type Post struct {
	ID        string   `msgpack:"id"`
	CreatedAt string   `msgpack:"c"`
	Caption   string   `msgpack:"cap"`
	Tags      []string `msgpack:"t,omitempty"`
	ImageURL  string   `msgpack:"iu"`
	ImageID   string   `msgpack:"ii"`
	Location  string   `msgpack:"l,omitempty"`
	CreatorID string   `msgpack:"cr"`
	Likes     []string `msgpack:"lk,omitempty"` // IDs of users who liked the post
}

// PostFromDocument validates a raw posts-collection document.
func PostFromDocument(doc gateway.Document) (Post, error) {
	post := Post{
		ID:        doc.ID(),
		CreatedAt: doc.CreatedAt(),
		Caption:   str(doc, "caption"),
		Tags:      strList(doc, "tags"),
		ImageURL:  str(doc, "imageUrl"),
		ImageID:   str(doc, "imageId"),
		Location:  str(doc, "location"),
		CreatorID: refID(doc["creator"]),
		Likes:     refIDs(doc, "likes"),
	}

	if post.ID == "" {
		return Post{}, invalid("posts", "missing $id")
	}
	if post.CreatorID == "" {
		return Post{}, invalid("posts", "missing creator")
	}

	return post, nil
}

// PostsFromList validates every document in a posts-collection list result.
func PostsFromList(list gateway.DocumentList) ([]Post, error) {
	posts := make([]Post, 0, len(list.Documents))
	for _, doc := range list.Documents {
		post, err := PostFromDocument(doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// LikedBy reports whether the given user has liked the post.
func (p Post) LikedBy(userID string) bool {
	return util.ContainsStr(p.Likes, userID)
}

// SavedRecord is the schema of a document in the saves collection, linking a
// user to a post they saved.
type SavedRecord struct {
	ID     string `msgpack:"id"`
	UserID string `msgpack:"u"`
	PostID string `msgpack:"p"`
}

// SavedRecordFromDocument validates a raw saves-collection document.
func SavedRecordFromDocument(doc gateway.Document) (SavedRecord, error) {
	record := SavedRecord{
		ID:     doc.ID(),
		UserID: refID(doc["user"]),
		PostID: refID(doc["post"]),
	}

	if record.ID == "" {
		return SavedRecord{}, invalid("saves", "missing $id")
	}
	if record.PostID == "" {
		return SavedRecord{}, invalid("saves", "missing post")
	}

	return record, nil
}
