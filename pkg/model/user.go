package model

import (
	"github.com/lukefarrell/snapfeed/pkg/gateway"
)

// User is the schema of a document in the users collection.
type User struct {
	ID        string `msgpack:"id"`
	AccountID string `msgpack:"aid"`
	Name      string `msgpack:"n"`
	Username  string `msgpack:"un,omitempty"`
	Email     string `msgpack:"e"`
	Bio       string `msgpack:"b,omitempty"`
	ImageURL  string `msgpack:"iu,omitempty"`
	ImageID   string `msgpack:"ii,omitempty"`

	// Relationship fields, present when the service expands them.
	Posts []string      `msgpack:"p,omitempty"` // post IDs created by this user
	Saves []SavedRecord `msgpack:"s,omitempty"` // this user's saved-post records
}

// UserFromDocument validates a raw users-collection document.
func UserFromDocument(doc gateway.Document) (User, error) {
	user := User{
		ID:        doc.ID(),
		AccountID: str(doc, "accountId"),
		Name:      str(doc, "name"),
		Username:  str(doc, "username"),
		Email:     str(doc, "email"),
		Bio:       str(doc, "bio"),
		ImageURL:  str(doc, "imageUrl"),
		ImageID:   str(doc, "imageId"),
		Posts:     refIDs(doc, "posts"),
	}

	if user.ID == "" {
		return User{}, invalid("users", "missing $id")
	}
	if user.AccountID == "" {
		return User{}, invalid("users", "missing accountId")
	}
	if user.Name == "" {
		return User{}, invalid("users", "missing name")
	}

	for _, sub := range subDocuments(doc, "save") {
		record, err := SavedRecordFromDocument(sub)
		if err != nil {
			return User{}, err
		}
		user.Saves = append(user.Saves, record)
	}

	return user, nil
}

// UsersFromList validates every document in a users-collection list result.
func UsersFromList(list gateway.DocumentList) ([]User, error) {
	users := make([]User, 0, len(list.Documents))
	for _, doc := range list.Documents {
		user, err := UserFromDocument(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// SavedPost returns the saved-post record for the given post, if any.
func (u User) SavedPost(postID string) (SavedRecord, bool) {
	for _, record := range u.Saves {
		if record.PostID == postID {
			return record, true
		}
	}
	return SavedRecord{}, false
}
