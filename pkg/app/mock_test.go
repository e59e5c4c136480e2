package app

import (
	"context"
	"sync"

	"github.com/lukefarrell/snapfeed/pkg/config"
	"github.com/lukefarrell/snapfeed/pkg/gateway"
	"github.com/lukefarrell/snapfeed/pkg/query"
)

func testConfig() config.Config {
	return config.Config{
		Endpoint:          "https://service.test/v1",
		ProjectID:         "test-project",
		DatabaseID:        "db",
		UserCollectionID:  "users",
		PostCollectionID:  "posts",
		SavesCollectionID: "saves",
		StorageBucketID:   "media",
	}
}

func newTestApp(gw Gateway) *App {
	return newApp(testConfig(), gw, query.NewClient(query.NewMemoryStore()))
}

func toAnyList(values []string) []any {
	result := make([]any, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}

type listCall struct {
	collection string
	filters    []gateway.Filter
}

// mockGateway is a stateful fake of the remote service, recording enough to
// assert request ordering and compensation behavior.
type mockGateway struct {
	mu sync.Mutex

	failCreateFile     error
	failCreateDocument error
	failUpdateDocument error
	failDeleteDocument error

	lists map[string]gateway.DocumentList // canned list results per collection
	likes map[string][]string             // confirmed likes state per post

	listCalls    []listCall
	createdFiles []string
	deletedFiles []string
	createdDocs  []string
	deletedDocs  []string
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		lists: make(map[string]gateway.DocumentList),
		likes: make(map[string][]string),
	}
}

func (m *mockGateway) CreateAccount(ctx context.Context, email, password, name string) (gateway.Account, error) {
	return gateway.Account{ID: "acct1", Email: email, Name: name}, nil
}

func (m *mockGateway) CreateSession(ctx context.Context, email, password string) (gateway.Session, error) {
	return gateway.Session{ID: "sess1", AccountID: "acct1"}, nil
}

func (m *mockGateway) DeleteSession(ctx context.Context) error {
	return nil
}

func (m *mockGateway) GetCurrentAccount(ctx context.Context) (gateway.Account, error) {
	return gateway.Account{ID: "acct1", Email: "alice@example.com", Name: "Alice"}, nil
}

func (m *mockGateway) AvatarInitialsURL(name string) string {
	return "https://service.test/v1/avatars/initials?name=" + name
}

func (m *mockGateway) CreateDocument(ctx context.Context, collection, id string, fields gateway.Fields) (gateway.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateDocument != nil {
		return nil, m.failCreateDocument
	}
	m.createdDocs = append(m.createdDocs, collection+"/"+id)
	return m.document(collection, id, fields), nil
}

func (m *mockGateway) GetDocument(ctx context.Context, collection, id string) (gateway.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch collection {
	case "posts":
		return gateway.Document{
			"$id":     id,
			"creator": "u1",
			"caption": "hello",
			"likes":   toAnyList(m.likes[id]),
		}, nil
	case "users":
		return gateway.Document{
			"$id":       id,
			"accountId": "acct1",
			"name":      "Alice",
		}, nil
	}
	return nil, gateway.ErrNotFound
}

func (m *mockGateway) ListDocuments(ctx context.Context, collection string, filters ...gateway.Filter) (gateway.DocumentList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = append(m.listCalls, listCall{collection: collection, filters: filters})
	return m.lists[collection], nil
}

func (m *mockGateway) UpdateDocument(ctx context.Context, collection, id string, fields gateway.Fields) (gateway.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdateDocument != nil {
		return nil, m.failUpdateDocument
	}
	if likes, ok := fields["likes"].([]string); ok {
		m.likes[id] = likes
	}
	return m.document(collection, id, fields), nil
}

func (m *mockGateway) DeleteDocument(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeleteDocument != nil {
		return m.failDeleteDocument
	}
	m.deletedDocs = append(m.deletedDocs, collection+"/"+id)
	return nil
}

func (m *mockGateway) CreateFile(ctx context.Context, bucket, id, name string, blob []byte) (gateway.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateFile != nil {
		return gateway.File{}, m.failCreateFile
	}
	m.createdFiles = append(m.createdFiles, id)
	return gateway.File{ID: id, Name: name}, nil
}

func (m *mockGateway) FilePreviewURL(bucket, fileID string, width, height int, gravity string, quality int) string {
	return "https://service.test/v1/storage/buckets/" + bucket + "/files/" + fileID + "/preview"
}

func (m *mockGateway) DeleteFile(ctx context.Context, bucket, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedFiles = append(m.deletedFiles, fileID)
	return nil
}

// document fakes the service's response shape: relationship and list fields
// come back as generic JSON values.
func (m *mockGateway) document(collection, id string, fields gateway.Fields) gateway.Document {
	doc := gateway.Document{"$id": id}
	for key, value := range fields {
		switch v := value.(type) {
		case []string:
			doc[key] = toAnyList(v)
		default:
			doc[key] = value
		}
	}
	switch collection {
	case "posts":
		if _, ok := doc["creator"]; !ok {
			doc["creator"] = "u1"
		}
	case "users":
		if _, ok := doc["accountId"]; !ok {
			doc["accountId"] = "acct1"
		}
		if _, ok := doc["name"]; !ok {
			doc["name"] = "Alice"
		}
	}
	return doc
}

func postDoc(id, caption string, likes []string) gateway.Document {
	return gateway.Document{
		"$id":     id,
		"creator": "u1",
		"caption": caption,
		"likes":   toAnyList(likes),
	}
}

func userDoc(id, name string, postIDs []string) gateway.Document {
	return gateway.Document{
		"$id":       id,
		"accountId": "acct-" + id,
		"name":      name,
		"posts":     toAnyList(postIDs),
	}
}
