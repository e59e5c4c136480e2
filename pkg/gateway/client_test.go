package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/go-playground/assert/v2"
)

// mockDoer records requests and plays back canned responses in order.
type mockDoer struct {
	requests  []*http.Request
	responses []*http.Response
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	if len(m.responses) == 0 {
		return response(http.StatusOK, "{}"), nil
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func newTestClient(responses ...*http.Response) (*Client, *mockDoer) {
	doer := &mockDoer{responses: responses}
	client := New(Config{
		Endpoint:   "https://service.test/v1",
		ProjectID:  "test-project",
		DatabaseID: "db",
		APIKey:     "secret",
	}, doer)
	return client, doer
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnauthorized, ErrUnauthenticated},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrAlreadyExists},
		{http.StatusRequestEntityTooLarge, ErrFileTooLarge},
		{http.StatusUnsupportedMediaType, ErrInvalidFileType},
	}

	for _, test := range tests {
		err := statusError(test.status, []byte("oops"))
		if !errors.Is(err, test.want) {
			t.Errorf("status %d: expected %v in chain, got %v", test.status, test.want, err)
		}

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("status %d: expected HTTPError in chain", test.status)
		}
		assert.Equal(t, httpErr.StatusCode, test.status)
		assert.Equal(t, string(httpErr.Body), "oops")
	}
}

func TestStatusErrorUnmappedStatus(t *testing.T) {
	err := statusError(http.StatusInternalServerError, []byte("boom"))

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatal("expected HTTPError")
	}
	assert.Equal(t, httpErr.StatusCode, http.StatusInternalServerError)
}

func TestGetDocumentRequestShape(t *testing.T) {
	client, doer := newTestClient(response(http.StatusOK, `{"$id":"p1","caption":"hello"}`))

	doc, err := client.GetDocument(context.Background(), "posts", "p1")
	assert.Equal(t, err, nil)
	assert.Equal(t, doc.ID(), "p1")

	req := doer.requests[0]
	assert.Equal(t, req.Method, http.MethodGet)
	assert.Equal(t, req.URL.String(), "https://service.test/v1/databases/db/collections/posts/documents/p1")
	assert.Equal(t, req.Header.Get("X-Project"), "test-project")
	assert.Equal(t, req.Header.Get("X-API-Key"), "secret")
}

func TestListDocumentsEncodesFilters(t *testing.T) {
	client, doer := newTestClient(response(http.StatusOK, `{"total":1,"documents":[{"$id":"p1"}]}`))

	list, err := client.ListDocuments(context.Background(), "posts",
		OrderDesc("$createdAt"),
		Limit(15),
		CursorAfter("p0"),
	)
	assert.Equal(t, err, nil)
	assert.Equal(t, list.Total, 1)
	assert.Equal(t, list.Documents[0].ID(), "p1")

	queries := doer.requests[0].URL.Query()["queries[]"]
	assert.Equal(t, len(queries), 3)
	assert.Equal(t, queries[0], `{"method":"orderDesc","attribute":"$createdAt"}`)
	assert.Equal(t, queries[1], `{"method":"limit","values":[15]}`)
	assert.Equal(t, queries[2], `{"method":"cursorAfter","values":["p0"]}`)
}

func TestGetDocumentNotFound(t *testing.T) {
	client, _ := newTestClient(response(http.StatusNotFound, `{"message":"not found"}`))

	_, err := client.GetDocument(context.Background(), "posts", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSessionMapsInvalidCredentials(t *testing.T) {
	client, _ := newTestClient(response(http.StatusUnauthorized, `{"message":"bad password"}`))

	_, err := client.CreateSession(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestDeleteDocumentAcceptsNoContent(t *testing.T) {
	client, doer := newTestClient(response(http.StatusNoContent, ""))

	err := client.DeleteDocument(context.Background(), "posts", "p1")
	assert.Equal(t, err, nil)
	assert.Equal(t, doer.requests[0].Method, http.MethodDelete)
}

func TestAvatarInitialsURL(t *testing.T) {
	client, _ := newTestClient()
	url := client.AvatarInitialsURL("Alice Smith")
	assert.Equal(t, url, "https://service.test/v1/avatars/initials?name=Alice+Smith&project=test-project")
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.Equal(t, len(id), 26)
		if seen[id] {
			t.Fatalf("duplicate ID: %s", id)
		}
		seen[id] = true
	}
}
