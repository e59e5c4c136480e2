package gateway

import (
	"context"
	"net/http"
	"net/url"
)

// Document is the raw, dynamically-shaped record returned by the remote
// document database. Schema validation happens in pkg/model, per collection.
type Document map[string]any

// ID returns the document's identifier field, or "" when absent.
func (d Document) ID() string {
	id, _ := d["$id"].(string)
	return id
}

// CreatedAt returns the document's creation timestamp (RFC 3339), or "".
func (d Document) CreatedAt() string {
	created, _ := d["$createdAt"].(string)
	return created
}

type DocumentList struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// Fields is the writable subset of a document.
type Fields map[string]any

func (c *Client) CreateDocument(ctx context.Context, collection, id string, fields Fields) (Document, error) {
	payload := map[string]any{
		"documentId": id,
		"data":       fields,
	}

	var doc Document
	err := c.doJSON(ctx, http.MethodPost, c.collectionPath(collection), payload, &doc, http.StatusCreated, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) GetDocument(ctx context.Context, collection, id string) (Document, error) {
	var doc Document
	err := c.do(ctx, http.MethodGet, c.collectionPath(collection)+"/"+id, nil, nil, "", &doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments fetches documents matching the given filters. Ordering,
// limits, and cursors are expressed as filters (see filter.go).
func (c *Client) ListDocuments(ctx context.Context, collection string, filters ...Filter) (DocumentList, error) {
	query := url.Values{}
	for _, filter := range filters {
		query.Add("queries[]", filter.encode())
	}

	var list DocumentList
	err := c.do(ctx, http.MethodGet, c.collectionPath(collection), query, nil, "", &list)
	if err != nil {
		return DocumentList{}, err
	}
	return list, nil
}

func (c *Client) UpdateDocument(ctx context.Context, collection, id string, fields Fields) (Document, error) {
	payload := map[string]any{
		"data": fields,
	}

	var doc Document
	err := c.doJSON(ctx, http.MethodPatch, c.collectionPath(collection)+"/"+id, payload, &doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, c.collectionPath(collection)+"/"+id, nil, nil, "", nil, http.StatusNoContent, http.StatusOK)
}
