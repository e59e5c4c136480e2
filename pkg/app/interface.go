package app

import (
	"context"

	"github.com/lukefarrell/snapfeed/pkg/gateway"
)

// Gateway is the remote resource surface the app consumes. Implemented by
// *gateway.Client; tests substitute mocks.
type Gateway interface {
	CreateAccount(ctx context.Context, email, password, name string) (gateway.Account, error)
	CreateSession(ctx context.Context, email, password string) (gateway.Session, error)
	DeleteSession(ctx context.Context) error
	GetCurrentAccount(ctx context.Context) (gateway.Account, error)
	AvatarInitialsURL(name string) string

	CreateDocument(ctx context.Context, collection, id string, fields gateway.Fields) (gateway.Document, error)
	GetDocument(ctx context.Context, collection, id string) (gateway.Document, error)
	ListDocuments(ctx context.Context, collection string, filters ...gateway.Filter) (gateway.DocumentList, error)
	UpdateDocument(ctx context.Context, collection, id string, fields gateway.Fields) (gateway.Document, error)
	DeleteDocument(ctx context.Context, collection, id string) error

	CreateFile(ctx context.Context, bucket, id, name string, blob []byte) (gateway.File, error)
	FilePreviewURL(bucket, fileID string, width, height int, gravity string, quality int) string
	DeleteFile(ctx context.Context, bucket, fileID string) error
}

var _ Gateway = (*gateway.Client)(nil)
