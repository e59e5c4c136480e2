package gateway

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lukefarrell/snapfeed/pkg/util"
)

type File struct {
	ID       string `json:"$id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"sizeOriginal"`
}

// CreateFile uploads a blob to the given storage bucket.
func (c *Client) CreateFile(ctx context.Context, bucket, id, name string, blob []byte) (File, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("fileId", id); err != nil {
		return File{}, util.WrapErr("failed to write file id field", err)
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return File{}, util.WrapErr("failed to create form file", err)
	}
	if _, err := part.Write(blob); err != nil {
		return File{}, util.WrapErr("failed to write file contents", err)
	}
	if err := writer.Close(); err != nil {
		return File{}, util.WrapErr("failed to finalize multipart body", err)
	}

	path := fmt.Sprintf("/storage/buckets/%s/files", bucket)
	var file File
	err = c.do(ctx, http.MethodPost, path, nil, &body, writer.FormDataContentType(), &file, http.StatusCreated, http.StatusOK)
	if err != nil {
		return File{}, err
	}
	return file, nil
}

// FilePreviewURL returns a resized preview URL for an uploaded file. Pure
// URL construction, no request is made.
func (c *Client) FilePreviewURL(bucket, fileID string, width, height int, gravity string, quality int) string {
	query := url.Values{}
	query.Set("width", strconv.Itoa(width))
	query.Set("height", strconv.Itoa(height))
	query.Set("gravity", gravity)
	query.Set("quality", strconv.Itoa(quality))
	query.Set("project", c.projectID)
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/preview?%s", c.endpoint, bucket, fileID, query.Encode())
}

func (c *Client) DeleteFile(ctx context.Context, bucket, fileID string) error {
	path := fmt.Sprintf("/storage/buckets/%s/files/%s", bucket, fileID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "", nil, http.StatusNoContent, http.StatusOK)
}
