package form

import (
	"context"
	"io"
	"path"
	"strings"
)

// Upload describes a file picked in a file or image control.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader persists an upload and returns the value bound to the field.
type Uploader interface {
	Store(ctx context.Context, upload Upload) (string, error)
}

// UploaderFunc adapts a function into an Uploader.
type UploaderFunc func(ctx context.Context, upload Upload) (string, error)

// Store calls the underlying function.
func (fn UploaderFunc) Store(ctx context.Context, upload Upload) (string, error) {
	return fn(ctx, upload)
}

// FilenameUploader keeps only the base filename and discards the content.
type FilenameUploader struct{}

// Store implements Uploader.
func (FilenameUploader) Store(_ context.Context, upload Upload) (string, error) {
	name := strings.ReplaceAll(upload.Filename, "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" {
		return "", nil
	}
	return base, nil
}
