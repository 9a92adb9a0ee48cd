package chat

import (
	"context"
	"io"
)

// FileStore persists chat attachments and yields the URL clients fetch
// them from.
type FileStore interface {
	Save(ctx context.Context, name, contentType string, content io.Reader) (url string, err error)
}
