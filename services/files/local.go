package filesvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
)

// LocalStore writes attachments to a directory on disk and serves them
// from baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

var _ chat.FileStore = (*LocalStore)(nil)

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating uploads dir %s", dir)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Save(ctx context.Context, name, contentType string, content io.Reader) (string, error) {
	fname := uuid.New().String() + "-" + sanitizeName(name)

	dst, err := os.Create(filepath.Join(s.dir, fname))
	if err != nil {
		return "", errors.Wrap(err, "creating attachment file")
	}
	defer dst.Close()

	if _, err = io.Copy(dst, content); err != nil {
		return "", errors.Wrap(err, "writing attachment file")
	}
	return s.baseURL + "/" + fname, nil
}

// sanitizeName strips any path components and characters that would not
// survive a URL.
func sanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
}
