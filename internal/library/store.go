package library

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// FileStore persists the catalog as a JSON array in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the catalog file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the catalog. A missing or malformed file yields an empty catalog
// rather than an error; only unreadable files fail.
func (s *FileStore) Load(ctx context.Context) ([]Book, error) {
	lg := zctx.From(ctx)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			lg.Debug("Catalog file missing, starting empty", zap.String("path", s.path))
			return []Book{}, nil
		}
		return nil, errors.Wrapf(err, "read %s", s.path)
	}

	books, err := decodeBooks(data)
	if err != nil {
		lg.Warn("Catalog file malformed, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return []Book{}, nil
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Save writes the catalog atomically: the data goes to a temporary file in the
// same directory which is then renamed over the target.
func (s *FileStore) Save(ctx context.Context, books []Book) error {
	data := encodeBooks(books)

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrapf(err, "replace %s", s.path)
	}

	zctx.From(ctx).Debug("Catalog saved",
		zap.String("path", s.path),
		zap.Int("books", len(books)),
	)
	return nil
}
