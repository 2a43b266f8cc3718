package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"recipepipe/internal/models"
)

// FileSource reads <dir>/<collection>.json.
type FileSource struct {
	dir string
}

// NewFileSource creates a source over a local export directory.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Load reads one collection file.
func (s *FileSource) Load(ctx context.Context, collection string) ([]*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(s.dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: export directory %s", ErrSourceUnavailable, s.dir)
	}

	path := filepath.Join(s.dir, collection+".json")

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCollectionMissing, path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	docs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return docs, nil
}
