package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore handles the disk I/O for the collection store. Each collection
// is one JSON array in <dataDir>/<name>.json.
type FileStore struct {
	dataDir string
	logger  *zap.Logger
}

// NewFileStore initializes the data directory and makes sure every known
// collection has a backing document, creating it as an empty array when
// missing. Existing documents are never touched.
func NewFileStore(dataDir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	fs := &FileStore{dataDir: dataDir, logger: logger}
	for _, col := range Collections {
		path := fs.path(col)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
			return nil, fmt.Errorf("create collection file %s: %w", col, err)
		}
	}
	return fs, nil
}

func (fs *FileStore) path(collection string) string {
	return filepath.Join(fs.dataDir, collection+".json")
}

// Load reads a collection's document into memory. A document that fails to
// parse is treated as empty rather than failing the request; the damage is
// logged and the next save overwrites it.
func (fs *FileStore) Load(collection string) ([]Record, error) {
	content, err := os.ReadFile(fs.path(collection))
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}
	var rows []Record
	if err := json.Unmarshal(content, &rows); err != nil {
		fs.logger.Warn("collection document is malformed, treating as empty",
			zap.String("collection", collection),
			zap.Error(err))
		return []Record{}, nil
	}
	if rows == nil {
		rows = []Record{}
	}
	return rows, nil
}

// Save writes the full collection back to disk atomically: marshal, write
// to a temp file, rename over the old one. A crash mid-save leaves either
// the old document or the new one, never a truncated mix.
func (fs *FileStore) Save(collection string, rows []Record) error {
	if rows == nil {
		rows = []Record{}
	}
	content, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", collection, err)
	}
	path := fs.path(collection)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("replace collection %s: %w", collection, err)
	}
	return nil
}
