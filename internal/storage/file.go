package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/expense-tracker/pkg/transaction"
	"github.com/spf13/afero"
)

// FileAdapter keeps the collection in a single JSON or YAML file
type FileAdapter struct {
	fs    afero.Fs
	path  string
	codec Codec
}

// NewFileAdapter creates a FileAdapter for path on fs. The format is picked
// from the file extension.
func NewFileAdapter(fs afero.Fs, path string) *FileAdapter {
	return &FileAdapter{
		fs:    fs,
		path:  path,
		codec: CodecFor(path),
	}
}

// Path returns the store file path
func (a *FileAdapter) Path() string {
	return a.path
}

// Load reads every record from the file. A missing file is an empty store.
func (a *FileAdapter) Load() ([]transaction.Record, error) {
	data, err := afero.ReadFile(a.fs, a.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []transaction.Record{}, nil
		}
		return nil, &ReadError{Path: a.path, Err: err}
	}

	records, err := a.codec.Unmarshal(data)
	if err != nil {
		return nil, &ReadError{Path: a.path, Err: err}
	}
	return records, nil
}

// Save replaces the file contents with records. The data is written to a
// temporary file in the same directory and renamed over the target, so a
// failed write leaves the previous contents in place.
func (a *FileAdapter) Save(records []transaction.Record) error {
	data, err := a.codec.Marshal(records)
	if err != nil {
		return &WriteError{Path: a.path, Err: err}
	}

	dir := filepath.Dir(a.path)
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: a.path, Err: fmt.Errorf("failed to create directory: %w", err)}
	}

	tmp, err := afero.TempFile(a.fs, dir, "."+filepath.Base(a.path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: a.path, Err: fmt.Errorf("failed to create temp file: %w", err)}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		a.fs.Remove(tmpName)
		return &WriteError{Path: a.path, Err: fmt.Errorf("failed to write temp file: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		a.fs.Remove(tmpName)
		return &WriteError{Path: a.path, Err: fmt.Errorf("failed to close temp file: %w", err)}
	}
	if err := a.fs.Chmod(tmpName, 0o644); err != nil {
		a.fs.Remove(tmpName)
		return &WriteError{Path: a.path, Err: fmt.Errorf("failed to set file mode: %w", err)}
	}
	if err := a.fs.Rename(tmpName, a.path); err != nil {
		a.fs.Remove(tmpName)
		return &WriteError{Path: a.path, Err: fmt.Errorf("failed to replace store: %w", err)}
	}

	return nil
}
