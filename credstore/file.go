package credstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File is a [Store] keeping one file per entry under a directory, the durable
// analog of browser local storage for CLI and desktop processes. Files are
// created 0600 and the directory 0700; the token never transits any other
// path.
type File struct {
	dir string
}

// NewFile creates a file-backed store rooted at dir. The directory is created
// lazily on the first Write.
func NewFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("credstore: empty directory")
	}
	return &File{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (f *File) Dir() string {
	return f.dir
}

// Read implements [Store].
func (f *File) Read(ctx context.Context) (Record, bool, error) {
	userJSON, err := f.readEntry(KeyUser)
	if err != nil {
		return Record{}, false, err
	}
	token, err := f.readEntry(KeyToken)
	if err != nil {
		return Record{}, false, err
	}

	tok := strings.TrimSpace(string(token))
	if !validRecord(userJSON, tok) {
		return Record{}, false, nil
	}
	return Record{UserJSON: userJSON, Token: tok}, true, nil
}

// Write implements [Store]. The user entry is written before the token entry
// so that a crash in between leaves a tokenless record, which Read already
// treats as absent.
func (f *File) Write(ctx context.Context, rec Record) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(f.path(KeyUser), rec.UserJSON, 0o600); err != nil {
		return err
	}
	return os.WriteFile(f.path(KeyToken), []byte(rec.Token), 0o600)
}

// Clear implements [Store].
func (f *File) Clear(ctx context.Context) error {
	for _, key := range []string{KeyToken, KeyUser} {
		if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key)
}

// readEntry returns nil content for a missing file; only unexpected I/O
// faults surface as errors.
func (f *File) readEntry(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
