package remote

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"tracker/internal/logger"
)

// FileStore keeps data files as JSON documents in a local directory.
// The version of a document is the sha256 digest of its bytes.
type FileStore struct {
	dir string
	mu  sync.Mutex
	log zerolog.Logger
}

// NewFileStore creates a store rooted at dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	const op = "NewFileStore"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: failed to create data directory: %w", op, err)
	}
	return &FileStore{
		dir: dir,
		log: logger.WithComponent("remote-file"),
	}, nil
}

func (s *FileStore) resolve(op, p string) (string, error) {
	if !filepath.IsLocal(p) {
		return "", NewDocumentError(op, p, ErrNotFound, "path escapes data directory")
	}
	return filepath.Join(s.dir, p), nil
}

// Fetch implements DocumentStore.
func (s *FileStore) Fetch(_ context.Context, p string) ([]byte, Version, error) {
	const op = "Fetch"

	full, err := s.resolve(op, p)
	if err != nil {
		return nil, "", err
	}
	content, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", NewDocumentError(op, p, ErrNotFound, "")
	}
	if err != nil {
		return nil, "", NewDocumentError(op, p, fmt.Errorf("%w: %v", ErrTransport, err), "read failed")
	}

	v := contentVersion(content)
	s.log.Debug().Str("path", p).Str("version", shortVersion(v)).Int("bytes", len(content)).Msg("Fetched document")
	return content, v, nil
}

// Replace implements DocumentStore.
func (s *FileStore) Replace(_ context.Context, p string, content []byte, version Version) (Version, error) {
	const op = "Replace"

	full, err := s.resolve(op, p)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current Version
	existing, err := os.ReadFile(full)
	switch {
	case err == nil:
		current = contentVersion(existing)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return "", NewDocumentError(op, p, fmt.Errorf("%w: %v", ErrTransport, err), "read failed")
	}
	if current != version {
		s.log.Warn().Str("path", p).Str("expected", shortVersion(version)).Str("current", shortVersion(current)).Msg("Rejected stale replace")
		return "", conflictError(op, p, version, current)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", NewDocumentError(op, p, fmt.Errorf("%w: %v", ErrTransport, err), "mkdir failed")
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".tracker-*.json")
	if err != nil {
		return "", NewDocumentError(op, p, fmt.Errorf("%w: %v", ErrTransport, err), "temp file failed")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", NewDocumentError(op, p, fmt.Errorf("%w: %v", ErrTransport, err), "write failed")
	}
	if err := tmp.Close(); err != nil {
		return "", NewDocumentError(op, p, fmt.Errorf("%w: %v", ErrTransport, err), "close failed")
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", NewDocumentError(op, p, fmt.Errorf("%w: %v", ErrTransport, err), "rename failed")
	}

	next := contentVersion(content)
	s.log.Debug().Str("path", p).Str("version", shortVersion(next)).Msg("Replaced document")
	return next, nil
}

// List implements DocumentStore.
func (s *FileStore) List(_ context.Context) ([]FileInfo, error) {
	const op = "List"

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, NewDocumentError(op, s.dir, fmt.Errorf("%w: %v", ErrTransport, err), "")
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !isDataFile(e.Name()) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			s.log.Warn().Err(err).Str("file", e.Name()).Msg("Skipping unreadable data file")
			continue
		}
		files = append(files, FileInfo{
			Name:    e.Name(),
			Path:    e.Name(),
			Size:    int64(len(content)),
			Version: contentVersion(content),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
