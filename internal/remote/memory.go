package remote

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"sync"
)

// MemoryStore keeps documents in process memory.
//
// Besides backing dry runs it lets tests simulate the two failure modes of a
// hosted store: an external writer changing the document (Touch) and a
// transport failure (SetFailure).
type MemoryStore struct {
	mu       sync.Mutex
	docs     map[string]memoryDoc
	failure  error
	replaces int
}

type memoryDoc struct {
	content []byte
	version Version
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryDoc)}
}

// Fetch implements DocumentStore.
func (s *MemoryStore) Fetch(_ context.Context, p string) ([]byte, Version, error) {
	const op = "Fetch"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return nil, "", NewDocumentError(op, p, s.failure, "")
	}
	doc, ok := s.docs[p]
	if !ok {
		return nil, "", NewDocumentError(op, p, ErrNotFound, "")
	}
	return append([]byte(nil), doc.content...), doc.version, nil
}

// Replace implements DocumentStore.
func (s *MemoryStore) Replace(_ context.Context, p string, content []byte, version Version) (Version, error) {
	const op = "Replace"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return "", NewDocumentError(op, p, s.failure, "")
	}
	current := s.docs[p].version
	if current != version {
		return "", conflictError(op, p, version, current)
	}

	s.replaces++
	next := contentVersion(append(content, []byte(strconv.Itoa(s.replaces))...))
	s.docs[p] = memoryDoc{content: append([]byte(nil), content...), version: next}
	return next, nil
}

// List implements DocumentStore.
func (s *MemoryStore) List(_ context.Context) ([]FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return nil, NewDocumentError("List", "", s.failure, "")
	}
	files := make([]FileInfo, 0, len(s.docs))
	for p, doc := range s.docs {
		if !isDataFile(p) {
			continue
		}
		files = append(files, FileInfo{
			Name:    path.Base(p),
			Path:    p,
			Size:    int64(len(doc.content)),
			Version: doc.version,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Put stores a document unconditionally, as an external writer would.
func (s *MemoryStore) Put(p string, content []byte) Version {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaces++
	v := contentVersion(append(append([]byte(nil), content...), []byte(strconv.Itoa(s.replaces))...))
	s.docs[p] = memoryDoc{content: append([]byte(nil), content...), version: v}
	return v
}

// Touch bumps the version of an existing document without changing its content.
func (s *MemoryStore) Touch(p string) Version {
	s.mu.Lock()
	content := s.docs[p].content
	s.mu.Unlock()
	return s.Put(p, content)
}

// Content returns the stored bytes of a document, or nil.
func (s *MemoryStore) Content(p string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.docs[p].content...)
}

// Replaces counts successful writes, including Put.
func (s *MemoryStore) Replaces() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaces
}

// SetFailure makes every following call fail as a transport failure caused by
// err. A nil err clears the failure.
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil && !errors.Is(err, ErrTransport) {
		err = fmt.Errorf("%w: %v", ErrTransport, err)
	}
	s.failure = err
}
