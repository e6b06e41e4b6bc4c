// Package remote implements the document stores backing the tracker.
//
// All state lives in one JSON document per data file. A store can only
// fetch a whole document together with its version token and replace the
// whole document when the caller still holds the current version. There are
// no partial writes: the caller builds the complete next document first.
//
// Backends:
//   - GitHubStore: a file in a GitHub repository, mutated through the
//     contents API. The version token is the git blob SHA.
//   - FileStore: a JSON file in a local directory, version is a sha256 digest.
//   - MemoryStore: in-process documents, used for tests and dry runs.
package remote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
)

// Version is the opaque concurrency token returned by Fetch and Replace.
// The empty version means "the document does not exist yet".
type Version string

// FileInfo describes one data file in the store's data directory.
type FileInfo struct {
	Name    string  `json:"name"`
	Path    string  `json:"path"`
	Size    int64   `json:"size"`
	Version Version `json:"version"`
}

// DocumentStore is the versioned get/put contract over JSON documents.
type DocumentStore interface {
	// Fetch returns the document content and its current version.
	// It fails with ErrNotFound when the path does not exist.
	Fetch(ctx context.Context, path string) ([]byte, Version, error)

	// Replace stores content as the whole document and returns the new version.
	// An empty version creates the document. It fails with ErrVersionConflict
	// when version does not match the stored one.
	Replace(ctx context.Context, path string, content []byte, version Version) (Version, error)

	// List returns the JSON data files of the data directory.
	List(ctx context.Context) ([]FileInfo, error)
}

// contentVersion derives a version token from document bytes.
func contentVersion(content []byte) Version {
	sum := sha256.Sum256(content)
	return Version(hex.EncodeToString(sum[:]))
}

func isDataFile(name string) bool {
	return strings.EqualFold(path.Ext(name), ".json")
}
