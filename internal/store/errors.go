package store

import (
	"errors"
	"fmt"

	"tracker/internal/models"
	"tracker/internal/remote"
)

var (
	// ErrNotLoaded is returned when the cache is used before Load.
	ErrNotLoaded = errors.New("data document not loaded")

	// ErrBatchClosed is returned when a committed or discarded batch is used.
	ErrBatchClosed = errors.New("batch already committed or discarded")

	// ErrPendingSaves is returned when switching data files while a save is
	// outstanding.
	ErrPendingSaves = errors.New("pending saves must settle first")
)

// staleBatchError reports a batch whose inputs changed in the cache after Begin.
// It matches remote.ErrVersionConflict.
func staleBatchError(path string, c models.Collection) error {
	return remote.NewDocumentError("Commit", path, remote.ErrVersionConflict,
		fmt.Sprintf("collection %q changed since the batch began", c))
}
