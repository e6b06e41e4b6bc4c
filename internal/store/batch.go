package store

import (
	"context"
	"encoding/json"
	"fmt"

	"tracker/internal/models"
)

// Reader is a consistent view of the collections: the live cache or a batch.
type Reader interface {
	raw(c models.Collection) (json.RawMessage, error)
}

// Get decodes collection c from r. A missing collection reads as empty.
func Get[T any](r Reader, c models.Collection) ([]T, error) {
	raw, err := r.raw(c)
	if err != nil {
		return nil, err
	}
	records := []T{}
	if len(raw) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("Get %s: %w", c, err)
	}
	return records, nil
}

// Batch is a unit of work over several collections. Reads observe the cache
// as of Begin plus the batch's own writes. Commit makes every write visible
// and durable together, or none of them.
type Batch struct {
	m      *Manager
	base   snapshot
	revs   map[models.Collection]uint64
	reads  map[models.Collection]bool
	writes map[models.Collection]json.RawMessage
	done   bool
}

// Begin opens a batch. Every batch must end with Commit or Discard.
func (m *Manager) Begin() (*Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return nil, ErrNotLoaded
	}
	revs := make(map[models.Collection]uint64, len(m.revs))
	for c, r := range m.revs {
		revs[c] = r
	}
	m.batches++
	return &Batch{
		m:      m,
		base:   m.state.clone(),
		revs:   revs,
		reads:  make(map[models.Collection]bool),
		writes: make(map[models.Collection]json.RawMessage),
	}, nil
}

func (b *Batch) raw(c models.Collection) (json.RawMessage, error) {
	if b.done {
		return nil, ErrBatchClosed
	}
	if raw, ok := b.writes[c]; ok {
		return raw, nil
	}
	b.reads[c] = true
	return b.base.collections[c], nil
}

// Put stages records as the new content of collection c.
func Put[T any](b *Batch, c models.Collection, records []T) error {
	if b.done {
		return ErrBatchClosed
	}
	raw, err := encodeCollection(records)
	if err != nil {
		return fmt.Errorf("Put %s: %w", c, err)
	}
	b.writes[c] = raw
	return nil
}

// Changed reports whether the batch staged any write.
func (b *Batch) Changed() bool {
	return len(b.writes) > 0
}

// Discard drops the staged writes. It is safe to call after Commit.
func (b *Batch) Discard() {
	if b.done {
		return
	}
	b.done = true

	m := b.m
	m.mu.Lock()
	m.batches--
	if m.dirty {
		m.scheduleLocked()
	}
	m.mu.Unlock()
}

// Commit writes the staged collections to the remote document. The cache
// changes only after the remote write succeeded. A batch whose collections
// changed in the cache after Begin fails with a version conflict; so does a
// remote write against a stale version, after which the cache is reloaded.
// Either way the caller may rebuild the batch and retry.
func (b *Batch) Commit(ctx context.Context) error {
	const op = "Commit"

	if b.done {
		return ErrBatchClosed
	}
	defer b.Discard()

	m := b.m
	if len(b.writes) == 0 {
		return nil
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	checked := make(map[models.Collection]uint64, len(b.writes))
	for _, c := range b.touched() {
		if m.revs[c] != b.revs[c] {
			path, dirty := m.path, m.dirty
			m.mu.Unlock()
			err := staleBatchError(path, c)
			m.publish(StatusConflict, err)
			if dirty {
				m.publish(StatusDirty, nil)
			} else {
				m.publish(StatusIdle, nil)
			}
			return err
		}
		checked[c] = m.revs[c]
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	next := m.state.clone()
	for c, raw := range b.writes {
		next.collections[c] = raw
	}
	base := m.version
	rev := m.rev
	m.saving = true
	m.mu.Unlock()

	m.publish(StatusSaving, nil)
	meta, version, err := m.write(ctx, next, base)

	m.mu.Lock()
	m.saving = false
	if err != nil {
		m.mu.Unlock()
		return m.handleWriteError(ctx, op, err)
	}
	for c, raw := range b.writes {
		if m.revs[c] != checked[c] {
			// a newer Update is in the cache and stays dirty
			continue
		}
		m.state.collections[c] = raw
		m.revs[c]++
	}
	m.state.metadata = meta
	m.version = version
	// unsaved Updates that arrived during the write are still pending
	stillDirty := m.rev != rev
	m.rev++
	m.dirty = stillDirty
	m.mu.Unlock()

	if stillDirty {
		m.publish(StatusDirty, nil)
	} else {
		m.publish(StatusSaved, nil)
	}
	return nil
}

func (b *Batch) touched() []models.Collection {
	out := make([]models.Collection, 0, len(b.reads)+len(b.writes))
	for c := range b.reads {
		out = append(out, c)
	}
	for c := range b.writes {
		if !b.reads[c] {
			out = append(out, c)
		}
	}
	return out
}
