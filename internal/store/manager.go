package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"tracker/internal/logger"
	"tracker/internal/models"
	"tracker/internal/remote"
)

// DefaultDebounce coalesces bursts of Update calls into one remote write.
const DefaultDebounce = 1500 * time.Millisecond

// Manager owns the collection cache of one data document.
type Manager struct {
	remote   remote.DocumentStore
	debounce time.Duration
	now      func() time.Time
	log      zerolog.Logger

	// writeMu serializes everything that talks to the remote store.
	writeMu sync.Mutex

	mu      sync.Mutex
	path    string
	loaded  bool
	state   snapshot
	version remote.Version
	revs    map[models.Collection]uint64 // bumped on every cache change of a collection
	rev     uint64                       // bumped on every cache change
	dirty   bool
	saving  bool
	batches int
	timer   *time.Timer
	status  SaveStatus
	subs    []subscription
	nextSub int
}

// Option configures a Manager.
type Option func(*Manager)

// WithDebounce sets how long Update waits for further changes before
// writing. Zero disables automatic writes; call Flush instead.
func WithDebounce(d time.Duration) Option {
	return func(m *Manager) { m.debounce = d }
}

// WithClock sets the time source used to stamp document metadata.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a Manager for the document at path. Call Load before use.
func New(store remote.DocumentStore, path string, opts ...Option) *Manager {
	m := &Manager{
		remote:   store,
		path:     path,
		debounce: DefaultDebounce,
		now:      time.Now,
		revs:     make(map[models.Collection]uint64),
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = logger.WithComponent("store")
	return m
}

// Load fetches the document and replaces the cache with it. A missing
// document is a first run: the cache starts empty and the first save creates it.
func (m *Manager) Load(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return m.reload(ctx)
}

// reload must be called with writeMu held.
func (m *Manager) reload(ctx context.Context) error {
	const op = "Load"

	m.mu.Lock()
	path := m.path
	m.mu.Unlock()

	content, version, err := m.remote.Fetch(ctx, path)
	var next snapshot
	switch {
	case remote.IsNotFound(err):
		m.log.Info().Str("path", path).Msg("Data document not found, starting empty")
		next, version = emptySnapshot(), ""
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	default:
		next, err = decodeDocument(content)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.state = next
	m.version = version
	m.loaded = true
	m.dirty = false
	m.rev++
	for c := range m.revs {
		m.revs[c]++
	}
	for c := range next.collections {
		m.revs[c]++
	}
	m.mu.Unlock()

	m.log.Info().
		Str("path", path).
		Str("version", string(version)).
		Int64("doc_version", next.metadata.Version).
		Int("collections", len(next.collections)).
		Msg("Data document loaded")
	m.publish(StatusIdle, nil)
	return nil
}

// Path returns the active data file.
func (m *Manager) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

// Version returns the remote version token the cache is based on.
func (m *Manager) Version() remote.Version {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Metadata returns the metadata of the last loaded or saved document.
func (m *Manager) Metadata() models.Metadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.metadata
}

// Collections lists the collection names present in the cache.
func (m *Manager) Collections() []models.Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Collection, 0, len(m.state.collections))
	for c := range m.state.collections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasPendingSaves reports whether a dirty or saving cycle is outstanding.
func (m *Manager) HasPendingSaves() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty || m.saving
}

func (m *Manager) raw(c models.Collection) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return nil, ErrNotLoaded
	}
	return m.state.collections[c], nil
}

// Update replaces collection c in the cache. Subsequent reads observe the
// new records immediately. With persist set, a debounced Flush is scheduled.
func Update[T any](m *Manager, c models.Collection, records []T, persist bool) error {
	raw, err := encodeCollection(records)
	if err != nil {
		return fmt.Errorf("Update %s: %w", c, err)
	}

	m.mu.Lock()
	if !m.loaded {
		m.mu.Unlock()
		return ErrNotLoaded
	}
	m.state.collections[c] = raw
	m.revs[c]++
	m.rev++
	notify := false
	if persist {
		notify = !m.dirty
		m.dirty = true
		m.scheduleLocked()
	}
	m.mu.Unlock()

	if notify {
		m.publish(StatusDirty, nil)
	}
	return nil
}

// scheduleLocked arms the debounce timer. Open batches hold it back; their
// commit carries the pending changes.
func (m *Manager) scheduleLocked() {
	if m.debounce <= 0 || m.batches > 0 {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, func() {
		if err := m.Flush(context.Background()); err != nil {
			m.log.Error().Err(err).Msg("Debounced save failed")
		}
	})
}

// Flush writes the cache to the remote document if it has unsaved changes.
func (m *Manager) Flush(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if !m.dirty || !m.loaded {
		m.mu.Unlock()
		return nil
	}
	if m.batches > 0 {
		// the open batch persists these changes when it commits
		m.mu.Unlock()
		return nil
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	next := m.state.clone()
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
		return m.handleWriteError(ctx, "Flush", err)
	}
	m.version = version
	m.state.metadata = meta
	stillDirty := m.rev != rev
	m.dirty = stillDirty
	if stillDirty {
		m.scheduleLocked()
	}
	m.mu.Unlock()

	if stillDirty {
		m.publish(StatusDirty, nil)
	} else {
		m.publish(StatusSaved, nil)
	}
	return nil
}

// write replaces the remote document with s. Must be called with writeMu held.
func (m *Manager) write(ctx context.Context, s snapshot, base remote.Version) (models.Metadata, remote.Version, error) {
	content, meta, err := encodeDocument(s, m.now())
	if err != nil {
		return models.Metadata{}, "", err
	}

	m.mu.Lock()
	path := m.path
	m.mu.Unlock()

	version, err := m.remote.Replace(ctx, path, content, base)
	if err != nil {
		return models.Metadata{}, "", err
	}
	m.log.Info().
		Str("path", path).
		Str("version", string(version)).
		Int64("doc_version", meta.Version).
		Int("bytes", len(content)).
		Msg("Data document saved")
	return meta, version, nil
}

// handleWriteError publishes the failure. A version conflict reloads the
// document, discarding local unsaved state. Must be called with writeMu held.
func (m *Manager) handleWriteError(ctx context.Context, op string, err error) error {
	if !remote.IsConflict(err) {
		m.publish(StatusFailed, err)
		return fmt.Errorf("%s: %w", op, err)
	}

	m.publish(StatusConflict, err)
	if reloadErr := m.reload(ctx); reloadErr != nil {
		m.log.Error().Err(reloadErr).Msg("Reload after conflict failed")
		m.publish(StatusFailed, reloadErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Files lists the data files available in the document store.
func (m *Manager) Files(ctx context.Context) ([]remote.FileInfo, error) {
	return m.remote.List(ctx)
}

// Switch makes path the active data file and loads it. It is refused while
// saves are pending or batches are open.
func (m *Manager) Switch(ctx context.Context, path string) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if m.dirty || m.saving || m.batches > 0 {
		m.mu.Unlock()
		return ErrPendingSaves
	}
	previous := m.path
	m.path = path
	m.mu.Unlock()

	if err := m.reload(ctx); err != nil {
		m.mu.Lock()
		m.path = previous
		m.mu.Unlock()
		return err
	}
	return nil
}

// Close stops the debounce timer and writes pending changes.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.mu.Unlock()
	return m.Flush(ctx)
}
