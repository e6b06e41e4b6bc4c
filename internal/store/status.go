package store

// SaveStatus is a state of the save lifecycle.
type SaveStatus string

const (
	StatusIdle     SaveStatus = "idle"
	StatusDirty    SaveStatus = "dirty"
	StatusSaving   SaveStatus = "saving"
	StatusSaved    SaveStatus = "saved"
	StatusConflict SaveStatus = "conflict"
	StatusFailed   SaveStatus = "failed"
)

// Listener receives save status transitions. err is set for conflict and failed.
type Listener func(status SaveStatus, err error)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers fn for save status transitions and returns a function
// that removes it. Listeners are called outside the manager lock, in
// registration order.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSub++
	id := m.nextSub
	m.subs = append(m.subs, subscription{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// Status returns the latest save status.
func (m *Manager) Status() SaveStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// publish records status and notifies listeners. It must be called without m.mu held.
func (m *Manager) publish(status SaveStatus, err error) {
	m.mu.Lock()
	m.status = status
	subs := append([]subscription(nil), m.subs...)
	m.mu.Unlock()

	ev := m.log.Debug()
	if err != nil {
		ev = m.log.Warn().Err(err)
	}
	ev.Str("status", string(status)).Msg("Save status changed")

	for _, s := range subs {
		s.fn(status, err)
	}
}
