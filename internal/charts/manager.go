package charts

import (
	"errors"
	"sort"

	"github.com/mwiater/edudash/internal/logging"
)

// ErrNoSurface is returned by a Library when a slot has nothing to draw on.
var ErrNoSurface = errors.New("drawing surface unavailable")

// Handle is whatever a Library hands back for a drawn chart.
type Handle any

// Library is the drawing backend. Only the Manager may call it.
type Library interface {
	Create(slotID string, d Drawable) (Handle, error)
	Destroy(slotID string, h Handle)
}

// Manager binds at most one live handle to each slot id.
type Manager struct {
	lib  Library
	live map[string]Handle
}

// NewManager returns a manager with no bound slots.
func NewManager(lib Library) *Manager {
	return &Manager{lib: lib, live: make(map[string]Handle)}
}

// Render destroys whatever is bound to slotID and draws d in its place. When
// the slot has no surface the call leaves the slot unbound and reports false.
func (m *Manager) Render(slotID string, d Drawable) bool {
	m.Clear(slotID)
	if d == nil {
		return false
	}
	h, err := m.lib.Create(slotID, d)
	if err != nil {
		if errors.Is(err, ErrNoSurface) {
			logging.LogDebug("[CHARTS] slot %s has no surface, skipped", slotID)
		} else {
			logging.LogEvent("[CHARTS] draw %s failed: %v", slotID, err)
		}
		return false
	}
	m.live[slotID] = h
	logging.LogDebug("[CHARTS] %s <- %s", slotID, Describe(d))
	return true
}

// Clear destroys the handle bound to slotID, if any.
func (m *Manager) Clear(slotID string) {
	h, ok := m.live[slotID]
	if !ok {
		return
	}
	delete(m.live, slotID)
	m.lib.Destroy(slotID, h)
}

// ClearAll destroys every bound handle regardless of which tab owns it.
func (m *Manager) ClearAll() {
	for _, slotID := range m.Slots() {
		m.Clear(slotID)
	}
}

// Handle returns the live handle for slotID.
func (m *Manager) Handle(slotID string) (Handle, bool) {
	h, ok := m.live[slotID]
	return h, ok
}

// Live is the number of bound handles.
func (m *Manager) Live() int {
	return len(m.live)
}

// Slots lists bound slot ids, sorted.
func (m *Manager) Slots() []string {
	ids := make([]string, 0, len(m.live))
	for id := range m.live {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
