package output

import (
	"sync"

	"github.com/dshills/fileconv/internal/view"
)

type panelKey struct {
	window int
	name   string
}

// noWindow keys panels acquired without a window.
const noWindow = -1

// Manager hands out one shared panel per window and panel name. The zero
// value is ready to use.
type Manager struct {
	mu     sync.Mutex
	panels map[panelKey]*Panel
}

// NewManager creates an empty panel manager.
func NewManager() *Manager {
	return &Manager{panels: make(map[panelKey]*Panel)}
}

func keyFor(w view.Window, name string) panelKey {
	if name == "" {
		name = DefaultPanelName
	}
	if w == nil {
		return panelKey{window: noWindow, name: name}
	}
	return panelKey{window: w.ID(), name: name}
}

// Acquire returns the panel for w and name, creating it if needed.
// The caller is responsible for clearing it.
func (m *Manager) Acquire(w view.Window, name string) *Panel {
	k := keyFor(w, name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.panels[k]; ok {
		return p
	}
	if m.panels == nil {
		m.panels = make(map[panelKey]*Panel)
	}
	p := NewPanel(k.name)
	m.panels[k] = p
	return p
}

// Get returns an existing panel.
func (m *Manager) Get(w view.Window, name string) (*Panel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[keyFor(w, name)]
	return p, ok
}

// Release forgets the panel for w and name.
func (m *Manager) Release(w view.Window, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.panels, keyFor(w, name))
}

// Len returns the number of live panels.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.panels)
}
