// Package input maps GLFW key events to viewer actions.
package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical viewer action, not a physical key.
type Action int

const (
	ActionQuit Action = iota
	ActionReloadShaders
	ActionPauseOrbit
	ActionOrbitLeft
	ActionOrbitRight
	ActionZoomIn
	ActionZoomOut
	ActionToggleProfiling
	ActionCount
)

// Manager tracks which actions are held and which changed since the
// last PostUpdate. Key events arrive on the GLFW callback; queries come
// from the frame loop.
type Manager struct {
	mu sync.RWMutex

	keyToActions map[glfw.Key][]Action

	current      [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// NewManager returns a Manager with the default bindings.
func NewManager() *Manager {
	m := &Manager{keyToActions: make(map[glfw.Key][]Action)}

	m.BindKey(glfw.KeyEscape, ActionQuit)
	m.BindKey(glfw.KeyR, ActionReloadShaders)
	m.BindKey(glfw.KeySpace, ActionPauseOrbit)
	m.BindKey(glfw.KeyLeft, ActionOrbitLeft)
	m.BindKey(glfw.KeyA, ActionOrbitLeft)
	m.BindKey(glfw.KeyRight, ActionOrbitRight)
	m.BindKey(glfw.KeyD, ActionOrbitRight)
	m.BindKey(glfw.KeyUp, ActionZoomIn)
	m.BindKey(glfw.KeyW, ActionZoomIn)
	m.BindKey(glfw.KeyDown, ActionZoomOut)
	m.BindKey(glfw.KeyS, ActionZoomOut)
	m.BindKey(glfw.KeyP, ActionToggleProfiling)

	return m
}

// BindKey adds a binding. A key may drive several actions and an action
// may have several keys.
func (m *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyToActions[key] = append(m.keyToActions[key], action)
}

// UnbindKey removes every binding of key.
func (m *Manager) UnbindKey(key glfw.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keyToActions, key)
}

// HandleKeyEvent updates action state for one key event.
func (m *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	pressed := action == glfw.Press || action == glfw.Repeat

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, act := range m.keyToActions[key] {
		if pressed && !m.current[act] {
			m.justPressed[act] = true
		}
		if !pressed && m.current[act] {
			m.justReleased[act] = true
		}
		m.current[act] = pressed
	}
}

// Attach installs the window's key callback.
func (m *Manager) Attach(window *glfw.Window) {
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		m.HandleKeyEvent(key, action)
	})
}

// PostUpdate clears the edge flags. Call it once at the end of a frame.
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.justPressed = [ActionCount]bool{}
	m.justReleased = [ActionCount]bool{}
}

func (m *Manager) query(state *[ActionCount]bool, action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return state[action]
}

// IsActive reports whether action is held.
func (m *Manager) IsActive(action Action) bool { return m.query(&m.current, action) }

// JustPressed reports whether action went down this frame.
func (m *Manager) JustPressed(action Action) bool { return m.query(&m.justPressed, action) }

// JustReleased reports whether action went up this frame.
func (m *Manager) JustReleased(action Action) bool { return m.query(&m.justReleased, action) }
