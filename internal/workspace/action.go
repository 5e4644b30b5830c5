package workspace

import (
	"context"
	"errors"
	"sync"
)

// Built-in action names. Custom actions may use any other name; action
// identity within the manager is the name.
const (
	UpdateComponentsActionName   = "update components"
	PropagateCouplingsActionName = "propagate couplings"
)

// UpdateAction is one named unit of per-iteration work. The ordered
// sequence of actions held by the ActionManager defines what one
// iteration means.
type UpdateAction interface {
	Name() string
	Description() string
	Run(ctx context.Context) error
}

type funcAction struct {
	name        string
	description string
	run         func(ctx context.Context) error
}

func (a funcAction) Name() string                  { return a.name }
func (a funcAction) Description() string           { return a.description }
func (a funcAction) Run(ctx context.Context) error { return a.run(ctx) }

// NewAction adapts a function into an UpdateAction.
func NewAction(name, description string, run func(ctx context.Context) error) UpdateAction {
	return funcAction{name: name, description: description, run: run}
}

// ActionManager owns the ordered action sequence for one iteration.
// Relative order is significant and preserved exactly as configured, so
// scripts can interleave bookkeeping between component updates and
// coupling propagation.
type ActionManager struct {
	mu      sync.RWMutex
	actions []UpdateAction
}

func NewActionManager(actions ...UpdateAction) *ActionManager {
	m := &ActionManager{}
	m.actions = append(m.actions, actions...)
	return m
}

// Insert places the action at the given position. Positions outside the
// current sequence are clamped to the nearest end.
func (m *ActionManager) Insert(action UpdateAction, position int) error {
	if action == nil {
		return errors.New("action is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if position < 0 {
		position = 0
	}
	if position > len(m.actions) {
		position = len(m.actions)
	}
	m.actions = append(m.actions, nil)
	copy(m.actions[position+1:], m.actions[position:])
	m.actions[position] = action
	return nil
}

// Append adds the action to the end of the sequence.
func (m *ActionManager) Append(action UpdateAction) error {
	m.mu.RLock()
	position := len(m.actions)
	m.mu.RUnlock()
	return m.Insert(action, position)
}

// Remove deletes the first action with the given name and reports
// whether one was found.
func (m *ActionManager) Remove(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, action := range m.actions {
		if action.Name() == name {
			m.actions = append(m.actions[:i], m.actions[i+1:]...)
			return true
		}
	}
	return false
}

// MoveToFront moves the named action to the start of the sequence.
func (m *ActionManager) MoveToFront(name string) bool {
	return m.move(name, 0)
}

// MoveToEnd moves the named action to the end of the sequence.
func (m *ActionManager) MoveToEnd(name string) bool {
	m.mu.RLock()
	last := len(m.actions) - 1
	m.mu.RUnlock()
	return m.move(name, last)
}

func (m *ActionManager) move(name string, target int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, action := range m.actions {
		if action.Name() != name {
			continue
		}
		m.actions = append(m.actions[:i], m.actions[i+1:]...)
		if target < 0 {
			target = 0
		}
		if target > len(m.actions) {
			target = len(m.actions)
		}
		m.actions = append(m.actions, nil)
		copy(m.actions[target+1:], m.actions[target:])
		m.actions[target] = action
		return true
	}
	return false
}

// Sequence returns a copy of the current ordered action sequence.
func (m *ActionManager) Sequence() []UpdateAction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]UpdateAction(nil), m.actions...)
}

func (m *ActionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.actions)
}
