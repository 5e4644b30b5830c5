package coupling

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Skittleboi/simbrain/internal/attribute"
)

var ErrUnknownAttribute = errors.New("attribute does not belong to a live component")

// LivenessFn reports whether the component owning an attribute is still
// registered with the workspace.
type LivenessFn func(componentID string) bool

// Config wires a Manager into its owning workspace. OnAdded and OnRemoved
// fire after the registry mutation completes, outside the manager's lock.
type Config struct {
	Live      LivenessFn
	OnAdded   func(Coupling)
	OnRemoved func(Coupling)
}

// Manager is the registry of live couplings. Creation validates endpoint
// liveness and type coercibility atomically: on any failure the registry
// is left unchanged.
type Manager struct {
	mu        sync.RWMutex
	live      LivenessFn
	couplings map[string]Coupling
	order     []string
	onAdded   func(Coupling)
	onRemoved func(Coupling)
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		live:      cfg.Live,
		couplings: make(map[string]Coupling),
		onAdded:   cfg.OnAdded,
		onRemoved: cfg.OnRemoved,
	}
}

// Validate checks that both endpoints belong to live components and that
// the producer type is coercible into the consumer type. It does not
// mutate the registry.
func (m *Manager) Validate(p attribute.Producer, c attribute.Consumer) (attribute.Strategy, error) {
	if p == nil {
		return 0, errors.New("producer is required")
	}
	if c == nil {
		return 0, errors.New("consumer is required")
	}
	if m.live != nil {
		if !m.live(p.Spec().ComponentID) {
			return 0, fmt.Errorf("%w: %s", ErrUnknownAttribute, p.Spec().ID())
		}
		if !m.live(c.Spec().ComponentID) {
			return 0, fmt.Errorf("%w: %s", ErrUnknownAttribute, c.Spec().ID())
		}
	}
	strategy, err := attribute.Resolve(p.Spec().Type, c.Spec().Type)
	if err != nil {
		return 0, fmt.Errorf("couple %s -> %s: %w", p.Spec().ID(), c.Spec().ID(), err)
	}
	return strategy, nil
}

// Create validates and registers a new coupling.
func (m *Manager) Create(p attribute.Producer, c attribute.Consumer) (Coupling, error) {
	strategy, err := m.Validate(p, c)
	if err != nil {
		return Coupling{}, err
	}
	coupling := newCoupling(p, c, strategy)
	m.Register(coupling)
	return coupling, nil
}

// Prepare validates endpoints and builds a coupling without registering
// it. The workspace uses this to report coupling-creation errors
// synchronously while deferring registration to an iteration boundary.
func (m *Manager) Prepare(p attribute.Producer, c attribute.Consumer) (Coupling, error) {
	strategy, err := m.Validate(p, c)
	if err != nil {
		return Coupling{}, err
	}
	return newCoupling(p, c, strategy), nil
}

// Register adds a prepared coupling to the registry and fires OnAdded.
func (m *Manager) Register(coupling Coupling) {
	m.mu.Lock()
	if _, exists := m.couplings[coupling.ID]; exists {
		m.mu.Unlock()
		return
	}
	m.couplings[coupling.ID] = coupling
	m.order = append(m.order, coupling.ID)
	m.mu.Unlock()

	if m.onAdded != nil {
		m.onAdded(coupling)
	}
}

// Remove deletes the coupling if present and reports whether it existed.
// Removing an unknown id is a no-op, not an error.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	coupling, ok := m.couplings[id]
	if ok {
		delete(m.couplings, id)
		m.order = deleteID(m.order, id)
	}
	m.mu.Unlock()

	if ok && m.onRemoved != nil {
		m.onRemoved(coupling)
	}
	return ok
}

// RemoveForComponent removes every coupling with an endpoint owned by the
// component and returns the removed couplings in creation order.
func (m *Manager) RemoveForComponent(componentID string) []Coupling {
	m.mu.Lock()
	removed := make([]Coupling, 0)
	kept := m.order[:0]
	for _, id := range m.order {
		coupling := m.couplings[id]
		if coupling.involves(componentID) {
			delete(m.couplings, id)
			removed = append(removed, coupling)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	m.mu.Unlock()

	if m.onRemoved != nil {
		for _, coupling := range removed {
			m.onRemoved(coupling)
		}
	}
	return removed
}

// Couplings returns the live couplings in creation order.
func (m *Manager) Couplings() []Coupling {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Coupling, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.couplings[id])
	}
	return out
}

// Get returns the coupling with the given id.
func (m *Manager) Get(id string) (Coupling, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coupling, ok := m.couplings[id]
	return coupling, ok
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// PropagateAll runs one propagation cycle: a read pass capturing every
// producer value, then a write pass delivering the coerced values. No
// producer is re-read after any consumer write in the same cycle, so a
// cycle never feeds a value back into itself.
func (m *Manager) PropagateAll() error {
	live := m.Couplings()

	values := make([]attribute.Value, len(live))
	skip := make([]bool, len(live))
	var errs []error
	for i, coupling := range live {
		if m.live != nil && (!m.live(coupling.Producer.Spec().ComponentID) || !m.live(coupling.Consumer.Spec().ComponentID)) {
			skip[i] = true
			errs = append(errs, fmt.Errorf("propagate %s: %w", coupling, ErrUnknownAttribute))
			continue
		}
		values[i] = coupling.Producer.Read()
	}
	for i, coupling := range live {
		if skip[i] {
			continue
		}
		coupling.Consumer.Write(attribute.Apply(coupling.Strategy, values[i], coupling.Consumer.Spec().Type))
	}
	return errors.Join(errs...)
}

func deleteID(ids []string, id string) []string {
	out := ids[:0]
	for _, item := range ids {
		if item != id {
			out = append(out, item)
		}
	}
	return out
}
