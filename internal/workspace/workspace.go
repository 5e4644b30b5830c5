package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Skittleboi/simbrain/internal/attribute"
	"github.com/Skittleboi/simbrain/internal/coupling"
)

var ErrAlreadyRunning = errors.New("workspace is already running")

// RunState is the workspace run lifecycle state. Transitions happen only
// on the update goroutine, at iteration boundaries.
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
	StatePaused
	StateCancelling
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCancelling:
		return "cancelling"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ActionFailure records one isolated action error within an iteration.
type ActionFailure struct {
	Iteration int64
	Action    string
	Err       error
}

// Workspace owns the registered components, the coupling registry, the
// action sequence, the iteration counter, and the run state. All
// iteration work happens on a single logical update goroutine; iterations
// never overlap and component updates within an iteration run
// sequentially in registration order.
//
// Structural mutation (add/remove component, create/remove coupling) is
// permitted at any time, but while a run is in flight it is queued and
// applied at the next iteration boundary so that no iteration ever
// observes a half-applied structure.
type Workspace struct {
	mu   sync.Mutex
	cond *sync.Cond

	components []Component
	byID       map[string]Component

	couplings *coupling.Manager
	actions   *ActionManager

	state          RunState
	pauseRequested bool
	pending        []func()

	listeners []Listener

	iteration    atomic.Int64
	failureCount atomic.Int64
	lastFailures []ActionFailure
}

func New() *Workspace {
	ws := &Workspace{byID: make(map[string]Component)}
	ws.cond = sync.NewCond(&ws.mu)
	ws.couplings = coupling.NewManager(coupling.Config{
		Live: ws.hasComponent,
		OnAdded: func(c coupling.Coupling) {
			ws.notify(Event{Kind: EventCouplingAdded, CouplingID: c.ID, Iteration: ws.iteration.Load()})
		},
		OnRemoved: func(c coupling.Coupling) {
			ws.notify(Event{Kind: EventCouplingRemoved, CouplingID: c.ID, Iteration: ws.iteration.Load()})
		},
	})
	ws.actions = NewActionManager(
		NewAction(
			UpdateComponentsActionName,
			"update every registered component once, in registration order",
			ws.updateComponents,
		),
		NewAction(
			PropagateCouplingsActionName,
			"read every producer, then write every consumer from the captured snapshot",
			func(context.Context) error { return ws.couplings.PropagateAll() },
		),
	)
	return ws
}

// Actions exposes the per-iteration action sequence for scripting.
func (ws *Workspace) Actions() *ActionManager {
	return ws.actions
}

// AddComponent registers a component. Registration order is update order.
func (ws *Workspace) AddComponent(c Component) error {
	if c == nil {
		return errors.New("component is required")
	}
	id := c.ID()
	if id == "" {
		return errors.New("component id is required")
	}

	ws.mu.Lock()
	if _, exists := ws.byID[id]; exists {
		ws.mu.Unlock()
		return fmt.Errorf("component already registered: %s", id)
	}
	ws.mu.Unlock()

	ws.enqueueOrNow(func() {
		ws.mu.Lock()
		if _, exists := ws.byID[id]; exists {
			ws.mu.Unlock()
			return
		}
		ws.byID[id] = c
		ws.components = append(ws.components, c)
		ws.mu.Unlock()
		ws.notify(Event{Kind: EventComponentAdded, ComponentID: id, Iteration: ws.iteration.Load()})
	})
	return nil
}

// RemoveComponent deregisters a component and cascades removal of every
// coupling with an endpoint owned by it. Removing an unknown id is a
// no-op.
func (ws *Workspace) RemoveComponent(id string) {
	ws.enqueueOrNow(func() {
		ws.mu.Lock()
		if _, exists := ws.byID[id]; !exists {
			ws.mu.Unlock()
			return
		}
		delete(ws.byID, id)
		kept := ws.components[:0]
		for _, c := range ws.components {
			if c.ID() != id {
				kept = append(kept, c)
			}
		}
		ws.components = kept
		ws.mu.Unlock()

		ws.couplings.RemoveForComponent(id)
		ws.notify(Event{Kind: EventComponentRemoved, ComponentID: id, Iteration: ws.iteration.Load()})
	})
}

// CreateCoupling validates and binds a producer to a consumer. Validation
// errors are reported synchronously and leave the registry unchanged;
// while a run is in flight the validated coupling becomes visible to
// propagation at the next iteration boundary.
func (ws *Workspace) CreateCoupling(p attribute.Producer, c attribute.Consumer) (coupling.Coupling, error) {
	prepared, err := ws.couplings.Prepare(p, c)
	if err != nil {
		return coupling.Coupling{}, err
	}
	ws.enqueueOrNow(func() { ws.couplings.Register(prepared) })
	return prepared, nil
}

// RemoveCoupling removes the coupling if present; unknown ids are a
// no-op, not an error.
func (ws *Workspace) RemoveCoupling(id string) {
	ws.enqueueOrNow(func() { ws.couplings.Remove(id) })
}

// Couplings returns the live couplings in creation order.
func (ws *Workspace) Couplings() []coupling.Coupling {
	return ws.couplings.Couplings()
}

// Components returns the registered components in registration order.
// Callers outside the update goroutine must treat the components as
// read-only and read them only between iterations.
func (ws *Workspace) Components() []Component {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return append([]Component(nil), ws.components...)
}

func (ws *Workspace) Component(id string) (Component, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	c, ok := ws.byID[id]
	return c, ok
}

// FindProducer resolves an attribute reference of the form
// "componentID:name" to a registered producer.
func (ws *Workspace) FindProducer(ref string) (attribute.Producer, bool) {
	componentID, name, ok := splitRef(ref)
	if !ok {
		return nil, false
	}
	c, ok := ws.Component(componentID)
	if !ok {
		return nil, false
	}
	return ProducerByName(c, name)
}

// FindConsumer resolves an attribute reference of the form
// "componentID:name" to a registered consumer.
func (ws *Workspace) FindConsumer(ref string) (attribute.Consumer, bool) {
	componentID, name, ok := splitRef(ref)
	if !ok {
		return nil, false
	}
	c, ok := ws.Component(componentID)
	if !ok {
		return nil, false
	}
	return ConsumerByName(c, name)
}

func splitRef(ref string) (componentID, name string, ok bool) {
	i := strings.Index(ref, ":")
	if i <= 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

func (ws *Workspace) ComponentIDs() []string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ids := make([]string, 0, len(ws.components))
	for _, c := range ws.components {
		ids = append(ids, c.ID())
	}
	return ids
}

// Iteration returns the number of fully completed iterations.
func (ws *Workspace) Iteration() int64 {
	return ws.iteration.Load()
}

func (ws *Workspace) State() RunState {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.state
}

// FailureCount returns the total number of isolated action failures
// recorded since construction or the last Reset.
func (ws *Workspace) FailureCount() int64 {
	return ws.failureCount.Load()
}

// LastActionFailures returns the failures recorded during the most
// recently completed iteration.
func (ws *Workspace) LastActionFailures() []ActionFailure {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return append([]ActionFailure(nil), ws.lastFailures...)
}

func (ws *Workspace) AddListener(l Listener) {
	if l == nil {
		return
	}
	ws.mu.Lock()
	ws.listeners = append(ws.listeners, l)
	ws.mu.Unlock()
}

// RemoveListener unregisters a listener added with AddListener. The
// listener must be a comparable value, such as a pointer; ListenerFunc
// values cannot be removed.
func (ws *Workspace) RemoveListener(l Listener) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for i, item := range ws.listeners {
		if item == l {
			ws.listeners = append(ws.listeners[:i], ws.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Step runs exactly one iteration synchronously.
func (ws *Workspace) Step(ctx context.Context) error {
	_, err := ws.Iterate(ctx, 1)
	return err
}

// Iterate runs up to n iterations synchronously and returns the number
// of fully completed iterations. A Stop call halts further iterations at
// the next boundary without an error; context cancellation halts the same
// way and is returned.
func (ws *Workspace) Iterate(ctx context.Context, n int) (int, error) {
	return ws.loop(ctx, n)
}

// Run iterates continuously until Stop is called or the context is
// cancelled. It returns the number of iterations completed by this run.
func (ws *Workspace) Run(ctx context.Context) (int, error) {
	return ws.loop(ctx, -1)
}

// Future reports completion of an IterateAsync request.
type Future struct {
	done      chan struct{}
	completed int
	err       error
}

// Done is closed once the requested iterations have finished or the run
// halted at a boundary.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the run finishes and returns the number of fully
// completed iterations. Cancelling the wait context abandons the wait,
// not the run.
func (f *Future) Wait(ctx context.Context) (int, error) {
	select {
	case <-f.done:
		return f.completed, f.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// IterateAsync requests n iterations without blocking the caller; the
// iterations run on the workspace's update goroutine and the returned
// future resumes the caller once all n complete or cancellation is
// observed at a boundary. The reported count includes only fully
// finished iterations.
func (ws *Workspace) IterateAsync(n int) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		f.completed, f.err = ws.loop(context.Background(), n)
		close(f.done)
	}()
	return f
}

// RunAsync starts a continuous run without blocking the caller.
func (ws *Workspace) RunAsync() *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		f.completed, f.err = ws.loop(context.Background(), -1)
		close(f.done)
	}()
	return f
}

// Pause requests suspension at the next iteration boundary. The
// in-flight iteration always runs to completion first.
func (ws *Workspace) Pause() {
	ws.mu.Lock()
	if ws.state == StateRunning {
		ws.pauseRequested = true
	}
	ws.mu.Unlock()
}

// Resume releases a pause.
func (ws *Workspace) Resume() {
	ws.mu.Lock()
	ws.pauseRequested = false
	ws.cond.Broadcast()
	ws.mu.Unlock()
}

// Stop requests cooperative cancellation. The flag is checked only at
// iteration boundaries; no iteration is interrupted mid-flight, and the
// halted run resumes its caller reporting only fully finished iterations.
func (ws *Workspace) Stop() {
	ws.mu.Lock()
	if ws.state == StateRunning || ws.state == StatePaused {
		ws.state = StateCancelling
		ws.pauseRequested = false
		ws.cond.Broadcast()
	}
	ws.mu.Unlock()
}

// Reset zeroes the iteration counter and failure records and resets every
// component that supports it. Only permitted while idle.
func (ws *Workspace) Reset() error {
	ws.mu.Lock()
	if ws.state != StateIdle {
		ws.mu.Unlock()
		return ErrAlreadyRunning
	}
	comps := append([]Component(nil), ws.components...)
	ws.lastFailures = nil
	ws.mu.Unlock()

	ws.iteration.Store(0)
	ws.failureCount.Store(0)
	for _, c := range comps {
		if r, ok := c.(Resetter); ok {
			r.Reset()
		}
	}
	return nil
}

func (ws *Workspace) loop(ctx context.Context, n int) (int, error) {
	if err := ws.begin(); err != nil {
		return 0, err
	}
	stopWatch := context.AfterFunc(ctx, func() {
		ws.mu.Lock()
		ws.cond.Broadcast()
		ws.mu.Unlock()
	})
	defer stopWatch()

	completed := 0
	var loopErr error
	for n < 0 || completed < n {
		proceed, err := ws.boundary(ctx)
		if err != nil {
			loopErr = err
			break
		}
		if !proceed {
			break
		}
		ws.runOneIteration(ctx)
		count := ws.iteration.Add(1)
		completed++
		ws.notify(Event{Kind: EventIterationCompleted, Iteration: count})
	}
	ws.finish()
	return completed, loopErr
}

func (ws *Workspace) begin() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.state != StateIdle {
		return ErrAlreadyRunning
	}
	ws.state = StateRunning
	ws.pauseRequested = false
	return nil
}

// boundary applies queued structural mutations, honors a pending pause,
// and checks for cancellation. It reports whether the next iteration may
// proceed.
func (ws *Workspace) boundary(ctx context.Context) (bool, error) {
	ws.drainPending()

	ws.mu.Lock()
	for {
		if ws.state == StateCancelling {
			ws.mu.Unlock()
			return false, nil
		}
		if err := ctx.Err(); err != nil {
			ws.mu.Unlock()
			return false, err
		}
		if !ws.pauseRequested {
			break
		}
		ws.state = StatePaused
		ws.cond.Wait()
	}
	ws.state = StateRunning
	ws.mu.Unlock()
	return true, nil
}

func (ws *Workspace) finish() {
	for {
		ws.mu.Lock()
		if len(ws.pending) == 0 {
			ws.state = StateIdle
			ws.pauseRequested = false
			ws.mu.Unlock()
			return
		}
		batch := ws.pending
		ws.pending = nil
		ws.mu.Unlock()
		for _, fn := range batch {
			fn()
		}
	}
}

// runOneIteration executes the action sequence in order. A failing
// action is recorded and surfaced as an ActionFailed event but does not
// abort the remaining actions; the iteration still counts as completed.
func (ws *Workspace) runOneIteration(ctx context.Context) {
	iter := ws.iteration.Load() + 1

	ws.mu.Lock()
	ws.lastFailures = nil
	ws.mu.Unlock()

	for _, action := range ws.actions.Sequence() {
		err := action.Run(ctx)
		if err == nil {
			continue
		}
		failure := ActionFailure{Iteration: iter, Action: action.Name(), Err: err}
		ws.mu.Lock()
		ws.lastFailures = append(ws.lastFailures, failure)
		ws.mu.Unlock()
		ws.failureCount.Add(1)
		ws.notify(Event{Kind: EventActionFailed, Action: action.Name(), Iteration: iter, Err: err})
	}
}

func (ws *Workspace) updateComponents(ctx context.Context) error {
	ws.mu.Lock()
	comps := append([]Component(nil), ws.components...)
	ws.mu.Unlock()

	var errs []error
	for _, c := range comps {
		if err := c.Update(ctx); err != nil {
			errs = append(errs, fmt.Errorf("update %s: %w", c.ID(), err))
		}
	}
	return errors.Join(errs...)
}

func (ws *Workspace) enqueueOrNow(fn func()) {
	ws.mu.Lock()
	if ws.state == StateIdle {
		ws.mu.Unlock()
		fn()
		return
	}
	ws.pending = append(ws.pending, fn)
	ws.mu.Unlock()
}

func (ws *Workspace) drainPending() {
	for {
		ws.mu.Lock()
		if len(ws.pending) == 0 {
			ws.mu.Unlock()
			return
		}
		batch := ws.pending
		ws.pending = nil
		ws.mu.Unlock()
		for _, fn := range batch {
			fn()
		}
	}
}

func (ws *Workspace) hasComponent(id string) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	_, ok := ws.byID[id]
	return ok
}

func (ws *Workspace) notify(evt Event) {
	ws.mu.Lock()
	listeners := append([]Listener(nil), ws.listeners...)
	ws.mu.Unlock()
	for _, l := range listeners {
		l.HandleWorkspaceEvent(evt)
	}
}
