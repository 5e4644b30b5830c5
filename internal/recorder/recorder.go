// Package recorder observes a workspace run and persists its history
// through a storage backend. It records run summaries, per-iteration
// samples of watched producers, and isolated action failures. Component
// internals are never persisted.
package recorder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skittleboi/simbrain/internal/attribute"
	"github.com/Skittleboi/simbrain/internal/model"
	"github.com/Skittleboi/simbrain/internal/storage"
	"github.com/Skittleboi/simbrain/internal/workspace"
)

// Recorder is a workspace listener. Attach it before starting a run and
// call Flush once the run has finished.
type Recorder struct {
	runID string
	ws    *workspace.Workspace
	store storage.Store
	watch []string

	mu        sync.Mutex
	samples   []model.IterationSample
	failures  []model.ActionFailureRecord
	startedAt time.Time
	requested int
}

// Config describes what a Recorder captures.
type Config struct {
	// RunID names the persisted run. Generated when empty.
	RunID string
	// Watch lists producer references ("componentID:name") sampled at
	// every completed iteration. Vector producers are expanded to one
	// value per element.
	Watch []string
}

func New(ws *workspace.Workspace, store storage.Store, cfg Config) *Recorder {
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Recorder{
		runID: runID,
		ws:    ws,
		store: store,
		watch: append([]string(nil), cfg.Watch...),
	}
}

func (r *Recorder) RunID() string { return r.runID }

// Attach registers the recorder as a workspace listener and stamps the
// run start time.
func (r *Recorder) Attach() {
	r.mu.Lock()
	r.startedAt = time.Now().UTC()
	r.mu.Unlock()
	r.ws.AddListener(r)
}

func (r *Recorder) Detach() {
	r.ws.RemoveListener(r)
}

// HandleWorkspaceEvent implements workspace.Listener. Events arrive on
// the update goroutine, so watched producers are read between iterations.
func (r *Recorder) HandleWorkspaceEvent(evt workspace.Event) {
	switch evt.Kind {
	case workspace.EventIterationCompleted:
		r.sample(evt.Iteration)
	case workspace.EventActionFailed:
		r.mu.Lock()
		r.failures = append(r.failures, model.ActionFailureRecord{
			Iteration: evt.Iteration,
			Action:    evt.Action,
			Error:     evt.Err.Error(),
		})
		r.mu.Unlock()
	}
}

func (r *Recorder) sample(iteration int64) {
	if len(r.watch) == 0 {
		return
	}

	values := make(map[string]float64, len(r.watch))
	for _, ref := range r.watch {
		p, ok := r.ws.FindProducer(ref)
		if !ok {
			continue
		}
		v := p.Read()
		if v.Kind == attribute.KindScalar {
			values[ref] = v.Scalar
			continue
		}
		for i, elem := range v.Vector {
			values[fmt.Sprintf("%s[%d]", ref, i)] = elem
		}
	}

	r.mu.Lock()
	r.samples = append(r.samples, model.IterationSample{Iteration: iteration, Values: values})
	r.mu.Unlock()
}

// SetRequested records how many iterations the run asked for, for the
// persisted summary. Zero means run-until-stopped.
func (r *Recorder) SetRequested(n int) {
	r.mu.Lock()
	r.requested = n
	r.mu.Unlock()
}

// Flush persists the run summary, collected samples, and collected
// failures. Call it after the run has finished; calling it again
// overwrites the previous records for the same run ID.
func (r *Recorder) Flush(ctx context.Context, completed int) error {
	r.mu.Lock()
	samples := append([]model.IterationSample(nil), r.samples...)
	failures := append([]model.ActionFailureRecord(nil), r.failures...)
	startedAt := r.startedAt
	requested := r.requested
	r.mu.Unlock()

	couplings := r.ws.Couplings()
	records := make([]model.CouplingRecord, 0, len(couplings))
	for _, c := range couplings {
		records = append(records, model.CouplingRecord{
			ID:       c.ID,
			Producer: c.Producer.Spec().ID(),
			Consumer: c.Consumer.Spec().ID(),
			Strategy: c.Strategy.String(),
		})
	}

	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:      r.runID,
		Components: r.ws.ComponentIDs(),
		Couplings:  records,
		Requested:  requested,
		Completed:  completed,
		Failures:   r.ws.FailureCount(),
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	}

	if err := r.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run %s: %w", r.runID, err)
	}
	if err := r.store.SaveSamples(ctx, r.runID, samples); err != nil {
		return fmt.Errorf("save samples %s: %w", r.runID, err)
	}
	if err := r.store.SaveActionFailures(ctx, r.runID, failures); err != nil {
		return fmt.Errorf("save action failures %s: %w", r.runID, err)
	}
	return nil
}
