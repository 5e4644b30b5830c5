package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/Skittleboi/simbrain/internal/model"
)

type MemoryStore struct {
	mu       sync.RWMutex
	runs     map[string]model.RunRecord
	samples  map[string][]model.IterationSample
	failures map[string][]model.ActionFailureRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.RunRecord)
	s.samples = make(map[string][]model.IterationSample)
	s.failures = make(map[string][]model.ActionFailureRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.Components = append([]string(nil), run.Components...)
	run.Couplings = append([]model.CouplingRecord(nil), run.Couplings...)
	s.runs[run.RunID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	run.Components = append([]string(nil), run.Components...)
	run.Couplings = append([]model.CouplingRecord(nil), run.Couplings...)
	return run, true, nil
}

func (s *MemoryStore) ListRunIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) SaveSamples(_ context.Context, runID string, samples []model.IterationSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples[runID] = copySamples(samples)
	return nil
}

func (s *MemoryStore) GetSamples(_ context.Context, runID string) ([]model.IterationSample, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	samples, ok := s.samples[runID]
	if !ok {
		return nil, false, nil
	}
	return copySamples(samples), true, nil
}

func (s *MemoryStore) SaveActionFailures(_ context.Context, runID string, failures []model.ActionFailureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.ActionFailureRecord, len(failures))
	copy(copied, failures)
	s.failures[runID] = copied
	return nil
}

func (s *MemoryStore) GetActionFailures(_ context.Context, runID string) ([]model.ActionFailureRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	failures, ok := s.failures[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.ActionFailureRecord, len(failures))
	copy(copied, failures)
	return copied, true, nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.RunRecord)
	s.samples = make(map[string][]model.IterationSample)
	s.failures = make(map[string][]model.ActionFailureRecord)
	return nil
}

func copySamples(samples []model.IterationSample) []model.IterationSample {
	copied := make([]model.IterationSample, 0, len(samples))
	for _, sample := range samples {
		values := make(map[string]float64, len(sample.Values))
		for k, v := range sample.Values {
			values[k] = v
		}
		copied = append(copied, model.IterationSample{
			Iteration: sample.Iteration,
			Values:    values,
		})
	}
	return copied
}
