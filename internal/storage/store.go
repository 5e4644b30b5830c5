package storage

import (
	"context"

	"github.com/Skittleboi/simbrain/internal/model"
)

// Store persists workspace run history: run summaries, producer samples,
// and isolated action failures. Component-internal state is never stored.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, runID string) (model.RunRecord, bool, error)
	ListRunIDs(ctx context.Context) ([]string, error)
	SaveSamples(ctx context.Context, runID string, samples []model.IterationSample) error
	GetSamples(ctx context.Context, runID string) ([]model.IterationSample, bool, error)
	SaveActionFailures(ctx context.Context, runID string, failures []model.ActionFailureRecord) error
	GetActionFailures(ctx context.Context, runID string) ([]model.ActionFailureRecord, bool, error)
}

// Resetter is an optional store capability that drops all persisted data.
type Resetter interface {
	Reset(ctx context.Context) error
}
