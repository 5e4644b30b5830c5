// Package simbrain is the embedding API: it loads workspace definitions,
// runs them, and queries persisted run history.
package simbrain

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skittleboi/simbrain/internal/config"
	"github.com/Skittleboi/simbrain/internal/model"
	"github.com/Skittleboi/simbrain/internal/pacing"
	"github.com/Skittleboi/simbrain/internal/recorder"
	"github.com/Skittleboi/simbrain/internal/storage"
	"github.com/Skittleboi/simbrain/internal/workspace"
)

const defaultDBPath = "simbrain.db"

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store storage.Store
}

// RunRequest describes one config-driven run. Zero values defer to the
// config file's execution section.
type RunRequest struct {
	ConfigPath string
	RunID      string
	Iterations int
	Rate       float64
	Watch      []string
}

type CouplingItem struct {
	ID       string
	Producer string
	Consumer string
	Strategy string
}

type RunSummary struct {
	RunID      string
	Requested  int
	Completed  int
	Failures   int64
	Components []string
	Couplings  []CouplingItem
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// ValidateConfig loads and validates a workspace definition without
// building it.
func (c *Client) ValidateConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// ResolveCouplings builds the configured workspace and reports its
// resolved couplings, including the coercion strategy chosen for each.
func (c *Client) ResolveCouplings(path string) ([]CouplingItem, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	ws, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return couplingItems(ws), nil
}

// RunWorkspace builds the configured workspace, runs it for the
// requested number of iterations, and persists the run history.
func (c *Client) RunWorkspace(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.ConfigPath == "" {
		return RunSummary{}, errors.New("config path is required")
	}

	cfg, err := config.Load(req.ConfigPath)
	if err != nil {
		return RunSummary{}, err
	}

	iterations := req.Iterations
	if iterations <= 0 {
		iterations = cfg.Execution.Iterations
	}
	if iterations <= 0 {
		return RunSummary{}, errors.New("iterations must be > 0, via request or config")
	}
	rate := req.Rate
	if rate <= 0 {
		rate = cfg.Execution.Rate
	}
	watch := req.Watch
	if len(watch) == 0 {
		watch = cfg.Execution.Watch
	}

	ws, err := cfg.Build()
	if err != nil {
		return RunSummary{}, err
	}

	if rate > 0 {
		limiter := pacing.NewLimiter(rate)
		pace := workspace.NewAction("pace iterations", "throttle the iteration rate", limiter.Wait)
		if err := ws.Actions().Insert(pace, 0); err != nil {
			return RunSummary{}, err
		}
	}

	rec := recorder.New(ws, c.store, recorder.Config{RunID: req.RunID, Watch: watch})
	rec.SetRequested(iterations)
	rec.Attach()
	defer rec.Detach()

	completed, runErr := ws.Iterate(ctx, iterations)
	if err := rec.Flush(ctx, completed); err != nil {
		return RunSummary{}, err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return RunSummary{}, runErr
	}

	return RunSummary{
		RunID:      rec.RunID(),
		Requested:  iterations,
		Completed:  completed,
		Failures:   ws.FailureCount(),
		Components: ws.ComponentIDs(),
		Couplings:  couplingItems(ws),
	}, nil
}

// Runs returns the persisted run summaries, oldest run ID first.
func (c *Client) Runs(ctx context.Context) ([]model.RunRecord, error) {
	ids, err := c.store.ListRunIDs(ctx)
	if err != nil {
		return nil, err
	}
	runs := make([]model.RunRecord, 0, len(ids))
	for _, id := range ids {
		run, ok, err := c.store.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

// History returns the sampled producer values for a run.
func (c *Client) History(ctx context.Context, runID string) ([]model.IterationSample, error) {
	samples, ok, err := c.store.GetSamples(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no samples for run %s", runID)
	}
	return samples, nil
}

// Failures returns the isolated action failures recorded for a run.
func (c *Client) Failures(ctx context.Context, runID string) ([]model.ActionFailureRecord, error) {
	failures, ok, err := c.store.GetActionFailures(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no failures recorded for run %s", runID)
	}
	return failures, nil
}

func couplingItems(ws *workspace.Workspace) []CouplingItem {
	couplings := ws.Couplings()
	items := make([]CouplingItem, 0, len(couplings))
	for _, c := range couplings {
		items = append(items, CouplingItem{
			ID:       c.ID,
			Producer: c.Producer.Spec().ID(),
			Consumer: c.Consumer.Spec().ID(),
			Strategy: c.Strategy.String(),
		})
	}
	return items
}
