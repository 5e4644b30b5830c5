package storage

import (
	"context"
	"testing"

	"github.com/Skittleboi/simbrain/internal/model"
)

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		RunID:           "run-1",
		Components:      []string{"net", "world"},
		Couplings: []model.CouplingRecord{{
			ID:       "c1",
			Producer: "world:agent.cheese.value",
			Consumer: "net:n1.input",
			Strategy: "identity",
		}},
		Requested: 10,
		Completed: 10,
	}
	if err := store.SaveRun(ctx, input); err != nil {
		t.Fatalf("save run: %v", err)
	}

	output, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if output.Completed != 10 || len(output.Couplings) != 1 || output.Couplings[0].ID != "c1" {
		t.Fatalf("unexpected run: %+v", output)
	}

	ids, err := store.ListRunIDs(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "run-1" {
		t.Fatalf("unexpected run ids: %v", ids)
	}
}

func TestMemoryStoreSamplesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.IterationSample{
		{Iteration: 1, Values: map[string]float64{"net:n1.activation": 0.5}},
		{Iteration: 2, Values: map[string]float64{"net:n1.activation": 0.75}},
	}
	if err := store.SaveSamples(ctx, "run-1", input); err != nil {
		t.Fatalf("save samples: %v", err)
	}

	output, ok, err := store.GetSamples(ctx, "run-1")
	if err != nil {
		t.Fatalf("get samples: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted samples")
	}
	if len(output) != 2 || output[1].Values["net:n1.activation"] != 0.75 {
		t.Fatalf("unexpected samples: %+v", output)
	}

	output[0].Values["net:n1.activation"] = 99
	again, _, err := store.GetSamples(ctx, "run-1")
	if err != nil {
		t.Fatalf("get samples again: %v", err)
	}
	if again[0].Values["net:n1.activation"] != 0.5 {
		t.Fatal("stored samples must not alias returned copies")
	}
}

func TestMemoryStoreActionFailuresRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.ActionFailureRecord{
		{Iteration: 3, Action: "update components", Error: "net: boom"},
	}
	if err := store.SaveActionFailures(ctx, "run-1", input); err != nil {
		t.Fatalf("save failures: %v", err)
	}

	output, ok, err := store.GetActionFailures(ctx, "run-1")
	if err != nil {
		t.Fatalf("get failures: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted failures")
	}
	if len(output) != 1 || output[0].Iteration != 3 {
		t.Fatalf("unexpected failures: %+v", output)
	}
}

func TestMemoryStoreMissingKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent run, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.GetSamples(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent samples, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.GetActionFailures(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent failures, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	record := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		RunID:           "run-1",
	}
	if err := store.SaveRun(ctx, record); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok, _ := store.GetRun(ctx, "run-1"); ok {
		t.Fatal("expected reset to drop run records")
	}
}
