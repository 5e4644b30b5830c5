//go:build sqlite

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCommandSQLitePersistsHistory(t *testing.T) {
	workdir := t.TempDir()
	dbPath := filepath.Join(workdir, "simbrain.db")
	configPath := filepath.Join(workdir, "workspace.yaml")
	content := cliConfig + "  watch:\n    - \"net:n2.activation\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := run(context.Background(), []string{
		"run",
		"--store", "sqlite",
		"--db-path", dbPath,
		"--config", configPath,
		"--run-id", "sqlite-run",
	}); err != nil {
		t.Fatalf("run command: %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected sqlite db at %s: %v", dbPath, err)
	}

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"runs",
			"--store", "sqlite",
			"--db-path", dbPath,
		})
	})
	if err != nil {
		t.Fatalf("runs command: %v", err)
	}
	if !strings.Contains(out, "run_id=sqlite-run") || !strings.Contains(out, "completed=3/3") {
		t.Fatalf("unexpected runs output: %s", out)
	}

	out, err = captureStdout(func() error {
		return run(context.Background(), []string{
			"history",
			"--store", "sqlite",
			"--db-path", dbPath,
			"--run-id", "sqlite-run",
		})
	})
	if err != nil {
		t.Fatalf("history command: %v", err)
	}
	if !strings.Contains(out, "iter=3") || !strings.Contains(out, "net:n2.activation=") {
		t.Fatalf("unexpected history output: %s", out)
	}
}

func TestFailuresCommandSQLiteMissingRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "simbrain.db")
	if err := run(context.Background(), []string{"init", "--store", "sqlite", "--db-path", dbPath}); err != nil {
		t.Fatalf("init command: %v", err)
	}

	err := run(context.Background(), []string{
		"failures",
		"--store", "sqlite",
		"--db-path", dbPath,
		"--run-id", "ghost",
	})
	if err == nil {
		t.Fatal("expected missing run error")
	}
}
