package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cliConfig = `
workspace:
  name: cli-test
components:
  - id: net
    type: network
    network:
      neurons:
        - id: n1
        - id: n2
      synapses:
        - from: n1
          to: n2
          weight: 1
couplings:
  - producer: "net:n1.activation"
    consumer: "net:n2.input"
execution:
  iterations: 3
`

func writeCLIConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workspace.yaml")
	if err := os.WriteFile(path, []byte(cliConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunRequiresCommand(t *testing.T) {
	if err := run(context.Background(), nil); err == nil {
		t.Fatal("expected missing command error")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"evolve"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestValidateCommand(t *testing.T) {
	if err := run(context.Background(), []string{"validate", "--config", writeCLIConfig(t)}); err != nil {
		t.Fatalf("validate command: %v", err)
	}
}

func TestValidateCommandRequiresConfig(t *testing.T) {
	if err := run(context.Background(), []string{"validate"}); err == nil {
		t.Fatal("expected missing config error")
	}
}

func TestCouplingsCommand(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"couplings", "--config", writeCLIConfig(t)})
	})
	if err != nil {
		t.Fatalf("couplings command: %v", err)
	}
	if !strings.Contains(out, "net:n1.activation -> net:n2.input") || !strings.Contains(out, "strategy=identity") {
		t.Fatalf("unexpected couplings output: %s", out)
	}
}

func TestRunCommandMemoryStore(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"run",
			"--store", "memory",
			"--config", writeCLIConfig(t),
			"--run-id", "cli-run",
		})
	})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}
	if !strings.Contains(out, "run_id=cli-run") || !strings.Contains(out, "completed=3/3") {
		t.Fatalf("unexpected run output: %s", out)
	}
}

func captureStdout(fn func() error) (string, error) {
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}

	os.Stdout = w
	runErr := fn()
	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		_ = r.Close()
		return "", err
	}
	_ = r.Close()
	return buf.String(), runErr
}

func TestSplitList(t *testing.T) {
	got := splitList(" a:b , ,c:d ")
	if len(got) != 2 || got[0] != "a:b" || got[1] != "c:d" {
		t.Fatalf("unexpected split: %v", got)
	}
	if splitList("") != nil {
		t.Fatal("expected nil for empty input")
	}
}
