package workspace

import (
	"context"
	"testing"
)

func namedNoop(name string) UpdateAction {
	return NewAction(name, "", func(context.Context) error { return nil })
}

func sequenceNames(m *ActionManager) []string {
	actions := m.Sequence()
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, a.Name())
	}
	return names
}

func assertSequence(t *testing.T, m *ActionManager, want ...string) {
	t.Helper()
	got := sequenceNames(m)
	if len(got) != len(want) {
		t.Fatalf("unexpected sequence: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected sequence: got=%v want=%v", got, want)
		}
	}
}

func TestDefaultSequence(t *testing.T) {
	ws := New()
	assertSequence(t, ws.Actions(), UpdateComponentsActionName, PropagateCouplingsActionName)
}

func TestInsertPreservesConfiguredOrder(t *testing.T) {
	m := NewActionManager(namedNoop("a"), namedNoop("c"))

	if err := m.Insert(namedNoop("b"), 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	assertSequence(t, m, "a", "b", "c")

	// Out-of-range positions clamp to the ends.
	if err := m.Insert(namedNoop("front"), -5); err != nil {
		t.Fatalf("insert front: %v", err)
	}
	if err := m.Insert(namedNoop("back"), 99); err != nil {
		t.Fatalf("insert back: %v", err)
	}
	assertSequence(t, m, "front", "a", "b", "c", "back")
}

func TestInsertNilAction(t *testing.T) {
	m := NewActionManager()
	if err := m.Insert(nil, 0); err == nil {
		t.Fatal("expected error for nil action")
	}
}

func TestRemoveByName(t *testing.T) {
	m := NewActionManager(namedNoop("a"), namedNoop("b"))
	if !m.Remove("a") {
		t.Fatal("expected removal")
	}
	if m.Remove("a") {
		t.Fatal("second removal should report false")
	}
	assertSequence(t, m, "b")
}

func TestMoveToFrontAndEnd(t *testing.T) {
	m := NewActionManager(namedNoop("a"), namedNoop("b"), namedNoop("c"))

	if !m.MoveToFront("c") {
		t.Fatal("expected move to front")
	}
	assertSequence(t, m, "c", "a", "b")

	if !m.MoveToEnd("c") {
		t.Fatal("expected move to end")
	}
	assertSequence(t, m, "a", "b", "c")

	if m.MoveToFront("missing") {
		t.Fatal("moving an unknown action should report false")
	}
}

func TestSequenceIsACopy(t *testing.T) {
	m := NewActionManager(namedNoop("a"))
	seq := m.Sequence()
	seq[0] = namedNoop("tampered")
	assertSequence(t, m, "a")
}
