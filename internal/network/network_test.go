package network

import (
	"context"
	"testing"
)

func TestLinearRuleDefaultClipsToOne(t *testing.T) {
	net := New("net")
	if _, err := net.AddNeuron("n1", nil); err != nil {
		t.Fatalf("add neuron: %v", err)
	}
	if err := net.SetInput("n1", 10); err != nil {
		t.Fatalf("set input: %v", err)
	}
	if err := net.Update(context.Background()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _ := net.Activation("n1"); got != 1 {
		t.Fatalf("activation: got %v want 1", got)
	}
}

func TestLinearRuleClip(t *testing.T) {
	r := &LinearRule{Slope: 1, UpperBound: 10, LowerBound: -10, Clipped: true}
	if got := r.Clip(100); got != 10 {
		t.Fatalf("clip upper: got %v want 10", got)
	}
	if got := r.Clip(5); got != 5 {
		t.Fatalf("no clip: got %v want 5", got)
	}
	if got := r.Clip(-20); got != -10 {
		t.Fatalf("clip lower: got %v want -10", got)
	}
}

func TestProductRuleIsolatedNeuronIsZero(t *testing.T) {
	r := &ProductRule{}
	if got := r.Apply(RuleInput{External: 3}); got != 0 {
		t.Fatalf("isolated neuron: got %v want 0", got)
	}
}

func TestProductRuleMultipliesSources(t *testing.T) {
	r := &ProductRule{}
	got := r.Apply(RuleInput{Sources: []float64{2, 3}, Weights: []float64{1, 1}})
	if got != 6 {
		t.Fatalf("product: got %v want 6", got)
	}

	weighted := &ProductRule{UseWeights: true}
	got = weighted.Apply(RuleInput{Sources: []float64{2, 3}, Weights: []float64{0.5, 2}})
	if got != 6 {
		t.Fatalf("weighted product: got %v want 6", got)
	}
}

// The two-phase update must feed every rule the pre-update activations.
func TestUpdateCommitsInTwoPhases(t *testing.T) {
	net := New("net")
	unclipped := &LinearRule{Slope: 1, Clipped: false}
	if _, err := net.AddNeuron("a", unclipped); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if _, err := net.AddNeuron("b", unclipped); err != nil {
		t.Fatalf("add b: %v", err)
	}
	if err := net.Connect("a", "b", 1); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := net.SetInput("a", 2); err != nil {
		t.Fatalf("set input: %v", err)
	}
	if err := net.Update(context.Background()); err != nil {
		t.Fatalf("update: %v", err)
	}

	// b saw a's old activation (0), not the fresh 2.
	if gotA, _ := net.Activation("a"); gotA != 2 {
		t.Fatalf("a: got %v want 2", gotA)
	}
	if gotB, _ := net.Activation("b"); gotB != 0 {
		t.Fatalf("b observed same-step activation: got %v want 0", gotB)
	}

	if err := net.Update(context.Background()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotB, _ := net.Activation("b"); gotB != 2 {
		t.Fatalf("b after second update: got %v want 2", gotB)
	}
}

func TestExternalInputIsConsumedByUpdate(t *testing.T) {
	net := New("net")
	if _, err := net.AddNeuron("n1", &LinearRule{Slope: 1, Clipped: false}); err != nil {
		t.Fatalf("add neuron: %v", err)
	}
	if err := net.SetInput("n1", 4); err != nil {
		t.Fatalf("set input: %v", err)
	}
	ctx := context.Background()
	if err := net.Update(ctx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := net.Update(ctx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _ := net.Activation("n1"); got != 0 {
		t.Fatalf("input persisted across updates: got %v want 0", got)
	}
}

func TestAttributesExposeNeurons(t *testing.T) {
	net := New("net")
	if _, err := net.AddNeuron("n1", nil); err != nil {
		t.Fatalf("add n1: %v", err)
	}
	if _, err := net.AddNeuron("n2", nil); err != nil {
		t.Fatalf("add n2: %v", err)
	}

	producers := net.Producers()
	if len(producers) != 3 {
		t.Fatalf("producers: got %d want 3", len(producers))
	}
	last := producers[len(producers)-1].Spec()
	if last.Name != "activations" || last.Type.Length != 2 {
		t.Fatalf("unexpected vector producer: %+v", last)
	}

	consumers := net.Consumers()
	if len(consumers) != 3 {
		t.Fatalf("consumers: got %d want 3", len(consumers))
	}
	if consumers[0].Spec().ID() != "net:n1.input" {
		t.Fatalf("unexpected consumer id: %s", consumers[0].Spec().ID())
	}
}

func TestDuplicateNeuronAndUnknownSynapse(t *testing.T) {
	net := New("net")
	if _, err := net.AddNeuron("n1", nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := net.AddNeuron("n1", nil); err == nil {
		t.Fatal("expected duplicate neuron error")
	}
	if err := net.Connect("n1", "ghost", 1); err == nil {
		t.Fatal("expected unknown neuron error")
	}
}
