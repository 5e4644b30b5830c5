// Package network provides a small neuron-array workspace component.
// Neurons update in two phases: every rule computes a next activation
// from pre-update state, then all activations commit at once, so update
// order within the network carries no same-step feedback.
package network

import (
	"context"
	"fmt"

	"github.com/Skittleboi/simbrain/internal/attribute"
)

type Neuron struct {
	ID   string
	Rule Rule

	activation float64
	buffer     float64
	input      float64
}

// Activation returns the neuron's committed activation.
func (n *Neuron) Activation() float64 { return n.activation }

type Synapse struct {
	From   string
	To     string
	Weight float64
}

type Network struct {
	id       string
	neurons  []*Neuron
	byID     map[string]*Neuron
	synapses []Synapse
	fanIn    map[string][]Synapse
}

func New(id string) *Network {
	return &Network{
		id:    id,
		byID:  make(map[string]*Neuron),
		fanIn: make(map[string][]Synapse),
	}
}

func (net *Network) ID() string { return net.id }

// AddNeuron registers a neuron. A nil rule defaults to a fresh LinearRule.
func (net *Network) AddNeuron(id string, rule Rule) (*Neuron, error) {
	if id == "" {
		return nil, fmt.Errorf("neuron id is required")
	}
	if _, exists := net.byID[id]; exists {
		return nil, fmt.Errorf("neuron already exists: %s", id)
	}
	if rule == nil {
		rule = NewLinearRule()
	}
	n := &Neuron{ID: id, Rule: rule}
	net.byID[id] = n
	net.neurons = append(net.neurons, n)
	return n, nil
}

func (net *Network) Connect(from, to string, weight float64) error {
	if _, ok := net.byID[from]; !ok {
		return fmt.Errorf("unknown source neuron: %s", from)
	}
	if _, ok := net.byID[to]; !ok {
		return fmt.Errorf("unknown target neuron: %s", to)
	}
	s := Synapse{From: from, To: to, Weight: weight}
	net.synapses = append(net.synapses, s)
	net.fanIn[to] = append(net.fanIn[to], s)
	return nil
}

// SetInput writes a neuron's external input; the next update consumes it.
func (net *Network) SetInput(id string, v float64) error {
	n, ok := net.byID[id]
	if !ok {
		return fmt.Errorf("unknown neuron: %s", id)
	}
	n.input = v
	return nil
}

// Activation returns a neuron's committed activation.
func (net *Network) Activation(id string) (float64, bool) {
	n, ok := net.byID[id]
	if !ok {
		return 0, false
	}
	return n.activation, true
}

// Activations returns all activations in neuron insertion order.
func (net *Network) Activations() []float64 {
	out := make([]float64, len(net.neurons))
	for i, n := range net.neurons {
		out[i] = n.activation
	}
	return out
}

func (net *Network) Update(context.Context) error {
	for _, n := range net.neurons {
		in := RuleInput{External: n.input}
		for _, s := range net.fanIn[n.ID] {
			source := net.byID[s.From].activation
			in.Sources = append(in.Sources, source)
			in.Weights = append(in.Weights, s.Weight)
			in.Weighted += source * s.Weight
		}
		n.buffer = n.Rule.Apply(in)
	}
	for _, n := range net.neurons {
		n.activation = n.buffer
		n.input = 0
	}
	return nil
}

func (net *Network) Reset() {
	for _, n := range net.neurons {
		n.activation = 0
		n.buffer = 0
		n.input = 0
	}
}

func (net *Network) Producers() []attribute.Producer {
	out := make([]attribute.Producer, 0, len(net.neurons)+1)
	for _, n := range net.neurons {
		neuron := n
		out = append(out, attribute.ScalarProducer(
			net.id,
			neuron.ID+".activation",
			fmt.Sprintf("activation of neuron %s", neuron.ID),
			func() float64 { return neuron.activation },
		))
	}
	out = append(out, attribute.VectorProducer(
		net.id,
		"activations",
		"all neuron activations in insertion order",
		len(net.neurons),
		net.Activations,
	))
	return out
}

func (net *Network) Consumers() []attribute.Consumer {
	out := make([]attribute.Consumer, 0, len(net.neurons)+1)
	for _, n := range net.neurons {
		neuron := n
		out = append(out, attribute.ScalarConsumer(
			net.id,
			neuron.ID+".input",
			fmt.Sprintf("external input of neuron %s", neuron.ID),
			func(v float64) { neuron.input = v },
		))
	}
	out = append(out, attribute.VectorConsumer(
		net.id,
		"inputs",
		"external inputs in neuron insertion order",
		len(net.neurons),
		func(v []float64) {
			for i, n := range net.neurons {
				if i < len(v) {
					n.input = v[i]
				}
			}
		},
	))
	return out
}
