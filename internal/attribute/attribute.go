package attribute

import "fmt"

// Kind discriminates the value shapes a coupling endpoint can carry.
type Kind int

const (
	KindScalar Kind = iota
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is the declared value type of an attribute: a scalar, or a vector
// of fixed length.
type Type struct {
	Kind   Kind
	Length int
}

func Scalar() Type {
	return Type{Kind: KindScalar}
}

func Vector(length int) Type {
	return Type{Kind: KindVector, Length: length}
}

func (t Type) String() string {
	if t.Kind == KindVector {
		return fmt.Sprintf("vector[%d]", t.Length)
	}
	return t.Kind.String()
}

// Value is a tagged value carried across a coupling. Exactly one of the
// payload fields is meaningful, selected by Kind.
type Value struct {
	Kind   Kind
	Scalar float64
	Vector []float64
}

func ScalarValue(v float64) Value {
	return Value{Kind: KindScalar, Scalar: v}
}

func VectorValue(v []float64) Value {
	return Value{Kind: KindVector, Vector: v}
}

// Clone returns a value that shares no backing storage with the receiver.
func (v Value) Clone() Value {
	if v.Kind == KindVector {
		return Value{Kind: KindVector, Vector: append([]float64(nil), v.Vector...)}
	}
	return v
}

// Spec identifies an attribute: which component owns it, its name within
// that component, and its declared type. Specs are created fresh each time
// a component is asked for its attributes, so a component may grow or drop
// attributes as its internal state changes.
type Spec struct {
	ComponentID string
	Name        string
	Description string
	Type        Type
}

// ID returns the coupling endpoint key for the attribute. Attribute names
// never contain a colon, so the key parses back unambiguously.
func (s Spec) ID() string {
	return s.ComponentID + ":" + s.Name
}

func (s Spec) String() string {
	if s.Description != "" {
		return fmt.Sprintf("%s (%s, %s)", s.ID(), s.Type, s.Description)
	}
	return fmt.Sprintf("%s (%s)", s.ID(), s.Type)
}

// Producer is a zero-argument read capability exposed by a component.
// Read must not block and must not mutate component state.
type Producer interface {
	Spec() Spec
	Read() Value
}

// Consumer is a one-argument write capability exposed by a component.
// Write must not block; the written value becomes visible to the owning
// component no later than its next update.
type Consumer interface {
	Spec() Spec
	Write(Value)
}

type funcProducer struct {
	spec Spec
	read func() Value
}

func (p funcProducer) Spec() Spec  { return p.spec }
func (p funcProducer) Read() Value { return p.read() }

type funcConsumer struct {
	spec  Spec
	write func(Value)
}

func (c funcConsumer) Spec() Spec    { return c.spec }
func (c funcConsumer) Write(v Value) { c.write(v) }

// ProducerFunc adapts a read function into a Producer.
func ProducerFunc(spec Spec, read func() Value) Producer {
	return funcProducer{spec: spec, read: read}
}

// ConsumerFunc adapts a write function into a Consumer.
func ConsumerFunc(spec Spec, write func(Value)) Consumer {
	return funcConsumer{spec: spec, write: write}
}

// ScalarProducer exposes a scalar read capability.
func ScalarProducer(componentID, name, description string, read func() float64) Producer {
	spec := Spec{ComponentID: componentID, Name: name, Description: description, Type: Scalar()}
	return funcProducer{spec: spec, read: func() Value { return ScalarValue(read()) }}
}

// ScalarConsumer exposes a scalar write capability.
func ScalarConsumer(componentID, name, description string, write func(float64)) Consumer {
	spec := Spec{ComponentID: componentID, Name: name, Description: description, Type: Scalar()}
	return funcConsumer{spec: spec, write: func(v Value) { write(v.Scalar) }}
}

// VectorProducer exposes a fixed-length vector read capability.
func VectorProducer(componentID, name, description string, length int, read func() []float64) Producer {
	spec := Spec{ComponentID: componentID, Name: name, Description: description, Type: Vector(length)}
	return funcProducer{spec: spec, read: func() Value { return VectorValue(read()) }}
}

// VectorConsumer exposes a fixed-length vector write capability.
func VectorConsumer(componentID, name, description string, length int, write func([]float64)) Consumer {
	spec := Spec{ComponentID: componentID, Name: name, Description: description, Type: Vector(length)}
	return funcConsumer{spec: spec, write: func(v Value) { write(v.Vector) }}
}
