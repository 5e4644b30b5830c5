package attribute

import (
	"errors"
	"fmt"
)

var ErrIncompatibleTypes = errors.New("producer and consumer types are not coercible")

// Strategy is the fixed type-coercion rule resolved for a coupling when it
// is created. The rule set is closed: identity for matching types, scalar
// broadcast into vectors, mean reduction of vectors into scalars, and
// truncate-or-pad between vectors of different lengths.
type Strategy int

const (
	// Identity passes the produced value through unchanged.
	Identity Strategy = iota
	// Broadcast fills every element of the consumer vector with the
	// produced scalar.
	Broadcast
	// Reduce collapses the produced vector to its arithmetic mean.
	Reduce
	// Resize copies as many leading elements as fit and zero-fills any
	// remaining consumer slots.
	Resize
)

func (s Strategy) String() string {
	switch s {
	case Identity:
		return "identity"
	case Broadcast:
		return "broadcast"
	case Reduce:
		return "reduce"
	case Resize:
		return "resize"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Resolve returns the coercion strategy for a producer type feeding a
// consumer type, or ErrIncompatibleTypes when no fixed rule applies.
func Resolve(from, to Type) (Strategy, error) {
	switch {
	case from.Kind == KindScalar && to.Kind == KindScalar:
		return Identity, nil
	case from.Kind == KindScalar && to.Kind == KindVector:
		return Broadcast, nil
	case from.Kind == KindVector && to.Kind == KindScalar:
		return Reduce, nil
	case from.Kind == KindVector && to.Kind == KindVector:
		if from.Length == to.Length {
			return Identity, nil
		}
		return Resize, nil
	default:
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatibleTypes, from, to)
	}
}

// Apply coerces a produced value into the consumer's declared type using
// the resolved strategy. The returned value never aliases the input.
func Apply(strategy Strategy, v Value, to Type) Value {
	switch strategy {
	case Broadcast:
		out := make([]float64, to.Length)
		for i := range out {
			out[i] = v.Scalar
		}
		return VectorValue(out)
	case Reduce:
		if len(v.Vector) == 0 {
			return ScalarValue(0)
		}
		total := 0.0
		for _, x := range v.Vector {
			total += x
		}
		return ScalarValue(total / float64(len(v.Vector)))
	case Resize:
		out := make([]float64, to.Length)
		copy(out, v.Vector)
		return VectorValue(out)
	default:
		return v.Clone()
	}
}
