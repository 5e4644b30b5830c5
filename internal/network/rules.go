package network

// RuleInput carries everything an update rule may consult when computing
// a neuron's next activation: the externally written input, the weighted
// sum over incoming synapses, and the raw fan-in terms.
type RuleInput struct {
	External float64
	Weighted float64
	// Sources and Weights are aligned per incoming synapse.
	Sources []float64
	Weights []float64
}

func (in RuleInput) fanIn() int { return len(in.Sources) }

// Rule computes a neuron's next activation from its inputs. Rules see
// only pre-update activations; the network commits all next activations
// in a second phase.
type Rule interface {
	Name() string
	Apply(in RuleInput) float64
}

// LinearRule computes slope * (weighted + external) + intercept, clipped
// to [LowerBound, UpperBound] when Clipped is set.
type LinearRule struct {
	Slope      float64
	Intercept  float64
	UpperBound float64
	LowerBound float64
	Clipped    bool
}

func NewLinearRule() *LinearRule {
	return &LinearRule{Slope: 1, UpperBound: 1, LowerBound: -1, Clipped: true}
}

func (r *LinearRule) Name() string { return "linear" }

func (r *LinearRule) Apply(in RuleInput) float64 {
	v := r.Slope*(in.Weighted+in.External) + r.Intercept
	if r.Clipped {
		return r.Clip(v)
	}
	return v
}

// Clip bounds a value to [LowerBound, UpperBound].
func (r *LinearRule) Clip(v float64) float64 {
	if v > r.UpperBound {
		return r.UpperBound
	}
	if v < r.LowerBound {
		return r.LowerBound
	}
	return v
}

// ProductRule computes the product of incoming activations, or of
// weight-scaled activations when UseWeights is set. An isolated neuron
// with no fan-in produces zero.
type ProductRule struct {
	UseWeights bool
}

func (r *ProductRule) Name() string { return "product" }

func (r *ProductRule) Apply(in RuleInput) float64 {
	if in.fanIn() == 0 {
		return 0
	}
	v := 1.0
	for i, source := range in.Sources {
		if r.UseWeights {
			v *= source * in.Weights[i]
		} else {
			v *= source
		}
	}
	return v
}
