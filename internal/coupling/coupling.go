package coupling

import (
	"github.com/google/uuid"

	"github.com/Skittleboi/simbrain/internal/attribute"
)

// Coupling binds exactly one producer attribute to exactly one consumer
// attribute with the coercion strategy resolved at creation time. A
// coupling is immutable once created; rebinding means remove and create.
type Coupling struct {
	ID       string
	Producer attribute.Producer
	Consumer attribute.Consumer
	Strategy attribute.Strategy
}

func newCoupling(p attribute.Producer, c attribute.Consumer, strategy attribute.Strategy) Coupling {
	return Coupling{
		ID:       uuid.NewString(),
		Producer: p,
		Consumer: c,
		Strategy: strategy,
	}
}

func (c Coupling) String() string {
	return c.Producer.Spec().ID() + " -> " + c.Consumer.Spec().ID()
}

// involves reports whether either endpoint belongs to the component.
func (c Coupling) involves(componentID string) bool {
	return c.Producer.Spec().ComponentID == componentID ||
		c.Consumer.Spec().ComponentID == componentID
}
