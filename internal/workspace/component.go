package workspace

import (
	"context"

	"github.com/Skittleboi/simbrain/internal/attribute"
)

// Component is a pluggable simulation unit. The engine treats it as
// opaque beyond its attribute lists and update hook. Update is invoked
// once per iteration on the single update goroutine, must return in
// bounded time, and may mutate only the component's own state.
//
// Attribute lists are built fresh on every call, so a component may
// expose different attributes as its internal state changes.
type Component interface {
	ID() string
	Producers() []attribute.Producer
	Consumers() []attribute.Consumer
	Update(ctx context.Context) error
}

// Resetter is an optional component capability used by Workspace.Reset.
type Resetter interface {
	Reset()
}

// ProducerByName returns the component's producer attribute with the
// given name.
func ProducerByName(c Component, name string) (attribute.Producer, bool) {
	for _, p := range c.Producers() {
		if p.Spec().Name == name {
			return p, true
		}
	}
	return nil, false
}

// ConsumerByName returns the component's consumer attribute with the
// given name.
func ConsumerByName(c Component, name string) (attribute.Consumer, bool) {
	for _, consumer := range c.Consumers() {
		if consumer.Spec().Name == name {
			return consumer, true
		}
	}
	return nil, false
}
