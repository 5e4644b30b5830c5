// Package world provides simple agent-world components: a 2D entity
// world with smell-based object sensors, a JSON-backed numeric data
// source, and a time-series recorder.
package world

import (
	"context"
	"fmt"
	"math"

	"github.com/Skittleboi/simbrain/internal/attribute"
)

// EntityType classifies world entities for sensor matching.
type EntityType string

// Entity is an object in the world. Entities of a given type emit a
// smell whose strength decays linearly with distance and reaches zero at
// SmellRadius.
type Entity struct {
	ID          string
	Type        EntityType
	X, Y        float64
	SmellScale  float64
	SmellRadius float64

	vx, vy float64
}

// SmellAt returns the entity's smell strength at the given distance.
func (e *Entity) SmellAt(distance float64) float64 {
	if e.SmellRadius <= 0 || distance >= e.SmellRadius {
		return 0
	}
	return e.SmellScale * (1 - distance/e.SmellRadius)
}

// ObjectSensor reacts when entities of a matching type are near its
// parent entity: its value is the sum of their smells at the parent's
// location.
type ObjectSensor struct {
	Name       string
	ObjectType EntityType

	parent *Entity
	value  float64
}

// Value returns the sensor reading from the last world update.
func (s *ObjectSensor) Value() float64 { return s.value }

// World is a bounded 2D entity world component. Each update applies the
// velocities written by consumers, clamps positions to the bounds, and
// refreshes every sensor.
type World struct {
	id      string
	width   float64
	height  float64
	byID    map[string]*Entity
	order   []*Entity
	sensors []*ObjectSensor
}

func New(id string, width, height float64) *World {
	return &World{
		id:     id,
		width:  width,
		height: height,
		byID:   make(map[string]*Entity),
	}
}

func (w *World) ID() string { return w.id }

func (w *World) AddEntity(e *Entity) error {
	if e == nil || e.ID == "" {
		return fmt.Errorf("entity id is required")
	}
	if _, exists := w.byID[e.ID]; exists {
		return fmt.Errorf("entity already exists: %s", e.ID)
	}
	w.byID[e.ID] = e
	w.order = append(w.order, e)
	return nil
}

func (w *World) Entity(id string) (*Entity, bool) {
	e, ok := w.byID[id]
	return e, ok
}

// AddObjectSensor attaches a sensor to an entity. The sensor responds to
// every entity of the given type except its own parent.
func (w *World) AddObjectSensor(entityID, name string, objectType EntityType) (*ObjectSensor, error) {
	parent, ok := w.byID[entityID]
	if !ok {
		return nil, fmt.Errorf("unknown entity: %s", entityID)
	}
	if name == "" {
		name = string(objectType)
	}
	s := &ObjectSensor{Name: name, ObjectType: objectType, parent: parent}
	w.sensors = append(w.sensors, s)
	return s, nil
}

func (w *World) Update(context.Context) error {
	for _, e := range w.order {
		e.X = clamp(e.X+e.vx, 0, w.width)
		e.Y = clamp(e.Y+e.vy, 0, w.height)
	}
	for _, s := range w.sensors {
		s.value = 0
		for _, e := range w.order {
			if e == s.parent || e.Type != s.ObjectType {
				continue
			}
			d := math.Hypot(e.X-s.parent.X, e.Y-s.parent.Y)
			s.value += e.SmellAt(d)
		}
	}
	return nil
}

func (w *World) Reset() {
	for _, e := range w.order {
		e.vx, e.vy = 0, 0
	}
	for _, s := range w.sensors {
		s.value = 0
	}
}

func (w *World) Producers() []attribute.Producer {
	out := make([]attribute.Producer, 0, len(w.sensors)+len(w.order))
	for _, s := range w.sensors {
		sensor := s
		out = append(out, attribute.ScalarProducer(
			w.id,
			sensor.parent.ID+"."+sensor.Name+".value",
			fmt.Sprintf("%s:%s sensor", sensor.parent.ID, sensor.ObjectType),
			func() float64 { return sensor.value },
		))
	}
	for _, e := range w.order {
		entity := e
		out = append(out, attribute.VectorProducer(
			w.id,
			entity.ID+".position",
			"entity center location",
			2,
			func() []float64 { return []float64{entity.X, entity.Y} },
		))
	}
	return out
}

func (w *World) Consumers() []attribute.Consumer {
	out := make([]attribute.Consumer, 0, len(w.order)*3)
	for _, e := range w.order {
		entity := e
		out = append(out,
			attribute.ScalarConsumer(w.id, entity.ID+".vx", "horizontal velocity", func(v float64) { entity.vx = v }),
			attribute.ScalarConsumer(w.id, entity.ID+".vy", "vertical velocity", func(v float64) { entity.vy = v }),
			attribute.VectorConsumer(w.id, entity.ID+".velocity", "velocity as [vx, vy]", 2, func(v []float64) {
				if len(v) == 2 {
					entity.vx, entity.vy = v[0], v[1]
				}
			}),
		)
	}
	return out
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
