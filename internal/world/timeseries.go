package world

import (
	"context"
	"fmt"

	"github.com/Skittleboi/simbrain/internal/attribute"
)

// TimeSeries is a consumer-only recorder component: each named series
// stores the last value written to it and appends that value once per
// iteration, the way a live plot consumes a coupled signal.
type TimeSeries struct {
	id       string
	order    []string
	latest   map[string]float64
	series   map[string][]float64
	capacity int
}

// NewTimeSeries creates a recorder. capacity bounds each series length;
// zero or negative means unbounded.
func NewTimeSeries(id string, capacity int) *TimeSeries {
	return &TimeSeries{
		id:       id,
		latest:   make(map[string]float64),
		series:   make(map[string][]float64),
		capacity: capacity,
	}
}

func (ts *TimeSeries) ID() string { return ts.id }

// AddSeries registers a named series. The series value persists between
// writes: an uncoupled series keeps appending its last received value.
func (ts *TimeSeries) AddSeries(name string) error {
	if name == "" {
		return fmt.Errorf("series name is required")
	}
	if _, exists := ts.series[name]; exists {
		return fmt.Errorf("series already exists: %s", name)
	}
	ts.order = append(ts.order, name)
	ts.latest[name] = 0
	ts.series[name] = nil
	return nil
}

// Series returns the recorded values for a series.
func (ts *TimeSeries) Series(name string) []float64 {
	return append([]float64(nil), ts.series[name]...)
}

// SeriesNames returns the registered series in registration order.
func (ts *TimeSeries) SeriesNames() []string {
	return append([]string(nil), ts.order...)
}

func (ts *TimeSeries) Update(context.Context) error {
	for _, name := range ts.order {
		values := append(ts.series[name], ts.latest[name])
		if ts.capacity > 0 && len(values) > ts.capacity {
			values = values[len(values)-ts.capacity:]
		}
		ts.series[name] = values
	}
	return nil
}

func (ts *TimeSeries) Reset() {
	for _, name := range ts.order {
		ts.latest[name] = 0
		ts.series[name] = nil
	}
}

func (ts *TimeSeries) Producers() []attribute.Producer { return nil }

func (ts *TimeSeries) Consumers() []attribute.Consumer {
	out := make([]attribute.Consumer, 0, len(ts.order))
	for _, name := range ts.order {
		series := name
		out = append(out, attribute.ScalarConsumer(
			ts.id,
			series,
			fmt.Sprintf("series %s", series),
			func(v float64) { ts.latest[series] = v },
		))
	}
	return out
}
