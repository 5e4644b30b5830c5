package world

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/Skittleboi/simbrain/internal/attribute"
)

// DataSource replays numeric rows extracted from a JSON document, one
// row per iteration. Each configured column is exposed as a scalar
// producer, and the whole current row as a vector producer.
type DataSource struct {
	id      string
	columns []string
	rows    [][]float64
	loop    bool

	cursor  int
	current []float64
}

// NewDataSource extracts rows from a JSON document. rowsPath selects the
// row array in gjson syntax; each column path is resolved relative to a
// row element. Missing values within a row default to zero.
func NewDataSource(id string, doc []byte, rowsPath string, columns []string) (*DataSource, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("data source %s: invalid JSON document", id)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("data source %s: at least one column is required", id)
	}
	rowValues := gjson.GetBytes(doc, rowsPath)
	if !rowValues.Exists() {
		return nil, fmt.Errorf("data source %s: rows path %q not found", id, rowsPath)
	}
	if !rowValues.IsArray() {
		return nil, fmt.Errorf("data source %s: rows path %q is not an array", id, rowsPath)
	}

	var rows [][]float64
	for _, item := range rowValues.Array() {
		row := make([]float64, len(columns))
		for i, column := range columns {
			row[i] = item.Get(column).Float()
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("data source %s: no rows at %q", id, rowsPath)
	}

	return &DataSource{
		id:      id,
		columns: append([]string(nil), columns...),
		rows:    rows,
		current: make([]float64, len(columns)),
	}, nil
}

// SetLoop makes the source wrap around after the last row. Without
// looping the source holds its final row once exhausted.
func (d *DataSource) SetLoop(loop bool) { d.loop = loop }

func (d *DataSource) ID() string { return d.id }

// Rows returns how many rows the source replays.
func (d *DataSource) Rows() int { return len(d.rows) }

func (d *DataSource) Update(context.Context) error {
	d.current = d.rows[d.cursor]
	if d.cursor+1 < len(d.rows) {
		d.cursor++
	} else if d.loop {
		d.cursor = 0
	}
	return nil
}

func (d *DataSource) Reset() {
	d.cursor = 0
	d.current = make([]float64, len(d.columns))
}

func (d *DataSource) Producers() []attribute.Producer {
	out := make([]attribute.Producer, 0, len(d.columns)+1)
	for i, column := range d.columns {
		idx := i
		out = append(out, attribute.ScalarProducer(
			d.id,
			column,
			fmt.Sprintf("column %s of the current row", column),
			func() float64 { return d.current[idx] },
		))
	}
	out = append(out, attribute.VectorProducer(
		d.id,
		"row",
		"the whole current row",
		len(d.columns),
		func() []float64 { return append([]float64(nil), d.current...) },
	))
	return out
}

func (d *DataSource) Consumers() []attribute.Consumer { return nil }
