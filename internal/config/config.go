// Package config handles YAML workspace definitions: which components
// exist, how their attributes are coupled, and how a run executes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Skittleboi/simbrain/internal/network"
	"github.com/Skittleboi/simbrain/internal/workspace"
	"github.com/Skittleboi/simbrain/internal/world"
)

// Config is the root configuration structure.
type Config struct {
	Workspace  WorkspaceConfig   `yaml:"workspace"`
	Components []ComponentConfig `yaml:"components"`
	Couplings  []CouplingConfig  `yaml:"couplings,omitempty"`
	Execution  ExecutionConfig   `yaml:"execution,omitempty"`
	Store      StoreConfig       `yaml:"store,omitempty"`

	// dir is the directory the config was loaded from; relative file
	// references resolve against it.
	dir string
}

type WorkspaceConfig struct {
	Name string `yaml:"name"`
}

// ComponentConfig declares one component. Exactly one of the typed
// sections must match Type.
type ComponentConfig struct {
	ID         string            `yaml:"id"`
	Type       string            `yaml:"type"`
	Network    *NetworkConfig    `yaml:"network,omitempty"`
	World      *WorldConfig      `yaml:"world,omitempty"`
	DataSource *DataSourceConfig `yaml:"datasource,omitempty"`
	TimeSeries *TimeSeriesConfig `yaml:"timeseries,omitempty"`
}

type NetworkConfig struct {
	Neurons  []NeuronConfig  `yaml:"neurons"`
	Synapses []SynapseConfig `yaml:"synapses,omitempty"`
}

type NeuronConfig struct {
	ID   string `yaml:"id"`
	Rule string `yaml:"rule,omitempty"`

	Slope      *float64 `yaml:"slope,omitempty"`
	Intercept  *float64 `yaml:"intercept,omitempty"`
	UpperBound *float64 `yaml:"upper_bound,omitempty"`
	LowerBound *float64 `yaml:"lower_bound,omitempty"`
	Clipped    *bool    `yaml:"clipped,omitempty"`
	UseWeights bool     `yaml:"use_weights,omitempty"`
}

type SynapseConfig struct {
	From   string  `yaml:"from"`
	To     string  `yaml:"to"`
	Weight float64 `yaml:"weight"`
}

type WorldConfig struct {
	Width    float64        `yaml:"width"`
	Height   float64        `yaml:"height"`
	Entities []EntityConfig `yaml:"entities,omitempty"`
	Sensors  []SensorConfig `yaml:"sensors,omitempty"`
}

type EntityConfig struct {
	ID          string  `yaml:"id"`
	Type        string  `yaml:"type"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	SmellScale  float64 `yaml:"smell_scale,omitempty"`
	SmellRadius float64 `yaml:"smell_radius,omitempty"`
}

type SensorConfig struct {
	Entity     string `yaml:"entity"`
	Name       string `yaml:"name,omitempty"`
	ObjectType string `yaml:"object_type"`
}

type DataSourceConfig struct {
	File     string   `yaml:"file"`
	RowsPath string   `yaml:"rows_path"`
	Columns  []string `yaml:"columns"`
	Loop     bool     `yaml:"loop,omitempty"`
}

type TimeSeriesConfig struct {
	Capacity int      `yaml:"capacity,omitempty"`
	Series   []string `yaml:"series"`
}

// CouplingConfig wires a producer reference to a consumer reference.
// References use the form "componentID:attributeName".
type CouplingConfig struct {
	Producer string `yaml:"producer"`
	Consumer string `yaml:"consumer"`
}

// ExecutionConfig controls how a configured run executes.
type ExecutionConfig struct {
	Iterations int      `yaml:"iterations"`
	Rate       float64  `yaml:"rate,omitempty"`
	Watch      []string `yaml:"watch,omitempty"`
}

type StoreConfig struct {
	Kind string `yaml:"kind,omitempty"`
	Path string `yaml:"path,omitempty"`
}

// Load reads and parses a YAML workspace definition.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.dir = filepath.Dir(path)

	return &cfg, nil
}

var componentTypes = map[string]bool{
	"network":    true,
	"world":      true,
	"datasource": true,
	"timeseries": true,
}

// Validate checks structural consistency without building anything.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Components))
	for i, comp := range c.Components {
		if comp.ID == "" {
			return fmt.Errorf("component %d: id is required", i)
		}
		if seen[comp.ID] {
			return fmt.Errorf("component %s: duplicate id", comp.ID)
		}
		seen[comp.ID] = true
		if !componentTypes[comp.Type] {
			return fmt.Errorf("component %s: unknown type %q", comp.ID, comp.Type)
		}
		if err := comp.validateSection(); err != nil {
			return fmt.Errorf("component %s: %w", comp.ID, err)
		}
	}

	for i, cp := range c.Couplings {
		if err := validateRef(cp.Producer, seen); err != nil {
			return fmt.Errorf("coupling %d producer: %w", i, err)
		}
		if err := validateRef(cp.Consumer, seen); err != nil {
			return fmt.Errorf("coupling %d consumer: %w", i, err)
		}
	}

	if c.Execution.Iterations < 0 {
		return fmt.Errorf("execution: iterations must be >= 0")
	}
	if c.Execution.Rate < 0 {
		return fmt.Errorf("execution: rate must be >= 0")
	}
	return nil
}

func (cc *ComponentConfig) validateSection() error {
	switch cc.Type {
	case "network":
		if cc.Network == nil {
			return fmt.Errorf("network section is required")
		}
		if len(cc.Network.Neurons) == 0 {
			return fmt.Errorf("network needs at least one neuron")
		}
	case "world":
		if cc.World == nil {
			return fmt.Errorf("world section is required")
		}
	case "datasource":
		if cc.DataSource == nil {
			return fmt.Errorf("datasource section is required")
		}
		if cc.DataSource.File == "" {
			return fmt.Errorf("datasource file is required")
		}
		if len(cc.DataSource.Columns) == 0 {
			return fmt.Errorf("datasource needs at least one column")
		}
	case "timeseries":
		if cc.TimeSeries == nil {
			return fmt.Errorf("timeseries section is required")
		}
		if len(cc.TimeSeries.Series) == 0 {
			return fmt.Errorf("timeseries needs at least one series")
		}
	}
	return nil
}

func validateRef(ref string, components map[string]bool) error {
	i := strings.Index(ref, ":")
	if i <= 0 || i == len(ref)-1 {
		return fmt.Errorf("reference %q must have the form componentID:attribute", ref)
	}
	if !components[ref[:i]] {
		return fmt.Errorf("reference %q names unknown component %q", ref, ref[:i])
	}
	return nil
}

// Build validates the config, constructs every declared component, and
// wires the declared couplings into a fresh workspace.
func (c *Config) Build() (*workspace.Workspace, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	ws := workspace.New()
	for _, comp := range c.Components {
		built, err := c.buildComponent(comp)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", comp.ID, err)
		}
		if err := ws.AddComponent(built); err != nil {
			return nil, err
		}
	}

	for i, cp := range c.Couplings {
		p, ok := ws.FindProducer(cp.Producer)
		if !ok {
			return nil, fmt.Errorf("coupling %d: producer %q not found", i, cp.Producer)
		}
		cons, ok := ws.FindConsumer(cp.Consumer)
		if !ok {
			return nil, fmt.Errorf("coupling %d: consumer %q not found", i, cp.Consumer)
		}
		if _, err := ws.CreateCoupling(p, cons); err != nil {
			return nil, fmt.Errorf("coupling %d: %w", i, err)
		}
	}

	return ws, nil
}

func (c *Config) buildComponent(cc ComponentConfig) (workspace.Component, error) {
	switch cc.Type {
	case "network":
		return buildNetwork(cc.ID, cc.Network)
	case "world":
		return buildWorld(cc.ID, cc.World)
	case "datasource":
		return c.buildDataSource(cc.ID, cc.DataSource)
	case "timeseries":
		return buildTimeSeries(cc.ID, cc.TimeSeries)
	default:
		return nil, fmt.Errorf("unknown type %q", cc.Type)
	}
}

func buildNetwork(id string, nc *NetworkConfig) (*network.Network, error) {
	net := network.New(id)
	for _, neuron := range nc.Neurons {
		rule, err := buildRule(neuron)
		if err != nil {
			return nil, fmt.Errorf("neuron %s: %w", neuron.ID, err)
		}
		if _, err := net.AddNeuron(neuron.ID, rule); err != nil {
			return nil, err
		}
	}
	for _, synapse := range nc.Synapses {
		if err := net.Connect(synapse.From, synapse.To, synapse.Weight); err != nil {
			return nil, err
		}
	}
	return net, nil
}

func buildRule(nc NeuronConfig) (network.Rule, error) {
	switch nc.Rule {
	case "", "linear":
		rule := network.NewLinearRule()
		if nc.Slope != nil {
			rule.Slope = *nc.Slope
		}
		if nc.Intercept != nil {
			rule.Intercept = *nc.Intercept
		}
		if nc.UpperBound != nil {
			rule.UpperBound = *nc.UpperBound
		}
		if nc.LowerBound != nil {
			rule.LowerBound = *nc.LowerBound
		}
		if nc.Clipped != nil {
			rule.Clipped = *nc.Clipped
		}
		return rule, nil
	case "product":
		return &network.ProductRule{UseWeights: nc.UseWeights}, nil
	default:
		return nil, fmt.Errorf("unknown rule %q", nc.Rule)
	}
}

func buildWorld(id string, wc *WorldConfig) (*world.World, error) {
	w := world.New(id, wc.Width, wc.Height)
	for _, ec := range wc.Entities {
		entity := &world.Entity{
			ID:          ec.ID,
			Type:        world.EntityType(ec.Type),
			X:           ec.X,
			Y:           ec.Y,
			SmellScale:  ec.SmellScale,
			SmellRadius: ec.SmellRadius,
		}
		if err := w.AddEntity(entity); err != nil {
			return nil, err
		}
	}
	for _, sc := range wc.Sensors {
		if _, err := w.AddObjectSensor(sc.Entity, sc.Name, world.EntityType(sc.ObjectType)); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (c *Config) buildDataSource(id string, dc *DataSourceConfig) (*world.DataSource, error) {
	path := dc.File
	if !filepath.IsAbs(path) && c.dir != "" {
		path = filepath.Join(c.dir, path)
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading datasource file: %w", err)
	}
	ds, err := world.NewDataSource(id, doc, dc.RowsPath, dc.Columns)
	if err != nil {
		return nil, err
	}
	ds.SetLoop(dc.Loop)
	return ds, nil
}

func buildTimeSeries(id string, tc *TimeSeriesConfig) (*world.TimeSeries, error) {
	ts := world.NewTimeSeries(id, tc.Capacity)
	for _, name := range tc.Series {
		if err := ts.AddSeries(name); err != nil {
			return nil, err
		}
	}
	return ts, nil
}
