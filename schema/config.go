package schema

import (
	"fmt"

	"github.com/DGEXSolutions/chartos/internal/chartoserr"
	"gopkg.in/yaml.v3"
)

// Config = {name, description, layers}, per spec.md §3. Config is immutable
// after Parse; every downstream component receives a *Config reference
// rather than a dependency-injected singleton (design note §9).
type Config struct {
	Name        string
	Description string
	Layers      []Layer

	layersByName map[string]Layer
}

// Layer looks up a layer by name.
func (c *Config) Layer(name string) (Layer, bool) {
	l, ok := c.layersByName[name]
	return l, ok
}

// ParseYAML reads the layer schema document and builds a Config. The parse
// is total: either the whole Config parses and every invariant in spec.md
// §3 holds, or ParseYAML fails with a *chartoserr.SchemaError naming the
// first violation.
func ParseYAML(data []byte) (*Config, error) {
	var raw SerializedConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &chartoserr.SchemaError{Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}
	return Parse(raw)
}

// Parse builds a Config from its serialized form.
func Parse(raw SerializedConfig) (*Config, error) {
	layers := make([]Layer, 0, len(raw.Layers))
	byName := make(map[string]Layer, len(raw.Layers))
	for _, rl := range raw.Layers {
		l, err := parseLayer(rl)
		if err != nil {
			return nil, err
		}
		if _, dup := byName[l.Name]; dup {
			return nil, &chartoserr.SchemaError{Reason: fmt.Sprintf("duplicate layer name %q", l.Name)}
		}
		layers = append(layers, l)
		byName[l.Name] = l
	}
	return &Config{
		Name:         raw.Name,
		Description:  raw.Description,
		Layers:       layers,
		layersByName: byName,
	}, nil
}
