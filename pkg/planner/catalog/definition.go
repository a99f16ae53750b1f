package catalog

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrInvalidDefinition = errors.New("invalid catalog definition")

// Definition describes a catalog in YAML:
//
//	tools:
//	  - id: 67c10f2a
//	    name: Clustering
//	    projects: [Public]
//	    task: Clustering
//	    citation: 120
//	    inputs: [qc]
//	    outputs: [clustered]
//	    copy_from: 67c10f00
type Definition struct {
	Tools []ToolDefinition `yaml:"tools"`
}

type ToolDefinition struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Projects []string `yaml:"projects"`
	Task     string   `yaml:"task"`
	Citation float64  `yaml:"citation"`
	Inputs   []string `yaml:"inputs"`
	Outputs  []string `yaml:"outputs"`
	CopyFrom string   `yaml:"copy_from"`
}

// ParseDefinition decodes a YAML catalog definition.
func ParseDefinition(raw []byte) (Definition, error) {
	var def Definition

	err := yaml.Unmarshal(raw, &def)
	if err != nil {
		return Definition{}, errors.Wrap(err, "unable to decode catalog definition")
	}

	return def, nil
}

// LoadDefinition reads and decodes the catalog definition at path.
func LoadDefinition(path string) (Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, errors.Wrapf(err, "unable to read catalog definition %s", path)
	}

	return ParseDefinition(raw)
}

func (d Definition) validate() error {
	seen := make(map[string]struct{}, len(d.Tools))

	for i, tool := range d.Tools {
		if tool.ID == "" {
			return errors.Wrapf(ErrInvalidDefinition, "tool %d has no id", i)
		}

		if tool.Name == "" {
			return errors.Wrapf(ErrInvalidDefinition, "tool %s has no name", tool.ID)
		}

		if _, ok := seen[tool.ID]; ok {
			return errors.Wrapf(ErrInvalidDefinition, "tool %s is defined twice", tool.ID)
		}

		seen[tool.ID] = struct{}{}
	}

	for _, tool := range d.Tools {
		if tool.CopyFrom == "" {
			continue
		}

		if _, ok := seen[tool.CopyFrom]; !ok {
			return errors.Wrapf(ErrInvalidDefinition, "tool %s copies unknown tool %s", tool.ID, tool.CopyFrom)
		}
	}

	return nil
}
