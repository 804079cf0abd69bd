package parser

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseYAMLConfig decodes a YAML configuration file into a generic map for
// snapshotting into an experiment record.
func ParseYAMLConfig(reader io.Reader) (map[string]any, error) {
	var data map[string]any
	decoder := yaml.NewDecoder(reader)

	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return data, nil
}
