package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadVariables - reads a flat YAML mapping of macro variables.
// Scalars are kept exactly as written in the file.
func LoadVariables(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variables file: %w", err)
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse variables file %s: %w", path, err)
	}

	vars := make(map[string]string, len(raw))
	for name, node := range raw {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("variable %s in %s must be a scalar (line %d)", name, path, node.Line)
		}
		vars[name] = node.Value
	}
	return vars, nil
}

// FormatVariables - renders variables as a YAML mapping LoadVariables can read back
func FormatVariables(vars map[string]string) ([]byte, error) {
	return yaml.Marshal(vars)
}
