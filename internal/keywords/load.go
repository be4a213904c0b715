package keywords

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML overlay and merges it on top of base. The overlay
// uses the same keys as Dictionary; anything it omits is kept from base.
func LoadFile(path string, base *Dictionary) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword file: %w", err)
	}

	var overlay Dictionary
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse keyword file %s: %w", path, err)
	}

	merged := Merge(base, &overlay)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("keyword file %s: %w", path, err)
	}
	return merged, nil
}

// Marshal renders the dictionary as YAML, in the format LoadFile accepts.
func (d *Dictionary) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize dictionary: %w", err)
	}
	return data, nil
}
