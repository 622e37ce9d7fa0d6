package journey

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a journey definition from a YAML file.
func Load(path string) (*Journey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var j Journey
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, err
	}

	return &j, nil
}

// Save writes a journey definition to a YAML file.
func Save(j *Journey, path string) error {
	data, err := yaml.Marshal(j)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadRoute reads a resolved route from a YAML file.
func LoadRoute(path string) (*Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Route
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}

	return &r, nil
}

// SaveRoute writes a resolved route to a YAML file so later renders of the
// same journey skip the routing services.
func SaveRoute(r *Route, path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
