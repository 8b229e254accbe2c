package adjust

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRecipe reads a YAML adjustment recipe. Missing fields keep their no-op
// values and out of range values are clamped.
func LoadRecipe(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("read recipe: %w", err)
	}
	return ParseRecipe(data)
}

// ParseRecipe decodes a YAML adjustment recipe.
func ParseRecipe(data []byte) (State, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("parse recipe: %w", err)
	}
	s = s.Clamp()
	if _, err := GetPreset(s.Preset); err != nil {
		return State{}, err
	}
	return s, nil
}

// SaveRecipe writes s as YAML.
func SaveRecipe(path string, s State) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode recipe: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write recipe: %w", err)
	}
	return nil
}
