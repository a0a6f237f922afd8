// Package profile loads the static profile card shown on the dashboard.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the owner's public card. Purely cosmetic; the engine never
// reads it.
type Profile struct {
	Name     string `yaml:"name" json:"name"`
	Telegram string `yaml:"telegram" json:"telegram"`
	Role     string `yaml:"role" json:"role"`
	Hobbies  string `yaml:"hobbies" json:"hobbies"`
}

// Load reads the profile YAML at path. A missing file is not an error —
// the dashboard just renders an empty card.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile file: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile file %s: %w", path, err)
	}
	return p, nil
}
