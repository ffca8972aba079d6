package contacts

import (
	"encoding/json"
	"fmt"
	"os"
)

// UserProfile is the searching user's own context used for relevance scoring.
// All fields are optional; an absent field means no signal, never an error.
type UserProfile struct {
	Name      string   `json:"name,omitempty" mapstructure:"name"`
	Summary   string   `json:"summary,omitempty" mapstructure:"summary"`
	Schools   []string `json:"schools,omitempty" mapstructure:"schools"`
	Companies []string `json:"companies,omitempty" mapstructure:"companies"`
	Skills    []string `json:"skills,omitempty" mapstructure:"skills"`
}

// LoadUserProfile reads a profile from a JSON file.
func LoadUserProfile(path string) (*UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file %q: %w", path, err)
	}

	var profile UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile file %q: %w", path, err)
	}

	return &profile, nil
}

// Save writes the profile to a JSON file.
func (p *UserProfile) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
