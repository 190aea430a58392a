package validate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile holds the tunable thresholds for the structural gate. Profiles
// live in YAML so batch runs over different document families can carry
// their own expectations.
type Profile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// MinUnitsWithText is the minimum count of units carrying prose before
	// a parse counts as substantive.
	MinUnitsWithText int `yaml:"min_units_with_text"`
	// MinTotalWords is the minimum word count across all units.
	MinTotalWords int `yaml:"min_total_words"`
}

// DefaultProfile suits ordinary regulations and directives: a handful of
// units and a page of text is the floor below which output is junk.
func DefaultProfile() *Profile {
	return &Profile{
		Name:             "default",
		MinUnitsWithText: 3,
		MinTotalWords:    50,
	}
}

// LoadProfile reads a YAML profile from disk, filling unset thresholds from
// the default profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes YAML profile bytes.
func ParseProfile(data []byte) (*Profile, error) {
	profile := DefaultProfile()
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if profile.MinUnitsWithText < 0 || profile.MinTotalWords < 0 {
		return nil, fmt.Errorf("profile %q: thresholds must be non-negative", profile.Name)
	}
	return profile, nil
}
