// Package profile loads named weighting profiles from YAML. A profile pins
// the composite weights and mode for a batch run so they can be reviewed and
// versioned instead of living in flags.
package profile

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuation"
)

// Weights mirrors contracts.WeightSet for YAML decoding.
type Weights struct {
	EV     int `yaml:"ev" json:"ev"`
	DCF    int `yaml:"dcf" json:"dcf"`
	Graham int `yaml:"graham" json:"graham"`
	PE     int `yaml:"pe" json:"pe"`
}

// Profile is one named weighting scheme.
type Profile struct {
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Mode        string  `yaml:"mode" json:"mode"`
	Weights     Weights `yaml:"weights" json:"weights"`
}

// File is a whole profile file.
type File struct {
	Profiles map[string]Profile `yaml:"profiles" json:"profiles"`
}

// WeightSet converts to the engine's weight type.
func (p Profile) WeightSet() contracts.WeightSet {
	return contracts.WeightSet{
		EV:     p.Weights.EV,
		DCF:    p.Weights.DCF,
		Graham: p.Weights.Graham,
		PE:     p.Weights.PE,
	}
}

// ParsedMode returns the profile's composite mode.
func (p Profile) ParsedMode() (valuation.Mode, error) {
	return valuation.ParseMode(p.Mode)
}

// Load reads and validates a profile file. Unknown YAML fields fail the load
// so typos surface immediately instead of silently falling back to defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates profile file content.
func Parse(data []byte) (*File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	if len(file.Profiles) == 0 {
		return nil, &contracts.ConfigurationError{Reason: "profile file defines no profiles"}
	}

	for name, p := range file.Profiles {
		if err := validate(name, p); err != nil {
			return nil, err
		}
	}

	return &file, nil
}

// Get returns one profile by name.
func (f *File) Get(name string) (Profile, error) {
	p, ok := f.Profiles[name]
	if !ok {
		return Profile{}, &contracts.ConfigurationError{Reason: fmt.Sprintf("profile %q not found", name)}
	}
	return p, nil
}

// Default is the built-in profile used when no file is given: the watchlist
// weights in tolerant mode.
func Default() Profile {
	w := contracts.DefaultWeights()
	return Profile{
		Description: "built-in watchlist default",
		Mode:        string(valuation.ModeTolerant),
		Weights:     Weights{EV: w.EV, DCF: w.DCF, Graham: w.Graham, PE: w.PE},
	}
}

func validate(name string, p Profile) error {
	mode, err := p.ParsedMode()
	if err != nil {
		return &contracts.ConfigurationError{Reason: fmt.Sprintf("profile %q: %v", name, err)}
	}

	weights := p.WeightSet()
	if err := weights.Validate(); err != nil {
		return &contracts.ConfigurationError{Reason: fmt.Sprintf("profile %q: %v", name, err)}
	}

	// Strict profiles must already sum to 100; catching it at load time beats
	// failing every ticker at scoring time.
	if mode == valuation.ModeStrict && weights.Total() != 100 {
		return &contracts.ConfigurationError{
			Reason: fmt.Sprintf("profile %q: strict weights must sum to 100, got %d", name, weights.Total()),
		}
	}

	return nil
}
