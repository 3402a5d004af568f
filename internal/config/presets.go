package config

import (
	"sort"

	"github.com/san-kum/rdsim/internal/physics"
)

// Preset is a named feed/kill pair on the default diffusion rates.
type Preset struct {
	Description string
	F, K        float64
}

var Presets = map[string]Preset{
	"default": {Description: "labyrinth of thick stripes", F: physics.DefaultF, K: physics.DefaultK},
	"mitosis": {Description: "self-replicating spots", F: 0.0367, K: 0.0649},
	"coral":   {Description: "branching coral growth", F: 0.0545, K: 0.062},
	"spots":   {Description: "stable isolated spots", F: 0.03, K: 0.062},
	"stripes": {Description: "fingerprint stripes", F: 0.022, K: 0.051},
	"worms":   {Description: "wriggling worms", F: 0.078, K: 0.061},
	"waves":   {Description: "travelling waves", F: 0.014, K: 0.045},
	"chaos":   {Description: "turbulent spots and holes", F: 0.026, K: 0.051},
}

// GetPreset returns a copy of DefaultConfig with the preset's F and k, or
// nil if no preset has that name.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Params.F = p.F
	cfg.Params.K = p.K
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
