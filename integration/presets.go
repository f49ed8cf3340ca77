// Package integration bundles common simulation settings into named presets
// so a run can be tuned with one --preset flag instead of several.
//
//	cfg := integration.LitePreset()  // one transaction per block, debug logs
//	cfg := integration.BatchPreset() // large blocks, metrics on
package integration

import "fmt"

// PresetConfig holds the settings that vary between presets.
type PresetConfig struct {
	Name          string
	Network       string // landchain.RulesByName key
	TxThreshold   int    // 0 keeps the network's own threshold
	Verbosity     int    // logrus level, 4 is info
	EnableMetrics bool
}

func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:          "default",
		Network:       "main",
		TxThreshold:   0,
		Verbosity:     4,
		EnableMetrics: false,
	}
}

// LitePreset runs the fake network: every transaction triggers a round, which
// makes single-step debugging easy.
func LitePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "lite"
	cfg.Network = "fake"
	cfg.Verbosity = 5
	return cfg
}

// BatchPreset packs many transactions into each block and exposes metrics.
func BatchPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "batch"
	cfg.Network = "test"
	cfg.TxThreshold = 10
	cfg.Verbosity = 3
	cfg.EnableMetrics = true
	return cfg
}

// GetPresetByName backs the --preset flag.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "lite":
		return LitePreset(), nil
	case "batch":
		return BatchPreset(), nil
	case "default", "":
		return DefaultPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: default, lite, batch)", name)
	}
}

// ApplyPreset copies the non-zero fields of preset into target. EnableMetrics
// is always copied.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.Network != "" {
		target.Network = preset.Network
	}
	if preset.TxThreshold > 0 {
		target.TxThreshold = preset.TxThreshold
	}
	if preset.Verbosity > 0 {
		target.Verbosity = preset.Verbosity
	}
	target.EnableMetrics = preset.EnableMetrics
	if preset.Name != "" {
		target.Name = preset.Name
	}
}
