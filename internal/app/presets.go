package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// LoadPresets reads named payout models from a JSON file. A missing file is
// not an error; callers fall back to the default model.
func LoadPresets(path string) (map[string]PayoutModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", path).Msg("No presets file found")
			return map[string]PayoutModel{}, nil
		}
		return nil, fmt.Errorf("failed to read presets file %s: %w", path, err)
	}

	var presets map[string]PayoutModel
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("failed to parse presets file %s: %w", path, err)
	}

	log.Debug().
		Int("preset_count", len(presets)).
		Str("path", path).
		Msg("Loaded payout presets")

	return presets, nil
}

// ResolvePreset looks up a named preset, filling unset share percentages
// from the configured defaults.
func ResolvePreset(presets map[string]PayoutModel, name string, factionShare, guaranteedShare float64) (PayoutModel, error) {
	preset, ok := presets[name]
	if !ok {
		return PayoutModel{}, fmt.Errorf("payout preset %q not found", name)
	}
	if preset.Kind == "" {
		preset.Kind = ModelStandard
	}
	if preset.AssistPaymentType == "" {
		preset.AssistPaymentType = AssistPaymentNone
	}
	if preset.FactionPoolPercent == 0 {
		preset.FactionPoolPercent = factionShare
	}
	if preset.GuaranteedPoolPercent == 0 && preset.Kind == ModelStandard {
		preset.GuaranteedPoolPercent = guaranteedShare
	}
	return preset, nil
}
