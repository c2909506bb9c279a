package app

import (
	"os"
	"path/filepath"
	"testing"
)

func writePresetsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write presets file: %v", err)
	}
	return path
}

func TestLoadPresetsMissingFileIsEmpty(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("Missing presets file must not be an error: %v", err)
	}
	if len(presets) != 0 {
		t.Errorf("Expected empty preset map, got %d entries", len(presets))
	}
}

func TestLoadPresetsParsesModels(t *testing.T) {
	path := writePresetsFile(t, `{
		"generous": {
			"model_kind": "standard",
			"faction_pool_percent": 10,
			"guaranteed_pool_percent": 20,
			"assist_payment_type": "flat",
			"assist_payment_value": 50000,
			"use_bonus_respect": true
		},
		"chain_heavy": {
			"model_kind": "multi_pool",
			"faction_pool_percent": 30,
			"chain_pool_percent": 25,
			"assist_pool_percent": 5
		}
	}`)

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("Expected 2 presets, got %d", len(presets))
	}

	generous := presets["generous"]
	if generous.Kind != ModelStandard || generous.AssistPaymentValue != 50000 {
		t.Errorf("Unexpected generous preset: %+v", generous)
	}

	chainHeavy := presets["chain_heavy"]
	if chainHeavy.Kind != ModelMultiPool || chainHeavy.ChainPoolPercent != 25 {
		t.Errorf("Unexpected chain_heavy preset: %+v", chainHeavy)
	}
}

func TestLoadPresetsRejectsMalformedJSON(t *testing.T) {
	path := writePresetsFile(t, `{"broken":`)

	if _, err := LoadPresets(path); err == nil {
		t.Error("Expected error for malformed presets file")
	}
}

func TestResolvePresetFillsDefaults(t *testing.T) {
	presets := map[string]PayoutModel{
		"bare": {},
	}

	model, err := ResolvePreset(presets, "bare", 30, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if model.Kind != ModelStandard {
		t.Errorf("Expected default kind standard, got %q", model.Kind)
	}
	if model.AssistPaymentType != AssistPaymentNone {
		t.Errorf("Expected default assist type none, got %q", model.AssistPaymentType)
	}
	if model.FactionPoolPercent != 30 || model.GuaranteedPoolPercent != 10 {
		t.Errorf("Expected shares filled from defaults, got %v/%v", model.FactionPoolPercent, model.GuaranteedPoolPercent)
	}
}

func TestResolvePresetKeepsExplicitValues(t *testing.T) {
	presets := map[string]PayoutModel{
		"explicit": {
			Kind:                  ModelEqualShare,
			FactionPoolPercent:    15,
			GuaranteedPoolPercent: 5,
			AssistPaymentType:     AssistPaymentFlat,
		},
	}

	model, err := ResolvePreset(presets, "explicit", 30, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if model.FactionPoolPercent != 15 || model.GuaranteedPoolPercent != 5 {
		t.Errorf("Explicit shares must survive resolution, got %v/%v", model.FactionPoolPercent, model.GuaranteedPoolPercent)
	}
	if model.Kind != ModelEqualShare {
		t.Errorf("Expected equal_share kind preserved, got %q", model.Kind)
	}
}

func TestResolvePresetUnknownName(t *testing.T) {
	if _, err := ResolvePreset(map[string]PayoutModel{}, "nope", 30, 10); err == nil {
		t.Error("Expected error for unknown preset name")
	}
}
