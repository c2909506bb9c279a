package app

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TORN_API_KEY", "test-key")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if config.TornAPIKey != "test-key" {
		t.Errorf("Expected API key from environment, got %q", config.TornAPIKey)
	}
	if config.CachePath != "war_cache.db" {
		t.Errorf("Expected default cache path, got %q", config.CachePath)
	}
	if config.ReportsDir != "reports" {
		t.Errorf("Expected default reports dir, got %q", config.ReportsDir)
	}
	if config.FactionShare != 30 || config.GuaranteedShare != 10 {
		t.Errorf("Expected default shares 30/10, got %v/%v", config.FactionShare, config.GuaranteedShare)
	}
	if config.OurFactionID != 0 {
		t.Errorf("Expected faction ID unset, got %d", config.OurFactionID)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OUR_FACTION_ID", "12345")
	t.Setenv("CACHE_PATH", "/tmp/custom.db")
	t.Setenv("FACTION_SHARE_DEFAULT", "25.5")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if config.OurFactionID != 12345 {
		t.Errorf("Expected faction ID 12345, got %d", config.OurFactionID)
	}
	if config.CachePath != "/tmp/custom.db" {
		t.Errorf("Expected overridden cache path, got %q", config.CachePath)
	}
	if config.FactionShare != 25.5 {
		t.Errorf("Expected faction share 25.5, got %v", config.FactionShare)
	}
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	// t.Setenv registers the restore; unset so the var is truly absent
	t.Setenv("TORN_API_KEY", "placeholder")
	os.Unsetenv("TORN_API_KEY")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when TORN_API_KEY is missing")
	}
}
