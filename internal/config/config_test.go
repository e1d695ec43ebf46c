package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.Seed != def.Seed || cfg.APIPort != def.APIPort || cfg.Market.MaxHistoryEntries != 168 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
seed: 7
api_port: 9100
market:
  max_history_entries: 24
  enable_random_events: false
  depth_impact_window: 4
  sample_interval_hours: 0.5
faction:
  banned_price_multiplier: 25
  license_standing: 55
events:
  max_active_events: 3
`)
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 7 || cfg.APIPort != 9100 {
		t.Fatalf("top-level overrides lost: %+v", cfg)
	}
	if cfg.Market.MaxHistoryEntries != 24 || cfg.Market.EnableRandomEvents {
		t.Fatalf("market overrides lost: %+v", cfg.Market)
	}
	if cfg.Market.DepthImpactWindow != 4 || cfg.Market.SampleIntervalHours != 0.5 {
		t.Fatalf("market tuning overrides lost: %+v", cfg.Market)
	}
	if cfg.Faction.BannedPriceMultiplier != 25 || cfg.Faction.LicenseStanding != 55 {
		t.Fatalf("faction overrides lost: %+v", cfg.Faction)
	}
	if cfg.Events.MaxActiveEvents != 3 {
		t.Fatalf("events override lost: %+v", cfg.Events)
	}
	// Untouched keys keep their defaults.
	if cfg.TimeScale != 60 || cfg.Faction.TradeAgreementBonus != 0.1 ||
		cfg.Faction.MilitaryTechStanding != 80 {
		t.Fatalf("defaults clobbered: %+v", cfg)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("seed: [not a number"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAdminKeyFromEnv(t *testing.T) {
	t.Setenv("TRADEWINDS_ADMIN_KEY", "sesame")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AdminKey != "sesame" {
		t.Fatalf("admin key = %q, want sesame", cfg.AdminKey)
	}
}
