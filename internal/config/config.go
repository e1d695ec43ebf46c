// Package config loads the simulation configuration from YAML, applying
// defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	Seed           int64   `yaml:"seed"`             // 0 seeds from the OS
	TimeScale      float64 `yaml:"time_scale"`       // game seconds per real second
	TickIntervalMS int     `yaml:"tick_interval_ms"` // engine step cadence
	SpeedFactor    float64 `yaml:"speed_factor"`     // 1.0 real-time, 0 paused

	APIPort  int    `yaml:"api_port"`
	DBPath   string `yaml:"db_path"`
	AdminKey string `yaml:"admin_key"` // overridden by TRADEWINDS_ADMIN_KEY

	Stations int `yaml:"stations"`

	Market  MarketConfig  `yaml:"market"`
	Faction FactionConfig `yaml:"faction"`
	Events  EventsConfig  `yaml:"events"`
}

// MarketConfig tunes the dynamic market manager.
type MarketConfig struct {
	MaxHistoryEntries   int     `yaml:"max_history_entries"`
	MaxHistoryAgeHours  float64 `yaml:"max_history_age_hours"`
	MaxEventSeverity    float64 `yaml:"max_event_severity"`
	EnableRandomEvents  bool    `yaml:"enable_random_events"`
	EventCheckHours     float64 `yaml:"event_check_hours"`
	RandomEventChance   float64 `yaml:"random_event_chance"`
	DefaultDailyVolume  int     `yaml:"default_daily_volume"`
	DepthImpactWindow   int     `yaml:"depth_impact_window"`
	SampleIntervalHours float64 `yaml:"sample_interval_hours"`
}

// FactionConfig tunes the faction economy manager.
type FactionConfig struct {
	MaxReputationDiscount float64 `yaml:"max_reputation_discount"`
	ReputationDecayRate   float64 `yaml:"reputation_decay_rate"`
	TradeAgreementBonus   float64 `yaml:"trade_agreement_bonus"`
	BannedPriceMultiplier float64 `yaml:"banned_price_multiplier"`
	LicenseStanding       float64 `yaml:"license_standing"`
	MilitaryTechStanding  float64 `yaml:"military_tech_standing"`
}

// EventsConfig tunes the economic event manager.
type EventsConfig struct {
	MaxActiveEvents   int     `yaml:"max_active_events"`
	RandomRollHours   float64 `yaml:"random_roll_hours"`
	RandomEventChance float64 `yaml:"random_event_chance"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Seed:           42,
		TimeScale:      60,
		TickIntervalMS: 1000,
		SpeedFactor:    1.0,
		APIPort:        8080,
		DBPath:         "data/tradewinds.db",
		Stations:       12,
		Market: MarketConfig{
			MaxHistoryEntries:   168,
			MaxHistoryAgeHours:  168,
			MaxEventSeverity:    1.0,
			EnableRandomEvents:  true,
			EventCheckHours:     1.0,
			RandomEventChance:   0.30,
			DefaultDailyVolume:  100,
			DepthImpactWindow:   10,
			SampleIntervalHours: 1.0,
		},
		Faction: FactionConfig{
			MaxReputationDiscount: 0.25,
			ReputationDecayRate:   0.01,
			TradeAgreementBonus:   0.1,
			BannedPriceMultiplier: 10,
			LicenseStanding:       70,
			MilitaryTechStanding:  80,
		},
		Events: EventsConfig{
			MaxActiveEvents:   10,
			RandomRollHours:   24,
			RandomEventChance: 0.25,
		},
	}
}

// Load reads a YAML configuration file over the defaults. A missing file
// is not an error; the defaults come back as-is. The admin key can always
// be supplied through TRADEWINDS_ADMIN_KEY.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if key := os.Getenv("TRADEWINDS_ADMIN_KEY"); key != "" {
		cfg.AdminKey = key
	}
	return cfg, nil
}
