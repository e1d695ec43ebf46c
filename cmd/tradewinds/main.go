// Command tradewinds runs the dynamic trading economy simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/voidworks/tradewinds/internal/api"
	"github.com/voidworks/tradewinds/internal/config"
	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/engine"
	"github.com/voidworks/tradewinds/internal/entropy"
	"github.com/voidworks/tradewinds/internal/events"
	"github.com/voidworks/tradewinds/internal/faction"
	"github.com/voidworks/tradewinds/internal/market"
	"github.com/voidworks/tradewinds/internal/persistence"
	"github.com/voidworks/tradewinds/internal/sector"
	"github.com/voidworks/tradewinds/internal/simclock"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Tradewinds — Dynamic Trading Economy Simulation")

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Core services ─────────────────────────────────────────────────
	clock := simclock.New(cfg.TimeScale)
	rng := entropy.New(cfg.Seed)
	registry := market.NewModifierRegistry()

	catalog := economy.SeedDefault()

	// ── Factions ──────────────────────────────────────────────────────
	factionCfg := faction.DefaultConfig()
	factionCfg.MaxReputationDiscount = cfg.Faction.MaxReputationDiscount
	factionCfg.ReputationDecayRate = cfg.Faction.ReputationDecayRate
	factionCfg.TradeAgreementBonus = cfg.Faction.TradeAgreementBonus
	factionCfg.BannedPriceMultiplier = cfg.Faction.BannedPriceMultiplier
	factionCfg.LicenseStanding = cfg.Faction.LicenseStanding
	factionCfg.MilitaryTechStanding = cfg.Faction.MilitaryTechStanding
	factions := faction.NewManager(clock, rng, factionCfg)
	factions.SeedDefaultFactions()

	// ── Sector map (deterministic from seed) ──────────────────────────
	sectorCfg := sector.DefaultGenConfig()
	sectorCfg.Seed = cfg.Seed
	sectorCfg.Stations = cfg.Stations
	sectorMap := sector.Generate(sectorCfg, factions.IDs())
	slog.Info("sector generated", "stations", len(sectorMap.IDs()))

	// Assign each commodity a production source for the distance model.
	routes := sector.NewTradeRoutes(sectorMap, 100)
	stationIDs := sectorMap.IDs()
	for _, c := range catalog.All() {
		routes.SetSource(c.ID, stationIDs[rng.IntN(len(stationIDs))])
	}

	// ── Markets ───────────────────────────────────────────────────────
	marketCfg := market.DefaultConfig()
	marketCfg.MaxHistoryEntries = cfg.Market.MaxHistoryEntries
	marketCfg.MaxHistoryAgeHours = cfg.Market.MaxHistoryAgeHours
	marketCfg.MaxEventSeverity = cfg.Market.MaxEventSeverity
	marketCfg.EnableRandomEvents = cfg.Market.EnableRandomEvents
	marketCfg.EventCheckHours = cfg.Market.EventCheckHours
	marketCfg.RandomEventChance = cfg.Market.RandomEventChance
	marketCfg.DefaultDailyVolume = float64(cfg.Market.DefaultDailyVolume)
	marketCfg.DepthImpactWindow = cfg.Market.DepthImpactWindow
	marketCfg.SampleIntervalHours = cfg.Market.SampleIntervalHours
	markets := market.NewManager(catalog, sectorMap, routes, registry, clock, rng, marketCfg)
	markets.SetStations(sectorMap.IDs())

	// ── Economic events ───────────────────────────────────────────────
	eventsCfg := events.DefaultConfig()
	eventsCfg.MaxActiveEvents = cfg.Events.MaxActiveEvents
	eventsCfg.RandomRollHours = cfg.Events.RandomRollHours
	eventsCfg.RandomEventChance = cfg.Events.RandomEventChance
	eventMgr := events.NewManager(clock, rng, registry, eventsCfg)
	eventMgr.SeedDefaultTemplates()

	// Faction incomes track active sector events.
	factions.SetImpactProvider(eventMgr)

	// ── Notifications ─────────────────────────────────────────────────
	hub := api.NewHub()
	go hub.Run()

	markets.OnEventStarted = func(ev market.ActiveMarketEvent) { hub.Notify("market_event", ev) }
	markets.OnEventEnded = func(ev market.ActiveMarketEvent) { hub.Notify("market_event_ended", ev) }
	markets.OnPriceImpact = func(d market.DepthImpact) { hub.Notify("price_impact", d) }
	markets.OnPriceSampled = func(st sector.StationID, c economy.CommodityID, e market.PriceHistoryEntry) {
		if err := db.ArchivePriceHistory(st, c, []market.PriceHistoryEntry{e}); err != nil {
			slog.Error("price archive failed", "error", err)
		}
	}
	eventMgr.OnEventStarted = func(ev events.EventData) { hub.Notify("economic_event", ev) }
	eventMgr.OnEventEnded = func(ev events.EventData) {
		hub.Notify("economic_event_ended", ev)
		if err := db.ArchiveEvent(events.HistoryEntry{Event: ev, EndedHour: clock.Now()}); err != nil {
			slog.Error("event archive failed", "error", err)
		}
	}
	eventMgr.OnChainEnded = func(c events.Chain) { hub.Notify("event_chain_ended", c) }
	factions.OnReputationChanged = func(rep faction.Reputation, reason string) {
		hub.Notify("reputation", map[string]any{"reputation": rep, "reason": reason})
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.New(clock)
	eng.Interval = time.Duration(cfg.TickIntervalMS) * time.Millisecond
	eng.SetSpeed(cfg.SpeedFactor)
	eng.Register(markets)
	eng.Register(factions)
	eng.Register(eventMgr)

	// Snapshot faction state roughly every game day.
	ticksPerDay := uint64(24 * 3600 / cfg.TimeScale)
	if ticksPerDay == 0 {
		ticksPerDay = 1
	}
	eng.OnTick = func(tick uint64) {
		if tick%ticksPerDay == 0 {
			if err := db.Snapshot(factions.Snapshots(), clock.Now()); err != nil {
				slog.Error("daily snapshot failed", "error", err)
			}
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("TRADEWINDS_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Clock:    clock,
		Eng:      eng,
		Catalog:  catalog,
		Sector:   sectorMap,
		Market:   markets,
		Factions: factions,
		Events:   eventMgr,
		DB:       db,
		Hub:      hub,
		Port:     cfg.APIPort,
		AdminKey: cfg.AdminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nTradewinds is live: %d commodities across %d stations, %d factions.\n",
		catalog.Len(), len(sectorMap.IDs()), len(factions.IDs()))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final snapshot on shutdown.
	slog.Info("final snapshot...")
	if err := db.Snapshot(factions.Snapshots(), clock.Now()); err != nil {
		slog.Error("final snapshot failed", "error", err)
	}
	if err := db.SaveMeta("ticks", strconv.FormatUint(eng.Ticks(), 10)); err != nil {
		slog.Error("meta save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Economy state saved.")
}
