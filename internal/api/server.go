// Package api provides the HTTP surface for the economy simulation.
// GET endpoints are public (read-only observation). POST endpoints require
// a bearer token (admin control plane). A websocket at /ws streams market
// and event notifications.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/engine"
	"github.com/voidworks/tradewinds/internal/events"
	"github.com/voidworks/tradewinds/internal/faction"
	"github.com/voidworks/tradewinds/internal/market"
	"github.com/voidworks/tradewinds/internal/persistence"
	"github.com/voidworks/tradewinds/internal/sector"
	"github.com/voidworks/tradewinds/internal/simclock"
)

// Server serves the economy state over HTTP.
type Server struct {
	Clock    *simclock.Clock
	Eng      *engine.Engine
	Catalog  *economy.Catalog
	Sector   *sector.Map
	Market   *market.Manager
	Factions *faction.Manager
	Events   *events.Manager
	DB       *persistence.DB
	Hub      *Hub
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Report endpoints recompute full statistics per call.
	reportLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/commodities", s.handleCommodities)
	mux.HandleFunc("/api/v1/stations", s.handleStations)
	mux.HandleFunc("/api/v1/market/price", s.handlePrice)
	mux.HandleFunc("/api/v1/market/history", s.handleHistory)
	mux.HandleFunc("/api/v1/market/analysis", rateLimited(reportLimiter, s.handleAnalysis))
	mux.HandleFunc("/api/v1/market/events", s.handleMarketEvents)
	mux.HandleFunc("/api/v1/events", s.handleEconomicEvents)
	mux.HandleFunc("/api/v1/events/history", rateLimited(reportLimiter, s.handleEventHistory))
	mux.HandleFunc("/api/v1/factions", s.handleFactions)
	mux.HandleFunc("/api/v1/faction/", s.handleFactionDetail)
	mux.HandleFunc("/api/v1/reputation", s.handleReputation)

	// Notifications.
	if s.Hub != nil {
		mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			serveWs(s.Hub, w, r)
		})
	}

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/market/event", s.adminOnly(s.handleTriggerMarketEvent))
	mux.HandleFunc("/api/v1/market/order", s.adminOnly(s.handleLargeOrder))
	mux.HandleFunc("/api/v1/events/trigger", s.adminOnly(s.handleTriggerEconomicEvent))
	mux.HandleFunc("/api/v1/faction/policy", s.adminOnly(s.handleSetPolicy))
	mux.HandleFunc("/api/v1/reputation/adjust", s.adminOnly(s.handleAdjustReputation))
	mux.HandleFunc("/api/v1/diplomacy", s.adminOnly(s.handleDiplomacy))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no TRADEWINDS_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name":          "Tradewinds",
		"game_hour":     s.Clock.Now(),
		"game_time":     s.Clock.String(),
		"speed":         s.Eng.Speed(),
		"running":       s.Eng.Running(),
		"ticks":         s.Eng.Ticks(),
		"commodities":   s.Catalog.Len(),
		"stations":      len(s.Sector.IDs()),
		"factions":      len(s.Factions.IDs()),
		"active_events": len(s.Events.ActiveEvents()),
		"market_events": len(s.Market.GetActiveMarketEvents()),
	})
}

func (s *Server) handleCommodities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Catalog.All())
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sector.All())
}

// handlePrice computes the current dynamic price for a station/commodity
// pair: GET /api/v1/market/price?station=...&commodity=...&faction=...&player=...
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	commodityID := economy.CommodityID(r.URL.Query().Get("commodity"))
	stationID := sector.StationID(r.URL.Query().Get("station"))
	factionID := r.URL.Query().Get("faction")
	playerID := r.URL.Query().Get("player")

	c, ok := s.Catalog.Get(commodityID)
	if !ok {
		http.Error(w, "unknown commodity", http.StatusNotFound)
		return
	}

	factors := s.Market.CalculateSupplyDemandFactors(commodityID, stationID, factionID, playerID)
	price := s.Market.CalculateDynamicPrice(c, factors, 1.0)

	writeJSON(w, map[string]any{
		"commodity":  commodityID,
		"station":    stationID,
		"price":      price,
		"base_value": c.BaseValue,
		"factors":    factors,
		"volatility": s.Market.CalculatePriceVolatility(commodityID, stationID),
		"liquidity":  s.Market.GetMarketLiquidity(commodityID, stationID),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	commodityID := economy.CommodityID(r.URL.Query().Get("commodity"))
	stationID := sector.StationID(r.URL.Query().Get("station"))

	hoursBack := 24.0
	if v := r.URL.Query().Get("hours"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			hoursBack = f
		}
	}
	writeJSON(w, s.Market.GetPriceHistory(commodityID, stationID, hoursBack))
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	commodityID := economy.CommodityID(r.URL.Query().Get("commodity"))
	stationID := sector.StationID(r.URL.Query().Get("station"))
	if _, ok := s.Catalog.Get(commodityID); !ok {
		http.Error(w, "unknown commodity", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{
		"analysis": s.Market.GetMarketAnalysis(commodityID, stationID),
	})
}

func (s *Server) handleMarketEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Market.GetActiveMarketEvents())
}

func (s *Server) handleEconomicEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"active": s.Events.ActiveEvents(),
		"chains": s.Events.ActiveChains(),
		"report": s.Events.GenerateEventReport(),
	})
}

func (s *Server) handleEventHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"recent": s.Events.History(),
		"export": s.Events.ExportEventHistory(),
	})
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Factions.Snapshots())
}

// handleFactionDetail returns one faction plus its economic report:
// GET /api/v1/faction/{id}
func (s *Server) handleFactionDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/faction/")
	f, ok := s.Factions.Snapshot(id)
	if !ok {
		http.Error(w, "unknown faction", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"faction":      f,
		"report":       s.Factions.GetFactionEconomicReport(id),
		"event_impact": s.Events.FactionImpactFactor(id),
	})
}

// handleReputation returns a player's standing with one faction, or the
// full reputation report when no faction is given.
func (s *Server) handleReputation(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		http.Error(w, "player required", http.StatusBadRequest)
		return
	}
	if factionID := r.URL.Query().Get("faction"); factionID != "" {
		rep := s.Factions.GetPlayerReputation(factionID, playerID)
		writeJSON(w, map[string]any{
			"reputation": rep,
			"can_trade":  s.Factions.CanPlayerTrade(factionID, playerID),
		})
		return
	}
	writeJSON(w, map[string]string{
		"report": s.Factions.GetPlayerReputationReport(playerID),
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}
	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

// handleTriggerMarketEvent starts an hour-scale market event:
// POST {"type": 0, "commodity": "iron-ore", "station": "", "severity": 0.5, "duration_hours": 12}
func (s *Server) handleTriggerMarketEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Type          int     `json:"type"`
		Commodity     string  `json:"commodity"`
		Station       string  `json:"station"`
		Severity      float64 `json:"severity"`
		DurationHours float64 `json:"duration_hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	ev := s.Market.TriggerMarketEvent(market.MarketEventType(req.Type),
		economy.CommodityID(req.Commodity), sector.StationID(req.Station),
		req.Severity, req.DurationHours)
	writeJSON(w, ev)
}

// handleTriggerEconomicEvent starts a day-scale event from a registered
// template: POST {"template": "ore-rush", "player": ""}
func (s *Server) handleTriggerEconomicEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Template string `json:"template"`
		Player   string `json:"player"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	tpl, ok := s.Events.GetTemplate(req.Template)
	if !ok {
		http.Error(w, "unknown template", http.StatusNotFound)
		return
	}
	ev := s.Events.TriggerFromTemplate(tpl, req.Player)
	if ev.Empty() {
		http.Error(w, "event capacity reached", http.StatusConflict)
		return
	}
	writeJSON(w, ev)
}

// handleLargeOrder runs a large trade through the depth model:
// POST {"commodity": "iron-ore", "station": "tycho-deep", "quantity": 5000,
// "is_buy": true, "player": "ace"}
func (s *Server) handleLargeOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Commodity string  `json:"commodity"`
		Station   string  `json:"station"`
		Quantity  float64 `json:"quantity"`
		IsBuy     bool    `json:"is_buy"`
		Player    string  `json:"player"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		http.Error(w, "quantity must be positive", http.StatusBadRequest)
		return
	}
	impact := s.Market.ProcessLargeOrder(economy.CommodityID(req.Commodity),
		req.Quantity, req.IsBuy, sector.StationID(req.Station), req.Player)
	writeJSON(w, impact)
}

// handleSetPolicy assigns a faction's economic policy:
// POST {"faction": "concord", "policy": "war-economy"}
func (s *Server) handleSetPolicy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Faction string `json:"faction"`
		Policy  string `json:"policy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	policy, ok := faction.ParsePolicy(req.Policy)
	if !ok {
		http.Error(w, "unknown policy", http.StatusBadRequest)
		return
	}
	if !s.Factions.SetFactionPolicy(req.Faction, policy) {
		http.Error(w, "unknown faction", http.StatusNotFound)
		return
	}
	f, _ := s.Factions.Snapshot(req.Faction)
	writeJSON(w, f)
}

// handleAdjustReputation shifts a player's standing with a faction:
// POST {"faction": "concord", "player": "ace", "delta": 5, "reason": "mission"}
func (s *Server) handleAdjustReputation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Faction string  `json:"faction"`
		Player  string  `json:"player"`
		Delta   float64 `json:"delta"`
		Reason  string  `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Faction == "" || req.Player == "" {
		http.Error(w, "faction and player required", http.StatusBadRequest)
		return
	}
	rep := s.Factions.ModifyPlayerReputation(req.Faction, req.Player, req.Delta, req.Reason)
	writeJSON(w, rep)
}

// handleDiplomacy executes a diplomatic action between two factions:
// POST {"action": "alliance", "faction_a": "concord", "faction_b": "helios-syndicate"}
// Actions: agreement, sanctions, lift_sanctions, war, peace, alliance,
// break_alliance. agreement takes duration_hours; sanctions takes
// duration_hours and penalty; lift_sanctions takes id instead of factions.
func (s *Server) handleDiplomacy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Action        string  `json:"action"`
		FactionA      string  `json:"faction_a"`
		FactionB      string  `json:"faction_b"`
		DurationHours float64 `json:"duration_hours"`
		Penalty       float64 `json:"penalty"`
		ID            string  `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "agreement":
		a := s.Factions.FormTradeAgreement(req.FactionA, req.FactionB, req.DurationHours)
		if a == nil {
			http.Error(w, "invalid faction pair", http.StatusBadRequest)
			return
		}
		writeJSON(w, a)
	case "sanctions":
		sn := s.Factions.ImposeSanctions(req.FactionA, req.FactionB, req.DurationHours, req.Penalty)
		if sn == nil {
			http.Error(w, "invalid faction pair", http.StatusBadRequest)
			return
		}
		writeJSON(w, sn)
	case "lift_sanctions":
		if !s.Factions.LiftSanctions(req.ID) {
			http.Error(w, "unknown sanction id", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]string{"status": "lifted"})
	case "war":
		s.Factions.DeclareWar(req.FactionA, req.FactionB)
		writeJSON(w, map[string]string{"status": "war declared"})
	case "peace":
		s.Factions.MakePeace(req.FactionA, req.FactionB)
		writeJSON(w, map[string]string{"status": "peace"})
	case "alliance":
		s.Factions.FormAlliance(req.FactionA, req.FactionB)
		writeJSON(w, map[string]string{"status": "allied"})
	case "break_alliance":
		s.Factions.BreakAlliance(req.FactionA, req.FactionB)
		writeJSON(w, map[string]string{"status": "alliance broken"})
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

// handleSnapshot archives current faction state on demand.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
		return
	}
	if err := s.DB.Snapshot(s.Factions.Snapshots(), s.Clock.Now()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "saved"})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
