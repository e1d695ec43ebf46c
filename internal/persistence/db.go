// Package persistence provides SQLite-based archival of economy state:
// price history, concluded events, and faction snapshots.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/events"
	"github.com/voidworks/tradewinds/internal/faction"
	"github.com/voidworks/tradewinds/internal/market"
	"github.com/voidworks/tradewinds/internal/sector"
)

// DB wraps a SQLite connection for economy state archival.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS price_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		station TEXT NOT NULL,
		commodity TEXT NOT NULL,
		hour REAL NOT NULL,
		price REAL NOT NULL,
		demand REAL NOT NULL,
		supply REAL NOT NULL,
		trade_volume REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS economic_events (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		scope TEXT NOT NULL,
		severity REAL NOT NULL,
		start_hour REAL NOT NULL,
		ended_hour REAL NOT NULL,
		triggering_player TEXT,
		detail_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS factions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		policy TEXT NOT NULL,
		treasury REAL NOT NULL,
		econ_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sim_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_key ON price_history(station, commodity);
	CREATE INDEX IF NOT EXISTS idx_history_hour ON price_history(hour);
	CREATE INDEX IF NOT EXISTS idx_events_end ON economic_events(ended_hour);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// PriceRow is one archived price sample.
type PriceRow struct {
	Station     string  `db:"station"`
	Commodity   string  `db:"commodity"`
	Hour        float64 `db:"hour"`
	Price       float64 `db:"price"`
	Demand      float64 `db:"demand"`
	Supply      float64 `db:"supply"`
	TradeVolume float64 `db:"trade_volume"`
}

// ArchivePriceHistory appends a station/commodity price series.
func (db *DB) ArchivePriceHistory(station sector.StationID, commodity economy.CommodityID, entries []market.PriceHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO price_history
		(station, commodity, hour, price, demand, supply, trade_volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(string(station), string(commodity),
			e.Hour, e.Price, e.Demand, e.Supply, e.TradeVolume); err != nil {
			return fmt.Errorf("insert price row %s/%s: %w", station, commodity, err)
		}
	}

	return tx.Commit()
}

// PriceSeries returns the archived samples for a station/commodity pair,
// oldest first.
func (db *DB) PriceSeries(station sector.StationID, commodity economy.CommodityID, limit int) ([]PriceRow, error) {
	var rows []PriceRow
	err := db.conn.Select(&rows,
		`SELECT station, commodity, hour, price, demand, supply, trade_volume
		 FROM price_history WHERE station = ? AND commodity = ?
		 ORDER BY hour ASC LIMIT ?`,
		string(station), string(commodity), limit,
	)
	return rows, err
}

// ArchivedEvent is one concluded economic event as stored.
type ArchivedEvent struct {
	ID               string  `db:"id"`
	Name             string  `db:"name"`
	Category         string  `db:"category"`
	Scope            string  `db:"scope"`
	Severity         float64 `db:"severity"`
	StartHour        float64 `db:"start_hour"`
	EndedHour        float64 `db:"ended_hour"`
	TriggeringPlayer string  `db:"triggering_player"`
	DetailJSON       string  `db:"detail_json"`
}

// ArchiveEvent stores one concluded economic event. The full event record
// rides along as JSON for later inspection.
func (db *DB) ArchiveEvent(h events.HistoryEntry) error {
	detail, _ := json.Marshal(h.Event)
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO economic_events
		(id, name, category, scope, severity, start_hour, ended_hour, triggering_player, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.Event.ID, h.Event.Name,
		events.CategoryName(h.Event.Category), events.ScopeName(h.Event.Scope),
		h.Event.Severity, h.Event.StartHour, h.EndedHour,
		h.Event.TriggeringPlayer, string(detail),
	)
	return err
}

// RecentEvents returns the most recently concluded archived events.
func (db *DB) RecentEvents(limit int) ([]ArchivedEvent, error) {
	var out []ArchivedEvent
	err := db.conn.Select(&out,
		`SELECT id, name, category, scope, severity, start_hour, ended_hour,
		        COALESCE(triggering_player, '') AS triggering_player, detail_json
		 FROM economic_events ORDER BY ended_hour DESC LIMIT ?`,
		limit,
	)
	return out, err
}

// SaveFactions snapshots every faction (full replace).
func (db *DB) SaveFactions(factions []faction.EconomicData) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM factions"); err != nil {
		return err
	}

	for _, f := range factions {
		econ, _ := json.Marshal(f)
		_, err := tx.Exec(
			"INSERT INTO factions (id, name, policy, treasury, econ_json) VALUES (?, ?, ?, ?, ?)",
			f.ID, f.Name, faction.PolicyName(f.Policy), f.Treasury, string(econ),
		)
		if err != nil {
			return fmt.Errorf("insert faction %s: %w", f.ID, err)
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in simulation metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO sim_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM sim_meta WHERE key = ?", key)
	return value, err
}

// Snapshot performs a full archival pass: every faction plus the current
// game hour.
func (db *DB) Snapshot(factions []faction.EconomicData, hour float64) error {
	slog.Info("archiving economy snapshot", "factions", len(factions), "hour", hour)

	if err := db.SaveFactions(factions); err != nil {
		return fmt.Errorf("save factions: %w", err)
	}
	if err := db.SaveMeta("last_hour", fmt.Sprintf("%f", hour)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	return nil
}
