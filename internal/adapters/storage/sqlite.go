package storage

// sqlite.go: journal de ciclos, sólo escritura desde el loop.
//
// Estrategia:
//   - `cycles`: una fila por ciclo (id uuid, número, duración, mercados ok).
//   - `market_results`: una fila por mercado y ciclo con snapshot, plan y el
//     estado de cada pata. Nada de esto se lee para decidir ciclos posteriores.
//   - Tiempos en unix millis (INTEGER) para ordenar y comparar sin parsear.
//   - Prune automático al arrancar: ciclos > 30d (market_results en cascada).

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA foreign_keys = ON;

-- Resumen por ciclo
CREATE TABLE IF NOT EXISTS cycles (
    id          TEXT PRIMARY KEY,
    number      INTEGER NOT NULL,
    started_at  INTEGER NOT NULL,
    finished_at INTEGER NOT NULL,
    markets     INTEGER NOT NULL DEFAULT 0,
    passed      INTEGER NOT NULL DEFAULT 0,
    error       TEXT    NOT NULL DEFAULT ''
);

-- Una fila por mercado dentro de un ciclo
CREATE TABLE IF NOT EXISTS market_results (
    cycle_id        TEXT    NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
    market_id       TEXT    NOT NULL,
    reached         TEXT    NOT NULL,
    failed_at       TEXT    NOT NULL DEFAULT '',
    reference_price INTEGER NOT NULL DEFAULT 0,
    default_price   INTEGER NOT NULL DEFAULT 0,
    height          INTEGER,
    bid             INTEGER,
    ask             INTEGER,
    crossing        INTEGER,
    good_til_block  INTEGER,
    bid_status      TEXT    NOT NULL,
    ask_status      TEXT    NOT NULL,
    crossing_status TEXT    NOT NULL,
    error           TEXT    NOT NULL DEFAULT '',
    duration_ms     INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (cycle_id, market_id)
);

CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at DESC);
`

const retentionCycles = 30 * 24 * time.Hour

// CycleRecord es una fila de `cycles`.
type CycleRecord struct {
	ID         string
	Number     int
	StartedAt  time.Time
	FinishedAt time.Time
	Markets    int
	Passed     int
	Error      string
}

// MarketRecord es una fila de `market_results`. Los campos que dependen de
// tener altura o plan quedan en 0 si no se alcanzó ese paso.
type MarketRecord struct {
	MarketID       string
	Reached        string
	FailedAt       string
	ReferencePrice domain.Price
	DefaultPrice   bool
	Height         uint64
	Bid            domain.Price
	Ask            domain.Price
	Crossing       domain.Price
	GoodTilBlock   uint64
	BidStatus      domain.OutcomeStatus
	AskStatus      domain.OutcomeStatus
	CrossingStatus domain.OutcomeStatus
	Error          string
	Duration       time.Duration
}

// SQLiteJournal implementa ports.Journal usando SQLite (pure Go, sin CGo).
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia ciclos antiguos.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{db: db}
	j.pruneOld(context.Background())
	return j, nil
}

// RecordCycle persiste el ciclo y sus mercados en una sola transacción.
func (j *SQLiteJournal) RecordCycle(ctx context.Context, cycle domain.CycleResult) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.RecordCycle: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cycles (id, number, started_at, finished_at, markets, passed, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cycle.ID, cycle.Number, cycle.StartedAt.UnixMilli(), cycle.FinishedAt.UnixMilli(),
		len(cycle.Markets), cycle.Passed(), errString(cycle.Err),
	); err != nil {
		return fmt.Errorf("storage.RecordCycle: insert cycle %s: %w", cycle.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO market_results
			(cycle_id, market_id, reached, failed_at, reference_price, default_price,
			 height, bid, ask, crossing, good_til_block,
			 bid_status, ask_status, crossing_status, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.RecordCycle: prepare: %w", err)
	}
	defer stmt.Close()

	for _, m := range cycle.Markets {
		var height, bid, ask, crossing, gtb any
		if m.Snapshot.HasHeight {
			height = int64(m.Snapshot.Height)
		}
		if m.Plan != nil {
			bid, ask, crossing = int64(m.Plan.Bid), int64(m.Plan.Ask), int64(m.Plan.Crossing)
			gtb = int64(m.Plan.GoodTilBlock)
		}
		failedAt := ""
		if m.Failed {
			failedAt = m.FailedAt.String()
		}

		if _, err := stmt.ExecContext(ctx,
			cycle.ID,
			m.MarketID,
			m.Reached.String(),
			failedAt,
			int64(m.Snapshot.ReferencePrice),
			boolInt(m.Snapshot.DefaultPrice),
			height,
			bid,
			ask,
			crossing,
			gtb,
			string(m.Outcome(domain.LegBid).Status),
			string(m.Outcome(domain.LegAsk).Status),
			string(m.Outcome(domain.LegCrossing).Status),
			errString(m.Err),
			m.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("storage.RecordCycle: insert market %s: %w", m.MarketID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.RecordCycle: commit: %w", err)
	}
	return nil
}

// RecentCycles devuelve los últimos limit ciclos, el más reciente primero.
func (j *SQLiteJournal) RecentCycles(ctx context.Context, limit int) ([]CycleRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, number, started_at, finished_at, markets, passed, error
		FROM cycles
		ORDER BY started_at DESC, number DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentCycles: query: %w", err)
	}
	defer rows.Close()

	var out []CycleRecord
	for rows.Next() {
		var r CycleRecord
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Number, &started, &finished, &r.Markets, &r.Passed, &r.Error); err != nil {
			return nil, fmt.Errorf("storage.RecentCycles: scan row: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.FinishedAt = time.UnixMilli(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarketResults devuelve las filas de mercado de un ciclo, ordenadas por mercado.
func (j *SQLiteJournal) MarketResults(ctx context.Context, cycleID string) ([]MarketRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT market_id, reached, failed_at, reference_price, default_price,
		       COALESCE(height, 0), COALESCE(bid, 0), COALESCE(ask, 0), COALESCE(crossing, 0),
		       COALESCE(good_til_block, 0), bid_status, ask_status, crossing_status,
		       error, duration_ms
		FROM market_results
		WHERE cycle_id = ?
		ORDER BY market_id
	`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("storage.MarketResults: query: %w", err)
	}
	defer rows.Close()

	var out []MarketRecord
	for rows.Next() {
		var r MarketRecord
		var ref, bid, ask, crossing, height, gtb, durMs int64
		var def int
		var bidSt, askSt, crossSt string
		if err := rows.Scan(
			&r.MarketID, &r.Reached, &r.FailedAt, &ref, &def,
			&height, &bid, &ask, &crossing, &gtb,
			&bidSt, &askSt, &crossSt, &r.Error, &durMs,
		); err != nil {
			return nil, fmt.Errorf("storage.MarketResults: scan row: %w", err)
		}
		r.ReferencePrice = domain.Price(ref)
		r.DefaultPrice = def == 1
		r.Height = uint64(height)
		r.Bid, r.Ask, r.Crossing = domain.Price(bid), domain.Price(ask), domain.Price(crossing)
		r.GoodTilBlock = uint64(gtb)
		r.BidStatus = domain.OutcomeStatus(bidSt)
		r.AskStatus = domain.OutcomeStatus(askSt)
		r.CrossingStatus = domain.OutcomeStatus(crossSt)
		r.Duration = time.Duration(durMs) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// --- helpers internos ---

// pruneOld elimina ciclos antiguos para mantener la DB ligera.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	cutoff := time.Now().Add(-retentionCycles).UnixMilli()
	j.db.ExecContext(ctx, `DELETE FROM cycles WHERE started_at < ?`, cutoff)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
