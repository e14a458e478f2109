// Package sqlite keeps an audit journal of emitted signals. It is a
// consumer-side log: the engine never reads it back, and price series
// are never persisted.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"signalbotv1/internal/model"
)

// JournalConfig configures the SQLite signal journal.
type JournalConfig struct {
	DBPath string // path to SQLite database file, e.g. "data/signals.db"
}

// Journal is a single-goroutine SQLite writer for emitted signals.
type Journal struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (j *Journal) DB() *sql.DB { return j.db }

// New creates a Journal, initializing the database with WAL mode and schema.
func New(cfg JournalConfig) (*Journal, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single-writer discipline
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened signal journal at %s", cfg.DBPath)
	return &Journal{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol     TEXT    NOT NULL,
			type       TEXT    NOT NULL,
			price      REAL    NOT NULL,
			confidence INTEGER NOT NULL,
			reason     TEXT    NOT NULL,
			ts         INTEGER NOT NULL
		);
	`)
	return err
}

// Run reads signals from signalCh and inserts them one by one; signal
// cadence is far too low to need batching. Blocks until ctx is cancelled
// or the channel is closed.
func (j *Journal) Run(ctx context.Context, symbol string, signalCh <-chan model.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signalCh:
			if !ok {
				return
			}
			if err := j.insert(symbol, sig); err != nil {
				log.Printf("[sqlite] insert error: %v", err)
			}
		}
	}
}

func (j *Journal) insert(symbol string, sig model.Signal) error {
	_, err := j.db.Exec(
		`INSERT INTO signals (symbol, type, price, confidence, reason, ts) VALUES (?, ?, ?, ?, ?, ?)`,
		symbol, string(sig.Type), sig.Price, sig.Confidence, sig.Reason, sig.Timestamp.Unix(),
	)
	return err
}

// Close flushes and closes the database.
func (j *Journal) Close() error { return j.db.Close() }
