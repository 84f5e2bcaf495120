package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the restaurant backend.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS floors (
            id TEXT PRIMARY KEY,
            floor_number INTEGER NOT NULL,
            name TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS tables (
            id TEXT PRIMARY KEY,
            floor_id TEXT NOT NULL,
            table_number TEXT NOT NULL,
            size TEXT NOT NULL,
            seats INTEGER NOT NULL DEFAULT 2,
            status TEXT NOT NULL DEFAULT 'AVAILABLE',
            occupied_since DATETIME,
            available_in_minutes INTEGER,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY (floor_id) REFERENCES floors(id)
        )`,

		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            table_id TEXT NOT NULL,
            customer_name TEXT NOT NULL,
            mobile TEXT NOT NULL,
            email TEXT,
            people_count INTEGER NOT NULL DEFAULT 0,
            booking_time DATETIME,
            booking_date TEXT,
            booking_time_slot TEXT,
            duration_minutes INTEGER NOT NULL DEFAULT 60,
            booking_type TEXT NOT NULL DEFAULT 'WALK_IN',
            status TEXT NOT NULL DEFAULT 'BOOKED',
            priority INTEGER NOT NULL DEFAULT 0,
            confirmation_status TEXT NOT NULL DEFAULT 'PENDING',
            confirmed_at DATETIME,
            delay_minutes INTEGER NOT NULL DEFAULT 0,
            notifications_sent TEXT NOT NULL DEFAULT '[]',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY (table_id) REFERENCES tables(id)
        )`,

		`CREATE TABLE IF NOT EXISTS waiting_list (
            id TEXT PRIMARY KEY,
            customer_name TEXT NOT NULL,
            mobile TEXT NOT NULL,
            email TEXT,
            people_count INTEGER NOT NULL,
            preferred_table_size TEXT NOT NULL,
            booking_type TEXT NOT NULL DEFAULT 'WALK_IN',
            booking_date TEXT,
            booking_time_slot TEXT,
            priority INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'WAITING',
            estimated_wait_minutes INTEGER,
            notified_at DATETIME,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_tables_floor ON tables(floor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tables_status ON tables(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_table_status ON bookings(table_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_date_slot ON bookings(booking_date, booking_time_slot)`,
		`CREATE INDEX IF NOT EXISTS idx_waiting_status ON waiting_list(status)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
