package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
	now    func() time.Time
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		// Создаем директорию для БД, если её нет
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Одно соединение: SQLite не любит конкурирующих писателей
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{db: db, logger: logger, now: time.Now}, nil
}

// SetNow overrides the clock; used by tests.
func (db *DB) SetNow(now func() time.Time) {
	db.now = now
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Таблица ресторанов
		`CREATE TABLE IF NOT EXISTS restaurants (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            timezone TEXT NOT NULL DEFAULT 'UTC',
            created_at DATETIME NOT NULL
        )`,
		// Столики — читаемая проекция планировки зала
		`CREATE TABLE IF NOT EXISTS tables (
            id TEXT PRIMARY KEY,
            restaurant_id TEXT NOT NULL,
            label TEXT NOT NULL,
            seats INTEGER NOT NULL,
            FOREIGN KEY (restaurant_id) REFERENCES restaurants(id)
        )`,
		// Таблица бронирований
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            restaurant_id TEXT NOT NULL,
            table_id TEXT NOT NULL,
            table_label TEXT NOT NULL,
            guest_name TEXT NOT NULL,
            guest_phone TEXT NOT NULL,
            guest_count INTEGER NOT NULL,
            seat_capacity INTEGER NOT NULL,
            date_time DATETIME NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            decline_reason TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            version INTEGER NOT NULL DEFAULT 1
        )`,
		// Администраторы ресторанов и владелец платформы
		`CREATE TABLE IF NOT EXISTS admins (
            id TEXT PRIMARY KEY,
            restaurant_id TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            is_owner BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL,
            UNIQUE(restaurant_id, email)
        )`,

		`CREATE INDEX IF NOT EXISTS idx_tables_restaurant_id ON tables(restaurant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_restaurant_id ON bookings(restaurant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_table_id ON bookings(table_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_admins_email ON admins(email)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}
