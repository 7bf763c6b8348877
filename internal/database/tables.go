package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stolik/internal/models"

	"github.com/google/uuid"
)

// ReplaceTables swaps the restaurant's table set atomically. The layout editor
// owns the full floor plan; only id, label and seats reach this projection.
// Existing bookings keep the capacity captured at their creation.
func (db *DB) ReplaceTables(ctx context.Context, restaurantID string, tables []models.Table) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tables WHERE restaurant_id = ?`, restaurantID); err != nil {
		return fmt.Errorf("failed to clear tables: %w", err)
	}

	query := `INSERT INTO tables (id, restaurant_id, label, seats) VALUES (?, ?, ?, ?)`
	for _, t := range tables {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query, t.ID, restaurantID, t.Label, t.Seats); err != nil {
			return fmt.Errorf("failed to insert table %s: %w", t.Label, err)
		}
	}

	return tx.Commit()
}

func (db *DB) GetTable(ctx context.Context, restaurantID, tableID string) (*models.Table, error) {
	query := `SELECT id, restaurant_id, label, seats FROM tables WHERE restaurant_id = ? AND id = ?`
	var t models.Table
	err := db.db.QueryRowContext(ctx, query, restaurantID, tableID).Scan(&t.ID, &t.RestaurantID, &t.Label, &t.Seats)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return &t, nil
}

func (db *DB) ListTables(ctx context.Context, restaurantID string) ([]models.Table, error) {
	query := `SELECT id, restaurant_id, label, seats FROM tables WHERE restaurant_id = ? ORDER BY label`
	rows, err := db.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []models.Table
	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Label, &t.Seats); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}
