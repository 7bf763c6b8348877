package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stolik/internal/models"

	"github.com/google/uuid"
)

func (db *DB) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timezone == "" {
		r.Timezone = "UTC"
	}
	r.CreatedAt = db.now().UTC()

	query := `INSERT INTO restaurants (id, name, timezone, created_at) VALUES (?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query, r.ID, r.Name, r.Timezone, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create restaurant: %w", err)
	}
	return nil
}

func (db *DB) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	query := `SELECT id, name, timezone, created_at FROM restaurants WHERE id = ?`
	var r models.Restaurant
	err := db.db.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.Name, &r.Timezone, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	return &r, nil
}

func (db *DB) ListRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	query := `SELECT id, name, timezone, created_at FROM restaurants ORDER BY name`
	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []*models.Restaurant
	for rows.Next() {
		var r models.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.Timezone, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return restaurants, nil
}
