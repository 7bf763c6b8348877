package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"stolik/internal/models"

	"github.com/google/uuid"
)

func (db *DB) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	admin.CreatedAt = db.now().UTC()

	query := `INSERT INTO admins (id, restaurant_id, email, password_hash, is_owner, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query,
		admin.ID, admin.RestaurantID, admin.Email, admin.PasswordHash, admin.IsOwner, admin.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAdminExists
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// GetAdminByEmail looks up an admin of a specific restaurant; an empty
// restaurantID matches the platform owner.
func (db *DB) GetAdminByEmail(ctx context.Context, email, restaurantID string) (*models.Admin, error) {
	query := `SELECT id, restaurant_id, email, password_hash, is_owner, created_at
              FROM admins WHERE email = ? AND restaurant_id = ?`
	var a models.Admin
	err := db.db.QueryRowContext(ctx, query, email, restaurantID).Scan(
		&a.ID, &a.RestaurantID, &a.Email, &a.PasswordHash, &a.IsOwner, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

func (db *DB) GetAdminByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `SELECT id, restaurant_id, email, password_hash, is_owner, created_at
              FROM admins WHERE id = ?`
	var a models.Admin
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.RestaurantID, &a.Email, &a.PasswordHash, &a.IsOwner, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

func (db *DB) ListAdmins(ctx context.Context, restaurantID string) ([]*models.Admin, error) {
	query := `SELECT id, restaurant_id, email, password_hash, is_owner, created_at
              FROM admins WHERE restaurant_id = ? ORDER BY created_at`
	rows, err := db.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []*models.Admin
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.ID, &a.RestaurantID, &a.Email, &a.PasswordHash, &a.IsOwner, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return admins, nil
}
