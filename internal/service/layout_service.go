package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stolik/internal/domain"
	"stolik/internal/models"

	"github.com/rs/zerolog"
)

// LayoutService manages the restaurant directory and the table read-model.
// The booking core only ever sees table id, label and seat count; the rest of
// the floor plan stays with the editor that produced it.
type LayoutService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewLayoutService(repo domain.Repository, logger *zerolog.Logger) *LayoutService {
	return &LayoutService{repo: repo, logger: logger}
}

func (s *LayoutService) CreateRestaurant(ctx context.Context, actor *models.Admin, name, timezone string) (*models.Restaurant, error) {
	if actor == nil || !actor.IsOwner {
		return nil, ErrForbidden
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("name", "is required")
	}

	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, models.NewValidationError("timezone", fmt.Sprintf("unknown timezone %q", timezone))
	}

	restaurant := &models.Restaurant{Name: name, Timezone: timezone}
	if err := s.repo.CreateRestaurant(ctx, restaurant); err != nil {
		return nil, err
	}

	s.logger.Info().Str("restaurant_id", restaurant.ID).Str("name", name).Msg("restaurant created")
	return restaurant, nil
}

func (s *LayoutService) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	return s.repo.GetRestaurant(ctx, id)
}

func (s *LayoutService) ListRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	return s.repo.ListRestaurants(ctx)
}

// ReplaceTables swaps a restaurant's table set for the one the layout editor
// saved. Capacity recorded on existing bookings is untouched.
func (s *LayoutService) ReplaceTables(ctx context.Context, actor *models.Admin, restaurantID string, tables []models.Table) error {
	if actor == nil || !actor.CanManage(restaurantID) {
		return ErrForbidden
	}

	if _, err := s.repo.GetRestaurant(ctx, restaurantID); err != nil {
		return err
	}

	seen := make(map[string]bool, len(tables))
	for i, t := range tables {
		if strings.TrimSpace(t.Label) == "" {
			return models.NewValidationError("tables", fmt.Sprintf("table %d has no label", i))
		}
		if t.Seats <= 0 {
			return models.NewValidationError("tables", fmt.Sprintf("table %q needs a positive seat count", t.Label))
		}
		if t.ID != "" && seen[t.ID] {
			return models.NewValidationError("tables", fmt.Sprintf("duplicate table id %q", t.ID))
		}
		seen[t.ID] = true
	}

	if err := s.repo.ReplaceTables(ctx, restaurantID, tables); err != nil {
		return err
	}

	s.logger.Info().Str("restaurant_id", restaurantID).Int("tables", len(tables)).Msg("table layout replaced")
	return nil
}

func (s *LayoutService) ListTables(ctx context.Context, restaurantID string) ([]models.Table, error) {
	return s.repo.ListTables(ctx, restaurantID)
}
