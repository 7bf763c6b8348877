package service

import (
	"context"
	"errors"
	"strings"

	"stolik/internal/database"
	"stolik/internal/domain"
	"stolik/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTooManyLoginAttempts = errors.New("too many login attempts")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
)

// AuthService verifies staff credentials and hands out opaque session tokens.
// Guest booking creation is deliberately not gated here.
type AuthService struct {
	repo     domain.Repository
	sessions domain.SessionRepository
	logger   *zerolog.Logger
}

func NewAuthService(repo domain.Repository, sessions domain.SessionRepository, logger *zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, sessions: sessions, logger: logger}
}

// Login authenticates an admin of the given restaurant, or the platform owner
// when restaurantID is empty.
func (s *AuthService) Login(ctx context.Context, email, password, restaurantID string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	allowed, err := s.sessions.CheckRateLimit(ctx, "login:"+email, models.LoginRateLimitAttempts, models.LoginRateLimitWindow)
	if err != nil {
		s.logger.Error().Err(err).Msg("login rate limit check failed")
	} else if !allowed {
		return nil, ErrTooManyLoginAttempts
	}

	admin, err := s.repo.GetAdminByEmail(ctx, email, restaurantID)
	if errors.Is(err, database.ErrAdminNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	session := &models.Session{
		Token:        uuid.NewString(),
		AdminID:      admin.ID,
		RestaurantID: admin.RestaurantID,
		IsOwner:      admin.IsOwner,
	}
	if err := s.sessions.SetSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().Str("admin_id", admin.ID).Str("restaurant_id", admin.RestaurantID).Msg("staff login")
	return session, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.ClearSession(ctx, token)
}

// IsAuthorizedStaff resolves a session token to an admin allowed to manage
// the restaurant. An empty restaurantID only checks authentication.
func (s *AuthService) IsAuthorizedStaff(ctx context.Context, restaurantID, token string) (*models.Admin, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrUnauthorized
	}

	admin, err := s.repo.GetAdminByID(ctx, session.AdminID)
	if errors.Is(err, database.ErrAdminNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if restaurantID != "" && !admin.CanManage(restaurantID) {
		return nil, ErrForbidden
	}
	return admin, nil
}

// CreateAdmin registers a restaurant admin. Owner only.
func (s *AuthService) CreateAdmin(ctx context.Context, actor *models.Admin, restaurantID, email, password string) (*models.Admin, error) {
	if actor == nil || !actor.IsOwner {
		return nil, ErrForbidden
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, models.NewValidationError("email", "is required")
	}
	if len(password) < 6 {
		return nil, models.NewValidationError("password", "must be at least 6 characters")
	}
	if _, err := s.repo.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		RestaurantID: restaurantID,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// ListAdmins returns a restaurant's admin accounts. Owner only.
func (s *AuthService) ListAdmins(ctx context.Context, actor *models.Admin, restaurantID string) ([]*models.Admin, error) {
	if actor == nil || !actor.IsOwner {
		return nil, ErrForbidden
	}
	return s.repo.ListAdmins(ctx, restaurantID)
}

// HashPassword wraps bcrypt with the default cost; also used by the seeder.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
