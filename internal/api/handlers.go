package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stolik/internal/domain"
	"stolik/internal/models"
)

type loginRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	RestaurantID string `json:"restaurant_id"`
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.auth.Login(r.Context(), req.Email, req.Password, req.RestaurantID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":         session.Token,
		"restaurant_id": session.RestaurantID,
		"is_owner":      session.IsOwner,
	})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.auth.Logout(r.Context(), s.sessionToken(r)); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type createRestaurantRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

func (s *HTTPServer) handleRestaurants(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		restaurants, err := s.layout.ListRestaurants(r.Context())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"restaurants": restaurants})

	case http.MethodPost:
		actor, err := s.auth.IsAuthorizedStaff(r.Context(), "", s.sessionToken(r))
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		var req createRestaurantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		restaurant, err := s.layout.CreateRestaurant(r.Context(), actor, req.Name, req.Timezone)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, restaurant)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRestaurantSubtree routes /api/v1/restaurants/{id}[/resource[/...]].
func (s *HTTPServer) handleRestaurantSubtree(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/restaurants/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	restaurantID := parts[0]
	switch {
	case len(parts) == 1:
		s.handleRestaurantByID(w, r, restaurantID)
	case len(parts) == 2 && parts[1] == "tables":
		s.handleTables(w, r, restaurantID)
	case len(parts) == 2 && parts[1] == "bookings":
		s.handleBookings(w, r, restaurantID)
	case len(parts) == 2 && parts[1] == "availability":
		s.handleAvailability(w, r, restaurantID)
	case len(parts) == 2 && parts[1] == "admins":
		s.handleAdmins(w, r, restaurantID)
	case len(parts) == 3 && parts[1] == "bookings" && parts[2] == "export":
		s.handleExport(w, r, restaurantID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleRestaurantByID(w http.ResponseWriter, r *http.Request, restaurantID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	restaurant, err := s.layout.GetRestaurant(r.Context(), restaurantID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

type replaceTablesRequest struct {
	Tables []models.Table `json:"tables"`
}

func (s *HTTPServer) handleTables(w http.ResponseWriter, r *http.Request, restaurantID string) {
	switch r.Method {
	case http.MethodGet:
		tables, err := s.layout.ListTables(r.Context(), restaurantID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tables": tables})

	case http.MethodPut:
		actor, err := s.auth.IsAuthorizedStaff(r.Context(), restaurantID, s.sessionToken(r))
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		var req replaceTablesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := s.layout.ReplaceTables(r.Context(), actor, restaurantID, req.Tables); err != nil {
			s.writeServiceError(w, err)
			return
		}

		tables, err := s.layout.ListTables(r.Context(), restaurantID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tables": tables})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type createBookingRequest struct {
	TableID    string `json:"table_id"`
	GuestName  string `json:"guest_name"`
	GuestPhone string `json:"guest_phone"`
	GuestCount int    `json:"guest_count"`
	DateTime   string `json:"date_time"`
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request, restaurantID string) {
	switch r.Method {
	case http.MethodPost:
		// Guest endpoint: no session, rate limited per client IP instead.
		if !s.limiter.Allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		var req createBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		booking, err := s.bookings.CreateBooking(r.Context(), domain.CreateBookingRequest{
			RestaurantID: restaurantID,
			TableID:      req.TableID,
			GuestName:    req.GuestName,
			GuestPhone:   req.GuestPhone,
			GuestCount:   req.GuestCount,
			DateTime:     req.DateTime,
		})
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, booking)

	case http.MethodGet:
		if _, err := s.auth.IsAuthorizedStaff(r.Context(), restaurantID, s.sessionToken(r)); err != nil {
			s.writeServiceError(w, err)
			return
		}

		bookings, err := s.bookings.ListBookings(r.Context(), restaurantID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request, restaurantID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	at := time.Now().UTC()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'at' parameter, expected RFC 3339")
			return
		}
		at = parsed.UTC()
	}

	statuses, err := s.availability.ResolveAvailability(r.Context(), restaurantID, at)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"at":       at.Format(time.RFC3339),
		"statuses": statuses,
	})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, restaurantID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, err := s.auth.IsAuthorizedStaff(r.Context(), restaurantID, s.sessionToken(r)); err != nil {
		s.writeServiceError(w, err)
		return
	}

	restaurant, err := s.layout.GetRestaurant(r.Context(), restaurantID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	bookings, err := s.bookings.ListBookings(r.Context(), restaurantID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	data, err := s.exporter.Workbook(restaurant, bookings)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	// Also schedule a saved snapshot in the background.
	s.exports.Enqueue(restaurantID)

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	_, _ = w.Write(data)
}

type createAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) handleAdmins(w http.ResponseWriter, r *http.Request, restaurantID string) {
	actor, err := s.auth.IsAuthorizedStaff(r.Context(), "", s.sessionToken(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req createAdminRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		admin, err := s.auth.CreateAdmin(r.Context(), actor, restaurantID, req.Email, req.Password)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, admin)

	case http.MethodGet:
		admins, err := s.auth.ListAdmins(r.Context(), actor, restaurantID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"admins": admins})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type decisionRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// handleBookingSubtree routes /api/v1/bookings/{id}[/decision].
func (s *HTTPServer) handleBookingSubtree(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	bookingID := parts[0]
	switch {
	case len(parts) == 1:
		s.handleBookingByID(w, r, bookingID)
	case len(parts) == 2 && parts[1] == "decision":
		s.handleDecision(w, r, bookingID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request, bookingID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), bookingID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if _, err := s.auth.IsAuthorizedStaff(r.Context(), booking.RestaurantID, s.sessionToken(r)); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// handleDecision applies a staff decision to a booking. The booking is fetched
// first so authorization checks against the restaurant it belongs to.
func (s *HTTPServer) handleDecision(w http.ResponseWriter, r *http.Request, bookingID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), bookingID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	actor, err := s.auth.IsAuthorizedStaff(r.Context(), booking.RestaurantID, s.sessionToken(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var updated *models.Booking
	switch req.Action {
	case "confirm":
		updated, err = s.bookings.Confirm(r.Context(), bookingID, actor.Email)
	case "decline":
		updated, err = s.bookings.Decline(r.Context(), bookingID, actor.Email, req.Reason)
	case "occupy":
		updated, err = s.bookings.MarkOccupied(r.Context(), bookingID, actor.Email)
	case "complete":
		updated, err = s.bookings.Complete(r.Context(), bookingID, actor.Email)
	default:
		writeError(w, http.StatusBadRequest, "unknown action, expected confirm, decline, occupy or complete")
		return
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
