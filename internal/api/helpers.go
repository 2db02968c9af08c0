package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readupapp/readup-server/internal/domain"
	domainerrors "github.com/readupapp/readup-server/internal/errors"
)

// authenticateRequest validates the Authorization header and returns the user ID.
// Tokens of deleted accounts are rejected.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (string, error) {
	if authHeader == "" {
		return "", huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", huma.Error401Unauthorized("Invalid authorization header format")
	}

	return s.verifyToken(ctx, parts[1])
}

func (s *Server) verifyToken(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return "", huma.Error401Unauthorized("Invalid or expired token")
	}

	if _, err := s.services.Account.GetUser(ctx, claims.UserID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "", huma.Error401Unauthorized("User not found")
		}
		return "", err
	}

	return claims.UserID, nil
}

// authenticateStream resolves the user for an event stream. Browsers cannot set
// headers on EventSource, so the token may also arrive as ?token=.
func (s *Server) authenticateStream(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		return s.authenticateRequest(r.Context(), header)
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return s.verifyToken(r.Context(), token)
	}
	return "", huma.Error401Unauthorized("Missing authorization header")
}

// parseDateParam parses an optional date query parameter as YYYY-MM-DD or RFC3339.
func parseDateParam(name, raw string, loc *time.Location) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseFlexibleTime(raw, loc)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{name: "must be a date (YYYY-MM-DD) or RFC3339 timestamp"})
	}
	return &t, nil
}

// parseStatus validates a shelf status path parameter.
func parseStatus(raw string) (domain.ShelfStatus, error) {
	status := domain.ShelfStatus(raw)
	if !status.Valid() {
		return "", domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"status": "must be one of: want, reading, finished, dropped"})
	}
	return status, nil
}

// MessageResponse is a simple acknowledgement body.
type MessageResponse struct {
	Message string `json:"message" doc:"Result message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}
