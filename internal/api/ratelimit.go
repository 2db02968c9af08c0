package api

import (
	"log/slog"

	domainerrors "github.com/readupapp/readup-server/internal/errors"
)

// allowSessionWrite applies the per-user throttle on session recording.
// Reader clients heartbeat every minute or so; anything much faster is a runaway loop.
func (s *Server) allowSessionWrite(userID string) error {
	if s.sessionLimiter == nil || s.sessionLimiter.Allow(userID) {
		return nil
	}
	s.logger.Warn("session rate limit exceeded", slog.String("user_id", userID))
	return domainerrors.RateLimited("too many reading updates, please slow down")
}
