package usecase

import (
	"context"
	"log/slog"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
)

type LogoutInput struct {
	SteamID string `validate:"required,steamid"`
}

// Logout drops the stored session. This is the only path that clears a
// session record; an authentication failure marks the tracked state invalid
// but leaves the record in place.
func (s *Usecase) Logout(ctx context.Context, in LogoutInput) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if _, err := s.requireAccount(ctx, in.SteamID); err != nil {
		return err
	}

	if err := s.sessions.Clear(ctx, in.SteamID); err != nil {
		slog.ErrorContext(ctx, "failed to clear session", "steam_id", in.SteamID, "error", err)
		return goerror.NewServer(err)
	}

	s.setSessionState(in.SteamID, entity.SessionStateUnknown)
	slog.InfoContext(ctx, "session cleared", "steam_id", in.SteamID)

	return nil
}
