package usecase

import (
	"context"
	"log/slog"
	"time"

	"steamvault/internal/guard/entity"
	"steamvault/internal/guard/outbound/store"
	"steamvault/internal/pkg/goerror"
)

type SessionStatusInput struct {
	SteamID string `validate:"required,steamid"`
}

type SessionStatusOutput struct {
	State     entity.SessionState
	Valid     bool
	Reason    string
	CreatedAt time.Time
	LastUsed  time.Time
}

// SessionStatus reports the stored session's validity plus the tracked state
// the last call outcomes settled on.
func (s *Usecase) SessionStatus(ctx context.Context, in SessionStatusInput) (*SessionStatusOutput, error) {
	ctx, span := s.startSpan(ctx, "SessionStatus")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.requireAccount(ctx, in.SteamID); err != nil {
		return nil, err
	}

	validity, err := store.Validity(ctx, s.sessions, in.SteamID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read session store", "steam_id", in.SteamID, "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &SessionStatusOutput{
		State:  s.sessionState(in.SteamID),
		Valid:  validity.Valid,
		Reason: validity.Reason,
	}
	if validity.Session != nil {
		out.CreatedAt = validity.Session.CreatedAt
		out.LastUsed = validity.Session.LastUsed
	}

	return out, nil
}
