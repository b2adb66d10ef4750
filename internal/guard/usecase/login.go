package usecase

import (
	"context"
	"log/slog"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
)

type LoginInput struct {
	SteamID  string `validate:"required,steamid"`
	Password string `validate:"required"`
}

// Login establishes a fresh session: it generates a current one-time code,
// drives the remote login flow with it, and replaces the stored session
// wholesale. The password is used for this single call and never persisted.
// At most one login per account runs at a time.
func (s *Usecase) Login(ctx context.Context, in LoginInput) error {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	acquired, err := s.locker.Acquire(ctx, "login:"+in.SteamID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to acquire login lock", "steam_id", in.SteamID, "error", err)
		return goerror.NewServer(err)
	}
	if !acquired {
		return goerror.NewBusiness("another login is already in progress", goerror.CodeConflict)
	}
	defer func() {
		if err := s.locker.Release(ctx, "login:"+in.SteamID); err != nil {
			slog.WarnContext(ctx, "failed to release login lock", "steam_id", in.SteamID, "error", err)
		}
	}()

	account, err := s.requireAccount(ctx, in.SteamID)
	if err != nil {
		return err
	}

	if !account.HasSharedSecret() {
		slog.WarnContext(ctx, "account has no shared secret", "steam_id", in.SteamID)
		return goerror.NewBusiness("account has no shared secret", goerror.CodeMissingSecret)
	}

	s.alignClock(ctx)

	code, _, err := s.codes.Code(account.SharedSecret, s.timeSync.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate login code", "steam_id", in.SteamID, "error", err)
		return goerror.NewBusiness("shared secret is not decodable", goerror.CodeMissingSecret)
	}

	sess, err := s.steam.SubmitLogin(ctx, account.AccountName, in.Password, code)
	if err != nil {
		slog.WarnContext(ctx, "login flow failed", "steam_id", in.SteamID, "error", err)
		return err
	}

	if err := s.sessions.Set(ctx, in.SteamID, *sess); err != nil {
		slog.ErrorContext(ctx, "failed to store session", "steam_id", in.SteamID, "error", err)
		return goerror.NewServer(err)
	}

	s.setSessionState(in.SteamID, entity.SessionStateValid)
	slog.InfoContext(ctx, "session established", "steam_id", in.SteamID)

	return nil
}
