package usecase

import (
	"context"
	"log/slog"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
)

type SecurityStatusInput struct {
	SteamID string `validate:"required,steamid"`
}

type SecurityStatusOutput struct {
	Status entity.SecurityStatus
}

// SecurityStatus fetches the account security summary from the provider.
func (s *Usecase) SecurityStatus(ctx context.Context, in SecurityStatusInput) (*SecurityStatusOutput, error) {
	ctx, span := s.startSpan(ctx, "SecurityStatus")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	account, err := s.requireAccount(ctx, in.SteamID)
	if err != nil {
		return nil, err
	}

	sess, err := s.usableSession(ctx, in.SteamID)
	if err != nil {
		return nil, err
	}

	status, err := s.steam.FetchSecurityStatus(ctx, *sess)
	s.settleOutcome(ctx, in.SteamID, err)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch security status", "steam_id", in.SteamID, "error", err)
		return nil, err
	}

	if status.AccountName == "" {
		status.AccountName = account.AccountName
	}

	return &SecurityStatusOutput{Status: *status}, nil
}
