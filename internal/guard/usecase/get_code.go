package usecase

import (
	"context"
	"log/slog"

	"steamvault/internal/pkg/goerror"
)

type GetCodeInput struct {
	SteamID string `validate:"required,steamid"`
}

type GetCodeOutput struct {
	Code     string
	ValidFor int
}

// GetCode generates the current one-time authenticator code for the account,
// using provider-synced time so the code matches the remote clock.
func (s *Usecase) GetCode(ctx context.Context, in GetCodeInput) (*GetCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "GetCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	account, err := s.requireAccount(ctx, in.SteamID)
	if err != nil {
		return nil, err
	}

	if !account.HasSharedSecret() {
		slog.WarnContext(ctx, "account has no shared secret", "steam_id", in.SteamID)
		return nil, goerror.NewBusiness("account has no shared secret", goerror.CodeMissingSecret)
	}

	s.alignClock(ctx)

	code, validFor, err := s.codes.Code(account.SharedSecret, s.timeSync.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "steam_id", in.SteamID, "error", err)
		return nil, goerror.NewBusiness("shared secret is not decodable", goerror.CodeMissingSecret)
	}

	return &GetCodeOutput{Code: code, ValidFor: validFor}, nil
}
