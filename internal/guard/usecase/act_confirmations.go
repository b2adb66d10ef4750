package usecase

import (
	"context"
	"log/slog"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
)

type ActConfirmationsInput struct {
	SteamID       string                   `validate:"required,steamid"`
	Op            entity.ConfirmationOp    `validate:"required"`
	Confirmations []entity.ConfirmationRef `validate:"required,dive"`
}

type ActConfirmationsOutput struct {
	Acted int
}

// ActConfirmations applies an allow or cancel to the selected confirmations.
// The signature is recomputed with tag equal to the op; reusing the listing
// signature (or a key from an earlier listing) gets rejected by the
// provider. After a successful act, the caller must list again before acting
// on anything else.
func (s *Usecase) ActConfirmations(ctx context.Context, in ActConfirmationsInput) (*ActConfirmationsOutput, error) {
	ctx, span := s.startSpan(ctx, "ActConfirmations")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if !in.Op.Valid() {
		return nil, goerror.NewInvalidInput(nil, "op", "must be allow or cancel")
	}

	if len(in.Confirmations) == 0 {
		return nil, goerror.NewInvalidInput(nil, "confirmations", "at least one confirmation must be selected")
	}

	account, err := s.requireAccount(ctx, in.SteamID)
	if err != nil {
		return nil, err
	}

	if !account.HasIdentitySecret() {
		slog.WarnContext(ctx, "account has no identity secret", "steam_id", in.SteamID)
		return nil, goerror.NewBusiness("account has no identity secret", goerror.CodeMissingSecret)
	}

	sess, err := s.usableSession(ctx, in.SteamID)
	if err != nil {
		return nil, err
	}

	s.alignClock(ctx)

	sr, err := s.signedRequest(ctx, account, string(in.Op))
	if err != nil {
		return nil, err
	}

	err = s.steam.ActConfirmations(ctx, *sess, *sr, in.Op, in.Confirmations)
	s.settleOutcome(ctx, in.SteamID, err)
	if err != nil {
		slog.WarnContext(ctx, "failed to act on confirmations", "steam_id", in.SteamID, "op", in.Op, "error", err)
		return nil, err
	}

	return &ActConfirmationsOutput{Acted: len(in.Confirmations)}, nil
}
