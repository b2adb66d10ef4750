package usecase

import (
	"context"
	"log/slog"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
)

const listTag = "conf"

type ListConfirmationsInput struct {
	SteamID string `validate:"required,steamid"`
}

type ListConfirmationsOutput struct {
	Confirmations []entity.Confirmation
}

// ListConfirmations fetches the pending confirmations for the account. Each
// returned confirmation carries the single-use key the following act call
// needs; keys do not survive across listings.
func (s *Usecase) ListConfirmations(ctx context.Context, in ListConfirmationsInput) (*ListConfirmationsOutput, error) {
	ctx, span := s.startSpan(ctx, "ListConfirmations")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
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

	sr, err := s.signedRequest(ctx, account, listTag)
	if err != nil {
		return nil, err
	}

	confirmations, err := s.steam.FetchConfirmations(ctx, *sess, *sr)
	s.settleOutcome(ctx, in.SteamID, err)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch confirmations", "steam_id", in.SteamID, "error", err)
		return nil, err
	}

	return &ListConfirmationsOutput{Confirmations: confirmations}, nil
}

// signedRequest computes fresh signature material for one call. Signatures
// are tag-bound, so every operation recomputes its own.
func (s *Usecase) signedRequest(ctx context.Context, account *entity.Account, tag string) (*entity.SignedRequest, error) {
	now := s.timeSync.Now().Unix()

	key, err := s.codes.ConfirmationKey(account.IdentitySecret, now, tag)
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign request", "steam_id", account.SteamID, "tag", tag, "error", err)
		return nil, goerror.NewBusiness("identity secret is not decodable", goerror.CodeMissingSecret)
	}

	return &entity.SignedRequest{
		SteamID:  account.SteamID,
		DeviceID: account.DeviceID,
		Time:     now,
		Tag:      tag,
		Key:      key,
	}, nil
}
