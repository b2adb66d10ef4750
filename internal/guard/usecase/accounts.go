package usecase

import (
	"context"
	"log/slog"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
)

type AccountListOutput struct {
	Accounts []entity.Account
}

// AccountList returns every registered account.
func (s *Usecase) AccountList(ctx context.Context) (*AccountListOutput, error) {
	ctx, span := s.startSpan(ctx, "AccountList")
	defer span.End()

	accounts, err := s.registry.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list accounts", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &AccountListOutput{Accounts: accounts}, nil
}

type AccountImportInput struct {
	MaFile []byte `validate:"required"`
}

type AccountImportOutput struct {
	Account entity.Account
}

// AccountImport registers a raw maFile. A session embedded in the file seeds
// the session store so the account is immediately usable.
func (s *Usecase) AccountImport(ctx context.Context, in AccountImportInput) (*AccountImportOutput, error) {
	ctx, span := s.startSpan(ctx, "AccountImport")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	account, session, err := s.registry.Import(ctx, in.MaFile)
	if err != nil {
		slog.WarnContext(ctx, "failed to import account file", "error", err)
		return nil, err
	}

	if session != nil {
		if err := s.sessions.Set(ctx, account.SteamID, *session); err != nil {
			slog.ErrorContext(ctx, "failed to seed session from account file", "steam_id", account.SteamID, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	slog.InfoContext(ctx, "account imported", "steam_id", account.SteamID, "sealed", account.Sealed)

	return &AccountImportOutput{Account: *account}, nil
}
