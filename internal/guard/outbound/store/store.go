package store

import (
	"context"
	"errors"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
)

// SessionStore is the persistence contract for per-account session records.
//
// Get returns goerror.ErrNotFound when no record exists. Set is an atomic
// full replace that stamps CreatedAt on the first write and LastUsed on
// every write. Touch only bumps LastUsed and is a no-op for a missing
// record. Clear removes the record; it is driven by explicit logout only,
// never automatically by an authentication failure.
type SessionStore interface {
	Get(ctx context.Context, accountID string) (*entity.Session, error)
	Set(ctx context.Context, accountID string, sess entity.Session) error
	Touch(ctx context.Context, accountID string) error
	Clear(ctx context.Context, accountID string) error
}

// Validity evaluates whether the stored session can back authenticated
// calls: it must exist and carry both the session id and the access token.
func Validity(ctx context.Context, s SessionStore, accountID string) (entity.SessionValidity, error) {
	sess, err := s.Get(ctx, accountID)
	if errors.Is(err, goerror.ErrNotFound) {
		return entity.SessionValidity{Reason: "no session stored"}, nil
	}
	if err != nil {
		return entity.SessionValidity{}, err
	}

	if sess.SessionID == "" {
		return entity.SessionValidity{Session: sess, Reason: "session id is empty"}, nil
	}
	if sess.AccessToken == "" {
		return entity.SessionValidity{Session: sess, Reason: "access token is empty"}, nil
	}

	return entity.SessionValidity{Valid: true, Session: sess}, nil
}
