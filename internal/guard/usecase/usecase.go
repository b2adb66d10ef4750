package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"steamvault/internal/guard/entity"
	"steamvault/internal/guard/outbound/store"
	"steamvault/internal/pkg/clock"
	"steamvault/internal/pkg/goerror"
	"steamvault/internal/pkg/idempotency"
	"steamvault/internal/pkg/instrument"
	"steamvault/internal/pkg/validator"
)

type accountRegistry interface {
	List(ctx context.Context) ([]entity.Account, error)
	Get(ctx context.Context, steamID string) (*entity.Account, error)
	Import(ctx context.Context, raw []byte) (*entity.Account, *entity.Session, error)
}

type sessionStore interface {
	Get(ctx context.Context, accountID string) (*entity.Session, error)
	Set(ctx context.Context, accountID string, sess entity.Session) error
	Touch(ctx context.Context, accountID string) error
	Clear(ctx context.Context, accountID string) error
}

type steamGateway interface {
	FetchConfirmations(ctx context.Context, sess entity.Session, sr entity.SignedRequest) ([]entity.Confirmation, error)
	ActConfirmations(ctx context.Context, sess entity.Session, sr entity.SignedRequest, op entity.ConfirmationOp, refs []entity.ConfirmationRef) error
	FetchDevices(ctx context.Context, sess entity.Session, now time.Time) ([]entity.Device, error)
	FetchSecurityStatus(ctx context.Context, sess entity.Session) (*entity.SecurityStatus, error)
	RemoveAllDevices(ctx context.Context, sess entity.Session) error
	SubmitLogin(ctx context.Context, accountName, password, code string) (*entity.Session, error)
}

type timeSync interface {
	Align(ctx context.Context) error
	Now() time.Time
}

type codeGenerator interface {
	Code(sharedSecret string, at time.Time) (string, int, error)
	ConfirmationKey(identitySecret string, unixTime int64, tag string) (string, error)
	DeviceID(steamID string) string
}

type Usecase struct {
	registry  accountRegistry
	sessions  sessionStore
	steam     steamGateway
	timeSync  timeSync
	codes     codeGenerator
	locker    idempotency.Locker
	validator validator.Validator
	clock     clock.Clocker
	ins       instrument.Instrumentation

	stateMu sync.RWMutex
	states  map[string]entity.SessionState
}

type Dependency struct {
	Registry   accountRegistry
	Sessions   sessionStore
	Steam      steamGateway
	TimeSync   timeSync
	Codes      codeGenerator
	Locker     idempotency.Locker
	Validator  validator.Validator
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		registry:  dep.Registry,
		sessions:  dep.Sessions,
		steam:     dep.Steam,
		timeSync:  dep.TimeSync,
		codes:     dep.Codes,
		locker:    dep.Locker,
		validator: dep.Validator,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		states:    make(map[string]entity.SessionState),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("guard.usecase").Start(ctx, name)
}

func (s *Usecase) requireAccount(ctx context.Context, steamID string) (*entity.Account, error) {
	account, err := s.registry.Get(ctx, steamID)
	if err != nil {
		slog.WarnContext(ctx, "account is not registered", "steam_id", steamID)
		return nil, goerror.NewBusiness("account is not registered", goerror.CodeNotFound)
	}

	return account, nil
}

// usableSession returns the stored session when it can back authenticated
// calls, failing login-required without any network traffic otherwise.
func (s *Usecase) usableSession(ctx context.Context, steamID string) (*entity.Session, error) {
	validity, err := store.Validity(ctx, s.sessions, steamID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read session store", "steam_id", steamID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !validity.Valid {
		s.setSessionState(steamID, entity.SessionStateInvalid)
		slog.WarnContext(ctx, "session cannot back authenticated calls", "steam_id", steamID, "reason", validity.Reason)
		return nil, goerror.NewBusiness("login required: "+validity.Reason, goerror.CodeLoginRequired)
	}

	return validity.Session, nil
}

// alignClock is best effort; an unsynced clock produces a signature the
// provider rejects, which surfaces as its own classification.
func (s *Usecase) alignClock(ctx context.Context) {
	if err := s.timeSync.Align(ctx); err != nil {
		slog.WarnContext(ctx, "provider clock alignment failed", "error", err)
	}
}

// settleOutcome applies the post-call bookkeeping shared by every operation
// that attempts the remote service: the session is touched whenever the call
// actually reached the provider (success or a recognized application
// failure, not a pure network failure), and the tracked session state
// transitions on the outcome.
func (s *Usecase) settleOutcome(ctx context.Context, steamID string, callErr error) {
	if callErr != nil && goerror.HasCode(callErr, goerror.CodeNetworkFailure) {
		return
	}

	if err := s.sessions.Touch(ctx, steamID); err != nil {
		slog.WarnContext(ctx, "failed to touch session", "steam_id", steamID, "error", err)
	}

	switch {
	case callErr == nil:
		s.setSessionState(steamID, entity.SessionStateValid)
	case goerror.HasCode(callErr, goerror.CodeLoginRequired):
		s.setSessionState(steamID, entity.SessionStateInvalid)
	}
}

func (s *Usecase) setSessionState(steamID string, state entity.SessionState) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.states[steamID] = state
}

func (s *Usecase) sessionState(steamID string) entity.SessionState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.states[steamID]
}
