package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamvault/internal/guard/entity"
	"steamvault/internal/guard/outbound/store"
	"steamvault/internal/pkg/clock"
	"steamvault/internal/pkg/goerror"
	"steamvault/internal/pkg/guardcode"
	"steamvault/internal/pkg/instrument"
	"steamvault/internal/pkg/validator"
)

const (
	testSteamID  = "76561198000000001"
	sharedSecret = "c2hhcmVkLXNlY3JldC0wMDAw"
	identSecret  = "aWRlbnRpdHktc2VjcmV0LTAw"
)

type fakeRegistry struct {
	accounts map[string]entity.Account
}

func (f *fakeRegistry) List(context.Context) ([]entity.Account, error) {
	out := make([]entity.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRegistry) Get(_ context.Context, steamID string) (*entity.Account, error) {
	a, ok := f.accounts[steamID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &a, nil
}

func (f *fakeRegistry) Import(context.Context, []byte) (*entity.Account, *entity.Session, error) {
	account := entity.Account{SteamID: testSteamID, AccountName: "alice"}
	session := entity.Session{SessionID: "imported-sid", AccessToken: "imported-token"}
	f.accounts[testSteamID] = account
	return &account, &session, nil
}

type fakeGateway struct {
	fetchCalls   int
	actCalls     int
	lastSess     entity.Session
	lastSigned   entity.SignedRequest
	lastOp       entity.ConfirmationOp
	confirmError error
	devices      []entity.Device
	devicesError error
	removeError  error
	statusName   string
	session      *entity.Session
	loginError   error
}

func (f *fakeGateway) FetchConfirmations(_ context.Context, sess entity.Session, sr entity.SignedRequest) ([]entity.Confirmation, error) {
	f.fetchCalls++
	f.lastSess = sess
	f.lastSigned = sr
	if f.confirmError != nil {
		return nil, f.confirmError
	}
	return []entity.Confirmation{{ID: "13000000001", Key: "9990001"}}, nil
}

func (f *fakeGateway) ActConfirmations(_ context.Context, sess entity.Session, sr entity.SignedRequest, op entity.ConfirmationOp, _ []entity.ConfirmationRef) error {
	f.actCalls++
	f.lastSess = sess
	f.lastSigned = sr
	f.lastOp = op
	return f.confirmError
}

func (f *fakeGateway) FetchDevices(context.Context, entity.Session, time.Time) ([]entity.Device, error) {
	if f.devicesError != nil {
		return nil, f.devicesError
	}
	return f.devices, nil
}

func (f *fakeGateway) FetchSecurityStatus(context.Context, entity.Session) (*entity.SecurityStatus, error) {
	if f.devicesError != nil {
		return nil, f.devicesError
	}
	return &entity.SecurityStatus{AccountName: f.statusName, TwoFactorStatus: 2}, nil
}

func (f *fakeGateway) RemoveAllDevices(context.Context, entity.Session) error {
	return f.removeError
}

func (f *fakeGateway) SubmitLogin(context.Context, string, string, string) (*entity.Session, error) {
	if f.loginError != nil {
		return nil, f.loginError
	}
	return f.session, nil
}

type fakeTimeSync struct {
	at       time.Time
	alignErr error
}

func (f *fakeTimeSync) Align(context.Context) error { return f.alignErr }
func (f *fakeTimeSync) Now() time.Time              { return f.at }

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (f *fakeLocker) Acquire(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLocker) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, key)
	return nil
}

type fixture struct {
	uc       *Usecase
	registry *fakeRegistry
	sessions *store.Memory
	gateway  *fakeGateway
	timeSync *fakeTimeSync
	locker   *fakeLocker
	clock    *clock.Fixed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	registry := &fakeRegistry{accounts: map[string]entity.Account{
		testSteamID: {
			SteamID:        testSteamID,
			AccountName:    "alice",
			SharedSecret:   sharedSecret,
			IdentitySecret: identSecret,
			DeviceID:       "android:deadbeef-0000-0000-0000-000000000000",
		},
	}}

	clk := clock.NewFixed(time.Unix(1700000000, 0))
	sessions := store.NewMemory(clk)
	gateway := &fakeGateway{}
	timeSync := &fakeTimeSync{at: time.Unix(1700000030, 0)}
	locker := &fakeLocker{}

	uc := New(Dependency{
		Registry:   registry,
		Sessions:   sessions,
		Steam:      gateway,
		TimeSync:   timeSync,
		Codes:      guardcode.NewSteamGuard(),
		Locker:     locker,
		Validator:  validator.NewV10(),
		Clock:      clk,
		Instrument: instrument.NewNoop(),
	})

	return &fixture{
		uc:       uc,
		registry: registry,
		sessions: sessions,
		gateway:  gateway,
		timeSync: timeSync,
		locker:   locker,
		clock:    clk,
	}
}

func (f *fixture) storeSession(t *testing.T) {
	t.Helper()
	require.NoError(t, f.sessions.Set(context.Background(), testSteamID, entity.Session{
		SessionID:   "sid",
		AccessToken: "token",
	}))
}

func TestGetCode(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)

		out, err := f.uc.GetCode(context.Background(), GetCodeInput{SteamID: testSteamID})
		require.NoError(t, err)

		// Matches a direct derivation at provider-synced time.
		want, wantValid, err := guardcode.NewSteamGuard().Code(sharedSecret, f.timeSync.at)
		require.NoError(t, err)
		assert.Equal(t, want, out.Code)
		assert.Equal(t, wantValid, out.ValidFor)
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.GetCode(context.Background(), GetCodeInput{SteamID: "76561198999999999"})
		assert.True(t, goerror.HasCode(err, goerror.CodeNotFound))
	})

	t.Run("NoSharedSecret", func(t *testing.T) {
		f := newFixture(t)
		f.registry.accounts[testSteamID] = entity.Account{SteamID: testSteamID, IdentitySecret: identSecret}

		_, err := f.uc.GetCode(context.Background(), GetCodeInput{SteamID: testSteamID})
		assert.True(t, goerror.HasCode(err, goerror.CodeMissingSecret))
	})

	t.Run("MalformedSteamID", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.GetCode(context.Background(), GetCodeInput{SteamID: "123"})
		assert.True(t, goerror.HasCode(err, goerror.CodeInvalidInput))
	})

	t.Run("AlignFailureIsNotFatal", func(t *testing.T) {
		f := newFixture(t)
		f.timeSync.alignErr = errors.New("provider unreachable")

		_, err := f.uc.GetCode(context.Background(), GetCodeInput{SteamID: testSteamID})
		assert.NoError(t, err)
	})
}

func TestListConfirmations(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)

		out, err := f.uc.ListConfirmations(context.Background(), ListConfirmationsInput{SteamID: testSteamID})
		require.NoError(t, err)
		assert.Len(t, out.Confirmations, 1)

		// Signature material is complete and tag-bound to the listing.
		assert.Equal(t, "conf", f.gateway.lastSigned.Tag)
		assert.Equal(t, testSteamID, f.gateway.lastSigned.SteamID)
		assert.NotEmpty(t, f.gateway.lastSigned.Key)
		assert.Equal(t, f.timeSync.at.Unix(), f.gateway.lastSigned.Time)

		// The stored session rides along for the cookie header.
		assert.Equal(t, "sid", f.gateway.lastSess.SessionID)
		assert.Equal(t, "token", f.gateway.lastSess.AccessToken)

		// Outcome settles the tracked state and touches the session.
		assert.Equal(t, entity.SessionStateValid, f.uc.sessionState(testSteamID))
	})

	t.Run("NoSessionSkipsNetwork", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.ListConfirmations(context.Background(), ListConfirmationsInput{SteamID: testSteamID})
		assert.True(t, goerror.HasCode(err, goerror.CodeLoginRequired))
		assert.Zero(t, f.gateway.fetchCalls)
		assert.Equal(t, entity.SessionStateInvalid, f.uc.sessionState(testSteamID))
	})

	t.Run("NoIdentitySecret", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)
		f.registry.accounts[testSteamID] = entity.Account{SteamID: testSteamID, SharedSecret: sharedSecret}

		_, err := f.uc.ListConfirmations(context.Background(), ListConfirmationsInput{SteamID: testSteamID})
		assert.True(t, goerror.HasCode(err, goerror.CodeMissingSecret))
		assert.Zero(t, f.gateway.fetchCalls)
	})

	t.Run("LoginRequiredMarksInvalid", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)
		f.gateway.confirmError = goerror.NewRemote(nil, "login required", goerror.CodeLoginRequired)

		_, err := f.uc.ListConfirmations(context.Background(), ListConfirmationsInput{SteamID: testSteamID})
		assert.True(t, goerror.HasCode(err, goerror.CodeLoginRequired))
		assert.Equal(t, entity.SessionStateInvalid, f.uc.sessionState(testSteamID))

		// The record stays; only explicit logout clears it.
		_, getErr := f.sessions.Get(context.Background(), testSteamID)
		assert.NoError(t, getErr)
	})

	t.Run("NetworkFailureDoesNotTouch", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)
		before, err := f.sessions.Get(context.Background(), testSteamID)
		require.NoError(t, err)

		f.clock.At = f.clock.At.Add(time.Hour)
		f.gateway.confirmError = goerror.NewRemote(errors.New("dial tcp"), "network failure", goerror.CodeNetworkFailure)

		_, err = f.uc.ListConfirmations(context.Background(), ListConfirmationsInput{SteamID: testSteamID})
		assert.True(t, goerror.HasCode(err, goerror.CodeNetworkFailure))

		after, err := f.sessions.Get(context.Background(), testSteamID)
		require.NoError(t, err)
		assert.True(t, after.LastUsed.Equal(before.LastUsed), "LastUsed unchanged when the call never reached the provider")
	})
}

func TestActConfirmations(t *testing.T) {
	t.Run("SignsWithOpTag", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)

		out, err := f.uc.ActConfirmations(context.Background(), ActConfirmationsInput{
			SteamID: testSteamID,
			Op:      entity.ConfirmationOpAllow,
			Confirmations: []entity.ConfirmationRef{
				{ID: "13000000001", Key: "9990001"},
				{ID: "13000000002", Key: "9990002"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, out.Acted)

		assert.Equal(t, entity.ConfirmationOpAllow, f.gateway.lastOp)
		assert.Equal(t, "allow", f.gateway.lastSigned.Tag)
		assert.Equal(t, "sid", f.gateway.lastSess.SessionID)

		// The act signature differs from a listing signature at the same time.
		listKey, err := guardcode.NewSteamGuard().ConfirmationKey(identSecret, f.timeSync.at.Unix(), "conf")
		require.NoError(t, err)
		assert.NotEqual(t, listKey, f.gateway.lastSigned.Key)
	})

	t.Run("StaleKeyRejected", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)
		f.uc.setSessionState(testSteamID, entity.SessionStateValid)
		f.gateway.confirmError = goerror.NewRemote(nil, "confirmation signature rejected by provider", goerror.CodeSignatureRejected)

		_, err := f.uc.ActConfirmations(context.Background(), ActConfirmationsInput{
			SteamID:       testSteamID,
			Op:            entity.ConfirmationOpAllow,
			Confirmations: []entity.ConfirmationRef{{ID: "13000000001", Key: "stale-key"}},
		})
		assert.True(t, goerror.HasCode(err, goerror.CodeSignatureRejected))

		// The call reached the provider authenticated; a rejected signature
		// says nothing about the session, so the tracked state stands.
		assert.Equal(t, 1, f.gateway.actCalls)
		assert.Equal(t, "sid", f.gateway.lastSess.SessionID)
		assert.Equal(t, entity.SessionStateValid, f.uc.sessionState(testSteamID))
	})

	t.Run("UnknownOp", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)

		_, err := f.uc.ActConfirmations(context.Background(), ActConfirmationsInput{
			SteamID:       testSteamID,
			Op:            entity.ConfirmationOp("deny"),
			Confirmations: []entity.ConfirmationRef{{ID: "1", Key: "2"}},
		})
		assert.True(t, goerror.HasCode(err, goerror.CodeInvalidInput))
		assert.Zero(t, f.gateway.actCalls)
	})

	t.Run("EmptySelection", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)

		_, err := f.uc.ActConfirmations(context.Background(), ActConfirmationsInput{
			SteamID: testSteamID,
			Op:      entity.ConfirmationOpCancel,
		})
		assert.True(t, goerror.HasCode(err, goerror.CodeInvalidInput))
		assert.Zero(t, f.gateway.actCalls)
	})
}

func TestLogin(t *testing.T) {
	t.Run("EstablishesSession", func(t *testing.T) {
		f := newFixture(t)
		f.gateway.session = &entity.Session{SessionID: "new-sid", AccessToken: "new-token"}

		err := f.uc.Login(context.Background(), LoginInput{SteamID: testSteamID, Password: "hunter2"})
		require.NoError(t, err)

		sess, err := f.sessions.Get(context.Background(), testSteamID)
		require.NoError(t, err)
		assert.Equal(t, "new-sid", sess.SessionID)
		assert.Equal(t, entity.SessionStateValid, f.uc.sessionState(testSteamID))

		// The lock is released, a second login may proceed.
		err = f.uc.Login(context.Background(), LoginInput{SteamID: testSteamID, Password: "hunter2"})
		assert.NoError(t, err)
	})

	t.Run("ConcurrentLoginConflicts", func(t *testing.T) {
		f := newFixture(t)

		acquired, err := f.locker.Acquire(context.Background(), "login:"+testSteamID)
		require.NoError(t, err)
		require.True(t, acquired)

		err = f.uc.Login(context.Background(), LoginInput{SteamID: testSteamID, Password: "hunter2"})
		assert.True(t, goerror.HasCode(err, goerror.CodeConflict))
	})

	t.Run("RemoteRejection", func(t *testing.T) {
		f := newFixture(t)
		f.gateway.loginError = goerror.NewRemote(nil, "credentials rejected by provider", goerror.CodeLoginRequired)

		err := f.uc.Login(context.Background(), LoginInput{SteamID: testSteamID, Password: "wrong"})
		assert.True(t, goerror.HasCode(err, goerror.CodeLoginRequired))

		_, getErr := f.sessions.Get(context.Background(), testSteamID)
		assert.ErrorIs(t, getErr, goerror.ErrNotFound)
	})

	t.Run("MissingPassword", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.Login(context.Background(), LoginInput{SteamID: testSteamID})
		assert.True(t, goerror.HasCode(err, goerror.CodeInvalidInput))
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.storeSession(t)
	f.uc.setSessionState(testSteamID, entity.SessionStateValid)

	require.NoError(t, f.uc.Logout(context.Background(), LogoutInput{SteamID: testSteamID}))

	_, err := f.sessions.Get(context.Background(), testSteamID)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
	assert.Equal(t, entity.SessionStateUnknown, f.uc.sessionState(testSteamID))
}

func TestSessionStatus(t *testing.T) {
	t.Run("NoSession", func(t *testing.T) {
		f := newFixture(t)

		out, err := f.uc.SessionStatus(context.Background(), SessionStatusInput{SteamID: testSteamID})
		require.NoError(t, err)
		assert.False(t, out.Valid)
		assert.Equal(t, "no session stored", out.Reason)
		assert.Equal(t, entity.SessionStateUnknown, out.State)
	})

	t.Run("StoredSession", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)
		f.uc.setSessionState(testSteamID, entity.SessionStateValid)

		out, err := f.uc.SessionStatus(context.Background(), SessionStatusInput{SteamID: testSteamID})
		require.NoError(t, err)
		assert.True(t, out.Valid)
		assert.Equal(t, entity.SessionStateValid, out.State)
		assert.False(t, out.CreatedAt.IsZero())
	})
}

func TestListDevices(t *testing.T) {
	t.Run("FiltersAndSorts", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)

		now := f.clock.Now()
		f.gateway.devices = []entity.Device{
			{TokenID: "stale", LastSeen: now.Add(-48 * time.Hour)},
			{TokenID: "live", LoggedIn: true},
		}

		out, err := f.uc.ListDevices(context.Background(), ListDevicesInput{SteamID: testSteamID})
		require.NoError(t, err)
		require.Len(t, out.Devices, 2)
		assert.Equal(t, "live", out.Devices[0].TokenID, "active device sorts first")

		active, err := f.uc.ListDevices(context.Background(), ListDevicesInput{
			SteamID: testSteamID,
			Filter:  entity.DeviceFilterActive,
		})
		require.NoError(t, err)
		require.Len(t, active.Devices, 1)
		assert.Equal(t, "live", active.Devices[0].TokenID)
	})

	t.Run("BadFilter", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)

		_, err := f.uc.ListDevices(context.Background(), ListDevicesInput{
			SteamID: testSteamID,
			Filter:  entity.DeviceFilter("stale"),
		})
		assert.True(t, goerror.HasCode(err, goerror.CodeInvalidInput))
	})
}

func TestRemoveDevice(t *testing.T) {
	f := newFixture(t)
	f.storeSession(t)

	err := f.uc.RemoveDevice(context.Background(), RemoveDeviceInput{
		SteamID:  testSteamID,
		DeviceID: "111",
	})
	assert.True(t, goerror.HasCode(err, goerror.CodeRevokeUnsupported))
}

func TestRemoveAllDevices(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)

		err := f.uc.RemoveAllDevices(context.Background(), RemoveAllDevicesInput{SteamID: testSteamID})
		assert.NoError(t, err)
		assert.Equal(t, entity.SessionStateValid, f.uc.sessionState(testSteamID))
	})

	t.Run("SessionInvalidatedByAction", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)
		f.gateway.removeError = goerror.NewRemote(nil, "login required", goerror.CodeLoginRequired)

		err := f.uc.RemoveAllDevices(context.Background(), RemoveAllDevicesInput{SteamID: testSteamID})
		assert.True(t, goerror.HasCode(err, goerror.CodeLoginRequired))
		assert.Equal(t, entity.SessionStateInvalid, f.uc.sessionState(testSteamID))
	})
}

func TestSecurityStatus(t *testing.T) {
	t.Run("ProviderName", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)
		f.gateway.statusName = "alice_on_page"

		out, err := f.uc.SecurityStatus(context.Background(), SecurityStatusInput{SteamID: testSteamID})
		require.NoError(t, err)
		assert.Equal(t, "alice_on_page", out.Status.AccountName)
		assert.Equal(t, 2, out.Status.TwoFactorStatus)
	})

	t.Run("FallsBackToRegisteredName", func(t *testing.T) {
		f := newFixture(t)
		f.storeSession(t)

		out, err := f.uc.SecurityStatus(context.Background(), SecurityStatusInput{SteamID: testSteamID})
		require.NoError(t, err)
		assert.Equal(t, "alice", out.Status.AccountName)
	})
}

func TestAccountImport(t *testing.T) {
	f := newFixture(t)
	delete(f.registry.accounts, testSteamID)

	out, err := f.uc.AccountImport(context.Background(), AccountImportInput{MaFile: []byte(`{"any":"payload"}`)})
	require.NoError(t, err)
	assert.Equal(t, testSteamID, out.Account.SteamID)

	// The embedded session seeds the store.
	sess, err := f.sessions.Get(context.Background(), testSteamID)
	require.NoError(t, err)
	assert.Equal(t, "imported-sid", sess.SessionID)
}
