package guard

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"steamvault/internal/guard/inbound"
	"steamvault/internal/guard/outbound/mafile"
	"steamvault/internal/guard/outbound/steam"
	"steamvault/internal/guard/outbound/store"
	"steamvault/internal/guard/usecase"
	"steamvault/internal/pkg/clock"
	"steamvault/internal/pkg/config"
	"steamvault/internal/pkg/goerror"
	"steamvault/internal/pkg/guardcode"
	"steamvault/internal/pkg/idempotency"
	"steamvault/internal/pkg/instrument"
	"steamvault/internal/pkg/router"
	"steamvault/internal/pkg/secretbox"
	"steamvault/internal/pkg/validator"
)

type Dependency struct {
	CacheConn  *redis.Client              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	client := steam.NewClient(steam.Config{
		CommunityBaseURL: dep.Config.GetString("modules.guard.community_base_url"),
		StoreBaseURL:     dep.Config.GetString("modules.guard.store_base_url"),
		Timeout:          dep.Config.GetSecond("modules.guard.http_timeout_seconds"),
	}, dep.Instrument)

	timeSync := steam.NewTimeSync(client, dep.Clock)
	codes := guardcode.NewSteamGuard()

	var sealer secretbox.Sealer
	if key := dep.Config.GetBinary("modules.guard.mafile_key"); len(key) > 0 {
		aead, err := secretbox.NewAESGCM(key)
		if err != nil {
			return err
		}
		sealer = aead
	}

	registry := mafile.NewRegistry(dep.Config.GetString("modules.guard.data_dir"), sealer, codes)
	if err := registry.Load(ctx); err != nil {
		return err
	}

	var sessions store.SessionStore
	switch dep.Config.GetString("modules.guard.session_store") {
	case "redis":
		sessions = store.NewRedis(dep.CacheConn, dep.Config.GetString("modules.guard.session_prefix"), dep.Clock)
	default:
		sessions = store.NewMemory(dep.Clock)
	}

	// Sessions embedded in already-imported account files become usable
	// immediately after a restart.
	seeded, err := registry.Sessions(ctx)
	if err != nil {
		return err
	}
	for steamID, sess := range seeded {
		if _, err := sessions.Get(ctx, steamID); !errors.Is(err, goerror.ErrNotFound) {
			continue
		}
		if err := sessions.Set(ctx, steamID, sess); err != nil {
			return err
		}
	}

	locker := idempotency.NewRedisLocker(
		dep.CacheConn,
		dep.Config.GetString("modules.guard.login_lock_prefix"),
		dep.Config.GetSecond("modules.guard.login_lock_ttl_seconds"),
	)

	uc := usecase.New(usecase.Dependency{
		Registry:   registry,
		Sessions:   sessions,
		Steam:      client,
		TimeSync:   timeSync,
		Codes:      codes,
		Locker:     locker,
		Validator:  dep.Validator,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
