package market

import (
	"github.com/redis/go-redis/v9"

	"steamvault/internal/market/inbound"
	"steamvault/internal/market/outbound/cache"
	"steamvault/internal/market/outbound/steam"
	"steamvault/internal/market/usecase"
	"steamvault/internal/pkg/clock"
	"steamvault/internal/pkg/config"
	"steamvault/internal/pkg/instrument"
	"steamvault/internal/pkg/router"
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

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	fetcher := steam.NewClient(steam.Config{
		CommunityBaseURL: dep.Config.GetString("modules.market.community_base_url"),
		Timeout:          dep.Config.GetSecond("modules.market.http_timeout_seconds"),
		MaxRetries:       uint64(dep.Config.GetInt64("modules.market.max_retries")),
	}, dep.Clock, dep.Instrument)

	priceCache := cache.NewRedis(
		dep.CacheConn,
		dep.Config.GetString("modules.market.cache_prefix"),
		dep.Config.GetMinute("modules.market.cache_ttl_minutes"),
	)

	uc := usecase.New(usecase.Dependency{
		Fetcher:    fetcher,
		Cache:      priceCache,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
