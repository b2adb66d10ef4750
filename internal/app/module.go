package app

import (
	"log/slog"
	"os"

	"steamvault/internal/guard"
	"steamvault/internal/market"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.guard.enabled") {
		if err := guard.New(a.ctx, guard.Dependency{
			CacheConn:  a.cacheConn,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module guard", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.market.enabled") {
		if err := market.New(market.Dependency{
			CacheConn:  a.cacheConn,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module market", "error", err)
			os.Exit(1)
		}
	}
}
