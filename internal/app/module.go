package app

import (
	"log/slog"

	"github.com/shandysiswandi/webauth/internal/webauth"
)

func (a *App) initModules() error {
	if !a.config.GetBool("modules.webauth.enabled") {
		slog.Warn("module webauth is disabled, no authentication endpoint is served")
		return nil
	}

	return webauth.New(webauth.Dependency{
		Ctx:         a.ctx,
		DBConn:      a.dbConn,
		CacheConn:   a.cacheConn,
		CacheDriver: a.cacheDriver,
		Goroutine:   a.goroutine,
		Router:      a.router,
		Config:      a.config,
		Instrument:  a.ins,
		UUID:        a.uuid,
		Clock:       a.clock,
		Totp:        a.totp,
		Validator:   a.validator,
	})
}
