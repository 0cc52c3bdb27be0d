package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/webauth/internal/pkg/clock"
	"github.com/shandysiswandi/webauth/internal/pkg/config"
	"github.com/shandysiswandi/webauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/webauth/internal/pkg/instrument"
	"github.com/shandysiswandi/webauth/internal/pkg/otp"
	"github.com/shandysiswandi/webauth/internal/pkg/router"
	"github.com/shandysiswandi/webauth/internal/pkg/uid"
	"github.com/shandysiswandi/webauth/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config config.Config
	ins    instrument.Instrumentation

	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID
	totp      otp.OTP

	dbConn      *pgxpool.Pool
	cacheConn   *redis.Client
	cacheDriver string

	router     *router.Router
	httpServer *http.Server

	// closers run in reverse registration order on shutdown.
	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// New builds the application. If a step fails, resources opened by the
// earlier steps are released before the error is returned.
func New() (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: ctx, cancel: cancel}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"config", a.initConfig},
		{"instrument", a.initInstrument},
		{"libraries", a.initLibraries},
		{"database", a.initDatabase},
		{"cache", a.initCache},
		{"http server", a.initHTTPServer},
		{"modules", a.initModules},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			cancel()
			a.close(context.Background())
			return nil, fmt.Errorf("init %s: %w", step.name, err)
		}
	}

	return a, nil
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

func (a *App) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", c.name, "error", err)
		}
	}
	a.closers = nil
}
