package webauth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/webauth/internal/pkg/cache"
	"github.com/shandysiswandi/webauth/internal/pkg/clock"
	"github.com/shandysiswandi/webauth/internal/pkg/config"
	"github.com/shandysiswandi/webauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/webauth/internal/pkg/instrument"
	"github.com/shandysiswandi/webauth/internal/pkg/otp"
	"github.com/shandysiswandi/webauth/internal/pkg/pgxnotify"
	"github.com/shandysiswandi/webauth/internal/pkg/router"
	"github.com/shandysiswandi/webauth/internal/pkg/uid"
	"github.com/shandysiswandi/webauth/internal/pkg/validator"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
	"github.com/shandysiswandi/webauth/internal/webauth/inbound"
	"github.com/shandysiswandi/webauth/internal/webauth/outbound/db"
	"github.com/shandysiswandi/webauth/internal/webauth/usecase"
)

// Cache instance names. With the redis driver they prefix every key.
const (
	CacheNameIP      = "ip-cache"
	CacheNameCounter = "totp-counter-cache"
	CacheNamePhrase  = "totp-phrase-cache"
)

// DefaultInvalidationChannel is the NOTIFY channel used when none is configured.
const DefaultInvalidationChannel = "webauth_cache_invalidate"

// ErrAuthModeUnset is returned when webauth.enabled is absent. Turning
// authentication off must be a deliberate setting, never a missing key.
var ErrAuthModeUnset = errors.New("webauth: webauth.enabled must be set explicitly")

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required_if=CacheDriver redis"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Totp       otp.OTP                    `validate:"required"`
	Validator  validator.Validator        `validate:"required"`

	CacheDriver string `validate:"required,oneof=redis memory"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	settings, err := readSettings(dep.Config)
	if err != nil {
		return err
	}

	opts := func(name, ttlKey string) cache.Options {
		return cache.Options{
			Name:       name,
			TTL:        dep.Config.GetSecond(ttlKey),
			Redis:      dep.CacheConn,
			MemorySize: dep.Config.GetInt("cache.memory.size"),
		}
	}

	ipCache, err := cache.NewFromDriver[entity.UserID, string](dep.CacheDriver, opts(CacheNameIP, "cache.ttl_seconds.ip"))
	if err != nil {
		return err
	}

	counterCache, err := cache.NewFromDriver[entity.UserID, int64](dep.CacheDriver, opts(CacheNameCounter, "cache.ttl_seconds.counter"))
	if err != nil {
		return err
	}

	phraseCache, err := cache.NewFromDriver[entity.UserID, string](dep.CacheDriver, opts(CacheNamePhrase, "cache.ttl_seconds.phrase"))
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		Store:        db.NewDB(dep.DBConn, dep.Instrument),
		IPCache:      ipCache,
		CounterCache: counterCache,
		PhraseCache:  phraseCache,
		Totp:         dep.Totp,
		Clock:        dep.Clock,
		Validator:    dep.Validator,
		Instrument:   dep.Instrument,
		Epoch:        time.Unix(dep.Config.GetInt64("webauth.totp.epoch_unix"), 0),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, settings)

	if !dep.Config.GetBool("webauth.invalidation.enabled") {
		return nil
	}

	channel := dep.Config.GetString("webauth.invalidation.channel")
	if channel == "" {
		channel = DefaultInvalidationChannel
	}

	handler := inbound.NewNotifyHandler(uc, dep.UUID, dep.Instrument)
	listener, err := pgxnotify.New(dep.Ctx, dep.DBConn, pgxnotify.Options{
		Channel: channel,
		Verbose: dep.Config.GetBool("webauth.invalidation.verbose"),
	}, handler.Handle)
	if err != nil {
		return err
	}

	dep.Router.HealthCheck("cache_invalidation", listener.Running)
	dep.Goroutine.Go(dep.Ctx, "webauth-cache-invalidation", listener.Run)

	return nil
}

// readSettings reads the authentication flags once and logs the effective
// mode.
func readSettings(cfg config.Config) (inbound.Settings, error) {
	if !cfg.IsSet("webauth.enabled") {
		return inbound.Settings{}, ErrAuthModeUnset
	}

	settings := inbound.Settings{
		AuthEnabled: cfg.GetBool("webauth.enabled"),
		Step:        cfg.GetSecond("webauth.totp.step_seconds"),
	}
	if settings.Step <= 0 {
		settings.Step = otp.DefaultStep
	}

	if !settings.AuthEnabled {
		slog.Warn("totp authentication is disabled by webauth.enabled, every attempt will be accepted")
	} else {
		slog.Info("totp authentication is enabled", "step", settings.Step.String())
	}

	return settings, nil
}
