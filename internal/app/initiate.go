package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	libOTP "github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/webauth/internal/pkg/cache"
	"github.com/shandysiswandi/webauth/internal/pkg/clock"
	"github.com/shandysiswandi/webauth/internal/pkg/config"
	"github.com/shandysiswandi/webauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/webauth/internal/pkg/instrument"
	"github.com/shandysiswandi/webauth/internal/pkg/otp"
	"github.com/shandysiswandi/webauth/internal/pkg/router"
	"github.com/shandysiswandi/webauth/internal/pkg/uid"
	"github.com/shandysiswandi/webauth/internal/pkg/validator"
)

const (
	defaultConfigPath      = "/config/config.yaml"
	localConfigPath        = "./config/config.yaml"
	defaultStartupAttempts = 5
	pingTimeout            = 5 * time.Second
)

func (a *App) initConfig() error {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
		if os.Getenv("LOCAL") == "true" {
			path = localConfigPath
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		return err
	}
	a.config = cfg
	a.onClose("config", func(context.Context) error { return cfg.Close() })

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // TZ is advisory
		os.Setenv("TZ", tz)
	}

	return nil
}

func (a *App) initInstrument() error {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		return err
	}
	a.ins = ins
	a.onClose("instrument", ins.Shutdown)

	return nil
}

func (a *App) initLibraries() error {
	v, err := validator.NewV10Validator()
	if err != nil {
		return fmt.Errorf("validator: %w", err)
	}

	a.validator = v
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	encoding, err := otp.ParseSecretEncoding(a.config.GetString("webauth.totp.secret_encoding"))
	if err != nil {
		return err
	}
	a.totp = otp.NewTOTP(
		a.config.GetUint("webauth.totp.skew"),
		libOTP.Digits(a.config.GetInt("webauth.totp.digits")),
		encoding,
	)

	return nil
}

// ping retries fn with a capped Fibonacci backoff so the service can boot
// alongside its dependencies.
func (a *App) ping(name string, fn func(ctx context.Context) error) error {
	attempts := a.config.GetUint("app.startup.max_attempts")
	if attempts == 0 {
		attempts = defaultStartupAttempts
	}

	b := retry.NewFibonacci(500 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(uint64(attempts-1), b)

	return retry.Do(a.ctx, b, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			slog.WarnContext(ctx, "dependency not ready, retrying", "name", name, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (a *App) initDatabase() error {
	pc, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}

	pc.MaxConns = int32(a.config.GetInt("database.pool.max_conns"))
	pc.MinConns = int32(a.config.GetInt("database.pool.min_conns"))
	pc.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	pc.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	pc.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, pc)
	if err != nil {
		return err
	}
	a.dbConn = pool
	a.onClose("database", func(context.Context) error {
		pool.Close()
		return nil
	})

	return a.ping("database", pool.Ping)
}

func (a *App) initCache() error {
	a.cacheDriver = strings.ToLower(strings.TrimSpace(a.config.GetString("cache.driver")))
	if a.cacheDriver == "" {
		a.cacheDriver = cache.DriverRedis
	}

	if a.cacheDriver != cache.DriverRedis {
		slog.Warn("using in-process cache, entries are not shared between replicas", "driver", a.cacheDriver)
		return nil
	}

	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	a.cacheConn = rdb
	a.onClose("redis", func(context.Context) error { return rdb.Close() })

	return a.ping("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
}

func (a *App) initHTTPServer() error {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   a.config.GetArray("app.server.cors"),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           handler,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}

	return nil
}
