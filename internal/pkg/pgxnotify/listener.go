// Package pgxnotify listens on a PostgreSQL LISTEN/NOTIFY channel and hands
// every payload to a callback, reconnecting with backoff when the connection
// drops.
package pgxnotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"
)

var (
	// ErrPingPool indicates a pool ping failure.
	ErrPingPool = errors.New("pgxnotify: failed to ping pool")
	// ErrInvalidChannel indicates the channel is not a plain identifier.
	ErrInvalidChannel = errors.New("pgxnotify: invalid channel name")
	// ErrAcquireConn indicates a database connection acquisition failure.
	ErrAcquireConn = errors.New("pgxnotify: failed to acquire psql connection")
	// ErrListenChannel indicates a listen channel failure.
	ErrListenChannel = errors.New("pgxnotify: failed to listen channel")
	// ErrWaitNotification indicates a notification wait failure.
	ErrWaitNotification = errors.New("pgxnotify: failed to wait for notification")
)

// channel names are interpolated into LISTEN, so only identifiers are allowed.
var reChannel = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Handler receives the raw payload of one notification.
type Handler func(ctx context.Context, payload string)

// Options configures a Listener.
type Options struct {
	// Channel is the Postgres channel to LISTEN on.
	Channel string
	// Verbose logs every received payload.
	Verbose bool
	// MinBackoff is the first reconnect delay. Default 200ms.
	MinBackoff time.Duration
	// MaxBackoff caps the reconnect delay. Default 5s.
	MaxBackoff time.Duration
}

// Listener owns one dedicated connection that LISTENs on a channel.
type Listener struct {
	opt     Options
	pool    *pgxpool.Pool
	handler Handler
	running *atomic.Bool
}

// New validates opt and pings the pool. Nothing is received until Run is
// called.
func New(ctx context.Context, pool *pgxpool.Pool, opt Options, handler Handler) (*Listener, error) {
	if !reChannel.MatchString(opt.Channel) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChannel, opt.Channel)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, errors.Join(ErrPingPool, err)
	}

	if opt.MinBackoff <= 0 {
		opt.MinBackoff = 200 * time.Millisecond
	}
	if opt.MaxBackoff <= 0 {
		opt.MaxBackoff = 5 * time.Second
	}

	return &Listener{
		opt:     opt,
		pool:    pool,
		handler: handler,
		running: atomic.NewBool(false),
	}, nil
}

// Run listens until ctx is canceled, reconnecting with capped Fibonacci
// backoff whenever the connection is lost. It returns nil on cancellation.
func (l *Listener) Run(ctx context.Context) error {
	b := retry.NewFibonacci(l.opt.MinBackoff)
	b = retry.WithCappedDuration(l.opt.MaxBackoff, b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := l.listen(ctx)
		if err == nil || ctx.Err() != nil {
			return nil
		}

		slog.ErrorContext(ctx, "pgxnotify failed to listen", "channel", l.opt.Channel, "error", err)
		return retry.RetryableError(err)
	})

	slog.Info("pgxnotify listener exited", "channel", l.opt.Channel)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return errors.Join(ErrAcquireConn, err)
	}
	defer conn.Release()

	if _, err = conn.Exec(ctx, "listen "+l.opt.Channel); err != nil {
		return fmt.Errorf("%w: %s", errors.Join(ErrListenChannel, err), l.opt.Channel)
	}

	l.running.Store(true)
	defer l.running.Store(false)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if errors.Is(err, context.Canceled) {
			return err
		} else if err != nil {
			return errors.Join(ErrWaitNotification, err)
		}

		if l.opt.Verbose {
			slog.InfoContext(ctx, "pgxnotify received message", "channel", l.opt.Channel, "payload", n.Payload)
		}

		if l.handler != nil {
			l.handler(ctx, n.Payload)
		}
	}
}

// Running reports whether the LISTEN connection is currently established.
func (l *Listener) Running() bool {
	return l.running.Load()
}
