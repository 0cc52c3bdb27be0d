package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/webauth/internal/pkg/cache"
	"github.com/shandysiswandi/webauth/internal/pkg/clock"
	"github.com/shandysiswandi/webauth/internal/pkg/instrument"
	"github.com/shandysiswandi/webauth/internal/pkg/otp"
	"github.com/shandysiswandi/webauth/internal/pkg/validator"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// userStore is the read-only view of the user records this package needs.
// Implementations return goerror.ErrNotFound when no row matches.
type userStore interface {
	FindIDByPublicUUID(ctx context.Context, uuid string) (entity.UserID, error)
	FindIDByAPIKey(ctx context.Context, key string) (entity.UserID, error)
	GetTOTPPhrase(ctx context.Context, userID entity.UserID) (string, error)
	CountIPMatches(ctx context.Context, userID entity.UserID, candidateIP string) (int64, error)
}

type Usecase struct {
	store        userStore
	ipCache      cache.Cache[entity.UserID, string]
	counterCache cache.Cache[entity.UserID, int64]
	phraseCache  cache.Cache[entity.UserID, string]
	totp         otp.OTP
	clock        clock.Clocker
	validator    validator.Validator
	epoch        time.Time
	ins          instrument.Instrumentation
	decisions    metric.Int64Counter
	phraseLoads  singleflight.Group
}

type Dependency struct {
	Store        userStore
	IPCache      cache.Cache[entity.UserID, string]
	CounterCache cache.Cache[entity.UserID, int64]
	PhraseCache  cache.Cache[entity.UserID, string]
	Totp         otp.OTP
	Clock        clock.Clocker
	Validator    validator.Validator
	Instrument   instrument.Instrumentation
	// Epoch is the reference instant counters are measured from.
	Epoch time.Time
}

func New(dep Dependency) *Usecase {
	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	decisions, err := ins.Meter("webauth.usecase").Int64Counter(
		"webauth.authenticate.decisions",
		metric.WithDescription("Number of TOTP authentication decisions by outcome and reason"),
	)
	if err != nil {
		slog.Error("failed to create authenticate decision counter", "error", err)
	}

	return &Usecase{
		store:        dep.Store,
		ipCache:      dep.IPCache,
		counterCache: dep.CounterCache,
		phraseCache:  dep.PhraseCache,
		totp:         dep.Totp,
		clock:        dep.Clock,
		validator:    dep.Validator,
		epoch:        dep.Epoch,
		ins:          ins,
		decisions:    decisions,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("webauth.usecase").Start(ctx, name)
}

func (s *Usecase) record(ctx context.Context, d entity.Decision, r entity.Reason) entity.Decision {
	if s.decisions != nil {
		s.decisions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("decision", d.String()),
			attribute.String("reason", string(r)),
		))
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("webauth.decision", d.String()),
		attribute.String("webauth.reason", string(r)),
	)

	return d
}
