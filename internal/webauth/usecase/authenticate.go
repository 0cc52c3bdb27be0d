package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/webauth/internal/pkg/goerror"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
)

type AuthenticateInput struct {
	UserID entity.UserID
	IP     string
	Code   string
	// Step is the TOTP time step. Non-positive means otp.DefaultStep.
	Step time.Duration
	// AuthEnabled false accepts every attempt without checking anything.
	AuthEnabled bool
	// At overrides the clock when non-zero.
	At time.Time
}

// Authenticate decides whether a one-time code proves possession of the
// user's shared secret, from an allowed address.
//
// The address is checked before any cryptographic work. A user who already
// proved the current counter is accepted without recomputing the code.
// Store and cache failures are returned as errors and never turned into a
// rejection.
func (s *Usecase) Authenticate(ctx context.Context, in AuthenticateInput) (entity.Decision, error) {
	ctx, span := s.startSpan(ctx, "Authenticate")
	defer span.End()

	if !in.AuthEnabled {
		slog.WarnContext(ctx, "authentication is disabled, accepting attempt", "user_id", in.UserID)
		return s.record(ctx, entity.Accepted, entity.ReasonAuthDisabled), nil
	}

	if !in.UserID.Resolved() {
		slog.WarnContext(ctx, "authentication attempt for unresolved user", "ip", in.IP)
		return s.record(ctx, entity.Rejected, entity.ReasonUnresolved), nil
	}

	allowed, err := s.ValidateIP(ctx, in.UserID, in.IP)
	if err != nil {
		s.record(ctx, entity.Rejected, entity.ReasonInfraFailure)
		return entity.Rejected, err
	}
	if !allowed {
		return s.record(ctx, entity.Rejected, entity.ReasonIPBlocked), nil
	}

	phrase, err := s.loadPhrase(ctx, in.UserID)
	if err != nil {
		s.record(ctx, entity.Rejected, entity.ReasonInfraFailure)
		return entity.Rejected, err
	}
	if phrase == "" {
		slog.WarnContext(ctx, "user has no totp phrase", "user_id", in.UserID)
		return s.record(ctx, entity.Rejected, entity.ReasonNotEnrolled), nil
	}

	if err := s.totp.CheckSecret(phrase); err != nil {
		slog.ErrorContext(ctx, "totp phrase cannot be used as a key", "user_id", in.UserID, "error", err)
		return s.record(ctx, entity.Rejected, entity.ReasonBadSecret), nil
	}

	at := in.At
	if at.IsZero() {
		at = s.clock.Now()
	}
	counter := s.totp.Counter(at, s.epoch, in.Step)

	same, err := s.ShouldShortCircuit(ctx, in.UserID, counter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read counter cache", "user_id", in.UserID, "error", err)
		s.record(ctx, entity.Rejected, entity.ReasonInfraFailure)
		return entity.Rejected, goerror.NewServer(err)
	}
	if same {
		return s.record(ctx, entity.Accepted, entity.ReasonSameCounter), nil
	}

	if !s.totp.Verify(phrase, in.Code, at, s.epoch, in.Step) {
		slog.WarnContext(ctx, "totp code is not valid", "user_id", in.UserID, "counter", counter)
		return s.record(ctx, entity.Rejected, entity.ReasonCodeInvalid), nil
	}

	if err := s.RecordSuccess(ctx, in.UserID, counter); err != nil {
		slog.ErrorContext(ctx, "failed to write counter cache", "user_id", in.UserID, "error", err)
		s.record(ctx, entity.Rejected, entity.ReasonInfraFailure)
		return entity.Rejected, goerror.NewServer(err)
	}

	return s.record(ctx, entity.Accepted, entity.ReasonCodeValid), nil
}
