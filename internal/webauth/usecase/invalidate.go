package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/webauth/internal/pkg/goerror"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
)

var ErrUnknownScope = errors.New("unknown invalidation scope")

// Invalidate evicts cached views of userID after the store changed.
//
// Dropping the phrase also drops the recorded counter, so a code proven
// under the old secret cannot short-circuit under the new one.
func (s *Usecase) Invalidate(ctx context.Context, userID entity.UserID, scope entity.InvalidationScope) error {
	ctx, span := s.startSpan(ctx, "Invalidate")
	defer span.End()

	var errs []error

	switch scope {
	case entity.ScopeIP:
		errs = append(errs, s.ipCache.Delete(ctx, userID))
	case entity.ScopePhrase:
		errs = append(errs,
			s.phraseCache.Delete(ctx, userID),
			s.counterCache.Delete(ctx, userID),
		)
	case entity.ScopeAll:
		errs = append(errs,
			s.ipCache.Delete(ctx, userID),
			s.phraseCache.Delete(ctx, userID),
			s.counterCache.Delete(ctx, userID),
		)
	default:
		slog.WarnContext(ctx, "unknown invalidation scope", "user_id", userID, "scope", scope)
		return goerror.NewInvalidInput(ErrUnknownScope)
	}

	if err := errors.Join(errs...); err != nil {
		slog.ErrorContext(ctx, "failed to invalidate cache", "user_id", userID, "scope", scope, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "cache invalidated", "user_id", userID, "scope", scope)

	return nil
}
