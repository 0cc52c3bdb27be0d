package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/webauth/internal/pkg/goerror"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
)

// ValidateIP reports whether candidateIP may be used by userID.
//
// A cached BLOCKED entry denies and a cached entry equal to candidateIP
// allows, both without touching the store. Anything else falls through to
// the allow-list in the store and the outcome replaces the cache entry.
func (s *Usecase) ValidateIP(ctx context.Context, userID entity.UserID, candidateIP string) (bool, error) {
	ctx, span := s.startSpan(ctx, "ValidateIP")
	defer span.End()

	cached, ok, err := s.ipCache.Get(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read ip cache", "user_id", userID, "error", err)
		return false, goerror.NewServer(err)
	}

	if ok {
		if cached == entity.BlockedIP {
			slog.WarnContext(ctx, "ip blocked by cached allow-list result", "user_id", userID, "ip", candidateIP)
			return false, nil
		}

		if cached == candidateIP {
			return true, nil
		}
	}

	count, err := s.store.CountIPMatches(ctx, userID, candidateIP)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count ip matches", "user_id", userID, "ip", candidateIP, "error", err)
		return false, goerror.NewServer(err)
	}

	valid := count > 0

	entry := entity.BlockedIP
	if valid {
		entry = candidateIP
	}

	if err := s.ipCache.Put(ctx, userID, entry); err != nil {
		slog.ErrorContext(ctx, "failed to write ip cache", "user_id", userID, "error", err)
		return false, goerror.NewServer(err)
	}

	if !valid {
		slog.WarnContext(ctx, "ip not in allow-list", "user_id", userID, "ip", candidateIP)
	}

	return valid, nil
}
