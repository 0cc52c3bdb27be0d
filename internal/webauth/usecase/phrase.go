package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/webauth/internal/pkg/goerror"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
)

// loadPhrase returns the user's shared secret, reading through the phrase
// cache. A user without a secret yields "" and that answer is cached as well.
// Concurrent misses for the same user share one store query.
func (s *Usecase) loadPhrase(ctx context.Context, userID entity.UserID) (string, error) {
	phrase, ok, err := s.phraseCache.Get(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read phrase cache", "user_id", userID, "error", err)
		return "", goerror.NewServer(err)
	}
	if ok {
		return phrase, nil
	}

	v, err, _ := s.phraseLoads.Do(strconv.FormatInt(int64(userID), 10), func() (any, error) {
		// shared by every waiter, so one caller going away must not fail the rest
		ctx := context.WithoutCancel(ctx)

		phrase, err := s.store.GetTOTPPhrase(ctx, userID)
		if errors.Is(err, goerror.ErrNotFound) {
			phrase, err = "", nil
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get totp phrase", "user_id", userID, "error", err)
			return "", goerror.NewServer(err)
		}

		if err := s.phraseCache.Put(ctx, userID, phrase); err != nil {
			slog.ErrorContext(ctx, "failed to write phrase cache", "user_id", userID, "error", err)
			return "", goerror.NewServer(err)
		}

		return phrase, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}
