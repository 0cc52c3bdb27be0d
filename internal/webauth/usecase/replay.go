package usecase

import (
	"context"

	"github.com/shandysiswandi/webauth/internal/webauth/entity"
)

// ShouldShortCircuit reports whether userID already authenticated at counter.
// A miss never denies; it only means the code must be verified.
func (s *Usecase) ShouldShortCircuit(ctx context.Context, userID entity.UserID, counter int64) (bool, error) {
	cached, ok, err := s.counterCache.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	return ok && cached == counter, nil
}

// RecordSuccess remembers counter as the last one userID proved.
func (s *Usecase) RecordSuccess(ctx context.Context, userID entity.UserID, counter int64) error {
	return s.counterCache.Put(ctx, userID, counter)
}
