package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/webauth/internal/pkg/goerror"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
)

type ResolveInput struct {
	Key  string
	Type entity.KeyType
}

// ResolveUserID maps a public identifier or API key to a user. Malformed
// keys and unknown users both resolve to entity.UserIDUnresolved; malformed
// keys never reach the store.
func (s *Usecase) ResolveUserID(ctx context.Context, in ResolveInput) (entity.UserID, error) {
	ctx, span := s.startSpan(ctx, "ResolveUserID")
	defer span.End()

	key := entity.SanitizeKey(in.Key)
	if key == "" {
		slog.WarnContext(ctx, "malformed key", "key_type", in.Type.String())
		return entity.UserIDUnresolved, nil
	}

	var (
		id  entity.UserID
		err error
	)

	switch in.Type {
	case entity.KeyTypePublicUUID:
		id, err = s.store.FindIDByPublicUUID(ctx, key)
	case entity.KeyTypeAPIKey:
		id, err = s.store.FindIDByAPIKey(ctx, key)
	default:
		slog.WarnContext(ctx, "unsupported key type", "key_type", in.Type.String())
		return entity.UserIDUnresolved, nil
	}

	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no user for key", "key_type", in.Type.String())
		return entity.UserIDUnresolved, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find user id", "key_type", in.Type.String(), "error", err)
		return entity.UserIDUnresolved, goerror.NewServer(err)
	}

	return id, nil
}
