package inbound

import (
	"context"
	"time"

	"github.com/shandysiswandi/webauth/internal/pkg/router"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
	"github.com/shandysiswandi/webauth/internal/webauth/usecase"
)

type uc interface {
	TOTPLogin(ctx context.Context, in usecase.TOTPLoginInput) (*usecase.TOTPLoginOutput, error)
	Invalidate(ctx context.Context, userID entity.UserID, scope entity.InvalidationScope) error
}

// Settings are the authentication flags read once at startup.
type Settings struct {
	AuthEnabled bool
	Step        time.Duration
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, settings Settings) {
	end := &HTTPEndpoint{uc: uc, settings: settings}

	r.POST("/api/v1/webauth/totp/authenticate", end.TOTPAuthenticate)
}
