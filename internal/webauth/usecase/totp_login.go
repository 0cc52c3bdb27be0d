package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/webauth/internal/pkg/goerror"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
)

type TOTPLoginInput struct {
	Key     string `validate:"required"`
	KeyType string `validate:"required,oneof=uuid api_key"`
	Code    string `validate:"required,otpcode"`
	IP      string
	Step    time.Duration
	// AuthEnabled false skips input validation and identifier resolution.
	AuthEnabled bool
}

type TOTPLoginOutput struct {
	Accepted bool
}

// TOTPLogin resolves the caller's key and authenticates the code. A
// rejection is reported as an unauthorized business error with one message
// for every cause.
func (s *Usecase) TOTPLogin(ctx context.Context, in TOTPLoginInput) (*TOTPLoginOutput, error) {
	ctx, span := s.startSpan(ctx, "TOTPLogin")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)
	in.Key = strings.TrimSpace(in.Key)

	userID := entity.UserIDUnresolved
	if in.AuthEnabled {
		if err := s.validator.Validate(in); err != nil {
			return nil, goerror.NewInvalidInput(err)
		}

		id, err := s.ResolveUserID(ctx, ResolveInput{Key: in.Key, Type: entity.KeyTypeFromString(in.KeyType)})
		if err != nil {
			return nil, err
		}
		userID = id
	}

	decision, err := s.Authenticate(ctx, AuthenticateInput{
		UserID:      userID,
		IP:          in.IP,
		Code:        in.Code,
		Step:        in.Step,
		AuthEnabled: in.AuthEnabled,
	})
	if err != nil {
		return nil, err
	}

	if decision != entity.Accepted {
		slog.WarnContext(ctx, "totp login rejected", "user_id", userID, "ip", in.IP)
		return nil, goerror.NewBusiness("invalid key or code", goerror.CodeUnauthorized)
	}

	return &TOTPLoginOutput{Accepted: true}, nil
}
