package inbound

import (
	"github.com/shandysiswandi/webauth/internal/pkg/router"
	"github.com/shandysiswandi/webauth/internal/webauth/usecase"
)

// HTTPEndpoint exposes HTTP handlers for one-time code authentication.
type HTTPEndpoint struct {
	uc       uc
	settings Settings
}

// TOTPAuthenticate checks a one-time code for the user identified by key,
// from the caller's address.
// @Summary Authenticate with a one-time code
// @Tags WebAuth
// @Accept json
// @Produce json
// @Param request body TOTPAuthenticateRequest true "Authentication payload"
// @Success 200 {object} router.successResponse{data=TOTPAuthenticateResponse}
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Rejected"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/webauth/totp/authenticate [post]
func (h *HTTPEndpoint) TOTPAuthenticate(r *router.Request) (any, error) {
	var req TOTPAuthenticateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TOTPLogin(r.Context(), usecase.TOTPLoginInput{
		Key:         req.Key,
		KeyType:     req.KeyType,
		Code:        req.Code,
		IP:          r.ClientIP(),
		Step:        h.settings.Step,
		AuthEnabled: h.settings.AuthEnabled,
	})
	if err != nil {
		return nil, err
	}

	return TOTPAuthenticateResponse{Accepted: resp.Accepted}, nil
}
