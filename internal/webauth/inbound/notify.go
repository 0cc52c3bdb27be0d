package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/webauth/internal/pkg/instrument"
	"github.com/shandysiswandi/webauth/internal/pkg/uid"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
)

// InvalidationMessage is the JSON payload published on the invalidation
// channel whenever a user's allow-list or phrase changes.
type InvalidationMessage struct {
	UserID int64                    `json:"user_id"`
	Scope  entity.InvalidationScope `json:"scope"`
}

// NotifyHandler evicts cache entries named by invalidation messages.
type NotifyHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func NewNotifyHandler(uc uc, uuid uid.StringID, ins instrument.Instrumentation) *NotifyHandler {
	return &NotifyHandler{uc: uc, uuid: uuid, ins: ins}
}

// Handle matches pgxnotify.Handler. Malformed payloads are logged and
// dropped; the cache entries then age out by TTL.
func (h *NotifyHandler) Handle(ctx context.Context, payload string) {
	ctx = instrument.SetCorrelationID(ctx, h.uuid.Generate())

	ctx, span := h.ins.Tracer("webauth.inbound.notify").Start(ctx, "CacheInvalidation")
	defer span.End()

	var msg InvalidationMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		slog.ErrorContext(ctx, "failed to parse cache invalidation payload", "payload", payload, "error", err)
		return
	}

	if msg.UserID <= 0 {
		slog.WarnContext(ctx, "cache invalidation without user", "payload", payload)
		return
	}

	if msg.Scope == "" {
		msg.Scope = entity.ScopeAll
	}

	if err := h.uc.Invalidate(ctx, entity.UserID(msg.UserID), msg.Scope); err != nil {
		slog.ErrorContext(ctx, "failed to invalidate cache", "user_id", msg.UserID, "scope", msg.Scope, "error", err)
	}
}
