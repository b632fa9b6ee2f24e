package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"droughtwatch/internal/core"
	"droughtwatch/internal/types"
)

// NotificationReader provides notification history access. Satisfied by
// db.NotificationRepository; the repo clamps the limit.
type NotificationReader interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]*types.NotificationLogEntry, error)
}

// NotificationHandler serves the notification history endpoint.
type NotificationHandler struct {
	repo NotificationReader
}

// NewNotificationHandler builds the handler.
func NewNotificationHandler(repo NotificationReader) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

// RegisterRoutes mounts the notification routes.
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.List)
}

// List handles GET /v1/notifications?user_id=&limit=. Entries come back
// newest first with trigger name and region joined in.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationNotNumeric,
				"limit must be a positive integer",
				err,
			))
			return
		}
	}

	entries, err := h.repo.ListByUser(r.Context(), userID, limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: entries})
}
