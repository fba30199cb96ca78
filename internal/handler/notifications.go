package handler

import (
	"net/http"

	"github.com/mrinmay27/the149-store/internal/middleware"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationsHandler struct {
	svc          service.NotificationService
	defaultLimit int
}

func NewNotificationsHandler(svc service.NotificationService, defaultLimit int) *NotificationsHandler {
	return &NotificationsHandler{svc: svc, defaultLimit: defaultLimit}
}

// List returns the caller's notifications, newest first, with an unread count.
func (h *NotificationsHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	recipientID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.List(c.Request.Context(), recipientID, queryLimit(c, h.defaultLimit))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarkRead marks one of the caller's notifications as read. Notifications
// belonging to someone else come back 404 rather than 403, so ids cannot
// be probed.
func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	recipientID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.MarkRead(c.Request.Context(), id, recipientID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
