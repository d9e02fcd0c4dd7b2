package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/middleware"
	"github.com/lalith-99/beans/internal/service"
)

type NotificationHandler struct {
	notifications *service.NotificationService
	logger        *zap.Logger
}

func NewNotificationHandler(notifications *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// List handles GET /v1/notifications. At most 20 entries, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	feed, err := h.notifications.Page(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "list notifications", err)
		return
	}
	out := make([]notificationView, len(feed))
	for i, n := range feed {
		out[i] = toNotificationView(n)
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}
