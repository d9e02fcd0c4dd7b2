package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/middleware"
	"github.com/lalith-99/beans/internal/service"
)

// MembershipHandler handles channel membership and ownership changes.
type MembershipHandler struct {
	channels *service.ChannelService
	logger   *zap.Logger
}

func NewMembershipHandler(channels *service.ChannelService, logger *zap.Logger) *MembershipHandler {
	return &MembershipHandler{channels: channels, logger: logger}
}

// targetRequest names the user an invite or an owner change applies to.
type targetRequest struct {
	UserID int64 `json:"u_id" binding:"required"`
}

// Join handles POST /v1/channels/:id/join
//
// Why separate join and invite endpoints?
//   - Join is a user action on themselves and only works on public channels
//     (global owners excepted).
//   - Invite is a member acting on someone else and works on any channel.
func (h *MembershipHandler) Join(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.channels.Join(c.Request.Context(), middleware.GetUserID(c), channelID); err != nil {
		respondError(c, h.logger, "join channel", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Leave handles POST /v1/channels/:id/leave
func (h *MembershipHandler) Leave(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.channels.Leave(c.Request.Context(), middleware.GetUserID(c), channelID); err != nil {
		respondError(c, h.logger, "leave channel", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Invite handles POST /v1/channels/:id/invite
func (h *MembershipHandler) Invite(c *gin.Context) {
	h.withTarget(c, "invite", h.channels.Invite)
}

// AddOwner handles POST /v1/channels/:id/owners
func (h *MembershipHandler) AddOwner(c *gin.Context) {
	h.withTarget(c, "add owner", h.channels.AddOwner)
}

// RemoveOwner handles DELETE /v1/channels/:id/owners
func (h *MembershipHandler) RemoveOwner(c *gin.Context) {
	h.withTarget(c, "remove owner", h.channels.RemoveOwner)
}

func (h *MembershipHandler) withTarget(c *gin.Context, op string, fn func(ctx context.Context, userID, channelID, targetID int64) error) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := fn(c.Request.Context(), middleware.GetUserID(c), channelID, req.UserID); err != nil {
		respondError(c, h.logger, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}
