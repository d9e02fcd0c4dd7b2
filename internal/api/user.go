package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/middleware"
	"github.com/lalith-99/beans/internal/service"
)

// UserHandler serves profiles and the profile setters.
type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type setNameRequest struct {
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
}

type setEmailRequest struct {
	Email string `json:"email"`
}

type setHandleRequest struct {
	Handle string `json:"handle_str"`
}

// GetMe handles GET /v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	h.profile(c, middleware.GetUserID(c))
}

// Get handles GET /v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.profile(c, id)
}

func (h *UserHandler) profile(c *gin.Context, userID int64) {
	user, err := h.users.Profile(userID)
	if err != nil {
		respondError(c, h.logger, "get user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// List handles GET /v1/users
func (h *UserHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": h.users.All()})
}

// Stats handles GET /v1/users/me/stats
func (h *UserHandler) Stats(c *gin.Context) {
	report, err := h.users.Stats(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "get user stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_stats": toUserStatsView(report)})
}

// WorkspaceStats handles GET /v1/users/stats
func (h *UserHandler) WorkspaceStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"workspace_stats": toWorkspaceStatsView(h.users.WorkspaceStats())})
}

// SetName handles PUT /v1/users/me/name
func (h *UserHandler) SetName(c *gin.Context) {
	var req setNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	err := h.users.SetName(c.Request.Context(), middleware.GetUserID(c), req.NameFirst, req.NameLast)
	if err != nil {
		respondError(c, h.logger, "set name", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetEmail handles PUT /v1/users/me/email
func (h *UserHandler) SetEmail(c *gin.Context) {
	var req setEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.users.SetEmail(c.Request.Context(), middleware.GetUserID(c), req.Email); err != nil {
		respondError(c, h.logger, "set email", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetHandle handles PUT /v1/users/me/handle
func (h *UserHandler) SetHandle(c *gin.Context) {
	var req setHandleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.users.SetHandle(c.Request.Context(), middleware.GetUserID(c), req.Handle); err != nil {
		respondError(c, h.logger, "set handle", err)
		return
	}
	c.Status(http.StatusNoContent)
}
