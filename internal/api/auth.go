package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/middleware"
	"github.com/lalith-99/beans/internal/service"
)

// AuthHandler serves register and login, the only public endpoints, plus
// logout which needs a token like everything else.
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Length and format rules live in the service so HTTP and tests see the same
// errors; binding only checks that the fields are present.
type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	NameFirst string `json:"name_first" binding:"required"`
	NameLast  string `json:"name_last" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// authResponse is what both register and login return. The client sends the
// token back as "Authorization: Bearer <token>".
type authResponse struct {
	UserID int64  `json:"auth_user_id"`
	Token  string `json:"token"`
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	sess, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.NameFirst, req.NameLast)
	if err != nil {
		respondError(c, h.logger, "register", err)
		return
	}

	c.JSON(http.StatusCreated, authResponse{UserID: sess.UserID, Token: sess.Token})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	sess, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}

	c.JSON(http.StatusOK, authResponse{UserID: sess.UserID, Token: sess.Token})
}

// Logout handles POST /v1/auth/logout
//
// Only the session behind this token ends; other logins of the same user keep
// working.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		respondError(c, h.logger, "logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}
