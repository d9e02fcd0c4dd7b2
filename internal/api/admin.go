package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/service"
)

type AdminHandler struct {
	admin  *service.AdminService
	logger *zap.Logger
}

func NewAdminHandler(admin *service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// Clear handles DELETE /v1/clear
//
// Only registered when ALLOW_CLEAR is set. Test harnesses call it between
// runs; it takes no token because it is about to invalidate all of them.
func (h *AdminHandler) Clear(c *gin.Context) {
	if err := h.admin.Clear(c.Request.Context()); err != nil {
		respondError(c, h.logger, "clear", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
