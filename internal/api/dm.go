package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/middleware"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/service"
)

type DmHandler struct {
	dms    *service.DmService
	logger *zap.Logger
}

func NewDmHandler(dms *service.DmService, logger *zap.Logger) *DmHandler {
	return &DmHandler{dms: dms, logger: logger}
}

type createDmRequest struct {
	UserIDs []int64 `json:"u_ids"`
}

type dmSummary struct {
	ID   int64  `json:"dm_id"`
	Name string `json:"name"`
}

type dmDetails struct {
	Name    string              `json:"name"`
	Members []models.PublicUser `json:"members"`
}

// Create handles POST /v1/dms
//
// The caller is always a member; u_ids lists everyone else and may be empty.
func (h *DmHandler) Create(c *gin.Context) {
	var req createDmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	id, err := h.dms.Create(c.Request.Context(), middleware.GetUserID(c), req.UserIDs)
	if err != nil {
		respondError(c, h.logger, "create dm", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"dm_id": id})
}

// List handles GET /v1/dms
func (h *DmHandler) List(c *gin.Context) {
	dms := h.dms.List(middleware.GetUserID(c))
	out := make([]dmSummary, len(dms))
	for i, dm := range dms {
		out[i] = dmSummary{ID: dm.ID, Name: dm.Name}
	}
	c.JSON(http.StatusOK, gin.H{"dms": out})
}

// Details handles GET /v1/dms/:id
func (h *DmHandler) Details(c *gin.Context) {
	dmID, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.dms.Details(middleware.GetUserID(c), dmID)
	if err != nil {
		respondError(c, h.logger, "dm details", err)
		return
	}
	c.JSON(http.StatusOK, dmDetails{Name: d.Name, Members: d.Members})
}

// Leave handles POST /v1/dms/:id/leave
func (h *DmHandler) Leave(c *gin.Context) {
	dmID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.dms.Leave(c.Request.Context(), middleware.GetUserID(c), dmID); err != nil {
		respondError(c, h.logger, "leave dm", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove handles DELETE /v1/dms/:id. Only the creator may remove a DM.
func (h *DmHandler) Remove(c *gin.Context) {
	dmID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.dms.Remove(c.Request.Context(), middleware.GetUserID(c), dmID); err != nil {
		respondError(c, h.logger, "remove dm", err)
		return
	}
	c.Status(http.StatusNoContent)
}
