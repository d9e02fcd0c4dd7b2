package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/middleware"
	"github.com/lalith-99/beans/internal/service"
)

type StandupHandler struct {
	standups *service.StandupService
	logger   *zap.Logger
}

func NewStandupHandler(standups *service.StandupService, logger *zap.Logger) *StandupHandler {
	return &StandupHandler{standups: standups, logger: logger}
}

// startStandupRequest carries the length in seconds. A pointer so that an
// explicit 0 is accepted and a missing field is not.
type startStandupRequest struct {
	Length *float64 `json:"length" binding:"required"`
}

type standupLineRequest struct {
	Message string `json:"message"`
}

type standupActiveResponse struct {
	IsActive   bool   `json:"is_active"`
	TimeFinish *int64 `json:"time_finish"`
}

// Start handles POST /v1/channels/:id/standup
func (h *StandupHandler) Start(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req startStandupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	finishAt, err := h.standups.Start(c.Request.Context(), middleware.GetUserID(c), channelID, *req.Length)
	if err != nil {
		respondError(c, h.logger, "start standup", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"time_finish": unixMilli(finishAt)})
}

// Send handles POST /v1/channels/:id/standup/messages
func (h *StandupHandler) Send(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req standupLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.standups.Send(c.Request.Context(), middleware.GetUserID(c), channelID, req.Message); err != nil {
		respondError(c, h.logger, "standup send", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Active handles GET /v1/channels/:id/standup
//
// time_finish is null while no standup is running.
func (h *StandupHandler) Active(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	st, err := h.standups.Active(middleware.GetUserID(c), channelID)
	if err != nil {
		respondError(c, h.logger, "standup active", err)
		return
	}

	out := standupActiveResponse{IsActive: st.Active}
	if st.FinishAt != nil {
		ms := unixMilli(*st.FinishAt)
		out.TimeFinish = &ms
	}
	c.JSON(http.StatusOK, out)
}
