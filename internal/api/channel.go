package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/middleware"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/service"
)

// ChannelHandler serves channel creation and lookup. Membership changes live
// in MembershipHandler.
type ChannelHandler struct {
	channels *service.ChannelService
	logger   *zap.Logger
}

func NewChannelHandler(channels *service.ChannelService, logger *zap.Logger) *ChannelHandler {
	return &ChannelHandler{channels: channels, logger: logger}
}

// createChannelRequest is the JSON body for POST /v1/channels.
//
// IsPublic is a pointer so a missing field is an error instead of silently
// creating a private channel.
type createChannelRequest struct {
	Name     string `json:"name"`
	IsPublic *bool  `json:"is_public" binding:"required"`
}

type channelSummary struct {
	ID   int64  `json:"channel_id"`
	Name string `json:"name"`
}

type channelDetails struct {
	Name         string              `json:"name"`
	IsPublic     bool                `json:"is_public"`
	OwnerMembers []models.PublicUser `json:"owner_members"`
	AllMembers   []models.PublicUser `json:"all_members"`
}

func toChannelSummaries(in []service.ChannelSummary) []channelSummary {
	out := make([]channelSummary, len(in))
	for i, ch := range in {
		out[i] = channelSummary{ID: ch.ID, Name: ch.Name}
	}
	return out
}

// Create handles POST /v1/channels
func (h *ChannelHandler) Create(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	id, err := h.channels.Create(c.Request.Context(), middleware.GetUserID(c), req.Name, *req.IsPublic)
	if err != nil {
		respondError(c, h.logger, "create channel", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"channel_id": id})
}

// List handles GET /v1/channels
//
// Only channels the caller belongs to. GET /v1/channels/all lists every
// channel, private ones included.
func (h *ChannelHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"channels": toChannelSummaries(h.channels.List(middleware.GetUserID(c)))})
}

// ListAll handles GET /v1/channels/all
func (h *ChannelHandler) ListAll(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"channels": toChannelSummaries(h.channels.ListAll())})
}

// Details handles GET /v1/channels/:id
func (h *ChannelHandler) Details(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	d, err := h.channels.Details(middleware.GetUserID(c), channelID)
	if err != nil {
		respondError(c, h.logger, "channel details", err)
		return
	}

	c.JSON(http.StatusOK, channelDetails{
		Name:         d.Name,
		IsPublic:     d.IsPublic,
		OwnerMembers: d.Owners,
		AllMembers:   d.Members,
	})
}
