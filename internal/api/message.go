package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/middleware"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/service"
)

// MessageHandler serves messages in both channels and DMs. The container
// routes share one handler each; the router picks the kind by passing
// models.ChannelRef or models.DmRef.
type MessageHandler struct {
	messages *service.MessageService
	logger   *zap.Logger
}

func NewMessageHandler(messages *service.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

// refFunc builds the container a route points at from its :id.
type refFunc func(id int64) models.ContainerRef

// Body length is checked by the service, which also turns an empty edit into
// a removal, so none of these carry binding:"required" on the text.
type sendMessageRequest struct {
	Message string `json:"message"`
}

type sendLaterRequest struct {
	Message  string `json:"message"`
	TimeSent int64  `json:"time_sent" binding:"required"`
}

type editMessageRequest struct {
	Message string `json:"message"`
}

type reactRequest struct {
	ReactID int64 `json:"react_id" binding:"required"`
}

type pageResponse struct {
	Messages []messageView `json:"messages"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
}

// Send returns the handler for POST /v1/{channels,dms}/:id/messages
func (h *MessageHandler) Send(ref refFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		msgID, err := h.messages.Send(c.Request.Context(), middleware.GetUserID(c), ref(id), req.Message)
		if err != nil {
			respondError(c, h.logger, "send message", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message_id": msgID})
	}
}

// SendLater returns the handler for POST /v1/{channels,dms}/:id/messages/later
//
// time_sent is Unix milliseconds. The message ID is handed out now; the
// message itself shows up once the scheduler delivers it.
func (h *MessageHandler) SendLater(ref refFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req sendLaterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sendAt := time.UnixMilli(req.TimeSent)
		msgID, err := h.messages.SendLater(c.Request.Context(), middleware.GetUserID(c), ref(id), req.Message, sendAt)
		if err != nil {
			respondError(c, h.logger, "send later", err)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{"message_id": msgID})
	}
}

// Page returns the handler for GET /v1/{channels,dms}/:id/messages?start=0
//
// start counts back from the newest message. end is the start of the next
// page, or -1 once the oldest message has been returned.
func (h *MessageHandler) Page(ref refFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		start := 0
		if s := c.Query("start"); s != "" {
			var err error
			start, err = strconv.Atoi(s)
			if err != nil {
				badRequest(c, "invalid 'start' parameter")
				return
			}
		}

		userID := middleware.GetUserID(c)
		page, err := h.messages.Page(userID, ref(id), start)
		if err != nil {
			respondError(c, h.logger, "list messages", err)
			return
		}

		out := pageResponse{Messages: make([]messageView, len(page.Messages)), Start: page.Start, End: page.End}
		for i, m := range page.Messages {
			out.Messages[i] = toMessageView(m, userID)
		}
		c.JSON(http.StatusOK, out)
	}
}

// Edit handles PUT /v1/messages/:id. An empty message removes it.
func (h *MessageHandler) Edit(c *gin.Context) {
	msgID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.messages.Edit(c.Request.Context(), middleware.GetUserID(c), msgID, req.Message); err != nil {
		respondError(c, h.logger, "edit message", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove handles DELETE /v1/messages/:id
func (h *MessageHandler) Remove(c *gin.Context) {
	msgID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.messages.Remove(c.Request.Context(), middleware.GetUserID(c), msgID); err != nil {
		respondError(c, h.logger, "remove message", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// React handles POST /v1/messages/:id/react
func (h *MessageHandler) React(c *gin.Context) {
	h.withReact(c, "react", false)
}

// Unreact handles POST /v1/messages/:id/unreact
func (h *MessageHandler) Unreact(c *gin.Context) {
	h.withReact(c, "unreact", true)
}

func (h *MessageHandler) withReact(c *gin.Context, op string, undo bool) {
	msgID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	fn := h.messages.React
	if undo {
		fn = h.messages.Unreact
	}
	if err := fn(c.Request.Context(), middleware.GetUserID(c), msgID, req.ReactID); err != nil {
		respondError(c, h.logger, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Pin handles POST /v1/messages/:id/pin
func (h *MessageHandler) Pin(c *gin.Context) {
	msgID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.messages.Pin(c.Request.Context(), middleware.GetUserID(c), msgID); err != nil {
		respondError(c, h.logger, "pin", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unpin handles POST /v1/messages/:id/unpin
func (h *MessageHandler) Unpin(c *gin.Context) {
	msgID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.messages.Unpin(c.Request.Context(), middleware.GetUserID(c), msgID); err != nil {
		respondError(c, h.logger, "unpin", err)
		return
	}
	c.Status(http.StatusNoContent)
}
