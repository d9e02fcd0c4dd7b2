package api

import (
	"slices"
	"time"

	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/stats"
)

// unixMilli renders t for the wire. The zero time renders as 0.
func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

type reactView struct {
	ReactID           int64   `json:"react_id"`
	UserIDs           []int64 `json:"u_ids"`
	IsThisUserReacted bool    `json:"is_this_user_reacted"`
}

type messageView struct {
	ID       int64       `json:"message_id"`
	SenderID int64       `json:"u_id"`
	Body     string      `json:"message"`
	TimeSent int64       `json:"time_sent"`
	IsEdited bool        `json:"is_edited"`
	Reacts   []reactView `json:"reacts"`
	IsPinned bool        `json:"is_pinned"`
}

// toMessageView fills is_this_user_reacted from the viewer's point of view.
func toMessageView(m models.Message, viewerID int64) messageView {
	reacts := make([]reactView, len(m.Reacts))
	for i, r := range m.Reacts {
		reacts[i] = reactView{
			ReactID:           r.ReactID,
			UserIDs:           r.UserIDs,
			IsThisUserReacted: slices.Contains(r.UserIDs, viewerID),
		}
	}
	return messageView{
		ID:       m.ID,
		SenderID: m.SenderID,
		Body:     m.Body,
		TimeSent: unixMilli(m.TimeSent),
		IsEdited: m.Edited,
		Reacts:   reacts,
		IsPinned: m.IsPinned,
	}
}

type notificationView struct {
	ChannelID int64  `json:"channel_id"`
	DmID      int64  `json:"dm_id"`
	Message   string `json:"notification_message"`
}

func toNotificationView(n models.Notification) notificationView {
	channelID, dmID := n.Container.WireIDs()
	return notificationView{ChannelID: channelID, DmID: dmID, Message: n.Text}
}

// statView is one history point. The count key names what is being counted,
// e.g. num_channels_joined.
type statView map[string]int64

func toStatViews(key string, history []models.StatPoint) []statView {
	out := make([]statView, len(history))
	for i, p := range history {
		out[i] = statView{key: p.Count, "time_stamp": unixMilli(p.At)}
	}
	return out
}

type userStatsView struct {
	ChannelsJoined  []statView `json:"channels_joined"`
	DmsJoined       []statView `json:"dms_joined"`
	MessagesSent    []statView `json:"messages_sent"`
	InvolvementRate float64    `json:"involvement_rate"`
}

func toUserStatsView(r stats.UserReport) userStatsView {
	return userStatsView{
		ChannelsJoined:  toStatViews("num_channels_joined", r.ChannelsJoined),
		DmsJoined:       toStatViews("num_dms_joined", r.DmsJoined),
		MessagesSent:    toStatViews("num_messages_sent", r.MessagesSent),
		InvolvementRate: r.InvolvementRate,
	}
}

type workspaceStatsView struct {
	ChannelsExist   []statView `json:"channels_exist"`
	DmsExist        []statView `json:"dms_exist"`
	MessagesExist   []statView `json:"messages_exist"`
	UtilizationRate float64    `json:"utilization_rate"`
}

func toWorkspaceStatsView(r stats.WorkspaceReport) workspaceStatsView {
	return workspaceStatsView{
		ChannelsExist:   toStatViews("num_channels_exist", r.ChannelsExist),
		DmsExist:        toStatViews("num_dms_exist", r.DmsExist),
		MessagesExist:   toStatViews("num_messages_exist", r.MessagesExist),
		UtilizationRate: r.UtilizationRate,
	}
}
