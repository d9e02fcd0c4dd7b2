// Package stats keeps the participation histories stored in the snapshot and
// derives the involvement and utilization rates from them.
package stats

import (
	"slices"
	"time"

	"github.com/lalith-99/beans/internal/models"
)

// Recorder writes into the stats of the snapshot it was built over. Counts
// are recomputed from the snapshot, so callers only say who to look at.
type Recorder struct {
	data *models.Data
	now  time.Time
}

func New(data *models.Data, now time.Time) *Recorder {
	if data.UserStats == nil {
		data.UserStats = make(map[int64]models.UserStats)
	}
	return &Recorder{data: data, now: now}
}

// Seed starts zeroed histories for a new user, and for the workspace the
// first time anyone registers.
func (r *Recorder) Seed(userID int64) {
	zero := []models.StatPoint{{Count: 0, At: r.now}}
	r.data.UserStats[userID] = models.UserStats{
		ChannelsJoined: slices.Clone(zero),
		DmsJoined:      slices.Clone(zero),
		MessagesSent:   slices.Clone(zero),
	}
	ws := &r.data.Workspace
	if len(ws.ChannelsExist) == 0 {
		ws.ChannelsExist = slices.Clone(zero)
		ws.DmsExist = slices.Clone(zero)
		ws.MessagesExist = slices.Clone(zero)
	}
}

// Memberships recounts the channels and DMs each user belongs to.
func (r *Recorder) Memberships(userIDs ...int64) {
	for _, uid := range userIDs {
		var channels, dms int64
		for i := range r.data.Channels {
			if slices.Contains(r.data.Channels[i].MemberIDs, uid) {
				channels++
			}
		}
		for i := range r.data.Dms {
			if slices.Contains(r.data.Dms[i].MemberIDs, uid) {
				dms++
			}
		}
		st := r.data.UserStats[uid]
		st.ChannelsJoined = r.push(st.ChannelsJoined, channels)
		st.DmsJoined = r.push(st.DmsJoined, dms)
		r.data.UserStats[uid] = st
	}
}

// MessageSent bumps the sender's running total by one.
func (r *Recorder) MessageSent(userID int64) {
	st := r.data.UserStats[userID]
	st.MessagesSent = r.push(st.MessagesSent, Latest(st.MessagesSent)+1)
	r.data.UserStats[userID] = st
}

// Workspace recounts channels, DMs and delivered messages. Pending "send
// later" messages do not count until they land.
func (r *Recorder) Workspace() {
	var messages int64
	for i := range r.data.Channels {
		messages += int64(len(r.data.Channels[i].Messages))
	}
	for i := range r.data.Dms {
		messages += int64(len(r.data.Dms[i].Messages))
	}
	ws := &r.data.Workspace
	ws.ChannelsExist = r.push(ws.ChannelsExist, int64(len(r.data.Channels)))
	ws.DmsExist = r.push(ws.DmsExist, int64(len(r.data.Dms)))
	ws.MessagesExist = r.push(ws.MessagesExist, messages)
}

func (r *Recorder) push(history []models.StatPoint, count int64) []models.StatPoint {
	if len(history) > 0 && history[len(history)-1].Count == count {
		return history
	}
	return append(history, models.StatPoint{Count: count, At: r.now})
}

// Latest is the newest count in history, or 0 for an empty one.
func Latest(history []models.StatPoint) int64 {
	if len(history) == 0 {
		return 0
	}
	return history[len(history)-1].Count
}

// UserReport is a user's histories plus their involvement rate.
type UserReport struct {
	models.UserStats
	InvolvementRate float64
}

// WorkspaceReport is the workspace histories plus the utilization rate.
type WorkspaceReport struct {
	models.WorkspaceStats
	UtilizationRate float64
}

// ForUser reports on userID. A user with no recorded history, such as one
// loaded from a snapshot written before stats existed, reports zeros from
// since onward.
func ForUser(data *models.Data, userID int64, since time.Time) UserReport {
	st, ok := data.UserStats[userID]
	if !ok {
		zero := models.StatPoint{At: since}
		st = models.UserStats{
			ChannelsJoined: []models.StatPoint{zero},
			DmsJoined:      []models.StatPoint{zero},
			MessagesSent:   []models.StatPoint{zero},
		}
	}
	st = models.UserStats{
		ChannelsJoined: slices.Clone(st.ChannelsJoined),
		DmsJoined:      slices.Clone(st.DmsJoined),
		MessagesSent:   slices.Clone(st.MessagesSent),
	}

	mine := Latest(st.ChannelsJoined) + Latest(st.DmsJoined) + Latest(st.MessagesSent)
	ws := data.Workspace
	total := Latest(ws.ChannelsExist) + Latest(ws.DmsExist) + Latest(ws.MessagesExist)
	return UserReport{UserStats: st, InvolvementRate: Involvement(mine, total)}
}

func ForWorkspace(data *models.Data) WorkspaceReport {
	ws := models.WorkspaceStats{
		ChannelsExist: orEmpty(data.Workspace.ChannelsExist),
		DmsExist:      orEmpty(data.Workspace.DmsExist),
		MessagesExist: orEmpty(data.Workspace.MessagesExist),
	}

	active := 0
	for i := range data.Users {
		uid := data.Users[i].ID
		inChannel := slices.ContainsFunc(data.Channels, func(ch models.Channel) bool { return slices.Contains(ch.MemberIDs, uid) })
		inDm := slices.ContainsFunc(data.Dms, func(dm models.Dm) bool { return slices.Contains(dm.MemberIDs, uid) })
		if inChannel || inDm {
			active++
		}
	}
	return WorkspaceReport{WorkspaceStats: ws, UtilizationRate: Utilization(active, len(data.Users))}
}

// Involvement is mine/total capped at 1. It can exceed 1 otherwise, because
// a removed message still counts as sent but no longer exists.
func Involvement(mine, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return min(float64(mine)/float64(total), 1)
}

// Utilization is the share of users who belong to at least one channel or DM.
func Utilization(active, users int) float64 {
	if users <= 0 {
		return 0
	}
	return min(float64(active)/float64(users), 1)
}

func orEmpty(history []models.StatPoint) []models.StatPoint {
	if history == nil {
		return []models.StatPoint{}
	}
	return slices.Clone(history)
}
