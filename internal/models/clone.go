package models

import "slices"

// Clone returns a deep copy of the snapshot. The store mutates the clone and
// only swaps it in after the mutation succeeded and was persisted.
func (d *Data) Clone() *Data {
	out := &Data{
		Users:         slices.Clone(d.Users),
		Sessions:      slices.Clone(d.Sessions),
		Channels:      make([]Channel, len(d.Channels)),
		Dms:           make([]Dm, len(d.Dms)),
		Pending:       make([]PendingMessage, len(d.Pending)),
		Notifications: make(map[int64][]Notification, len(d.Notifications)),
		Counters:      d.Counters,
		UserStats:     make(map[int64]UserStats, len(d.UserStats)),
		Workspace: WorkspaceStats{
			ChannelsExist: slices.Clone(d.Workspace.ChannelsExist),
			DmsExist:      slices.Clone(d.Workspace.DmsExist),
			MessagesExist: slices.Clone(d.Workspace.MessagesExist),
		},
	}
	if out.Users == nil {
		out.Users = make([]User, 0)
	}
	if out.Sessions == nil {
		out.Sessions = make([]Session, 0)
	}
	for i, ch := range d.Channels {
		out.Channels[i] = ch.clone()
	}
	for i, dm := range d.Dms {
		out.Dms[i] = dm.clone()
	}
	for i, p := range d.Pending {
		out.Pending[i] = PendingMessage{Container: p.Container, Message: p.Message.Clone()}
	}
	for uid, feed := range d.Notifications {
		out.Notifications[uid] = slices.Clone(feed)
	}
	for uid, st := range d.UserStats {
		out.UserStats[uid] = UserStats{
			ChannelsJoined: slices.Clone(st.ChannelsJoined),
			DmsJoined:      slices.Clone(st.DmsJoined),
			MessagesSent:   slices.Clone(st.MessagesSent),
		}
	}
	return out
}

func (c Channel) clone() Channel {
	c.OwnerIDs = slices.Clone(c.OwnerIDs)
	c.MemberIDs = slices.Clone(c.MemberIDs)
	c.Messages = cloneMessages(c.Messages)
	c.Standup.Lines = slices.Clone(c.Standup.Lines)
	return c
}

func (d Dm) clone() Dm {
	d.MemberIDs = slices.Clone(d.MemberIDs)
	d.Messages = cloneMessages(d.Messages)
	return d
}

// Clone copies the react lists so the result can be handed outside the lock.
func (m Message) Clone() Message {
	if m.Reacts == nil {
		return m
	}
	reacts := make([]React, len(m.Reacts))
	for i, r := range m.Reacts {
		reacts[i] = React{ReactID: r.ReactID, UserIDs: slices.Clone(r.UserIDs)}
	}
	m.Reacts = reacts
	return m
}

func cloneMessages(in []Message) []Message {
	out := make([]Message, len(in))
	for i, m := range in {
		out[i] = m.Clone()
	}
	return out
}
