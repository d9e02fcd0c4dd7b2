package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered person.
//
// The JSON tags here describe the persisted snapshot, which must keep the
// password hash. Never return a User from a handler; render PublicUser.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	NameFirst    string    `json:"name_first"`
	NameLast     string    `json:"name_last"`
	Handle       string    `json:"handle"`
	PasswordHash string    `json:"password_hash"`
	GlobalOwner  bool      `json:"global_owner"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the display shape of a User.
//
// Channels and DMs only store user IDs. Display fields are resolved from the
// user table when a response is built, so a handle change is visible
// everywhere on the next read without rewriting membership lists.
type PublicUser struct {
	ID        int64  `json:"u_id"`
	Email     string `json:"email"`
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
	Handle    string `json:"handle_str"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		NameFirst: u.NameFirst,
		NameLast:  u.NameLast,
		Handle:    u.Handle,
	}
}

// Session is one logged-in token. Logout deletes the row, which is what makes
// a still-unexpired JWT stop working.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// React groups the users who reacted to a message with the same react ID.
type React struct {
	ReactID int64   `json:"react_id"`
	UserIDs []int64 `json:"u_ids"`
}

// Message is a single chat message inside a channel or DM.
//
// Messages are stored oldest first in their container. IDs come from one
// global sequence, so they are unique across channels and DMs and never reused
// after a removal.
type Message struct {
	ID       int64     `json:"message_id"`
	SenderID int64     `json:"u_id"`
	Body     string    `json:"message"`
	TimeSent time.Time `json:"time_sent"`
	Edited   bool      `json:"edited"`
	EditedAt time.Time `json:"edited_at"`
	Reacts   []React   `json:"reacts"`
	IsPinned bool      `json:"is_pinned"`
}

// Standup is the per-channel buffer of lines collected while active.
type Standup struct {
	Active    bool      `json:"active"`
	StarterID int64     `json:"starter_id"`
	FinishAt  time.Time `json:"finish_at"`
	Lines     []string  `json:"lines"`
}

type Channel struct {
	ID        int64     `json:"channel_id"`
	Name      string    `json:"name"`
	IsPublic  bool      `json:"is_public"`
	OwnerIDs  []int64   `json:"owner_ids"`
	MemberIDs []int64   `json:"member_ids"`
	Messages  []Message `json:"messages"`
	Standup   Standup   `json:"standup"`
}

// Dm is a direct-message conversation.
//
// Name is derived once at creation from the sorted member handles and is not
// recomputed when someone later changes their handle.
type Dm struct {
	ID        int64     `json:"dm_id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	MemberIDs []int64   `json:"member_ids"`
	Messages  []Message `json:"messages"`
}

// PendingMessage is a message accepted by "send later" that has not been
// delivered into its container yet. The ID is reserved at acceptance time.
type PendingMessage struct {
	Container ContainerRef `json:"container"`
	Message   Message      `json:"message"`
}

// Notification is one entry in a user's feed. Entries are append-only.
type Notification struct {
	RecipientID int64        `json:"recipient_id"`
	Container   ContainerRef `json:"container"`
	Text        string       `json:"notification_message"`
	CreatedAt   time.Time    `json:"created_at"`
}

// StatPoint is one entry of a count history. A point is appended only when
// the count moves.
type StatPoint struct {
	Count int64     `json:"count"`
	At    time.Time `json:"time_stamp"`
}

// UserStats tracks one user's participation over time. MessagesSent is a
// running total and never drops when a message is removed.
type UserStats struct {
	ChannelsJoined []StatPoint `json:"channels_joined"`
	DmsJoined      []StatPoint `json:"dms_joined"`
	MessagesSent   []StatPoint `json:"messages_sent"`
}

// WorkspaceStats tracks how many channels, DMs and messages exist over time.
type WorkspaceStats struct {
	ChannelsExist []StatPoint `json:"channels_exist"`
	DmsExist      []StatPoint `json:"dms_exist"`
	MessagesExist []StatPoint `json:"messages_exist"`
}

// Counters hold the last ID handed out per entity kind. They travel with the
// snapshot so a restart never reuses an ID.
type Counters struct {
	User    int64 `json:"user"`
	Channel int64 `json:"channel"`
	Dm      int64 `json:"dm"`
	Message int64 `json:"message"`
}

// Data is the full application snapshot. Every request reads and writes the
// whole thing under the store lock.
type Data struct {
	Users         []User                   `json:"users"`
	Sessions      []Session                `json:"sessions"`
	Channels      []Channel                `json:"channels"`
	Dms           []Dm                     `json:"dms"`
	Pending       []PendingMessage         `json:"pending"`
	Notifications map[int64][]Notification `json:"notifications"`
	Counters      Counters                 `json:"counters"`
	UserStats     map[int64]UserStats      `json:"user_stats"`
	Workspace     WorkspaceStats           `json:"workspace_stats"`
}

// NewData returns an empty snapshot with its maps allocated.
func NewData() *Data {
	return &Data{
		Users:         make([]User, 0),
		Sessions:      make([]Session, 0),
		Channels:      make([]Channel, 0),
		Dms:           make([]Dm, 0),
		Pending:       make([]PendingMessage, 0),
		Notifications: make(map[int64][]Notification),
		UserStats:     make(map[int64]UserStats),
	}
}
