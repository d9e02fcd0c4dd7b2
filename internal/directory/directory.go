// Package directory answers identity and membership questions about a
// snapshot. Every method is a pure read; linear scans are fine at the data
// sizes this service holds in memory.
package directory

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/lalith-99/beans/internal/models"
)

type Directory struct {
	data *models.Data
}

func New(data *models.Data) *Directory {
	return &Directory{data: data}
}

// UserByID returns a pointer into the snapshot, or nil.
func (d *Directory) UserByID(id int64) *models.User {
	for i := range d.data.Users {
		if d.data.Users[i].ID == id {
			return &d.data.Users[i]
		}
	}
	return nil
}

func (d *Directory) UserByEmail(email string) *models.User {
	for i := range d.data.Users {
		if d.data.Users[i].Email == email {
			return &d.data.Users[i]
		}
	}
	return nil
}

// UserByHandle is an exact, case-sensitive match.
func (d *Directory) UserByHandle(handle string) *models.User {
	for i := range d.data.Users {
		if d.data.Users[i].Handle == handle {
			return &d.data.Users[i]
		}
	}
	return nil
}

func (d *Directory) Channel(id int64) *models.Channel {
	for i := range d.data.Channels {
		if d.data.Channels[i].ID == id {
			return &d.data.Channels[i]
		}
	}
	return nil
}

func (d *Directory) Dm(id int64) *models.Dm {
	for i := range d.data.Dms {
		if d.data.Dms[i].ID == id {
			return &d.data.Dms[i]
		}
	}
	return nil
}

func (d *Directory) UserExists(id int64) bool    { return d.UserByID(id) != nil }
func (d *Directory) ChannelExists(id int64) bool { return d.Channel(id) != nil }
func (d *Directory) DmExists(id int64) bool      { return d.Dm(id) != nil }

// Container is the common view of a channel or DM that the message and
// tagging code needs: a name, a member set, and the message list.
type Container struct {
	Ref       models.ContainerRef
	Name      string
	MemberIDs []int64
	Messages  *[]models.Message
}

// Container resolves a ref, failing with ErrNotFound.
func (d *Directory) Container(ref models.ContainerRef) (*Container, error) {
	switch ref.Kind {
	case models.KindChannel:
		ch := d.Channel(ref.ID)
		if ch == nil {
			return nil, fmt.Errorf("%w: channel %d", models.ErrNotFound, ref.ID)
		}
		return &Container{Ref: ref, Name: ch.Name, MemberIDs: ch.MemberIDs, Messages: &ch.Messages}, nil
	case models.KindDm:
		dm := d.Dm(ref.ID)
		if dm == nil {
			return nil, fmt.Errorf("%w: dm %d", models.ErrNotFound, ref.ID)
		}
		return &Container{Ref: ref, Name: dm.Name, MemberIDs: dm.MemberIDs, Messages: &dm.Messages}, nil
	default:
		return nil, fmt.Errorf("%w: unknown container kind %q", models.ErrInvalidInput, ref.Kind)
	}
}

// IsMember reports false for a missing container rather than failing.
func (d *Directory) IsMember(userID int64, ref models.ContainerRef) bool {
	c, err := d.Container(ref)
	if err != nil {
		return false
	}
	return slices.Contains(c.MemberIDs, userID)
}

func (d *Directory) IsChannelOwner(userID, channelID int64) bool {
	ch := d.Channel(channelID)
	return ch != nil && slices.Contains(ch.OwnerIDs, userID)
}

func (d *Directory) IsGlobalOwner(userID int64) bool {
	u := d.UserByID(userID)
	return u != nil && u.GlobalOwner
}

// CanModerate reports whether userID may edit, remove, or pin other people's
// messages in the container: a channel owner, a global owner who is a member
// of the channel, or the DM's creator.
func (d *Directory) CanModerate(userID int64, ref models.ContainerRef) bool {
	switch ref.Kind {
	case models.KindChannel:
		if d.IsChannelOwner(userID, ref.ID) {
			return true
		}
		return d.IsGlobalOwner(userID) && d.IsMember(userID, ref)
	case models.KindDm:
		dm := d.Dm(ref.ID)
		return dm != nil && dm.OwnerID == userID
	}
	return false
}

// FindMessage locates a delivered message by ID.
func (d *Directory) FindMessage(messageID int64) (models.ContainerRef, int, error) {
	for _, ch := range d.data.Channels {
		for i, m := range ch.Messages {
			if m.ID == messageID {
				return models.ChannelRef(ch.ID), i, nil
			}
		}
	}
	for _, dm := range d.data.Dms {
		for i, m := range dm.Messages {
			if m.ID == messageID {
				return models.DmRef(dm.ID), i, nil
			}
		}
	}
	return models.ContainerRef{}, -1, fmt.Errorf("%w: message %d", models.ErrNotFound, messageID)
}

// ResolveSession maps a session ID to its user, failing with
// ErrUnauthenticated for unknown or logged-out sessions.
func (d *Directory) ResolveSession(sessionID uuid.UUID) (int64, error) {
	for _, s := range d.data.Sessions {
		if s.ID == sessionID {
			if !d.UserExists(s.UserID) {
				break
			}
			return s.UserID, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown session", models.ErrUnauthenticated)
}

// PublicUsers resolves display records for a list of IDs, skipping any that
// no longer exist.
func (d *Directory) PublicUsers(ids []int64) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(ids))
	for _, id := range ids {
		if u := d.UserByID(id); u != nil {
			out = append(out, u.Public())
		}
	}
	return out
}
