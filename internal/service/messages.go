package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/directory"
	"github.com/lalith-99/beans/internal/feed"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/stats"
	"github.com/lalith-99/beans/internal/store"
)

const (
	// MessagePageSize is how many messages one Page call returns.
	MessagePageSize = 50

	// NoMorePages is the End value of the last page.
	NoMorePages = -1

	// ReactThumbsUp is the only react ID clients may send.
	ReactThumbsUp = 1
)

type MessageService struct {
	base
}

// MessagePage is one slice of a container's history, newest first.
type MessagePage struct {
	Messages []models.Message
	Start    int
	End      int
}

// Send appends a message to a channel or DM and notifies tagged members.
func (s *MessageService) Send(ctx context.Context, senderID int64, ref models.ContainerRef, body string) (int64, error) {
	var id int64
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		c, err := validateSend(dir, senderID, ref, body)
		if err != nil {
			return err
		}
		id = tx.NextID(store.MessageSeq)
		deliver(tx, dir, c, models.Message{
			ID:       id,
			SenderID: senderID,
			Body:     body,
			TimeSent: tx.Now,
			Reacts:   []models.React{},
		})
		return nil
	})
	return id, err
}

// validateSend checks existence, then length, then membership.
func validateSend(dir *directory.Directory, senderID int64, ref models.ContainerRef, body string) (*directory.Container, error) {
	c, err := dir.Container(ref)
	if err != nil {
		return nil, err
	}
	if err := checkLength("message", body, 1, MaxMessageLength); err != nil {
		return nil, err
	}
	if !dir.IsMember(senderID, ref) {
		return nil, fmt.Errorf("%w: user %d is not a member of %s", models.ErrForbidden, senderID, ref)
	}
	return c, nil
}

// Edit replaces the body and tags again. Earlier tag notifications stay. An
// empty body removes the message.
func (s *MessageService) Edit(ctx context.Context, requesterID, messageID int64, body string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		if _, _, err := dir.FindMessage(messageID); err != nil {
			return err
		}
		if err := checkLength("message", body, 0, MaxMessageLength); err != nil {
			return err
		}
		c, idx, err := s.modifiable(dir, requesterID, messageID)
		if err != nil {
			return err
		}
		msgs := *c.Messages
		if body == "" {
			*c.Messages = slices.Delete(msgs, idx, idx+1)
			stats.New(tx.Data, tx.Now).Workspace()
			return nil
		}
		msgs[idx].Body = body
		msgs[idx].Edited = true
		msgs[idx].EditedAt = tx.Now
		notifyTagged(tx, dir, c, requesterID, body)
		return nil
	})
}

// Remove deletes the message for good. Its ID is never handed out again.
func (s *MessageService) Remove(ctx context.Context, requesterID, messageID int64) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		c, idx, err := s.modifiable(directory.New(tx.Data), requesterID, messageID)
		if err != nil {
			return err
		}
		*c.Messages = slices.Delete(*c.Messages, idx, idx+1)
		stats.New(tx.Data, tx.Now).Workspace()
		return nil
	})
}

// modifiable finds the message and checks that requesterID is its sender or
// can moderate the container it lives in.
func (s *MessageService) modifiable(dir *directory.Directory, requesterID, messageID int64) (*directory.Container, int, error) {
	c, idx, err := s.visible(dir, requesterID, messageID)
	if err != nil {
		return nil, 0, err
	}
	msg := (*c.Messages)[idx]
	if msg.SenderID != requesterID && !dir.CanModerate(requesterID, c.Ref) {
		return nil, 0, fmt.Errorf("%w: user %d cannot modify message %d", models.ErrForbidden, requesterID, messageID)
	}
	return c, idx, nil
}

// visible finds a message in a container requesterID belongs to.
func (s *MessageService) visible(dir *directory.Directory, requesterID, messageID int64) (*directory.Container, int, error) {
	ref, idx, err := dir.FindMessage(messageID)
	if err != nil {
		return nil, 0, err
	}
	c, err := requireMember(dir, requesterID, ref)
	if err != nil {
		return nil, 0, err
	}
	return c, idx, nil
}

// Page returns up to MessagePageSize messages starting start messages back
// from the newest. End is start+MessagePageSize while older messages remain
// and NoMorePages once the page reaches the oldest one.
func (s *MessageService) Page(requesterID int64, ref models.ContainerRef, start int) (*MessagePage, error) {
	var out *MessagePage
	err := s.store.View(func(data *models.Data) error {
		c, err := requireMember(directory.New(data), requesterID, ref)
		if err != nil {
			return err
		}
		out, err = pageOf(*c.Messages, start)
		return err
	})
	return out, err
}

func pageOf(stored []models.Message, start int) (*MessagePage, error) {
	total := len(stored)
	if start < 0 || start > total {
		return nil, fmt.Errorf("%w: start %d is outside 0-%d", models.ErrInvalidInput, start, total)
	}

	stop := min(start+MessagePageSize, total)
	page := make([]models.Message, 0, stop-start)
	// stored is oldest first; index i from the newest is total-1-i.
	for i := start; i < stop; i++ {
		page = append(page, stored[total-1-i].Clone())
	}

	end := start + MessagePageSize
	if end >= total {
		end = NoMorePages
	}
	return &MessagePage{Messages: page, Start: start, End: end}, nil
}

// SendLater validates now and reserves the message ID, but tagging and the
// insert wait until DeliverDue runs at or after sendAt.
func (s *MessageService) SendLater(ctx context.Context, senderID int64, ref models.ContainerRef, body string, sendAt time.Time) (int64, error) {
	var id int64
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if _, err := validateSend(directory.New(tx.Data), senderID, ref, body); err != nil {
			return err
		}
		if sendAt.Before(tx.Now) {
			return fmt.Errorf("%w: send time is in the past", models.ErrInvalidInput)
		}
		id = tx.NextID(store.MessageSeq)
		tx.Data.Pending = append(tx.Data.Pending, models.PendingMessage{
			Container: ref,
			Message: models.Message{
				ID:       id,
				SenderID: senderID,
				Body:     body,
				TimeSent: sendAt,
				Reacts:   []models.React{},
			},
		})
		return nil
	})
	return id, err
}

// HasDue reports whether DeliverDue would have anything to do.
func (s *MessageService) HasDue() bool {
	now := s.store.Now()
	due := false
	_ = s.store.View(func(data *models.Data) error {
		due = slices.ContainsFunc(data.Pending, func(p models.PendingMessage) bool { return !p.Message.TimeSent.After(now) })
		return nil
	})
	return due
}

// DeliverDue moves every pending message whose time has come into its
// container. Messages whose container is gone, or whose sender is no longer a
// member, are dropped. Running it twice delivers nothing the second time.
func (s *MessageService) DeliverDue(ctx context.Context) (int, error) {
	delivered, dropped := 0, 0
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		var keep []models.PendingMessage
		for _, p := range tx.Data.Pending {
			if p.Message.TimeSent.After(tx.Now) {
				keep = append(keep, p)
				continue
			}
			c, err := dir.Container(p.Container)
			if err != nil || !dir.IsMember(p.Message.SenderID, p.Container) {
				dropped++
				continue
			}
			deliver(tx, dir, c, p.Message)
			delivered++
		}
		if keep == nil {
			keep = []models.PendingMessage{}
		}
		tx.Data.Pending = keep
		return nil
	})
	if err != nil {
		return 0, err
	}
	if delivered > 0 || dropped > 0 {
		s.logger.Debug("deferred messages processed", zap.Int("delivered", delivered), zap.Int("dropped", dropped))
	}
	return delivered, nil
}

// React adds requesterID to the react list and tells the sender, if the
// sender is still around to see it.
func (s *MessageService) React(ctx context.Context, requesterID, messageID, reactID int64) error {
	if reactID != ReactThumbsUp {
		return fmt.Errorf("%w: invalid react id %d", models.ErrInvalidInput, reactID)
	}
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		c, idx, err := s.visible(dir, requesterID, messageID)
		if err != nil {
			return err
		}
		msg := &(*c.Messages)[idx]

		ri := slices.IndexFunc(msg.Reacts, func(r models.React) bool { return r.ReactID == reactID })
		if ri < 0 {
			msg.Reacts = append(msg.Reacts, models.React{ReactID: reactID})
			ri = len(msg.Reacts) - 1
		}
		if slices.Contains(msg.Reacts[ri].UserIDs, requesterID) {
			return fmt.Errorf("%w: already reacted to message %d", models.ErrInvalidInput, messageID)
		}
		msg.Reacts[ri].UserIDs = append(msg.Reacts[ri].UserIDs, requesterID)

		if dir.IsMember(msg.SenderID, c.Ref) {
			reactor := dir.UserByID(requesterID)
			feed.New(tx.Data, tx.Now).RecordReacted(msg.SenderID, c.Ref, reactor.Handle, c.Name)
		}
		return nil
	})
}

func (s *MessageService) Unreact(ctx context.Context, requesterID, messageID, reactID int64) error {
	if reactID != ReactThumbsUp {
		return fmt.Errorf("%w: invalid react id %d", models.ErrInvalidInput, reactID)
	}
	return s.store.Update(ctx, func(tx *store.Tx) error {
		c, idx, err := s.visible(directory.New(tx.Data), requesterID, messageID)
		if err != nil {
			return err
		}
		msg := &(*c.Messages)[idx]

		ri := slices.IndexFunc(msg.Reacts, func(r models.React) bool { return r.ReactID == reactID })
		if ri < 0 || !slices.Contains(msg.Reacts[ri].UserIDs, requesterID) {
			return fmt.Errorf("%w: no react on message %d", models.ErrInvalidInput, messageID)
		}
		msg.Reacts[ri].UserIDs = slices.DeleteFunc(msg.Reacts[ri].UserIDs, func(id int64) bool { return id == requesterID })
		if len(msg.Reacts[ri].UserIDs) == 0 {
			msg.Reacts = slices.Delete(msg.Reacts, ri, ri+1)
		}
		return nil
	})
}

func (s *MessageService) Pin(ctx context.Context, requesterID, messageID int64) error {
	return s.setPinned(ctx, requesterID, messageID, true)
}

func (s *MessageService) Unpin(ctx context.Context, requesterID, messageID int64) error {
	return s.setPinned(ctx, requesterID, messageID, false)
}

func (s *MessageService) setPinned(ctx context.Context, requesterID, messageID int64, pinned bool) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		c, idx, err := s.visible(dir, requesterID, messageID)
		if err != nil {
			return err
		}
		msg := &(*c.Messages)[idx]
		if msg.IsPinned == pinned {
			if pinned {
				return fmt.Errorf("%w: message %d is already pinned", models.ErrInvalidInput, messageID)
			}
			return fmt.Errorf("%w: message %d is not pinned", models.ErrInvalidInput, messageID)
		}
		if !dir.CanModerate(requesterID, c.Ref) {
			return fmt.Errorf("%w: user %d cannot pin in %s", models.ErrForbidden, requesterID, c.Ref)
		}
		msg.IsPinned = pinned
		return nil
	})
}
