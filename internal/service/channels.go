package service

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/directory"
	"github.com/lalith-99/beans/internal/feed"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/stats"
	"github.com/lalith-99/beans/internal/store"
)

type ChannelService struct {
	base
}

type ChannelSummary struct {
	ID   int64
	Name string
}

// ChannelDetails resolves owner and member IDs to display records at read time.
type ChannelDetails struct {
	Name     string
	IsPublic bool
	Owners   []models.PublicUser
	Members  []models.PublicUser
}

// Create makes userID the first owner and member of a new channel.
func (s *ChannelService) Create(ctx context.Context, userID int64, name string, isPublic bool) (int64, error) {
	if err := checkLength("name", name, 1, MaxChannelName); err != nil {
		return 0, err
	}

	var id int64
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if _, err := requireUser(directory.New(tx.Data), userID); err != nil {
			return err
		}
		id = tx.NextID(store.ChannelSeq)
		tx.Data.Channels = append(tx.Data.Channels, models.Channel{
			ID:        id,
			Name:      name,
			IsPublic:  isPublic,
			OwnerIDs:  []int64{userID},
			MemberIDs: []int64{userID},
			Messages:  []models.Message{},
		})
		rec := stats.New(tx.Data, tx.Now)
		rec.Memberships(userID)
		rec.Workspace()
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("channel created", zap.Int64("channel_id", id), zap.Int64("user_id", userID))
	return id, nil
}

// List returns the channels userID belongs to.
func (s *ChannelService) List(userID int64) []ChannelSummary {
	return s.summaries(func(ch *models.Channel) bool { return slices.Contains(ch.MemberIDs, userID) })
}

// ListAll returns every channel, public or private.
func (s *ChannelService) ListAll() []ChannelSummary {
	return s.summaries(func(*models.Channel) bool { return true })
}

func (s *ChannelService) summaries(keep func(*models.Channel) bool) []ChannelSummary {
	out := []ChannelSummary{}
	_ = s.store.View(func(data *models.Data) error {
		for i := range data.Channels {
			if keep(&data.Channels[i]) {
				out = append(out, ChannelSummary{ID: data.Channels[i].ID, Name: data.Channels[i].Name})
			}
		}
		return nil
	})
	return out
}

func (s *ChannelService) Details(userID, channelID int64) (*ChannelDetails, error) {
	var out *ChannelDetails
	err := s.store.View(func(data *models.Data) error {
		dir := directory.New(data)
		if _, err := requireMember(dir, userID, models.ChannelRef(channelID)); err != nil {
			return err
		}
		ch := dir.Channel(channelID)
		out = &ChannelDetails{
			Name:     ch.Name,
			IsPublic: ch.IsPublic,
			Owners:   dir.PublicUsers(ch.OwnerIDs),
			Members:  dir.PublicUsers(ch.MemberIDs),
		}
		return nil
	})
	return out, err
}

// Join adds userID to a public channel. Global owners may also join private
// ones.
func (s *ChannelService) Join(ctx context.Context, userID, channelID int64) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		ch := dir.Channel(channelID)
		if ch == nil {
			return fmt.Errorf("%w: channel %d", models.ErrNotFound, channelID)
		}
		if slices.Contains(ch.MemberIDs, userID) {
			return fmt.Errorf("%w: already a member of channel %d", models.ErrInvalidInput, channelID)
		}
		if !ch.IsPublic && !dir.IsGlobalOwner(userID) {
			return fmt.Errorf("%w: channel %d is private", models.ErrForbidden, channelID)
		}
		ch.MemberIDs = append(ch.MemberIDs, userID)
		stats.New(tx.Data, tx.Now).Memberships(userID)
		return nil
	})
}

// Invite adds inviteeID and drops an "added" notification in their feed.
func (s *ChannelService) Invite(ctx context.Context, userID, channelID, inviteeID int64) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		ch := dir.Channel(channelID)
		if ch == nil {
			return fmt.Errorf("%w: channel %d", models.ErrNotFound, channelID)
		}
		if !dir.UserExists(inviteeID) {
			return fmt.Errorf("%w: user %d does not exist", models.ErrInvalidInput, inviteeID)
		}
		if slices.Contains(ch.MemberIDs, inviteeID) {
			return fmt.Errorf("%w: user %d is already a member", models.ErrInvalidInput, inviteeID)
		}
		if !slices.Contains(ch.MemberIDs, userID) {
			return fmt.Errorf("%w: user %d is not a member of channel %d", models.ErrForbidden, userID, channelID)
		}

		ch.MemberIDs = append(ch.MemberIDs, inviteeID)
		inviter := dir.UserByID(userID)
		feed.New(tx.Data, tx.Now).RecordAdded(inviteeID, models.ChannelRef(channelID), inviter.Handle, ch.Name)
		stats.New(tx.Data, tx.Now).Memberships(inviteeID)
		return nil
	})
}

// Leave removes userID from members and owners. The starter of an active
// standup has to wait for it to finish.
func (s *ChannelService) Leave(ctx context.Context, userID, channelID int64) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		if _, err := requireMember(dir, userID, models.ChannelRef(channelID)); err != nil {
			return err
		}
		ch := dir.Channel(channelID)
		if ch.Standup.Active && ch.Standup.StarterID == userID {
			return fmt.Errorf("%w: cannot leave while running a standup", models.ErrInvalidInput)
		}
		ch.MemberIDs = slices.DeleteFunc(ch.MemberIDs, func(id int64) bool { return id == userID })
		ch.OwnerIDs = slices.DeleteFunc(ch.OwnerIDs, func(id int64) bool { return id == userID })
		stats.New(tx.Data, tx.Now).Memberships(userID)
		return nil
	})
}

func (s *ChannelService) AddOwner(ctx context.Context, userID, channelID, targetID int64) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		ch, err := s.ownerTarget(dir, channelID, targetID)
		if err != nil {
			return err
		}
		if !slices.Contains(ch.MemberIDs, targetID) {
			return fmt.Errorf("%w: user %d is not a member", models.ErrInvalidInput, targetID)
		}
		if slices.Contains(ch.OwnerIDs, targetID) {
			return fmt.Errorf("%w: user %d is already an owner", models.ErrInvalidInput, targetID)
		}
		if !dir.CanModerate(userID, models.ChannelRef(channelID)) {
			return fmt.Errorf("%w: user %d cannot manage owners of channel %d", models.ErrForbidden, userID, channelID)
		}
		ch.OwnerIDs = append(ch.OwnerIDs, targetID)
		return nil
	})
}

func (s *ChannelService) RemoveOwner(ctx context.Context, userID, channelID, targetID int64) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		ch, err := s.ownerTarget(dir, channelID, targetID)
		if err != nil {
			return err
		}
		if !slices.Contains(ch.OwnerIDs, targetID) {
			return fmt.Errorf("%w: user %d is not an owner", models.ErrInvalidInput, targetID)
		}
		if len(ch.OwnerIDs) == 1 {
			return fmt.Errorf("%w: cannot remove the only owner", models.ErrInvalidInput)
		}
		if !dir.CanModerate(userID, models.ChannelRef(channelID)) {
			return fmt.Errorf("%w: user %d cannot manage owners of channel %d", models.ErrForbidden, userID, channelID)
		}
		ch.OwnerIDs = slices.DeleteFunc(ch.OwnerIDs, func(id int64) bool { return id == targetID })
		return nil
	})
}

func (s *ChannelService) ownerTarget(dir *directory.Directory, channelID, targetID int64) (*models.Channel, error) {
	ch := dir.Channel(channelID)
	if ch == nil {
		return nil, fmt.Errorf("%w: channel %d", models.ErrNotFound, channelID)
	}
	if !dir.UserExists(targetID) {
		return nil, fmt.Errorf("%w: user %d does not exist", models.ErrInvalidInput, targetID)
	}
	return ch, nil
}
