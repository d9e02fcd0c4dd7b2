package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/directory"
	"github.com/lalith-99/beans/internal/feed"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/stats"
	"github.com/lalith-99/beans/internal/store"
)

type DmService struct {
	base
}

type DmSummary struct {
	ID   int64
	Name string
}

type DmDetails struct {
	Name    string
	Members []models.PublicUser
}

// Create opens a DM between creatorID and every user in inviteeIDs. The name
// is the sorted member handles joined with ", " and is fixed from here on.
func (s *DmService) Create(ctx context.Context, creatorID int64, inviteeIDs []int64) (int64, error) {
	var id int64
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		creator, err := requireUser(dir, creatorID)
		if err != nil {
			return err
		}

		members := []int64{creatorID}
		handles := []string{creator.Handle}
		for _, uid := range inviteeIDs {
			u := dir.UserByID(uid)
			if u == nil {
				return fmt.Errorf("%w: user %d does not exist", models.ErrInvalidInput, uid)
			}
			if slices.Contains(members, uid) {
				return fmt.Errorf("%w: duplicate user %d", models.ErrInvalidInput, uid)
			}
			members = append(members, uid)
			handles = append(handles, u.Handle)
		}
		slices.Sort(handles)

		id = tx.NextID(store.DmSeq)
		dm := models.Dm{
			ID:        id,
			Name:      strings.Join(handles, ", "),
			OwnerID:   creatorID,
			MemberIDs: members,
			Messages:  []models.Message{},
		}
		tx.Data.Dms = append(tx.Data.Dms, dm)

		f := feed.New(tx.Data, tx.Now)
		for _, uid := range inviteeIDs {
			f.RecordAdded(uid, models.DmRef(id), creator.Handle, dm.Name)
		}
		rec := stats.New(tx.Data, tx.Now)
		rec.Memberships(members...)
		rec.Workspace()
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("dm created", zap.Int64("dm_id", id), zap.Int("members", len(inviteeIDs)+1))
	return id, nil
}

func (s *DmService) List(userID int64) []DmSummary {
	out := []DmSummary{}
	_ = s.store.View(func(data *models.Data) error {
		for _, dm := range data.Dms {
			if slices.Contains(dm.MemberIDs, userID) {
				out = append(out, DmSummary{ID: dm.ID, Name: dm.Name})
			}
		}
		return nil
	})
	return out
}

func (s *DmService) Details(userID, dmID int64) (*DmDetails, error) {
	var out *DmDetails
	err := s.store.View(func(data *models.Data) error {
		dir := directory.New(data)
		c, err := requireMember(dir, userID, models.DmRef(dmID))
		if err != nil {
			return err
		}
		out = &DmDetails{Name: c.Name, Members: dir.PublicUsers(c.MemberIDs)}
		return nil
	})
	return out, err
}

// Leave drops userID from the member list. The DM itself stays, even when the
// creator leaves.
func (s *DmService) Leave(ctx context.Context, userID, dmID int64) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		if _, err := requireMember(dir, userID, models.DmRef(dmID)); err != nil {
			return err
		}
		dm := dir.Dm(dmID)
		dm.MemberIDs = slices.DeleteFunc(dm.MemberIDs, func(id int64) bool { return id == userID })
		stats.New(tx.Data, tx.Now).Memberships(userID)
		return nil
	})
}

// Remove deletes the DM with its messages and any deferred messages aimed at
// it. Only the creator, while still a member, may do this.
func (s *DmService) Remove(ctx context.Context, userID, dmID int64) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		if _, err := requireMember(dir, userID, models.DmRef(dmID)); err != nil {
			return err
		}
		if dir.Dm(dmID).OwnerID != userID {
			return fmt.Errorf("%w: only the creator can remove dm %d", models.ErrForbidden, dmID)
		}

		ref := models.DmRef(dmID)
		members := slices.Clone(dir.Dm(dmID).MemberIDs)
		tx.Data.Dms = slices.DeleteFunc(tx.Data.Dms, func(dm models.Dm) bool { return dm.ID == dmID })
		tx.Data.Pending = slices.DeleteFunc(tx.Data.Pending, func(p models.PendingMessage) bool { return p.Container == ref })

		rec := stats.New(tx.Data, tx.Now)
		rec.Memberships(members...)
		rec.Workspace()
		return nil
	})
}
