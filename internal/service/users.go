package service

import (
	"context"
	"fmt"

	"github.com/lalith-99/beans/internal/directory"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/stats"
	"github.com/lalith-99/beans/internal/store"
)

// UserService reads and edits profiles. Channels and DMs keep only user IDs,
// so a profile change shows up everywhere on the next read.
type UserService struct {
	base
}

func (s *UserService) Profile(userID int64) (models.PublicUser, error) {
	var out models.PublicUser
	err := s.store.View(func(data *models.Data) error {
		u, err := requireUser(directory.New(data), userID)
		if err != nil {
			return err
		}
		out = u.Public()
		return nil
	})
	return out, err
}

func (s *UserService) All() []models.PublicUser {
	var out []models.PublicUser
	_ = s.store.View(func(data *models.Data) error {
		out = make([]models.PublicUser, 0, len(data.Users))
		for i := range data.Users {
			out = append(out, data.Users[i].Public())
		}
		return nil
	})
	return out
}

// Stats returns userID's participation histories and involvement rate.
func (s *UserService) Stats(userID int64) (stats.UserReport, error) {
	var out stats.UserReport
	err := s.store.View(func(data *models.Data) error {
		u, err := requireUser(directory.New(data), userID)
		if err != nil {
			return err
		}
		out = stats.ForUser(data, userID, u.CreatedAt)
		return nil
	})
	return out, err
}

// WorkspaceStats returns the workspace histories and utilization rate.
func (s *UserService) WorkspaceStats() stats.WorkspaceReport {
	var out stats.WorkspaceReport
	_ = s.store.View(func(data *models.Data) error {
		out = stats.ForWorkspace(data)
		return nil
	})
	return out
}

func (s *UserService) SetName(ctx context.Context, userID int64, nameFirst, nameLast string) error {
	if err := checkLength("name_first", nameFirst, 1, MaxNameLength); err != nil {
		return err
	}
	if err := checkLength("name_last", nameLast, 1, MaxNameLength); err != nil {
		return err
	}
	return s.store.Update(ctx, func(tx *store.Tx) error {
		u, err := requireUser(directory.New(tx.Data), userID)
		if err != nil {
			return err
		}
		u.NameFirst, u.NameLast = nameFirst, nameLast
		return nil
	})
}

func (s *UserService) SetEmail(ctx context.Context, userID int64, email string) error {
	if !s.validEmail(email) {
		return fmt.Errorf("%w: invalid email %q", models.ErrInvalidInput, email)
	}
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		u, err := requireUser(dir, userID)
		if err != nil {
			return err
		}
		if other := dir.UserByEmail(email); other != nil && other.ID != userID {
			return fmt.Errorf("%w: email %q already in use", models.ErrInvalidInput, email)
		}
		u.Email = email
		return nil
	})
}

// SetHandle changes the handle used for @mentions. Existing DM names are not
// recomputed.
func (s *UserService) SetHandle(ctx context.Context, userID int64, handle string) error {
	if !s.validHandle(handle) {
		return fmt.Errorf("%w: handle must be %d-%d alphanumeric characters", models.ErrInvalidInput, MinHandleLength, MaxHandleLength)
	}
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		u, err := requireUser(dir, userID)
		if err != nil {
			return err
		}
		if other := dir.UserByHandle(handle); other != nil && other.ID != userID {
			return fmt.Errorf("%w: handle %q already in use", models.ErrInvalidInput, handle)
		}
		u.Handle = handle
		return nil
	})
}
