package service

import (
	"github.com/lalith-99/beans/internal/directory"
	"github.com/lalith-99/beans/internal/feed"
	"github.com/lalith-99/beans/internal/models"
)

type NotificationService struct {
	base
}

// Page returns the caller's newest notifications, most recent first.
func (s *NotificationService) Page(userID int64) ([]models.Notification, error) {
	var out []models.Notification
	err := s.store.View(func(data *models.Data) error {
		if _, err := requireUser(directory.New(data), userID); err != nil {
			return err
		}
		out = feed.Page(data, userID)
		return nil
	})
	return out, err
}
