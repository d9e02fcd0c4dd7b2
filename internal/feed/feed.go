// Package feed records notifications into each user's append-only feed and
// serves the newest page of it.
package feed

import (
	"fmt"
	"time"

	"github.com/lalith-99/beans/internal/models"
)

// PageSize is the maximum number of notifications returned per request.
const PageSize = 20

// Feed writes into the notification map of the snapshot it was built over.
type Feed struct {
	data *models.Data
	now  time.Time
}

func New(data *models.Data, now time.Time) *Feed {
	if data.Notifications == nil {
		data.Notifications = make(map[int64][]models.Notification)
	}
	return &Feed{data: data, now: now}
}

func (f *Feed) RecordAdded(recipientID int64, ref models.ContainerRef, actorHandle, containerName string) {
	f.append(recipientID, ref, fmt.Sprintf("%s added you to %s", actorHandle, containerName))
}

// RecordTagged expects excerpt to already be truncated by the caller.
func (f *Feed) RecordTagged(recipientID int64, ref models.ContainerRef, actorHandle, containerName, excerpt string) {
	f.append(recipientID, ref, fmt.Sprintf("%s tagged you in %s: %s", actorHandle, containerName, excerpt))
}

func (f *Feed) RecordReacted(recipientID int64, ref models.ContainerRef, actorHandle, containerName string) {
	f.append(recipientID, ref, fmt.Sprintf("%s reacted to your message in %s", actorHandle, containerName))
}

func (f *Feed) append(recipientID int64, ref models.ContainerRef, text string) {
	f.data.Notifications[recipientID] = append(f.data.Notifications[recipientID], models.Notification{
		RecipientID: recipientID,
		Container:   ref,
		Text:        text,
		CreatedAt:   f.now,
	})
}

// Page returns up to PageSize notifications for userID, most recent first.
// Identical entries are not collapsed.
func Page(data *models.Data, userID int64) []models.Notification {
	all := data.Notifications[userID]
	n := min(len(all), PageSize)
	out := make([]models.Notification, 0, n)
	for i := len(all) - 1; i >= len(all)-n; i-- {
		out = append(out, all[i])
	}
	return out
}
