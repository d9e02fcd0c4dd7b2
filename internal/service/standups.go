package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/directory"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/store"
)

// StandupService runs the per-channel Idle -> Active -> Idle buffer.
//
// Expiry is driven from outside by FlushExpired. Start and Send also flush a
// standup whose time is already up before looking at it, so callers never see
// a stale Active state between scheduler ticks.
type StandupService struct {
	base
}

type StandupStatus struct {
	Active   bool
	FinishAt *time.Time
}

// Start opens a standup lasting seconds (fractions allowed) and returns when
// it will finish.
func (s *StandupService) Start(ctx context.Context, requesterID, channelID int64, seconds float64) (time.Time, error) {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return time.Time{}, fmt.Errorf("%w: standup length must be a non-negative number of seconds", models.ErrInvalidInput)
	}

	var finishAt time.Time
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		ch := dir.Channel(channelID)
		if ch == nil {
			return fmt.Errorf("%w: channel %d", models.ErrNotFound, channelID)
		}
		flushIfExpired(tx, dir, ch)
		if ch.Standup.Active {
			return fmt.Errorf("%w: a standup is already running in channel %d", models.ErrInvalidInput, channelID)
		}
		if !dir.IsMember(requesterID, models.ChannelRef(channelID)) {
			return fmt.Errorf("%w: user %d is not a member of channel %d", models.ErrForbidden, requesterID, channelID)
		}

		finishAt = tx.Now.Add(time.Duration(seconds * float64(time.Second)))
		ch.Standup = models.Standup{
			Active:    true,
			StarterID: requesterID,
			FinishAt:  finishAt,
			Lines:     []string{},
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}

	s.logger.Info("standup started",
		zap.Int64("channel_id", channelID),
		zap.Int64("user_id", requesterID),
		zap.Time("finish_at", finishAt),
	)
	return finishAt, nil
}

// Send buffers "[handle]: line". Nothing is posted until the flush.
func (s *StandupService) Send(ctx context.Context, requesterID, channelID int64, line string) error {
	if err := checkLength("message", line, 0, MaxMessageLength); err != nil {
		return err
	}
	return s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		ch := dir.Channel(channelID)
		if ch == nil {
			return fmt.Errorf("%w: channel %d", models.ErrNotFound, channelID)
		}
		flushIfExpired(tx, dir, ch)
		if !ch.Standup.Active {
			return fmt.Errorf("%w: no standup running in channel %d", models.ErrInvalidInput, channelID)
		}
		if !dir.IsMember(requesterID, models.ChannelRef(channelID)) {
			return fmt.Errorf("%w: user %d is not a member of channel %d", models.ErrForbidden, requesterID, channelID)
		}

		handle := dir.UserByID(requesterID).Handle
		ch.Standup.Lines = append(ch.Standup.Lines, fmt.Sprintf("[%s]: %s", handle, line))
		return nil
	})
}

// Active reports whether a standup is running right now. A standup past its
// finish time counts as over even if the sweep has not flushed it yet.
func (s *StandupService) Active(requesterID, channelID int64) (StandupStatus, error) {
	now := s.store.Now()
	var out StandupStatus
	err := s.store.View(func(data *models.Data) error {
		dir := directory.New(data)
		if _, err := requireMember(dir, requesterID, models.ChannelRef(channelID)); err != nil {
			return err
		}
		st := dir.Channel(channelID).Standup
		if st.Active && st.FinishAt.After(now) {
			finishAt := st.FinishAt
			out = StandupStatus{Active: true, FinishAt: &finishAt}
		}
		return nil
	})
	return out, err
}

// Flush ends the standup in channelID now, whatever its finish time. It
// reports false when there was nothing to end.
func (s *StandupService) Flush(ctx context.Context, channelID int64) (bool, error) {
	flushed := false
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		ch := dir.Channel(channelID)
		if ch == nil {
			return fmt.Errorf("%w: channel %d", models.ErrNotFound, channelID)
		}
		flushed = flush(tx, dir, ch)
		return nil
	})
	return flushed, err
}

// HasExpired reports whether FlushExpired would have anything to do.
func (s *StandupService) HasExpired() bool {
	now := s.store.Now()
	expired := false
	_ = s.store.View(func(data *models.Data) error {
		for _, ch := range data.Channels {
			if ch.Standup.Active && !ch.Standup.FinishAt.After(now) {
				expired = true
				return nil
			}
		}
		return nil
	})
	return expired
}

// FlushExpired flushes every standup whose finish time has passed. Safe to
// call repeatedly: a flushed standup is Idle and is skipped next time.
func (s *StandupService) FlushExpired(ctx context.Context) (int, error) {
	n := 0
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		for i := range tx.Data.Channels {
			if flushIfExpired(tx, dir, &tx.Data.Channels[i]) {
				n++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug("standups flushed", zap.Int("count", n))
	}
	return n, nil
}

func flushIfExpired(tx *store.Tx, dir *directory.Directory, ch *models.Channel) bool {
	if !ch.Standup.Active || ch.Standup.FinishAt.After(tx.Now) {
		return false
	}
	return flush(tx, dir, ch)
}

// flush posts the buffered lines as one message from the starter and resets
// the channel to Idle. An empty buffer posts nothing. Handles in the lines do
// not notify anyone.
func flush(tx *store.Tx, dir *directory.Directory, ch *models.Channel) bool {
	st := ch.Standup
	if !st.Active {
		return false
	}
	ch.Standup = models.Standup{Lines: []string{}}

	if len(st.Lines) == 0 {
		return true
	}
	c, err := dir.Container(models.ChannelRef(ch.ID))
	if err != nil {
		return true
	}
	post(tx, c, models.Message{
		ID:       tx.NextID(store.MessageSeq),
		SenderID: st.StarterID,
		Body:     strings.Join(st.Lines, "\n"),
		TimeSent: tx.Now,
		Reacts:   []models.React{},
	})
	return true
}
