package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/repository"
	"github.com/lalith-99/beans/internal/stats"
	"github.com/lalith-99/beans/internal/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc   *Services
	store *store.Store
	clock *fakeClock
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	st, err := store.Open(context.Background(), repository.Memory{}, zap.NewNop(), store.WithClock(clock.Now))
	require.NoError(t, err)

	tokens := TokenConfig{Secret: "test-secret", TTL: time.Hour}
	return &fixture{
		svc:   New(st, tokens, zap.NewNop()),
		store: st,
		clock: clock,
		ctx:   context.Background(),
	}
}

// seedUser inserts a user with an exact handle, bypassing handle generation.
func (f *fixture) seedUser(t *testing.T, handle string) int64 {
	t.Helper()
	var id int64
	err := f.store.Update(f.ctx, func(tx *store.Tx) error {
		id = tx.NextID(store.UserSeq)
		tx.Data.Users = append(tx.Data.Users, models.User{
			ID:          id,
			Email:       handle + "@example.com",
			NameFirst:   handle,
			NameLast:    handle,
			Handle:      handle,
			GlobalOwner: id == 1,
			CreatedAt:   tx.Now,
		})
		stats.New(tx.Data, tx.Now).Seed(id)
		return nil
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) channel(t *testing.T, ownerID int64, name string, members ...int64) int64 {
	t.Helper()
	id, err := f.svc.Channels.Create(f.ctx, ownerID, name, true)
	require.NoError(t, err)
	for _, m := range members {
		require.NoError(t, f.svc.Channels.Join(f.ctx, m, id))
	}
	return id
}

func (f *fixture) send(t *testing.T, senderID int64, ref models.ContainerRef, body string) int64 {
	t.Helper()
	id, err := f.svc.Messages.Send(f.ctx, senderID, ref, body)
	require.NoError(t, err)
	return id
}

func (f *fixture) notifications(t *testing.T, userID int64) []string {
	t.Helper()
	page, err := f.svc.Notifications.Page(userID)
	require.NoError(t, err)
	out := make([]string, 0, len(page))
	for _, n := range page {
		out = append(out, n.Text)
	}
	return out
}

func (f *fixture) messages(t *testing.T, userID int64, ref models.ContainerRef) []models.Message {
	t.Helper()
	page, err := f.svc.Messages.Page(userID, ref, 0)
	require.NoError(t, err)
	return page.Messages
}
