package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalith-99/beans/internal/models"
)

func TestTaggedAndAddedNotifications(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")

	general, err := f.svc.Channels.Create(f.ctx, a, "general", true)
	require.NoError(t, err)
	require.NoError(t, f.svc.Channels.Invite(f.ctx, a, general, b))
	f.send(t, a, models.ChannelRef(general), "hi @b")

	assert.Equal(t, []string{
		"a tagged you in general: hi @b",
		"a added you to general",
	}, f.notifications(t, b))
}

func TestSend_TagDedup(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ch := f.channel(t, a, "general", b)

	f.send(t, a, models.ChannelRef(ch), "@b and again @b")

	assert.Len(t, f.notifications(t, b), 1)
}

func TestSend_NonMemberTagIsNoop(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	outsider := f.seedUser(t, "c")
	ch := f.channel(t, a, "general")

	f.send(t, a, models.ChannelRef(ch), "hey @c")

	assert.Empty(t, f.notifications(t, outsider))
}

func TestSend_TagExcerptIsTruncated(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ch := f.channel(t, a, "general", b)

	f.send(t, a, models.ChannelRef(ch), "@b this body is much longer than twenty")

	assert.Equal(t, []string{"a tagged you in general: @b this body is much"}, f.notifications(t, b))
}

func TestSend_Errors(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	outsider := f.seedUser(t, "c")
	ch := models.ChannelRef(f.channel(t, a, "general"))

	tests := []struct {
		name    string
		sender  int64
		ref     models.ContainerRef
		body    string
		wantErr error
	}{
		{"empty body", a, ch, "", models.ErrInvalidInput},
		{"too long", a, ch, strings.Repeat("x", 1001), models.ErrInvalidInput},
		{"missing channel", a, models.ChannelRef(99), "hi", models.ErrNotFound},
		{"missing dm", a, models.DmRef(99), "hi", models.ErrNotFound},
		{"not a member", outsider, ch, "hi", models.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Messages.Send(f.ctx, tt.sender, tt.ref, tt.body)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := f.svc.Messages.Send(f.ctx, a, ch, strings.Repeat("x", 1000))
	assert.NoError(t, err)
}

func TestSend_IDsAreGlobalAcrossContainers(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ch := f.channel(t, a, "general")
	dm, err := f.svc.Dms.Create(f.ctx, a, []int64{b})
	require.NoError(t, err)

	first := f.send(t, a, models.ChannelRef(ch), "one")
	second := f.send(t, a, models.DmRef(dm), "two")
	require.NoError(t, f.svc.Messages.Remove(f.ctx, a, second))
	third := f.send(t, a, models.DmRef(dm), "three")

	assert.Equal(t, []int64{1, 2, 3}, []int64{first, second, third})
}

func TestPage(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	ref := models.ChannelRef(f.channel(t, a, "general"))
	for i := 0; i < 120; i++ {
		f.send(t, a, ref, fmt.Sprintf("m%d", i))
	}

	tests := []struct {
		start   int
		wantLen int
		wantEnd int
		newest  string
		wantErr error
	}{
		{start: 0, wantLen: 50, wantEnd: 50, newest: "m119"},
		{start: 50, wantLen: 50, wantEnd: 100, newest: "m69"},
		{start: 70, wantLen: 50, wantEnd: -1, newest: "m49"},
		{start: 100, wantLen: 20, wantEnd: -1, newest: "m19"},
		{start: 120, wantLen: 0, wantEnd: -1},
		{start: 121, wantErr: models.ErrInvalidInput},
		{start: -1, wantErr: models.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("start=%d", tt.start), func(t *testing.T) {
			page, err := f.svc.Messages.Page(a, ref, tt.start)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, page.Start)
			assert.Equal(t, tt.wantEnd, page.End)
			require.Len(t, page.Messages, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.newest, page.Messages[0].Body)
			}
		})
	}
}

func TestPage_ExactMultipleEndsWithSentinel(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	ref := models.ChannelRef(f.channel(t, a, "general"))
	for i := 0; i < 50; i++ {
		f.send(t, a, ref, fmt.Sprintf("m%d", i))
	}

	page, err := f.svc.Messages.Page(a, ref, 0)
	require.NoError(t, err)
	assert.Equal(t, NoMorePages, page.End)
	assert.Len(t, page.Messages, 50)
}

func TestPage_EmptyAndForbidden(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	outsider := f.seedUser(t, "c")
	ref := models.ChannelRef(f.channel(t, a, "general"))

	page, err := f.svc.Messages.Page(a, ref, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Messages)
	assert.Equal(t, NoMorePages, page.End)

	_, err = f.svc.Messages.Page(outsider, ref, 0)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestEdit(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	c := f.seedUser(t, "c")
	ref := models.ChannelRef(f.channel(t, a, "general", b, c))

	id := f.send(t, b, ref, "hi @a")
	f.clock.Advance(time.Minute)

	require.NoError(t, f.svc.Messages.Edit(f.ctx, b, id, "hi again @a"))
	msgs := f.messages(t, a, ref)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi again @a", msgs[0].Body)
	assert.True(t, msgs[0].Edited)
	assert.Equal(t, f.clock.Now(), msgs[0].EditedAt)

	// Old tag notification stays; the edit adds a new one.
	assert.Equal(t, []string{
		"b tagged you in general: hi again @a",
		"b tagged you in general: hi @a",
	}, f.notifications(t, a))

	assert.ErrorIs(t, f.svc.Messages.Edit(f.ctx, c, id, "hijack"), models.ErrForbidden)
	assert.ErrorIs(t, f.svc.Messages.Edit(f.ctx, b, 999, "x"), models.ErrNotFound)
	assert.ErrorIs(t, f.svc.Messages.Edit(f.ctx, b, id, strings.Repeat("x", 1001)), models.ErrInvalidInput)

	// Channel owner may edit others' messages.
	require.NoError(t, f.svc.Messages.Edit(f.ctx, a, id, "moderated"))
}

func TestEdit_ErrorOrder(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	outsider := f.seedUser(t, "c")
	ref := models.ChannelRef(f.channel(t, a, "general"))
	id := f.send(t, a, ref, "hello")
	long := strings.Repeat("x", MaxMessageLength+1)

	// Unknown message beats a bad body, and a bad body beats a stranger.
	assert.ErrorIs(t, f.svc.Messages.Edit(f.ctx, a, 999, long), models.ErrNotFound)
	assert.ErrorIs(t, f.svc.Messages.Edit(f.ctx, outsider, id, long), models.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.Messages.Edit(f.ctx, outsider, id, "x"), models.ErrForbidden)
	assert.Equal(t, "hello", f.messages(t, a, ref)[0].Body)
}

func TestEdit_EmptyBodyRemoves(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	ref := models.ChannelRef(f.channel(t, a, "general"))
	id := f.send(t, a, ref, "soon gone")

	require.NoError(t, f.svc.Messages.Edit(f.ctx, a, id, ""))
	assert.Empty(t, f.messages(t, a, ref))
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ref := models.ChannelRef(f.channel(t, a, "general", b))
	own := f.send(t, a, ref, "mine")

	assert.ErrorIs(t, f.svc.Messages.Remove(f.ctx, b, own), models.ErrForbidden)
	require.NoError(t, f.svc.Messages.Remove(f.ctx, a, own))
	assert.ErrorIs(t, f.svc.Messages.Remove(f.ctx, a, own), models.ErrNotFound)
}

func TestSendLater(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ref := models.ChannelRef(f.channel(t, a, "general", b))
	at := f.clock.Now().Add(10 * time.Second)

	id, err := f.svc.Messages.SendLater(f.ctx, a, ref, "later @b", at)
	require.NoError(t, err)

	// The ID is reserved immediately.
	next := f.send(t, a, ref, "now")
	assert.Equal(t, id+1, next)

	assert.False(t, f.svc.Messages.HasDue())
	n, err := f.svc.Messages.DeliverDue(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.notifications(t, b))

	f.clock.Advance(10 * time.Second)
	assert.True(t, f.svc.Messages.HasDue())
	n, err = f.svc.Messages.DeliverDue(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.svc.Messages.DeliverDue(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "second delivery must be a no-op")

	msgs := f.messages(t, a, ref)
	require.Len(t, msgs, 2)
	assert.Equal(t, id, msgs[0].ID)
	assert.Equal(t, at, msgs[0].TimeSent)
	assert.Equal(t, []string{"a tagged you in general: later @b"}, f.notifications(t, b))
}

func TestSendLater_Errors(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	ref := models.ChannelRef(f.channel(t, a, "general"))

	_, err := f.svc.Messages.SendLater(f.ctx, a, ref, "late", f.clock.Now().Add(-time.Second))
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.Messages.SendLater(f.ctx, a, models.ChannelRef(42), "late", f.clock.Now().Add(time.Second))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSendLater_DroppedWhenDmRemoved(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	dm, err := f.svc.Dms.Create(f.ctx, a, []int64{b})
	require.NoError(t, err)

	_, err = f.svc.Messages.SendLater(f.ctx, b, models.DmRef(dm), "bye", f.clock.Now().Add(time.Second))
	require.NoError(t, err)
	require.NoError(t, f.svc.Dms.Remove(f.ctx, a, dm))

	f.clock.Advance(time.Second)
	assert.False(t, f.svc.Messages.HasDue())
}

func TestReact(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ref := models.ChannelRef(f.channel(t, a, "general", b))
	id := f.send(t, a, ref, "react to me")

	require.NoError(t, f.svc.Messages.React(f.ctx, b, id, ReactThumbsUp))
	assert.ErrorIs(t, f.svc.Messages.React(f.ctx, b, id, ReactThumbsUp), models.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.Messages.React(f.ctx, b, id, 2), models.ErrInvalidInput)

	msgs := f.messages(t, a, ref)
	require.Len(t, msgs[0].Reacts, 1)
	assert.Equal(t, []int64{b}, msgs[0].Reacts[0].UserIDs)
	assert.Equal(t, []string{"b reacted to your message in general"}, f.notifications(t, a))

	require.NoError(t, f.svc.Messages.Unreact(f.ctx, b, id, ReactThumbsUp))
	assert.ErrorIs(t, f.svc.Messages.Unreact(f.ctx, b, id, ReactThumbsUp), models.ErrInvalidInput)
	assert.Empty(t, f.messages(t, a, ref)[0].Reacts)
}

func TestReact_SenderWhoLeftIsNotNotified(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ref := models.ChannelRef(f.channel(t, a, "general", b))
	id := f.send(t, b, ref, "bye")
	require.NoError(t, f.svc.Channels.Leave(f.ctx, b, ref.ID))

	require.NoError(t, f.svc.Messages.React(f.ctx, a, id, ReactThumbsUp))
	assert.Empty(t, f.notifications(t, b))
}

func TestPin(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ref := models.ChannelRef(f.channel(t, a, "general", b))
	id := f.send(t, b, ref, "pin me")

	assert.ErrorIs(t, f.svc.Messages.Pin(f.ctx, b, id), models.ErrForbidden)
	require.NoError(t, f.svc.Messages.Pin(f.ctx, a, id))
	assert.ErrorIs(t, f.svc.Messages.Pin(f.ctx, a, id), models.ErrInvalidInput)
	assert.True(t, f.messages(t, a, ref)[0].IsPinned)

	require.NoError(t, f.svc.Messages.Unpin(f.ctx, a, id))
	assert.ErrorIs(t, f.svc.Messages.Unpin(f.ctx, a, id), models.ErrInvalidInput)
}
