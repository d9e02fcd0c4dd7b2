package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalith-99/beans/internal/models"
)

func TestChannelCreate(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")

	_, err := f.svc.Channels.Create(f.ctx, a, "", true)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = f.svc.Channels.Create(f.ctx, a, "abcdefghijklmnopqrstu", true)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	id, err := f.svc.Channels.Create(f.ctx, a, "general", false)
	require.NoError(t, err)

	details, err := f.svc.Channels.Details(a, id)
	require.NoError(t, err)
	assert.Equal(t, "general", details.Name)
	assert.False(t, details.IsPublic)
	require.Len(t, details.Owners, 1)
	assert.Equal(t, "a", details.Owners[0].Handle)
	assert.Len(t, details.Members, 1)
}

func TestChannelJoin(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "a") // first user: global owner
	b := f.seedUser(t, "b")
	c := f.seedUser(t, "c")

	private, err := f.svc.Channels.Create(f.ctx, b, "secret", false)
	require.NoError(t, err)
	public, err := f.svc.Channels.Create(f.ctx, b, "open", true)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Channels.Join(f.ctx, c, private), models.ErrForbidden)
	assert.ErrorIs(t, f.svc.Channels.Join(f.ctx, c, 99), models.ErrNotFound)
	require.NoError(t, f.svc.Channels.Join(f.ctx, c, public))
	assert.ErrorIs(t, f.svc.Channels.Join(f.ctx, c, public), models.ErrInvalidInput)
	require.NoError(t, f.svc.Channels.Join(f.ctx, owner, private))

	assert.Len(t, f.svc.Channels.List(c), 1)
	assert.Len(t, f.svc.Channels.List(b), 2)
	assert.Len(t, f.svc.Channels.ListAll(), 2)
}

func TestChannelInvite(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	c := f.seedUser(t, "c")
	ch, err := f.svc.Channels.Create(f.ctx, a, "general", false)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Channels.Invite(f.ctx, a, ch, 99), models.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.Channels.Invite(f.ctx, b, ch, c), models.ErrForbidden)
	require.NoError(t, f.svc.Channels.Invite(f.ctx, a, ch, b))
	assert.ErrorIs(t, f.svc.Channels.Invite(f.ctx, a, ch, b), models.ErrInvalidInput)

	assert.Equal(t, []string{"a added you to general"}, f.notifications(t, b))
	assert.Empty(t, f.notifications(t, c))
}

func TestChannelOwners(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "root")
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ch := f.channel(t, a, "general", b)

	assert.ErrorIs(t, f.svc.Channels.RemoveOwner(f.ctx, a, ch, a), models.ErrInvalidInput, "only owner")
	assert.ErrorIs(t, f.svc.Channels.AddOwner(f.ctx, b, ch, b), models.ErrForbidden)
	require.NoError(t, f.svc.Channels.AddOwner(f.ctx, a, ch, b))
	assert.ErrorIs(t, f.svc.Channels.AddOwner(f.ctx, a, ch, b), models.ErrInvalidInput)

	require.NoError(t, f.svc.Channels.RemoveOwner(f.ctx, b, ch, a))
	assert.ErrorIs(t, f.svc.Channels.RemoveOwner(f.ctx, b, ch, a), models.ErrInvalidInput)

	details, err := f.svc.Channels.Details(a, ch)
	require.NoError(t, err)
	require.Len(t, details.Owners, 1)
	assert.Equal(t, b, details.Owners[0].ID)
}

func TestChannelLeave(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ch := f.channel(t, a, "general", b)

	require.NoError(t, f.svc.Channels.Leave(f.ctx, b, ch))
	assert.ErrorIs(t, f.svc.Channels.Leave(f.ctx, b, ch), models.ErrForbidden)
	_, err := f.svc.Channels.Details(b, ch)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestProfileChangesShowEverywhere(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ch := f.channel(t, a, "general", b)

	require.NoError(t, f.svc.Users.SetHandle(f.ctx, b, "bobby"))
	require.NoError(t, f.svc.Users.SetName(f.ctx, b, "Bob", "Builder"))

	details, err := f.svc.Channels.Details(a, ch)
	require.NoError(t, err)
	require.Len(t, details.Members, 2)
	assert.Equal(t, "bobby", details.Members[1].Handle)
	assert.Equal(t, "Bob", details.Members[1].NameFirst)
}

func TestDmCreate(t *testing.T) {
	f := newFixture(t)
	zed := f.seedUser(t, "zed")
	amy := f.seedUser(t, "amy")
	mx := f.seedUser(t, "max")

	_, err := f.svc.Dms.Create(f.ctx, zed, []int64{amy, amy})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = f.svc.Dms.Create(f.ctx, zed, []int64{amy, 99})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	id, err := f.svc.Dms.Create(f.ctx, zed, []int64{mx, amy})
	require.NoError(t, err)

	details, err := f.svc.Dms.Details(amy, id)
	require.NoError(t, err)
	assert.Equal(t, "amy, max, zed", details.Name)
	assert.Len(t, details.Members, 3)

	assert.Equal(t, []string{"zed added you to amy, max, zed"}, f.notifications(t, amy))
	assert.Empty(t, f.notifications(t, zed))

	// Renaming later does not rename the DM.
	require.NoError(t, f.svc.Users.SetHandle(f.ctx, amy, "aaron"))
	details, err = f.svc.Dms.Details(amy, id)
	require.NoError(t, err)
	assert.Equal(t, "amy, max, zed", details.Name)
}

func TestDmLeaveAndRemove(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	id, err := f.svc.Dms.Create(f.ctx, a, []int64{b})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Dms.Remove(f.ctx, b, id), models.ErrForbidden)
	require.NoError(t, f.svc.Dms.Leave(f.ctx, b, id))
	assert.Empty(t, f.svc.Dms.List(b))

	_, err = f.svc.Messages.Send(f.ctx, b, models.DmRef(id), "let me back")
	assert.ErrorIs(t, err, models.ErrForbidden)

	require.NoError(t, f.svc.Dms.Remove(f.ctx, a, id))
	assert.Empty(t, f.svc.Dms.List(a))
	_, err = f.svc.Dms.Details(a, id)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestNotificationPageCap(t *testing.T) {
	f := newFixture(t)
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	ch := f.channel(t, a, "general", b)
	for n := 0; n < 25; n++ {
		f.send(t, a, models.ChannelRef(ch), "@b ping")
	}

	page, err := f.svc.Notifications.Page(b)
	require.NoError(t, err)
	assert.Len(t, page, 20)

	_, err = f.svc.Notifications.Page(404)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
