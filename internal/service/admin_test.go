package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalith-99/beans/internal/models"
)

func TestAdmin_Clear(t *testing.T) {
	f := newFixture(t)
	sess, err := f.svc.Auth.Register(f.ctx, "ada@example.com", "secret123", "Ada", "Lovelace")
	require.NoError(t, err)
	f.channel(t, sess.UserID, "general")

	require.NoError(t, f.svc.Admin.Clear(f.ctx))

	_, err = f.svc.Auth.ResolveToken(sess.Token)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	assert.Empty(t, f.svc.Channels.ListAll())
	assert.Empty(t, f.svc.Users.All())

	again, err := f.svc.Auth.Register(f.ctx, "ada@example.com", "secret123", "Ada", "Lovelace")
	require.NoError(t, err, "email is free again")
	assert.Equal(t, int64(1), again.UserID, "sequences restart")
}
