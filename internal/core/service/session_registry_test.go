package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/aspas/internal/core/domain"
)

func TestSessionRegistry(t *testing.T) {
	r := NewSessionRegistry()

	token, err := r.Start(admin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	other, err := r.Start(admin)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	sess, err := r.Lookup(token)
	require.NoError(t, err)
	assert.Equal(t, admin, sess)

	r.End(token)
	_, err = r.Lookup(token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = r.Lookup(other)
	require.NoError(t, err)

	_, err = r.Start(domain.Session{Username: "x"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
