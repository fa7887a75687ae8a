package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(InMemoryTokenStore(10*time.Minute), 10*time.Minute)

	token, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, live, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	require.True(t, live)
	assert.EqualValues(t, 0, uid, "fresh sessions are anonymous")

	require.NoError(t, s.Bind(ctx, token, 42))
	uid, live, err = s.Resolve(ctx, token)
	require.NoError(t, err)
	require.True(t, live)
	assert.EqualValues(t, 42, uid)

	require.NoError(t, s.End(ctx, token))
	_, live, err = s.Resolve(ctx, token)
	require.NoError(t, err)
	assert.False(t, live, "a token is worthless after logout")
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(InMemoryTokenStore(10*time.Minute), 50*time.Millisecond)

	token, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Bind(ctx, token, 7))

	time.Sleep(120 * time.Millisecond)
	_, live, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	assert.False(t, live, "an expired session resolves to anonymous")
}

func TestFlashIsSingleRead(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(InMemoryTokenStore(10*time.Minute), 10*time.Minute)

	token, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Flash(ctx, token, "loginMessage", "first"))
	require.NoError(t, s.Flash(ctx, token, "loginMessage", "second"))

	// flash state survives login, the token is reused
	require.NoError(t, s.Bind(ctx, token, 1))

	msgs, err := s.TakeFlash(ctx, token, "loginMessage")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, msgs)

	msgs, err = s.TakeFlash(ctx, token, "loginMessage")
	require.NoError(t, err)
	assert.Empty(t, msgs, "a flash message is shown exactly once")
}
