package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(memory.New(), cache.NewLRUCache[Session](100, time.Hour),
		Options{TTL: time.Hour, Cost: bcrypt.MinCost}, log.New(log.Config{Output: io.Discard}))
	require.NoError(t, err)
	return svc
}

func TestSignUpAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "  alice ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "correct horse", u.PasswordHash)

	sess, err := svc.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Len(t, sess.Token, 64)
	assert.True(t, sess.ExpiresAt.After(time.Now()))

	got, err := svc.Resolve(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	svc.Logout(sess.Token)
	_, err = svc.Resolve(sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSignUpRejections(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "bob", "password1")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "bob", "password2")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.SignUp(ctx, "b", "password1")
	assert.ErrorIs(t, err, core.ErrInvalidUsername)

	_, err = svc.SignUp(ctx, "with space", "password1")
	assert.ErrorIs(t, err, core.ErrInvalidUsername)

	_, err = svc.SignUp(ctx, "carol", "short")
	assert.ErrorIs(t, err, core.ErrInvalidPassword)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "dave", "password1")
	require.NoError(t, err)

	_, errWrongPass := svc.Login(ctx, "dave", "password2")
	_, errUnknown := svc.Login(ctx, "erin", "password1")
	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, errWrongPass.Error(), errUnknown.Error())
}

func TestResolveEmptyToken(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Resolve("")
	assert.ErrorIs(t, err, ErrNoSession)
}
