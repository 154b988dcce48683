package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type resetFixture struct {
	users  *fakeUserStore
	resets *fakeResetStore
	tokens *fakeTokenStore
	svc    *PasswordResetService
	sent   chan string
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	cfg := testConfig()
	f := &resetFixture{
		users:  newFakeUserStore(),
		resets: newFakeResetStore(),
		tokens: newFakeTokenStore(),
		sent:   make(chan string, 1),
	}
	notifier := NotifierFunc(func(_ context.Context, _ string, link string) error {
		f.sent <- link
		return nil
	})
	tokenSvc := NewTokenService(f.tokens, cfg)
	f.svc = NewPasswordResetService(f.users, f.resets, tokenSvc, notifier, cfg)
	return f
}

func (f *resetFixture) addUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	u := &models.User{ID: uuid.New(), Email: email, Password: string(hash)}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

// waitForLink blocks until the async notifier fires and returns the raw token
// extracted from the reset link.
func (f *resetFixture) waitForLink(t *testing.T) string {
	t.Helper()
	select {
	case link := <-f.sent:
		i := strings.Index(link, "token=")
		require.GreaterOrEqual(t, i, 0, "reset link missing token parameter")
		return link[i+len("token="):]
	case <-time.After(2 * time.Second):
		t.Fatal("reset notification was never sent")
		return ""
	}
}

func TestRequestResetUnknownEmail(t *testing.T) {
	f := newResetFixture(t)

	f.svc.RequestReset(context.Background(), "nobody@example.com")

	assert.Equal(t, 0, f.resets.count(), "no record for unknown addresses")
	select {
	case <-f.sent:
		t.Fatal("no notification should be sent for unknown addresses")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRequestResetKnownEmail(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "lifter@example.com", "oldpassword")

	f.svc.RequestReset(context.Background(), user.Email)
	raw := f.waitForLink(t)

	require.NotEmpty(t, raw)
	assert.Equal(t, 1, f.resets.count())

	rec, err := f.resets.FindByHash(context.Background(), raw)
	require.NoError(t, err)
	assert.Nil(t, rec, "raw reset token must never be a lookup key")
}

func TestCompleteResetHappyPath(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "lifter@example.com", "oldpassword")

	// An active session that must not survive the reset.
	_, err := f.svc.tokens.Issue(context.Background(), user.ID)
	require.NoError(t, err)

	f.svc.RequestReset(context.Background(), user.Email)
	raw := f.waitForLink(t)

	require.NoError(t, f.svc.CompleteReset(context.Background(), raw, "newpassword1"))

	updated, err := f.users.FindByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("newpassword1")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("oldpassword")))

	assert.Equal(t, 0, f.tokens.count(), "all refresh tokens revoked after a reset")
}

func TestCompleteResetSingleUse(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "lifter@example.com", "oldpassword")

	f.svc.RequestReset(context.Background(), user.Email)
	raw := f.waitForLink(t)

	require.NoError(t, f.svc.CompleteReset(context.Background(), raw, "newpassword1"))

	err := f.svc.CompleteReset(context.Background(), raw, "anotherpass2")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCompleteResetExpiredToken(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "lifter@example.com", "oldpassword")

	f.svc.RequestReset(context.Background(), user.Email)
	raw := f.waitForLink(t)

	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	err := f.svc.CompleteReset(context.Background(), raw, "newpassword1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCompleteResetUnknownToken(t *testing.T) {
	f := newResetFixture(t)

	err := f.svc.CompleteReset(context.Background(), "never-issued", "newpassword1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCompleteResetWeakPassword(t *testing.T) {
	f := newResetFixture(t)

	err := f.svc.CompleteReset(context.Background(), "whatever", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Equal(t, 0, f.resets.count())
}

func TestCompleteResetStoreUnavailable(t *testing.T) {
	f := newResetFixture(t)
	user := f.addUser(t, "lifter@example.com", "oldpassword")

	f.svc.RequestReset(context.Background(), user.Email)
	raw := f.waitForLink(t)

	f.resets.err = errors.New("connection refused")

	err := f.svc.CompleteReset(context.Background(), raw, "newpassword1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
