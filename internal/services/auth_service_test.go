package services

import (
	"context"
	"testing"

	"github.com/fitlogapp/fitlog-backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*AuthService, *fakeUserStore, *fakeTokenStore) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	svc := NewAuthService(users, NewTokenService(tokens, testConfig()))
	return svc, users, tokens
}

func TestRegisterIssuesSession(t *testing.T) {
	svc, users, tokens := newAuthFixture()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "lifter@example.com", Password: "strongpass1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "lifter@example.com", resp.User.Email)
	assert.Equal(t, 1, tokens.count())

	stored, err := users.FindByEmail(context.Background(), "lifter@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "strongpass1", stored.Password, "password must be stored hashed")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "lifter@example.com", Password: "strongpass1",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "lifter@example.com", Password: "strongpass2",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "lifter@example.com", Password: "short",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterMissingEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Password: "strongpass1",
	})
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "lifter@example.com", Password: "strongpass1",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "lifter@example.com", Password: "strongpass1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RefreshToken)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "lifter@example.com", Password: "wrongpass1",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "ghost@example.com", Password: "strongpass1",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials,
		"unknown address and wrong password must be indistinguishable")
}
