package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/config"
	"github.com/fitlogapp/fitlog-backend/internal/models"
	"github.com/fitlogapp/fitlog-backend/internal/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenPair is the result of a successful issuance or rotation: a short-lived
// access credential plus a fresh single-use opaque refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	UserID       uuid.UUID
}

// TokenService manages refresh-token chains: issuance, rotation, reuse
// detection, and revocation. The persistence layer is the single source of
// truth; validity verdicts are never cached across requests.
type TokenService struct {
	tokens        TokenStore
	jwtSecret     []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

func NewTokenService(tokens TokenStore, cfg *config.Config) *TokenService {
	return &TokenService{
		tokens:        tokens,
		jwtSecret:     []byte(cfg.JWTSecret),
		accessExpiry:  cfg.JWTAccessExpiry,
		refreshExpiry: cfg.RefreshTokenExpiry,
		now:           time.Now,
	}
}

// Issue creates a new refresh-token chain root for a user and returns the raw
// opaque value. The raw value leaves the process exactly once, through the
// caller; only its hash is stored.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.issue(ctx, userID, nil)
}

// IssuePair issues a refresh token and mints a matching access token.
// Used by sign-up and sign-in.
func (s *TokenService) IssuePair(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	refresh, err := s.Issue(ctx, userID)
	if err != nil {
		return nil, err
	}
	access, err := s.mintAccessToken(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, UserID: userID}, nil
}

// Rotate exchanges a presented refresh token for a new pair. Every legitimate
// refresh rotates the opaque value, so each value is single-use. A presented
// value that was already rotated away marks the whole session family as
// compromised and revokes it.
func (s *TokenService) Rotate(ctx context.Context, raw string) (*TokenPair, error) {
	hash := token.Hash(raw)

	rec, err := s.tokens.FindByHash(ctx, hash)
	if err != nil {
		slog.Error("refresh token lookup failed", "error", err)
		return nil, ErrStoreUnavailable
	}
	if rec == nil {
		return nil, s.rejectUnknownHash(ctx, hash)
	}

	if s.now().After(rec.ExpiresAt) {
		if _, err := s.tokens.DeleteByHash(ctx, hash); err != nil {
			slog.Error("failed to revoke expired refresh token", "error", err)
		}
		return nil, ErrExpiredToken
	}

	// Atomic consume: of N concurrent rotations presenting the same value,
	// only the caller that actually deletes the row proceeds.
	deleted, err := s.tokens.DeleteByHash(ctx, hash)
	if err != nil {
		slog.Error("failed to consume refresh token", "error", err)
		return nil, ErrStoreUnavailable
	}
	if deleted == 0 {
		return nil, ErrInvalidToken
	}

	next, err := s.issue(ctx, rec.UserID, &hash)
	if err != nil {
		return nil, err
	}
	access, err := s.mintAccessToken(rec.UserID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: next, UserID: rec.UserID}, nil
}

// rejectUnknownHash decides between a plain invalid token and a replayed one.
// If a live token descends from the presented hash, the presented value was
// rotated away earlier and is now being replayed: the session family is
// poisoned rather than silently rejected.
func (s *TokenService) rejectUnknownHash(ctx context.Context, hash string) error {
	descendant, err := s.tokens.FindByPreviousHash(ctx, hash)
	if err != nil {
		slog.Error("refresh token descendant lookup failed", "error", err)
		return ErrStoreUnavailable
	}
	if descendant == nil {
		return ErrInvalidToken
	}

	if _, err := s.tokens.DeleteAllForUser(ctx, descendant.UserID); err != nil {
		slog.Error("failed to revoke session family after reuse detection",
			"error", err, "user_id", descendant.UserID.String())
		return ErrStoreUnavailable
	}
	slog.Warn("refresh token reuse detected, all sessions revoked",
		"user_id", descendant.UserID.String())
	return ErrInvalidToken
}

// Revoke consumes a single refresh token (explicit sign-out). Revoking an
// already-gone token is not an error.
func (s *TokenService) Revoke(ctx context.Context, raw string) error {
	if _, err := s.tokens.DeleteByHash(ctx, token.Hash(raw)); err != nil {
		slog.Error("failed to revoke refresh token", "error", err)
		return ErrStoreUnavailable
	}
	return nil
}

// RevokeAll consumes every refresh token for a user ("sign out everywhere";
// also the reuse-detection side effect).
func (s *TokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.tokens.DeleteAllForUser(ctx, userID); err != nil {
		slog.Error("failed to revoke all refresh tokens", "error", err, "user_id", userID.String())
		return ErrStoreUnavailable
	}
	return nil
}

func (s *TokenService) issue(ctx context.Context, userID uuid.UUID, previousHash *string) (string, error) {
	raw, err := token.NewOpaque()
	if err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	record := &models.RefreshToken{
		ID:           uuid.New(),
		UserID:       userID,
		TokenHash:    token.Hash(raw),
		PreviousHash: previousHash,
		ExpiresAt:    s.now().Add(s.refreshExpiry),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		slog.Error("failed to store refresh token", "error", err)
		return "", ErrStoreUnavailable
	}

	return raw, nil
}

func (s *TokenService) mintAccessToken(userID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(s.accessExpiry).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
