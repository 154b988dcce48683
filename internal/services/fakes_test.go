package services

import (
	"context"
	"sync"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/config"
	"github.com/fitlogapp/fitlog-backend/internal/models"
	"github.com/google/uuid"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTAccessExpiry:    15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
		ResetTokenTTL:      time.Hour,
		SweepInterval:      6 * time.Hour,
		AppBaseURL:         "http://localhost:8080",
	}
}

// fakeTokenStore mirrors the atomicity contract of the real store: delete
// operations mutate under one lock, so exactly one concurrent DeleteByHash
// observes the row.
type fakeTokenStore struct {
	mu     sync.Mutex
	byHash map[string]models.RefreshToken
	err    error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{byHash: make(map[string]models.RefreshToken)}
}

func (f *fakeTokenStore) Create(_ context.Context, t *models.RefreshToken) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byHash[t.TokenHash] = *t
	return nil
}

func (f *fakeTokenStore) FindByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.byHash[hash]; ok {
		out := rec
		return &out, nil
	}
	return nil, nil
}

func (f *fakeTokenStore) FindByPreviousHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.byHash {
		if rec.PreviousHash != nil && *rec.PreviousHash == hash {
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeTokenStore) DeleteByHash(_ context.Context, hash string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byHash[hash]; !ok {
		return 0, nil
	}
	delete(f.byHash, hash)
	return 1, nil
}

func (f *fakeTokenStore) DeleteAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for hash, rec := range f.byHash {
		if rec.UserID == userID {
			delete(f.byHash, hash)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for hash, rec := range f.byHash {
		if rec.ExpiresAt.Before(cutoff) {
			delete(f.byHash, hash)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byHash)
}

type fakeResetStore struct {
	mu   sync.Mutex
	byID map[uuid.UUID]models.PasswordResetToken
	err  error
}

func newFakeResetStore() *fakeResetStore {
	return &fakeResetStore{byID: make(map[uuid.UUID]models.PasswordResetToken)}
}

func (f *fakeResetStore) Create(_ context.Context, t *models.PasswordResetToken) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[t.ID] = *t
	return nil
}

func (f *fakeResetStore) FindByHash(_ context.Context, hash string) (*models.PasswordResetToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.byID {
		if rec.TokenHash == hash {
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeResetStore) Consume(_ context.Context, id uuid.UUID, at time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[id]
	if !ok || rec.UsedAt != nil {
		return 0, nil
	}
	rec.UsedAt = &at
	f.byID[id] = rec
	return 1, nil
}

func (f *fakeResetStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, rec := range f.byID {
		if rec.ExpiresAt.Before(cutoff) || rec.UsedAt != nil {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeResetStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeUserStore struct {
	mu      sync.Mutex
	byEmail map[string]models.User
	err     error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byEmail[u.Email] = *u
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byEmail[email]; ok {
		out := u
		return &out, nil
	}
	return nil, nil
}

func (f *fakeUserStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, u := range f.byEmail {
		if u.ID == id {
			u.Password = passwordHash
			f.byEmail[email] = u
		}
	}
	return nil
}
