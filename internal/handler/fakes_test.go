package handler

import (
	"context"
	"sync"
	"time"

	"github.com/morphea/morphea-backend/internal/model"
	"github.com/morphea/morphea-backend/internal/repository"
	"github.com/morphea/morphea-backend/internal/utils"
)

// fakeStore is an in-memory stand-in for the repository layer. It
// implements UserStore, TokenStore, SubscriptionStore and DreamStore
// behind one mutex, mirroring the contracts of the real repositories:
// Create seeds the default free subscription, and Record applies the
// conditional increment atomically so the concurrency property can be
// exercised without a database.
type fakeStore struct {
	mu     sync.Mutex
	seq    uint64
	users  map[string]model.User         // by email
	subs   map[uint64]model.Subscription // by user id
	dreams []model.Dream
	tokens map[string]model.RefreshToken // by hash
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]model.User),
		subs:   make(map[uint64]model.Subscription),
		tokens: make(map[string]model.RefreshToken),
	}
}

func (f *fakeStore) nextID() uint64 { f.seq++; return f.seq }

func (f *fakeStore) Create(_ context.Context, email, password, role string, cost int) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	id := f.nextID()
	f.users[email] = model.User{
		ID: id, Email: email, PasswordHash: hash, Role: role, IsActive: true,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	f.subs[id] = model.Subscription{
		ID: f.nextID(), UserID: id, PlanName: "gratis",
		DreamsAllowed: 1, DreamsUsed: 0, CreatedAt: time.Now().UTC(),
	}
	return id, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeStore) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[tokenHash] = model.RefreshToken{ID: f.nextID(), UserID: userID, TokenHash: tokenHash, ExpiresAt: exp}
	return nil
}

func (f *fakeStore) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[tokenHash]
	if !ok || t.RevokedAt != nil || time.Now().UTC().After(t.ExpiresAt) {
		return 0, repository.ErrUserNotFound
	}
	return t.UserID, nil
}

func (f *fakeStore) RevokeByHash(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[tokenHash]; ok {
		now := time.Now().UTC()
		t.RevokedAt = &now
		f.tokens[tokenHash] = t
	}
	return nil
}

func (f *fakeStore) GetByUserID(_ context.Context, userID uint64) (model.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[userID]
	if !ok {
		return model.Subscription{}, repository.ErrNoSubscription
	}
	return s, nil
}

func (f *fakeStore) Grant(_ context.Context, userID uint64, planName string, dreamsAllowed uint32, expiresAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[userID]
	if !ok {
		s = model.Subscription{ID: f.nextID(), UserID: userID, CreatedAt: time.Now().UTC()}
	}
	s.PlanName = planName
	s.DreamsAllowed = dreamsAllowed
	s.DreamsUsed = 0
	s.ExpiresAt = expiresAt
	f.subs[userID] = s
	return nil
}

func (f *fakeStore) Record(ctx context.Context, d *model.Dream) (bool, error) {
	// database/sql refuses to begin a transaction on a dead context;
	// the fake does the same so callers cannot get away with one.
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[d.UserID]
	if !ok {
		return false, nil
	}
	if s.DreamsUsed >= s.DreamsAllowed || s.Expired(time.Now().UTC()) {
		return false, nil
	}
	s.DreamsUsed++
	f.subs[d.UserID] = s
	d.ID = f.nextID()
	d.CreatedAt = time.Now().UTC()
	f.dreams = append(f.dreams, *d)
	return true, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID uint64) ([]model.Dream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Dream, 0)
	for i := len(f.dreams) - 1; i >= 0; i-- {
		if f.dreams[i].UserID == userID {
			out = append(out, f.dreams[i])
		}
	}
	return out, nil
}

func (f *fakeStore) dreamCount(userID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, d := range f.dreams {
		if d.UserID == userID {
			n++
		}
	}
	return n
}

// stubInterpreter returns a fixed interpretation or error.
type stubInterpreter struct {
	text string
	err  error
}

func (s stubInterpreter) Interpret(_ context.Context, _, _, _ string) (string, error) {
	return s.text, s.err
}
