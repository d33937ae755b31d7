package user

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-ooh/internal/common"
)

type stubStore struct {
	users map[uuid.UUID]User
}

func newStubStore() *stubStore {
	return &stubStore{users: map[uuid.UUID]User{}}
}

func (s *stubStore) List(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (User, error) {
	u, ok := s.users[id]
	if !ok {
		return User{}, common.NotFound("user not found")
	}
	return u, nil
}

func (s *stubStore) Create(_ context.Context, u User) (User, error) {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return User{}, common.Conflict("a user with this email already exists")
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return u, nil
}

func (s *stubStore) Update(_ context.Context, u User) (User, error) {
	if _, ok := s.users[u.ID]; !ok {
		return User{}, common.NotFound("user not found")
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *stubStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.users, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *stubStore) {
	t.Helper()
	store := newStubStore()
	return NewService(store, validator.New(validator.WithRequiredStructEnabled())), store
}

func TestCreateHashesPassword(t *testing.T) {
	svc, store := newTestService(t)
	u, err := svc.Create(context.Background(), CreateRequest{
		Name:     "Priya Sharma",
		Email:    "Priya@Example.com",
		Role:     "manager",
		Password: "s3cret-pass",
		IsActive: true,
	})
	require.NoError(t, err)
	require.Equal(t, "priya@example.com", u.Email, "email is lowercased")

	stored := store.users[u.ID]
	require.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	match, err := argon2id.ComparePasswordAndHash("s3cret-pass", stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, match)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateRequest{
		Name:     "Priya Sharma",
		Email:    "priya@example.com",
		Role:     "viewer",
		Password: "short",
	})
	require.True(t, common.IsAppError(err))
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateRequest{
		Name:     "Priya Sharma",
		Email:    "priya@example.com",
		Role:     "superuser",
		Password: "s3cret-pass",
	})
	require.True(t, common.IsAppError(err))
}

func TestUpdateKeepsHashWithoutPassword(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	u, err := svc.Create(ctx, CreateRequest{
		Name:     "Priya Sharma",
		Email:    "priya@example.com",
		Role:     "manager",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	originalHash := store.users[u.ID].PasswordHash

	_, err = svc.Update(ctx, u.ID, UpdateRequest{
		Name:  "Priya S",
		Email: "priya@example.com",
		Role:  "admin",
	})
	require.NoError(t, err)
	require.Equal(t, originalHash, store.users[u.ID].PasswordHash)

	_, err = svc.Update(ctx, u.ID, UpdateRequest{
		Name:     "Priya S",
		Email:    "priya@example.com",
		Role:     "admin",
		Password: "another-pass",
	})
	require.NoError(t, err)
	require.NotEqual(t, originalHash, store.users[u.ID].PasswordHash)
}
