package masters

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-ooh/internal/cache"
	"github.com/noah-isme/backend-ooh/internal/common"
)

type stubStore struct {
	items     map[uuid.UUID]Item
	listCalls int
}

func newStubStore() *stubStore {
	return &stubStore{items: map[uuid.UUID]Item{}}
}

func (s *stubStore) List(_ context.Context, kind string) ([]Item, error) {
	s.listCalls++
	var out []Item
	for _, it := range s.items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (Item, error) {
	it, ok := s.items[id]
	if !ok {
		return Item{}, common.NotFound("master item not found")
	}
	return it, nil
}

func (s *stubStore) Create(_ context.Context, kind, name string, parentID *uuid.UUID) (Item, error) {
	it := Item{ID: uuid.New(), Kind: kind, Name: name, ParentID: parentID, CreatedAt: time.Now()}
	s.items[it.ID] = it
	return it, nil
}

func (s *stubStore) Rename(_ context.Context, id uuid.UUID, name string) (Item, error) {
	it, ok := s.items[id]
	if !ok {
		return Item{}, common.NotFound("master item not found")
	}
	it.Name = name
	s.items[id] = it
	return it, nil
}

func (s *stubStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.items, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *stubStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := newStubStore()
	return NewService(store, cache.NewJSON(rdb, time.Minute)), store
}

func TestListRejectsUnknownKind(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.List(context.Background(), "colour")
	require.True(t, common.IsAppError(err))
}

func TestListUsesCacheOnSecondRead(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "zone", "North", nil)
	require.NoError(t, err)

	_, err = svc.List(ctx, "zone")
	require.NoError(t, err)
	_, err = svc.List(ctx, "zone")
	require.NoError(t, err)
	require.Equal(t, 1, store.listCalls, "second read should come from cache")
}

func TestCreateInvalidatesCache(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "zone", "North", nil)
	require.NoError(t, err)
	_, err = svc.List(ctx, "zone")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "zone", "South", nil)
	require.NoError(t, err)

	items, err := svc.List(ctx, "zone")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 2, store.listCalls)
}

func TestCreateValidatesParentKind(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	parent, err := svc.Create(ctx, "zone", "North", nil)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "category", "Billboards", &parent.ID)
	require.True(t, common.IsAppError(err), "cross-kind parent must be rejected")
}
