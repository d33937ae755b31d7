package masters

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-ooh/internal/cache"
	"github.com/noah-isme/backend-ooh/internal/common"
)

// Kinds enumerates the lookup taxonomies the application manages.
var Kinds = []string{"category", "media_type", "zone", "facing", "cost_channel"}

type storeProvider interface {
	List(ctx context.Context, kind string) ([]Item, error)
	Get(ctx context.Context, id uuid.UUID) (Item, error)
	Create(ctx context.Context, kind, name string, parentID *uuid.UUID) (Item, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service orchestrates master data queries and the list cache.
type Service struct {
	store storeProvider
	cache *cache.JSON
}

// NewService constructs a Service.
func NewService(store storeProvider, c *cache.JSON) *Service {
	return &Service{store: store, cache: c}
}

// ValidKind reports whether kind names a managed taxonomy.
func ValidKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func listKey(kind string) string {
	return fmt.Sprintf("masters:%s", kind)
}

// List returns all items of a kind, served from cache when warm.
func (s *Service) List(ctx context.Context, kind string) ([]Item, error) {
	if !ValidKind(kind) {
		return nil, common.Validation("unknown master kind", map[string]any{"kind": kind})
	}
	var cached []Item
	if hit, err := s.cache.Get(ctx, listKey(kind), &cached); err == nil && hit {
		return cached, nil
	}
	items, err := s.store.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, listKey(kind), items)
	return items, nil
}

// Create adds an item and drops the kind's cached list.
func (s *Service) Create(ctx context.Context, kind, name string, parentID *uuid.UUID) (Item, error) {
	if !ValidKind(kind) {
		return Item{}, common.Validation("unknown master kind", map[string]any{"kind": kind})
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, common.Validation("name is required", nil)
	}
	if parentID != nil {
		parent, err := s.store.Get(ctx, *parentID)
		if err != nil {
			return Item{}, err
		}
		if parent.Kind != kind {
			return Item{}, common.Validation("parent must belong to the same kind", nil)
		}
	}
	item, err := s.store.Create(ctx, kind, name, parentID)
	if err != nil {
		return Item{}, err
	}
	_ = s.cache.Invalidate(ctx, listKey(kind))
	return item, nil
}

// Rename updates an item's name and drops the kind's cached list.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, common.Validation("name is required", nil)
	}
	item, err := s.store.Rename(ctx, id, name)
	if err != nil {
		return Item{}, err
	}
	_ = s.cache.Invalidate(ctx, listKey(item.Kind))
	return item, nil
}

// Delete removes an item and drops its kind's cached list.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Invalidate(ctx, listKey(item.Kind))
	return nil
}
