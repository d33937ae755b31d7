package masters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-ooh/internal/common"
)

// Item is one entry of a lookup taxonomy (category, media type, zone,
// facing, cost channel). Categories nest one level through ParentID.
type Item struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Store persists master data in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// List returns all items of one kind ordered by name.
func (s Store) List(ctx context.Context, kind string) ([]Item, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, kind, name, parent_id, created_at
		FROM master_items
		WHERE kind = $1
		ORDER BY name`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Kind, &it.Name, &it.ParentID, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Get returns one item by id.
func (s Store) Get(ctx context.Context, id uuid.UUID) (Item, error) {
	var it Item
	err := s.Pool.QueryRow(ctx, `
		SELECT id, kind, name, parent_id, created_at
		FROM master_items
		WHERE id = $1`, id).Scan(&it.ID, &it.Kind, &it.Name, &it.ParentID, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, common.NotFound("master item not found")
	}
	return it, err
}

// Create inserts a new item and returns it.
func (s Store) Create(ctx context.Context, kind, name string, parentID *uuid.UUID) (Item, error) {
	var it Item
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO master_items (id, kind, name, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, kind, name, parent_id, created_at`,
		uuid.New(), kind, name, parentID,
	).Scan(&it.ID, &it.Kind, &it.Name, &it.ParentID, &it.CreatedAt)
	if isUniqueViolation(err) {
		return Item{}, common.Conflict("a master item with this name already exists")
	}
	return it, err
}

// Rename updates the name of an item.
func (s Store) Rename(ctx context.Context, id uuid.UUID, name string) (Item, error) {
	var it Item
	err := s.Pool.QueryRow(ctx, `
		UPDATE master_items SET name = $2
		WHERE id = $1
		RETURNING id, kind, name, parent_id, created_at`, id, name,
	).Scan(&it.ID, &it.Kind, &it.Name, &it.ParentID, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, common.NotFound("master item not found")
	}
	if isUniqueViolation(err) {
		return Item{}, common.Conflict("a master item with this name already exists")
	}
	return it, err
}

// Delete removes an item. Items still referenced by spaces or costs surface
// as a conflict rather than cascading.
func (s Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM master_items WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return common.Conflict("master item is still referenced")
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("master item not found")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
