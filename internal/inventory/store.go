package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-ooh/internal/common"
	"github.com/noah-isme/backend-ooh/internal/costing"
)

// Space is one bookable media structure: a billboard face set, gantry,
// unipole or similar, together with its default commercial rates.
type Space struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Address     string             `json:"address"`
	City        string             `json:"city"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	CategoryID  *uuid.UUID         `json:"categoryId,omitempty"`
	MediaTypeID *uuid.UUID         `json:"mediaTypeId,omitempty"`
	ZoneID      *uuid.UUID         `json:"zoneId,omitempty"`
	FacingName  string             `json:"facing"`
	Dimensions  []costing.Dimension `json:"dimensions"`
	Unit        int                `json:"unit"`

	DisplayCostPerMonth float64 `json:"displayCostPerMonth"`
	PrintingCostPerSqft float64 `json:"printingCostPerSqft"`
	MountingCostPerSqft float64 `json:"mountingCostPerSqft"`

	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Area returns the billable square footage of the space at its own unit count.
func (s Space) Area() float64 {
	return costing.TotalArea(costing.LineItem{
		Dimensions: s.Dimensions,
		Facing:     s.FacingName,
	}, s.Unit)
}

// ListParams captures filters for space listing.
type ListParams struct {
	Query         string
	CategoryID    *uuid.UUID
	MediaTypeID   *uuid.UUID
	ZoneID        *uuid.UUID
	OnlyActive    bool
	AvailableFrom *time.Time
	AvailableTo   *time.Time
	Page          int
	Limit         int
}

// Store persists spaces in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const spaceColumns = `id, name, address, city, latitude, longitude, category_id, media_type_id,
	zone_id, facing, dimensions, unit, display_cost_per_month, printing_cost_per_sqft,
	mounting_cost_per_sqft, is_active, created_at, updated_at`

func scanSpace(row pgx.Row) (Space, error) {
	var (
		sp   Space
		dims []byte
	)
	err := row.Scan(&sp.ID, &sp.Name, &sp.Address, &sp.City, &sp.Latitude, &sp.Longitude,
		&sp.CategoryID, &sp.MediaTypeID, &sp.ZoneID, &sp.FacingName, &dims, &sp.Unit,
		&sp.DisplayCostPerMonth, &sp.PrintingCostPerSqft, &sp.MountingCostPerSqft,
		&sp.IsActive, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return Space{}, err
	}
	if len(dims) > 0 {
		if err := json.Unmarshal(dims, &sp.Dimensions); err != nil {
			return Space{}, fmt.Errorf("decode dimensions: %w", err)
		}
	}
	return sp, nil
}

// List returns a filtered page of spaces plus the unpaged total.
func (s Store) List(ctx context.Context, p ListParams) ([]Space, int64, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q := strings.TrimSpace(p.Query); q != "" {
		where = append(where, fmt.Sprintf("(name ILIKE %[1]s OR address ILIKE %[1]s OR city ILIKE %[1]s)", arg("%"+q+"%")))
	}
	if p.CategoryID != nil {
		where = append(where, "category_id = "+arg(*p.CategoryID))
	}
	if p.MediaTypeID != nil {
		where = append(where, "media_type_id = "+arg(*p.MediaTypeID))
	}
	if p.ZoneID != nil {
		where = append(where, "zone_id = "+arg(*p.ZoneID))
	}
	if p.OnlyActive {
		where = append(where, "is_active")
	}
	if p.AvailableFrom != nil && p.AvailableTo != nil {
		// A space is available when no booked line item overlaps the window.
		where = append(where, fmt.Sprintf(`NOT EXISTS (
			SELECT 1 FROM booking_items bi
			JOIN bookings b ON b.id = bi.booking_id
			WHERE bi.space_id = spaces.id
			  AND b.status <> 'Completed'
			  AND bi.start_date <= %s AND bi.end_date >= %s
		)`, arg(*p.AvailableTo), arg(*p.AvailableFrom)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM spaces"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM spaces%s ORDER BY created_at DESC LIMIT %s OFFSET %s",
		spaceColumns, clause, arg(p.Limit), arg(common.Offset(p.Page, p.Limit)))
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Space
	for rows.Next() {
		sp, err := scanSpace(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sp)
	}
	return out, total, rows.Err()
}

// Get returns one space by id.
func (s Store) Get(ctx context.Context, id uuid.UUID) (Space, error) {
	sp, err := scanSpace(s.Pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM spaces WHERE id = $1", spaceColumns), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Space{}, common.NotFound("space not found")
	}
	return sp, err
}

// Create inserts a space and returns the stored row.
func (s Store) Create(ctx context.Context, sp Space) (Space, error) {
	dims, err := json.Marshal(sp.Dimensions)
	if err != nil {
		return Space{}, err
	}
	created, err := scanSpace(s.Pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO spaces (id, name, address, city, latitude, longitude, category_id,
			media_type_id, zone_id, facing, dimensions, unit, display_cost_per_month,
			printing_cost_per_sqft, mounting_cost_per_sqft, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING %s`, spaceColumns),
		uuid.New(), sp.Name, sp.Address, sp.City, sp.Latitude, sp.Longitude, sp.CategoryID,
		sp.MediaTypeID, sp.ZoneID, sp.FacingName, dims, sp.Unit, sp.DisplayCostPerMonth,
		sp.PrintingCostPerSqft, sp.MountingCostPerSqft, sp.IsActive))
	if isUniqueViolation(err) {
		return Space{}, common.Conflict("a space with this name already exists")
	}
	return created, err
}

// Update overwrites a space's mutable fields.
func (s Store) Update(ctx context.Context, sp Space) (Space, error) {
	dims, err := json.Marshal(sp.Dimensions)
	if err != nil {
		return Space{}, err
	}
	updated, err := scanSpace(s.Pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE spaces SET name=$2, address=$3, city=$4, latitude=$5, longitude=$6,
			category_id=$7, media_type_id=$8, zone_id=$9, facing=$10, dimensions=$11,
			unit=$12, display_cost_per_month=$13, printing_cost_per_sqft=$14,
			mounting_cost_per_sqft=$15, is_active=$16, updated_at=now()
		WHERE id=$1
		RETURNING %s`, spaceColumns),
		sp.ID, sp.Name, sp.Address, sp.City, sp.Latitude, sp.Longitude, sp.CategoryID,
		sp.MediaTypeID, sp.ZoneID, sp.FacingName, dims, sp.Unit, sp.DisplayCostPerMonth,
		sp.PrintingCostPerSqft, sp.MountingCostPerSqft, sp.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return Space{}, common.NotFound("space not found")
	}
	return updated, err
}

// Delete removes a space that has never been booked.
func (s Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM spaces WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return common.Conflict("space is referenced by bookings or proposals")
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("space not found")
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
