package booking

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

// Campaign statuses. Transitions only move forward.
const (
	StatusUpcoming  = "Upcoming"
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
)

var statusRank = map[string]int{
	StatusUpcoming:  0,
	StatusOngoing:   1,
	StatusCompleted: 2,
}

// Booking is one confirmed campaign with its costed line items.
type Booking struct {
	ID           uuid.UUID `json:"id"`
	ClientName   string    `json:"clientName"`
	ClientEmail  string    `json:"clientEmail,omitempty"`
	CampaignName string    `json:"campaignName"`
	Status       string    `json:"status"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	GSTNumber    string    `json:"gstNumber,omitempty"`

	Items       []costing.LineItem `json:"items"`
	TotalAmount float64            `json:"totalAmount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListParams captures booking list filters.
type ListParams struct {
	Query  string
	Status string
	Page   int
	Limit  int
}

// Store persists bookings and their line items in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const bookingColumns = `id, client_name, client_email, campaign_name, status,
	start_date, end_date, gst_number, total_amount, created_at, updated_at`

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.ClientName, &b.ClientEmail, &b.CampaignName, &b.Status,
		&b.StartDate, &b.EndDate, &b.GSTNumber, &b.TotalAmount, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// List returns a filtered page of bookings without their items, plus the
// unpaged total.
func (s Store) List(ctx context.Context, p ListParams) ([]Booking, int64, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q := strings.TrimSpace(p.Query); q != "" {
		where = append(where, fmt.Sprintf("(client_name ILIKE %[1]s OR campaign_name ILIKE %[1]s)", arg("%"+q+"%")))
	}
	if p.Status != "" {
		where = append(where, "status = "+arg(p.Status))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM bookings"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM bookings%s ORDER BY created_at DESC LIMIT %s OFFSET %s",
		bookingColumns, clause, arg(p.Limit), arg(common.Offset(p.Page, p.Limit)))
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

// Get returns one booking with its line items.
func (s Store) Get(ctx context.Context, id uuid.UUID) (Booking, error) {
	b, err := scanBooking(s.Pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM bookings WHERE id = $1", bookingColumns), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, common.NotFound("booking not found")
	}
	if err != nil {
		return Booking{}, err
	}
	b.Items, err = s.listItems(ctx, id)
	return b, err
}

func (s Store) listItems(ctx context.Context, bookingID uuid.UUID) ([]costing.LineItem, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT item FROM booking_items WHERE booking_id = $1 ORDER BY position`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []costing.LineItem
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var it costing.LineItem
		if err := json.Unmarshal(raw, &it); err != nil {
			return nil, fmt.Errorf("decode line item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create inserts a booking and its items in one transaction.
func (s Store) Create(ctx context.Context, b Booking) (Booking, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Booking{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanBooking(tx.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO bookings (id, client_name, client_email, campaign_name, status,
			start_date, end_date, gst_number, total_amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING %s`, bookingColumns),
		uuid.New(), b.ClientName, b.ClientEmail, b.CampaignName, b.Status,
		b.StartDate, b.EndDate, b.GSTNumber, b.TotalAmount))
	if isForeignKeyViolation(err) {
		return Booking{}, common.Conflict("booking references a missing space")
	}
	if err != nil {
		return Booking{}, err
	}
	if err := insertItems(ctx, tx, created.ID, b.Items); err != nil {
		if isForeignKeyViolation(err) {
			return Booking{}, common.Conflict("booking references a missing space")
		}
		return Booking{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Booking{}, err
	}
	created.Items = b.Items
	return created, nil
}

// Update overwrites the header fields, items and total in one transaction.
func (s Store) Update(ctx context.Context, b Booking) (Booking, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Booking{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updated, err := scanBooking(tx.QueryRow(ctx, fmt.Sprintf(`
		UPDATE bookings SET client_name=$2, client_email=$3, campaign_name=$4,
			start_date=$5, end_date=$6, gst_number=$7, total_amount=$8, updated_at=now()
		WHERE id=$1
		RETURNING %s`, bookingColumns),
		b.ID, b.ClientName, b.ClientEmail, b.CampaignName,
		b.StartDate, b.EndDate, b.GSTNumber, b.TotalAmount))
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, common.NotFound("booking not found")
	}
	if err != nil {
		return Booking{}, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM booking_items WHERE booking_id = $1`, b.ID); err != nil {
		return Booking{}, err
	}
	if err := insertItems(ctx, tx, b.ID, b.Items); err != nil {
		return Booking{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Booking{}, err
	}
	updated.Items = b.Items
	return updated, nil
}

// ReplaceItems swaps a booking's line item set and rewrites the stored total.
func (s Store) ReplaceItems(ctx context.Context, bookingID uuid.UUID, items []costing.LineItem, total float64) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE bookings SET total_amount = $2, updated_at = now() WHERE id = $1`, bookingID, total)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("booking not found")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM booking_items WHERE booking_id = $1`, bookingID); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, bookingID, items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetStatus updates a booking's campaign status.
func (s Store) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("booking not found")
	}
	return nil
}

// ActivateDue flips Upcoming bookings whose window has opened to Ongoing and
// returns how many changed.
func (s Store) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE bookings SET status = $1, updated_at = now()
		 WHERE status = $2 AND start_date <= $3`,
		StatusOngoing, StatusUpcoming, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CompleteDue completes bookings whose window has closed and returns how many
// changed. Upcoming bookings past their end date complete directly.
func (s Store) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE bookings SET status = $1, updated_at = now()
		 WHERE status <> $1 AND end_date < $2`,
		StatusCompleted, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func insertItems(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, items []costing.LineItem) error {
	// Rows inserted in one transaction share created_at, so the slice index is
	// persisted as position to keep the submitted order on read-back.
	for i, it := range items {
		raw, err := json.Marshal(it)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO booking_items (id, booking_id, space_id, position, start_date, end_date, price, item)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			it.ID, bookingID, it.SpaceID, i, it.StartDate, it.EndDate, it.Price, raw); err != nil {
			return err
		}
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
