package proposal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-ooh/internal/common"
	"github.com/noah-isme/backend-ooh/internal/costing"
)

// Proposal statuses. A proposal leaves Draft when sent to the client and is
// frozen once converted into a booking.
const (
	StatusDraft     = "Draft"
	StatusSent      = "Sent"
	StatusRejected  = "Rejected"
	StatusConverted = "Converted"
)

// Proposal is a quotation for a campaign: the same costed line items as a
// booking, before the client has committed.
type Proposal struct {
	ID           uuid.UUID `json:"id"`
	ClientName   string    `json:"clientName"`
	ClientEmail  string    `json:"clientEmail,omitempty"`
	CampaignName string    `json:"campaignName"`
	Status       string    `json:"status"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`

	Items       []costing.LineItem `json:"items"`
	TotalAmount float64            `json:"totalAmount"`

	ConvertedBookingID *uuid.UUID `json:"convertedBookingId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListParams captures proposal list filters.
type ListParams struct {
	Query  string
	Status string
	Page   int
	Limit  int
}

// Store persists proposals in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const proposalColumns = `id, client_name, client_email, campaign_name, status,
	start_date, end_date, items, total_amount, converted_booking_id, created_at, updated_at`

func scanProposal(row pgx.Row) (Proposal, error) {
	var (
		p     Proposal
		items []byte
	)
	err := row.Scan(&p.ID, &p.ClientName, &p.ClientEmail, &p.CampaignName, &p.Status,
		&p.StartDate, &p.EndDate, &items, &p.TotalAmount, &p.ConvertedBookingID,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Proposal{}, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &p.Items); err != nil {
			return Proposal{}, fmt.Errorf("decode proposal items: %w", err)
		}
	}
	return p, nil
}

// List returns a filtered page of proposals plus the unpaged total.
func (s Store) List(ctx context.Context, p ListParams) ([]Proposal, int64, error) {
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
	if err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM proposals"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM proposals%s ORDER BY created_at DESC LIMIT %s OFFSET %s",
		proposalColumns, clause, arg(p.Limit), arg(common.Offset(p.Page, p.Limit)))
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Proposal
	for rows.Next() {
		pr, err := scanProposal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, pr)
	}
	return out, total, rows.Err()
}

// Get returns one proposal by id.
func (s Store) Get(ctx context.Context, id uuid.UUID) (Proposal, error) {
	p, err := scanProposal(s.Pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM proposals WHERE id = $1", proposalColumns), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Proposal{}, common.NotFound("proposal not found")
	}
	return p, err
}

// Create inserts a proposal.
func (s Store) Create(ctx context.Context, p Proposal) (Proposal, error) {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return Proposal{}, err
	}
	return scanProposal(s.Pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO proposals (id, client_name, client_email, campaign_name, status,
			start_date, end_date, items, total_amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING %s`, proposalColumns),
		uuid.New(), p.ClientName, p.ClientEmail, p.CampaignName, p.Status,
		p.StartDate, p.EndDate, items, p.TotalAmount))
}

// Update overwrites a proposal's mutable fields.
func (s Store) Update(ctx context.Context, p Proposal) (Proposal, error) {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return Proposal{}, err
	}
	updated, err := scanProposal(s.Pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE proposals SET client_name=$2, client_email=$3, campaign_name=$4,
			start_date=$5, end_date=$6, items=$7, total_amount=$8, updated_at=now()
		WHERE id=$1
		RETURNING %s`, proposalColumns),
		p.ID, p.ClientName, p.ClientEmail, p.CampaignName,
		p.StartDate, p.EndDate, items, p.TotalAmount))
	if errors.Is(err, pgx.ErrNoRows) {
		return Proposal{}, common.NotFound("proposal not found")
	}
	return updated, err
}

// ReplaceItems swaps a proposal's line items and rewrites its total.
func (s Store) ReplaceItems(ctx context.Context, id uuid.UUID, items []costing.LineItem, total float64) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	tag, err := s.Pool.Exec(ctx,
		`UPDATE proposals SET items = $2, total_amount = $3, updated_at = now() WHERE id = $1`,
		id, raw, total)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("proposal not found")
	}
	return nil
}

// MarkConverted freezes the proposal and records the booking it became. The
// status guard in SQL keeps double conversion out even under concurrent
// requests.
func (s Store) MarkConverted(ctx context.Context, id, bookingID uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE proposals SET status = $3, converted_booking_id = $2, updated_at = now()
		WHERE id = $1 AND status <> $3`,
		id, bookingID, StatusConverted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.Conflict("proposal already converted")
	}
	return nil
}

// SetStatus updates the proposal workflow status.
func (s Store) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE proposals SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("proposal not found")
	}
	return nil
}
