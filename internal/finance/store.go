package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-ooh/internal/common"
)

// Document kinds.
const (
	KindPurchaseOrder = "purchase_order"
	KindReleaseOrder  = "release_order"
	KindInvoice       = "invoice"
)

// Invoice statuses. Purchase and release orders stay Issued.
const (
	StatusIssued  = "Issued"
	StatusPaid    = "Paid"
	StatusOverdue = "Overdue"
)

var numberPrefix = map[string]string{
	KindPurchaseOrder: "PO",
	KindReleaseOrder:  "RO",
	KindInvoice:       "INV",
}

// Document is one finance paper: a purchase order, release order or invoice
// raised against a booking.
type Document struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Number    string     `json:"number"`
	BookingID *uuid.UUID `json:"bookingId,omitempty"`
	PartyName string     `json:"partyName"`
	PartyGST  string     `json:"partyGst,omitempty"`

	Amount      float64 `json:"amount"`
	GSTPercent  float64 `json:"gstPercent"`
	GSTAmount   float64 `json:"gstAmount"`
	TotalAmount float64 `json:"totalAmount"`

	Status    string     `json:"status"`
	IssueDate time.Time  `json:"issueDate"`
	DueDate   *time.Time `json:"dueDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OperationalCost is money spent running a campaign or a structure: printing,
// mounting, electricity and the like, recorded against a cost channel.
type OperationalCost struct {
	ID          uuid.UUID  `json:"id"`
	BookingID   *uuid.UUID `json:"bookingId,omitempty"`
	SpaceID     *uuid.UUID `json:"spaceId,omitempty"`
	ChannelID   *uuid.UUID `json:"channelId,omitempty"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	GSTPercent  float64    `json:"gstPercent"`
	TotalAmount float64    `json:"totalAmount"`
	IncurredOn  time.Time  `json:"incurredOn"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ListParams captures finance document filters.
type ListParams struct {
	Kind      string
	Status    string
	BookingID *uuid.UUID
	Page      int
	Limit     int
}

// Store persists finance documents and operational costs in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const documentColumns = `id, kind, number, booking_id, party_name, party_gst,
	amount, gst_percent, gst_amount, total_amount, status, issue_date, due_date,
	created_at, updated_at`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Kind, &d.Number, &d.BookingID, &d.PartyName, &d.PartyGST,
		&d.Amount, &d.GSTPercent, &d.GSTAmount, &d.TotalAmount, &d.Status,
		&d.IssueDate, &d.DueDate, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// Create inserts a document, drawing the next sequential number for its kind
// and issue year inside the same transaction.
func (s Store) Create(ctx context.Context, d Document) (Document, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	year := d.IssueDate.Year()
	var seq int
	err = tx.QueryRow(ctx, `
		INSERT INTO finance_numbers (kind, year, last_seq) VALUES ($1, $2, 1)
		ON CONFLICT (kind, year) DO UPDATE SET last_seq = finance_numbers.last_seq + 1
		RETURNING last_seq`, d.Kind, year).Scan(&seq)
	if err != nil {
		return Document{}, err
	}
	d.Number = fmt.Sprintf("%s-%d-%04d", numberPrefix[d.Kind], year, seq)

	created, err := scanDocument(tx.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO finance_documents (id, kind, number, booking_id, party_name, party_gst,
			amount, gst_percent, gst_amount, total_amount, status, issue_date, due_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING %s`, documentColumns),
		uuid.New(), d.Kind, d.Number, d.BookingID, d.PartyName, d.PartyGST,
		d.Amount, d.GSTPercent, d.GSTAmount, d.TotalAmount, d.Status, d.IssueDate, d.DueDate))
	if isForeignKeyViolation(err) {
		return Document{}, common.Conflict("document references a missing booking")
	}
	if err != nil {
		return Document{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Document{}, err
	}
	return created, nil
}

// List returns a filtered page of documents plus the unpaged total.
func (s Store) List(ctx context.Context, p ListParams) ([]Document, int64, error) {
	where := []string{"kind = $1"}
	args := []any{p.Kind}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if p.Status != "" {
		where = append(where, "status = "+arg(p.Status))
	}
	if p.BookingID != nil {
		where = append(where, "booking_id = "+arg(*p.BookingID))
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int64
	if err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM finance_documents"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// number is zero-padded text, so recency ordering goes through created_at.
	query := fmt.Sprintf("SELECT %s FROM finance_documents%s ORDER BY created_at DESC, number DESC LIMIT %s OFFSET %s",
		documentColumns, clause, arg(p.Limit), arg(common.Offset(p.Page, p.Limit)))
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// Get returns one document by id.
func (s Store) Get(ctx context.Context, id uuid.UUID) (Document, error) {
	d, err := scanDocument(s.Pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM finance_documents WHERE id = $1", documentColumns), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, common.NotFound("document not found")
	}
	return d, err
}

// SetStatus updates a document's status.
func (s Store) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE finance_documents SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("document not found")
	}
	return nil
}

// MarkOverdueDue flips issued invoices past their due date to Overdue and
// returns how many changed.
func (s Store) MarkOverdueDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE finance_documents SET status = $1, updated_at = now()
		WHERE kind = $2 AND status = $3 AND due_date IS NOT NULL AND due_date < $4`,
		StatusOverdue, KindInvoice, StatusIssued, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const opCostColumns = `id, booking_id, space_id, channel_id, description,
	amount, gst_percent, total_amount, incurred_on, created_at`

func scanOpCost(row pgx.Row) (OperationalCost, error) {
	var c OperationalCost
	err := row.Scan(&c.ID, &c.BookingID, &c.SpaceID, &c.ChannelID, &c.Description,
		&c.Amount, &c.GSTPercent, &c.TotalAmount, &c.IncurredOn, &c.CreatedAt)
	return c, err
}

// CreateOpCost inserts an operational cost entry.
func (s Store) CreateOpCost(ctx context.Context, c OperationalCost) (OperationalCost, error) {
	created, err := scanOpCost(s.Pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO operational_costs (id, booking_id, space_id, channel_id, description,
			amount, gst_percent, total_amount, incurred_on)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING %s`, opCostColumns),
		uuid.New(), c.BookingID, c.SpaceID, c.ChannelID, c.Description,
		c.Amount, c.GSTPercent, c.TotalAmount, c.IncurredOn))
	if isForeignKeyViolation(err) {
		return OperationalCost{}, common.Conflict("cost references a missing booking, space or channel")
	}
	return created, err
}

// ListOpCosts returns operational costs, optionally scoped to a booking or a
// space, newest first.
func (s Store) ListOpCosts(ctx context.Context, bookingID, spaceID *uuid.UUID, page, limit int) ([]OperationalCost, int64, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if bookingID != nil {
		where = append(where, "booking_id = "+arg(*bookingID))
	}
	if spaceID != nil {
		where = append(where, "space_id = "+arg(*spaceID))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM operational_costs"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM operational_costs%s ORDER BY incurred_on DESC, created_at DESC LIMIT %s OFFSET %s",
		opCostColumns, clause, arg(limit), arg(common.Offset(page, limit)))
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []OperationalCost
	for rows.Next() {
		c, err := scanOpCost(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
