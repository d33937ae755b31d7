package finance

import (
	"context"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-ooh/internal/common"
	"github.com/noah-isme/backend-ooh/internal/costing"
	"github.com/noah-isme/backend-ooh/internal/obs"
)

type storeProvider interface {
	Create(ctx context.Context, d Document) (Document, error)
	List(ctx context.Context, p ListParams) ([]Document, int64, error)
	Get(ctx context.Context, id uuid.UUID) (Document, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	MarkOverdueDue(ctx context.Context, now time.Time) (int64, error)
	CreateOpCost(ctx context.Context, c OperationalCost) (OperationalCost, error)
	ListOpCosts(ctx context.Context, bookingID, spaceID *uuid.UUID, page, limit int) ([]OperationalCost, int64, error)
}

// KindFromPath maps URL segments onto document kinds.
var KindFromPath = map[string]string{
	"purchase-orders": KindPurchaseOrder,
	"release-orders":  KindReleaseOrder,
	"invoices":        KindInvoice,
}

// DocumentRequest is the payload for raising a finance document.
type DocumentRequest struct {
	BookingID *uuid.UUID `json:"bookingId,omitempty"`
	PartyName string     `json:"partyName" validate:"required"`
	PartyGST  string     `json:"partyGst"`
	Amount    float64    `json:"amount" validate:"gt=0"`
	GSTPercent *float64  `json:"gstPercent,omitempty" validate:"omitempty,gte=0,lte=100"`
	IssueDate string     `json:"issueDate" validate:"required"`
	DueDate   string     `json:"dueDate"`
}

// OpCostRequest is the payload for recording an operational cost.
type OpCostRequest struct {
	BookingID   *uuid.UUID `json:"bookingId,omitempty"`
	SpaceID     *uuid.UUID `json:"spaceId,omitempty"`
	ChannelID   *uuid.UUID `json:"channelId,omitempty"`
	Description string     `json:"description" validate:"required"`
	Amount      float64    `json:"amount" validate:"gt=0"`
	GSTPercent  float64    `json:"gstPercent" validate:"gte=0,lte=100"`
	IncurredOn  string     `json:"incurredOn" validate:"required"`
}

// Service applies the GST arithmetic and numbering rules to finance writes.
type Service struct {
	store        storeProvider
	validate     *validator.Validate
	defaultGST   float64
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store             storeProvider
	Validate          *validator.Validate
	DefaultGSTPercent float64
	DefaultLimit      int
	MaxLimit          int
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Service{
		store:        cfg.Store,
		validate:     cfg.Validate,
		defaultGST:   cfg.DefaultGSTPercent,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Create raises a document of the given kind with GST computed from the base
// amount. Invoices require a due date; the default GST percentage applies
// when the payload omits one.
func (s *Service) Create(ctx context.Context, kind string, req DocumentRequest) (Document, error) {
	if _, ok := numberPrefix[kind]; !ok {
		return Document{}, common.Validation("unknown document kind", nil)
	}
	if err := s.validateStruct(req); err != nil {
		return Document{}, err
	}
	issue, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		return Document{}, common.Validation("invalid issueDate, expected YYYY-MM-DD", nil)
	}
	var due *time.Time
	if req.DueDate != "" {
		d, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return Document{}, common.Validation("invalid dueDate, expected YYYY-MM-DD", nil)
		}
		if d.Before(issue) {
			return Document{}, common.Validation("dueDate precedes issueDate", nil)
		}
		due = &d
	}
	if kind == KindInvoice && due == nil {
		return Document{}, common.Validation("invoices require a dueDate", nil)
	}

	gstPercent := s.defaultGST
	if req.GSTPercent != nil {
		gstPercent = *req.GSTPercent
	}
	doc := Document{
		Kind:        kind,
		BookingID:   req.BookingID,
		PartyName:   req.PartyName,
		PartyGST:    req.PartyGST,
		Amount:      req.Amount,
		GSTPercent:  gstPercent,
		GSTAmount:   costing.Round2(costing.GSTAmount(req.Amount, gstPercent)),
		TotalAmount: costing.Round2(costing.AmountWithPercentage(req.Amount, gstPercent)),
		Status:      StatusIssued,
		IssueDate:   issue,
		DueDate:     due,
	}
	created, err := s.store.Create(ctx, doc)
	if err != nil {
		return Document{}, err
	}
	if kind == KindInvoice {
		if m := obs.Domain(); m != nil {
			m.InvoicesIssued.Inc()
		}
	}
	return created, nil
}

// List returns a page of documents of one kind.
func (s *Service) List(ctx context.Context, p ListParams) ([]Document, int64, error) {
	if _, ok := numberPrefix[p.Kind]; !ok {
		return nil, 0, common.Validation("unknown document kind", nil)
	}
	if p.Limit < 1 {
		p.Limit = s.defaultLimit
	}
	if p.Limit > s.maxLimit {
		p.Limit = s.maxLimit
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return s.store.List(ctx, p)
}

// Get returns one document.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Document, error) {
	return s.store.Get(ctx, id)
}

// MarkPaid settles an invoice.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) error {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if d.Kind != KindInvoice {
		return common.Validation("only invoices can be marked paid", nil)
	}
	if d.Status == StatusPaid {
		return common.Conflict("invoice already paid")
	}
	return s.store.SetStatus(ctx, id, StatusPaid)
}

// CheckOverdue marks one invoice Overdue when its due date has passed and it
// is still unpaid, returning the refreshed document.
func (s *Service) CheckOverdue(ctx context.Context, id uuid.UUID, now time.Time) (Document, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if d.Kind != KindInvoice {
		return Document{}, common.Validation("only invoices have a due date", nil)
	}
	if d.Status == StatusIssued && d.DueDate != nil && d.DueDate.Before(now) {
		if err := s.store.SetStatus(ctx, id, StatusOverdue); err != nil {
			return Document{}, err
		}
		d.Status = StatusOverdue
	}
	return d, nil
}

// SweepOverdue marks every unpaid invoice past its due date. The worker runs
// it on a schedule.
func (s *Service) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	return s.store.MarkOverdueDue(ctx, now)
}

// CreateOpCost records an operational cost with GST grossed up.
func (s *Service) CreateOpCost(ctx context.Context, req OpCostRequest) (OperationalCost, error) {
	if err := s.validateStruct(req); err != nil {
		return OperationalCost{}, err
	}
	incurred, err := time.Parse("2006-01-02", req.IncurredOn)
	if err != nil {
		return OperationalCost{}, common.Validation("invalid incurredOn, expected YYYY-MM-DD", nil)
	}
	return s.store.CreateOpCost(ctx, OperationalCost{
		BookingID:   req.BookingID,
		SpaceID:     req.SpaceID,
		ChannelID:   req.ChannelID,
		Description: req.Description,
		Amount:      req.Amount,
		GSTPercent:  req.GSTPercent,
		TotalAmount: costing.Round2(costing.AmountWithPercentage(req.Amount, req.GSTPercent)),
		IncurredOn:  incurred,
	})
}

// ListOpCosts returns a page of operational costs.
func (s *Service) ListOpCosts(ctx context.Context, bookingID, spaceID *uuid.UUID, page, limit int) ([]OperationalCost, int64, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	if page < 1 {
		page = 1
	}
	return s.store.ListOpCosts(ctx, bookingID, spaceID, page, limit)
}

func (s *Service) validateStruct(v any) error {
	if s.validate == nil {
		return nil
	}
	if err := s.validate.Struct(v); err != nil {
		return common.Validation("invalid payload", map[string]any{"reason": err.Error()})
	}
	return nil
}
