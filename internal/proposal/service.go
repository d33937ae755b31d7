package proposal

import (
	"context"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-ooh/internal/booking"
	"github.com/noah-isme/backend-ooh/internal/common"
	"github.com/noah-isme/backend-ooh/internal/costing"
	"github.com/noah-isme/backend-ooh/internal/inventory"
	"github.com/noah-isme/backend-ooh/internal/obs"
)

type storeProvider interface {
	List(ctx context.Context, p ListParams) ([]Proposal, int64, error)
	Get(ctx context.Context, id uuid.UUID) (Proposal, error)
	Create(ctx context.Context, p Proposal) (Proposal, error)
	Update(ctx context.Context, p Proposal) (Proposal, error)
	ReplaceItems(ctx context.Context, id uuid.UUID, items []costing.LineItem, total float64) error
	MarkConverted(ctx context.Context, id, bookingID uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type spaceSource interface {
	Get(ctx context.Context, id uuid.UUID) (inventory.SpaceDetail, error)
}

type bookingCreator interface {
	Create(ctx context.Context, b booking.Booking) (booking.Booking, error)
}

// Request is the payload for creating or updating a proposal. Items reuse the
// booking item shape since both feed the same costing engine.
type Request struct {
	ClientName   string                `json:"clientName" validate:"required"`
	ClientEmail  string                `json:"clientEmail" validate:"omitempty,email"`
	CampaignName string                `json:"campaignName" validate:"required"`
	Items        []booking.ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// StatusRequest moves a proposal through its workflow.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Service orchestrates proposal writes and conversion into bookings.
type Service struct {
	store        storeProvider
	spaces       spaceSource
	bookings     bookingCreator
	validate     *validator.Validate
	defaultGST   float64
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store             storeProvider
	Spaces            spaceSource
	Bookings          bookingCreator
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
		spaces:       cfg.Spaces,
		bookings:     cfg.Bookings,
		validate:     cfg.Validate,
		defaultGST:   cfg.DefaultGSTPercent,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// List returns a page of proposals.
func (s *Service) List(ctx context.Context, p ListParams) ([]Proposal, int64, error) {
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

// Get returns one proposal.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Proposal, error) {
	return s.store.Get(ctx, id)
}

// Create prices the requested items and stores the proposal as a Draft.
func (s *Service) Create(ctx context.Context, req Request) (Proposal, error) {
	p, err := s.assemble(ctx, req)
	if err != nil {
		return Proposal{}, err
	}
	p.Status = StatusDraft
	return s.store.Create(ctx, p)
}

// Update rebuilds a proposal from the request. Converted proposals are frozen.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req Request) (Proposal, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return Proposal{}, err
	}
	if existing.Status == StatusConverted {
		return Proposal{}, common.Conflict("converted proposals cannot be edited")
	}
	p, err := s.assemble(ctx, req)
	if err != nil {
		return Proposal{}, err
	}
	p.ID = id
	p.Status = existing.Status
	return s.store.Update(ctx, p)
}

// EditItemPrice applies a cost-form submission to one proposal line item and
// propagates the apply-to-all flags, exactly as for bookings.
func (s *Service) EditItemPrice(ctx context.Context, proposalID, itemID uuid.UUID, form booking.PriceUpdate) (Proposal, error) {
	if err := s.validateStruct(form); err != nil {
		return Proposal{}, err
	}
	update, err := booking.ToUpdate(form)
	if err != nil {
		return Proposal{}, err
	}
	p, err := s.store.Get(ctx, proposalID)
	if err != nil {
		return Proposal{}, err
	}
	if p.Status == StatusConverted {
		return Proposal{}, common.Conflict("converted proposals cannot be edited")
	}
	var (
		edited costing.LineItem
		found  bool
	)
	for _, it := range p.Items {
		if it.ID == itemID {
			edited, found = it, true
			break
		}
	}
	if !found {
		return Proposal{}, common.NotFound("line item not found on this proposal")
	}

	merged := costing.Apply(edited, update)
	breakdown := costing.Compute(merged, merged.Unit, merged.StartDate, merged.EndDate)
	items := costing.Propagate(update, itemID, p.Items, breakdown.Total, breakdown.Area)

	total := sumPrices(items)
	if err := s.store.ReplaceItems(ctx, proposalID, items, total); err != nil {
		return Proposal{}, err
	}
	p.Items = items
	p.TotalAmount = total
	return p, nil
}

// SetStatus moves a proposal to Sent or Rejected. Converted is reserved for
// Convert.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, req StatusRequest) error {
	switch req.Status {
	case StatusSent, StatusRejected:
	default:
		return common.Validation("status must be Sent or Rejected", nil)
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == StatusConverted {
		return common.Conflict("converted proposals cannot change status")
	}
	return s.store.SetStatus(ctx, id, req.Status)
}

// Convert turns a proposal into an Upcoming booking. The line items carry
// over untouched so the quoted prices are exactly what gets booked.
func (s *Service) Convert(ctx context.Context, id uuid.UUID) (booking.Booking, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return booking.Booking{}, err
	}
	if p.Status == StatusConverted {
		return booking.Booking{}, common.Conflict("proposal already converted")
	}
	if p.Status == StatusRejected {
		return booking.Booking{}, common.Conflict("rejected proposals cannot be converted")
	}

	b, err := s.bookings.Create(ctx, booking.Booking{
		ClientName:   p.ClientName,
		ClientEmail:  p.ClientEmail,
		CampaignName: p.CampaignName,
		Status:       booking.StatusUpcoming,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Items:        p.Items,
		TotalAmount:  p.TotalAmount,
	})
	if err != nil {
		return booking.Booking{}, err
	}
	if err := s.store.MarkConverted(ctx, id, b.ID); err != nil {
		return booking.Booking{}, err
	}
	if m := obs.Domain(); m != nil {
		m.ProposalsConverted.Inc()
	}
	return b, nil
}

func (s *Service) assemble(ctx context.Context, req Request) (Proposal, error) {
	if err := s.validateStruct(req); err != nil {
		return Proposal{}, err
	}
	p := Proposal{
		ClientName:   req.ClientName,
		ClientEmail:  req.ClientEmail,
		CampaignName: req.CampaignName,
	}
	builder := booking.ItemBuilder{Spaces: s.spaces, DefaultGSTPercent: s.defaultGST}
	for _, ir := range req.Items {
		item, err := builder.Build(ctx, ir)
		if err != nil {
			return Proposal{}, err
		}
		p.Items = append(p.Items, item)
		if p.StartDate.IsZero() || item.StartDate.Before(p.StartDate) {
			p.StartDate = item.StartDate
		}
		if item.EndDate.After(p.EndDate) {
			p.EndDate = item.EndDate
		}
	}
	p.TotalAmount = sumPrices(p.Items)
	return p, nil
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

func sumPrices(items []costing.LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price
	}
	return costing.Round2(total)
}
