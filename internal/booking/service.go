package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-ooh/internal/common"
	"github.com/noah-isme/backend-ooh/internal/costing"
	"github.com/noah-isme/backend-ooh/internal/inventory"
	"github.com/noah-isme/backend-ooh/internal/obs"
)

type storeProvider interface {
	List(ctx context.Context, p ListParams) ([]Booking, int64, error)
	Get(ctx context.Context, id uuid.UUID) (Booking, error)
	Create(ctx context.Context, b Booking) (Booking, error)
	Update(ctx context.Context, b Booking) (Booking, error)
	ReplaceItems(ctx context.Context, bookingID uuid.UUID, items []costing.LineItem, total float64) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	ActivateDue(ctx context.Context, now time.Time) (int64, error)
	CompleteDue(ctx context.Context, now time.Time) (int64, error)
}

// SpaceSource resolves media spaces for line item snapshots.
type SpaceSource interface {
	Get(ctx context.Context, id uuid.UUID) (inventory.SpaceDetail, error)
}

// ItemRequest places one media space on a booking for a campaign window.
// Rates default to the space's own commercial terms; any field sent here
// overrides the snapshot.
type ItemRequest struct {
	SpaceID   uuid.UUID `json:"spaceId" validate:"required"`
	StartDate string    `json:"startDate" validate:"required"`
	EndDate   string    `json:"endDate" validate:"required"`

	DisplayCostPerMonth *float64 `json:"displayCostPerMonth,omitempty"`
	DisplayGSTPercent   *float64 `json:"displayCostGstPercentage,omitempty"`
	PrintingCostPerSqft *float64 `json:"printingCostPerSqft,omitempty"`
	PrintingGSTPercent  *float64 `json:"printingGstPercentage,omitempty"`
	MountingCostPerSqft *float64 `json:"mountingCostPerSqft,omitempty"`
	MountingGSTPercent  *float64 `json:"mountingGstPercentage,omitempty"`

	OneTimeInstallationCost float64 `json:"oneTimeInstallationCost" validate:"gte=0"`
	MonthlyAdditionalCost   float64 `json:"monthlyAdditionalCost" validate:"gte=0"`
	OtherCharges            float64 `json:"otherCharges" validate:"gte=0"`
}

// Request is the payload for creating or updating a booking.
type Request struct {
	ClientName   string        `json:"clientName" validate:"required"`
	ClientEmail  string        `json:"clientEmail" validate:"omitempty,email"`
	CampaignName string        `json:"campaignName" validate:"required"`
	GSTNumber    string        `json:"gstNumber"`
	Items        []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PriceUpdate is the cost-form payload for one line item. Field names follow
// the admin app's form fields.
type PriceUpdate struct {
	DisplayCostPerMonth   *float64 `json:"displayCostPerMonth,omitempty"`
	DisplayGSTPercent     *float64 `json:"displayCostGstPercentage,omitempty"`
	PrintingCostPerSqft   float64  `json:"printingCostPerSqft" validate:"gte=0"`
	PrintingGSTPercent    float64  `json:"printingGstPercentage" validate:"gte=0,lte=100"`
	MountingCostPerSqft   float64  `json:"mountingCostPerSqft" validate:"gte=0"`
	MountingGSTPercent    float64  `json:"mountingGstPercentage" validate:"gte=0,lte=100"`
	DiscountOn            string   `json:"discountOn"`
	DiscountPercent       float64  `json:"discount" validate:"gte=0,lte=100"`
	DiscountedDisplayCost *float64 `json:"discountedDisplayCost,omitempty"`

	OneTimeInstallationCost *float64 `json:"oneTimeInstallationCost,omitempty"`
	MonthlyAdditionalCost   *float64 `json:"monthlyAdditionalCost,omitempty"`
	OtherCharges            *float64 `json:"otherCharges,omitempty"`

	ApplyPrintingMountingToAll bool `json:"applyPrintingMountingCostForAll"`
	ApplyDiscountToAll         bool `json:"applyDiscountForAll"`
}

// StatusRequest asks for a campaign status transition.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Service orchestrates booking writes through the costing engine.
type Service struct {
	store        storeProvider
	spaces       SpaceSource
	validate     *validator.Validate
	defaultGST   float64
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store             storeProvider
	Spaces            SpaceSource
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
		validate:     cfg.Validate,
		defaultGST:   cfg.DefaultGSTPercent,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// List returns a page of bookings.
func (s *Service) List(ctx context.Context, p ListParams) ([]Booking, int64, error) {
	if p.Limit < 1 {
		p.Limit = s.defaultLimit
	}
	if p.Limit > s.maxLimit {
		p.Limit = s.maxLimit
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Status != "" {
		if _, ok := statusRank[p.Status]; !ok {
			return nil, 0, common.Validation("unknown status filter", nil)
		}
	}
	return s.store.List(ctx, p)
}

// Get returns one booking with items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Booking, error) {
	return s.store.Get(ctx, id)
}

// Create builds the costed line items from their spaces and persists the
// booking as Upcoming.
func (s *Service) Create(ctx context.Context, req Request) (Booking, error) {
	b, err := s.assemble(ctx, req)
	if err != nil {
		return Booking{}, err
	}
	b.Status = StatusUpcoming
	created, err := s.store.Create(ctx, b)
	if err != nil {
		return Booking{}, err
	}
	if m := obs.Domain(); m != nil {
		m.BookingsCreated.Inc()
	}
	return created, nil
}

// Update rebuilds the booking's items from the request and overwrites the
// stored booking. Status is not touched here; use SetStatus.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req Request) (Booking, error) {
	b, err := s.assemble(ctx, req)
	if err != nil {
		return Booking{}, err
	}
	b.ID = id
	return s.store.Update(ctx, b)
}

// EditItemPrice applies a cost-form submission to one line item and
// propagates the apply-to-all flags across the rest of the booking. The
// edited item's price is recomputed server-side from the merged terms.
func (s *Service) EditItemPrice(ctx context.Context, bookingID, itemID uuid.UUID, form PriceUpdate) (Booking, error) {
	if err := s.validateStruct(form); err != nil {
		return Booking{}, err
	}
	update, err := ToUpdate(form)
	if err != nil {
		return Booking{}, err
	}
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return Booking{}, err
	}
	edited, found := findItem(b.Items, itemID)
	if !found {
		return Booking{}, common.NotFound("line item not found on this booking")
	}

	merged := costing.Apply(edited, update)
	breakdown := costing.Compute(merged, merged.Unit, merged.StartDate, merged.EndDate)
	items := costing.Propagate(update, itemID, b.Items, breakdown.Total, breakdown.Area)

	total := sumPrices(items)
	if err := s.store.ReplaceItems(ctx, bookingID, items, total); err != nil {
		return Booking{}, err
	}
	b.Items = items
	b.TotalAmount = total
	return b, nil
}

// SetStatus moves a booking forward along Upcoming → Ongoing → Completed.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, req StatusRequest) error {
	toRank, ok := statusRank[req.Status]
	if !ok {
		return common.Validation("unknown status", map[string]any{"status": req.Status})
	}
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if toRank <= statusRank[b.Status] {
		return common.Conflict(fmt.Sprintf("cannot move booking from %s to %s", b.Status, req.Status))
	}
	return s.store.SetStatus(ctx, id, req.Status)
}

// Sweep advances campaign statuses whose windows have opened or closed. The
// worker runs it on a schedule.
func (s *Service) Sweep(ctx context.Context, now time.Time) (activated, completed int64, err error) {
	completed, err = s.store.CompleteDue(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	activated, err = s.store.ActivateDue(ctx, now)
	if err != nil {
		return 0, completed, err
	}
	if m := obs.Domain(); m != nil {
		m.CampaignsSwept.WithLabelValues(StatusOngoing).Add(float64(activated))
		m.CampaignsSwept.WithLabelValues(StatusCompleted).Add(float64(completed))
	}
	return activated, completed, nil
}

func (s *Service) assemble(ctx context.Context, req Request) (Booking, error) {
	if err := s.validateStruct(req); err != nil {
		return Booking{}, err
	}
	b := Booking{
		ClientName:   req.ClientName,
		ClientEmail:  req.ClientEmail,
		CampaignName: req.CampaignName,
		GSTNumber:    req.GSTNumber,
	}
	builder := ItemBuilder{Spaces: s.spaces, DefaultGSTPercent: s.defaultGST}
	for i, ir := range req.Items {
		item, err := builder.Build(ctx, ir)
		if err != nil {
			var appErr *common.AppError
			if errors.As(err, &appErr) && appErr.Details == nil {
				appErr.Details = map[string]any{"itemIndex": i}
			}
			return Booking{}, err
		}
		b.Items = append(b.Items, item)
		if b.StartDate.IsZero() || item.StartDate.Before(b.StartDate) {
			b.StartDate = item.StartDate
		}
		if item.EndDate.After(b.EndDate) {
			b.EndDate = item.EndDate
		}
	}
	b.TotalAmount = sumPrices(b.Items)
	return b, nil
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

// ToUpdate maps a validated cost form onto the engine's update record.
// Proposals reuse it since both surfaces share the form.
func ToUpdate(form PriceUpdate) (costing.Update, error) {
	switch costing.DiscountOn(form.DiscountOn) {
	case costing.DiscountOnNone, costing.DiscountOnDisplayCost, costing.DiscountOnTotalPrice:
	default:
		return costing.Update{}, common.Validation("discountOn must be displayCost or totalPrice", nil)
	}
	return costing.Update{
		DisplayCostPerMonth:     form.DisplayCostPerMonth,
		DisplayGSTPercent:       form.DisplayGSTPercent,
		PrintingCostPerSqft:     form.PrintingCostPerSqft,
		PrintingGSTPercent:      form.PrintingGSTPercent,
		MountingCostPerSqft:     form.MountingCostPerSqft,
		MountingGSTPercent:      form.MountingGSTPercent,
		DiscountOn:              costing.DiscountOn(form.DiscountOn),
		DiscountPercent:         form.DiscountPercent,
		DiscountedDisplayCost:   form.DiscountedDisplayCost,
		OneTimeInstallationCost: form.OneTimeInstallationCost,
		MonthlyAdditionalCost:   form.MonthlyAdditionalCost,
		OtherCharges:            form.OtherCharges,

		ApplyPrintingMountingToAll: form.ApplyPrintingMountingToAll,
		ApplyDiscountToAll:         form.ApplyDiscountToAll,
	}, nil
}

func findItem(items []costing.LineItem, id uuid.UUID) (costing.LineItem, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return costing.LineItem{}, false
}

func sumPrices(items []costing.LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price
	}
	return costing.Round2(total)
}
