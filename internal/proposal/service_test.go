package proposal

import (
	"context"
	"testing"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-ooh/internal/booking"
	"github.com/noah-isme/backend-ooh/internal/common"
	"github.com/noah-isme/backend-ooh/internal/costing"
	"github.com/noah-isme/backend-ooh/internal/inventory"
)

type stubStore struct {
	proposals map[uuid.UUID]Proposal
}

func newStubStore() *stubStore {
	return &stubStore{proposals: map[uuid.UUID]Proposal{}}
}

func (s *stubStore) List(_ context.Context, _ ListParams) ([]Proposal, int64, error) {
	var out []Proposal
	for _, p := range s.proposals {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (Proposal, error) {
	p, ok := s.proposals[id]
	if !ok {
		return Proposal{}, common.NotFound("proposal not found")
	}
	return p, nil
}

func (s *stubStore) Create(_ context.Context, p Proposal) (Proposal, error) {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	s.proposals[p.ID] = p
	return p, nil
}

func (s *stubStore) Update(_ context.Context, p Proposal) (Proposal, error) {
	if _, ok := s.proposals[p.ID]; !ok {
		return Proposal{}, common.NotFound("proposal not found")
	}
	s.proposals[p.ID] = p
	return p, nil
}

func (s *stubStore) ReplaceItems(_ context.Context, id uuid.UUID, items []costing.LineItem, total float64) error {
	p, ok := s.proposals[id]
	if !ok {
		return common.NotFound("proposal not found")
	}
	p.Items = items
	p.TotalAmount = total
	s.proposals[id] = p
	return nil
}

func (s *stubStore) MarkConverted(_ context.Context, id, bookingID uuid.UUID) error {
	p, ok := s.proposals[id]
	if !ok || p.Status == StatusConverted {
		return common.Conflict("proposal already converted")
	}
	p.Status = StatusConverted
	p.ConvertedBookingID = &bookingID
	s.proposals[id] = p
	return nil
}

func (s *stubStore) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	p, ok := s.proposals[id]
	if !ok {
		return common.NotFound("proposal not found")
	}
	p.Status = status
	s.proposals[id] = p
	return nil
}

type stubSpaces struct {
	spaces map[uuid.UUID]inventory.SpaceDetail
}

func (s *stubSpaces) Get(_ context.Context, id uuid.UUID) (inventory.SpaceDetail, error) {
	sp, ok := s.spaces[id]
	if !ok {
		return inventory.SpaceDetail{}, common.NotFound("space not found")
	}
	return sp, nil
}

type stubBookings struct {
	created []booking.Booking
}

func (s *stubBookings) Create(_ context.Context, b booking.Booking) (booking.Booking, error) {
	b.ID = uuid.New()
	s.created = append(s.created, b)
	return b, nil
}

func newTestService(t *testing.T) (*Service, *stubStore, *stubBookings, uuid.UUID) {
	t.Helper()
	spaceID := uuid.New()
	spaces := &stubSpaces{spaces: map[uuid.UUID]inventory.SpaceDetail{
		spaceID: {Space: inventory.Space{
			ID:                  spaceID,
			Name:                "Ring Road Unipole",
			FacingName:          "Single Sided",
			Dimensions:          []costing.Dimension{{Width: 10, Height: 5}},
			Unit:                1,
			DisplayCostPerMonth: 30000,
		}},
	}}
	store := newStubStore()
	bookings := &stubBookings{}
	svc := NewService(ServiceConfig{
		Store:             store,
		Spaces:            spaces,
		Bookings:          bookings,
		Validate:          validator.New(validator.WithRequiredStructEnabled()),
		DefaultGSTPercent: 18,
	})
	return svc, store, bookings, spaceID
}

func validRequest(spaceID uuid.UUID) Request {
	return Request{
		ClientName:   "Acme Beverages",
		CampaignName: "Summer Launch",
		Items: []booking.ItemRequest{{
			SpaceID:   spaceID,
			StartDate: "2024-01-01",
			EndDate:   "2024-01-30",
		}},
	}
}

func TestCreateStartsAsDraft(t *testing.T) {
	svc, _, _, spaceID := newTestService(t)
	p, err := svc.Create(context.Background(), validRequest(spaceID))
	require.NoError(t, err)
	require.Equal(t, StatusDraft, p.Status)
	require.Equal(t, 35400.0, p.TotalAmount)
}

func TestConvertCarriesPricesOver(t *testing.T) {
	svc, store, bookings, spaceID := newTestService(t)
	ctx := context.Background()
	p, err := svc.Create(ctx, validRequest(spaceID))
	require.NoError(t, err)

	b, err := svc.Convert(ctx, p.ID)
	require.NoError(t, err)

	require.Equal(t, booking.StatusUpcoming, b.Status)
	require.Equal(t, p.Items, b.Items, "quoted items must carry over untouched")
	require.Equal(t, p.TotalAmount, b.TotalAmount)
	require.Len(t, bookings.created, 1)

	converted := store.proposals[p.ID]
	require.Equal(t, StatusConverted, converted.Status)
	require.Equal(t, b.ID, *converted.ConvertedBookingID)
}

func TestConvertTwiceIsRefused(t *testing.T) {
	svc, _, _, spaceID := newTestService(t)
	ctx := context.Background()
	p, err := svc.Create(ctx, validRequest(spaceID))
	require.NoError(t, err)

	_, err = svc.Convert(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.Convert(ctx, p.ID)
	require.True(t, common.IsAppError(err))
}

func TestConvertRejectedProposalIsRefused(t *testing.T) {
	svc, _, _, spaceID := newTestService(t)
	ctx := context.Background()
	p, err := svc.Create(ctx, validRequest(spaceID))
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, p.ID, StatusRequest{Status: StatusRejected}))
	_, err = svc.Convert(ctx, p.ID)
	require.True(t, common.IsAppError(err))
}

func TestUpdateFrozenAfterConversion(t *testing.T) {
	svc, _, _, spaceID := newTestService(t)
	ctx := context.Background()
	p, err := svc.Create(ctx, validRequest(spaceID))
	require.NoError(t, err)
	_, err = svc.Convert(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, validRequest(spaceID))
	require.True(t, common.IsAppError(err))

	_, err = svc.EditItemPrice(ctx, p.ID, uuid.New(), booking.PriceUpdate{})
	require.True(t, common.IsAppError(err))
}

func TestEditItemPricePropagates(t *testing.T) {
	svc, _, _, spaceID := newTestService(t)
	ctx := context.Background()
	req := validRequest(spaceID)
	req.Items = append(req.Items, req.Items[0])
	p, err := svc.Create(ctx, req)
	require.NoError(t, err)

	updated, err := svc.EditItemPrice(ctx, p.ID, p.Items[0].ID, booking.PriceUpdate{
		DiscountOn:         "totalPrice",
		DiscountPercent:    10,
		ApplyDiscountToAll: true,
	})
	require.NoError(t, err)
	require.Equal(t, 63720.0, updated.TotalAmount)
}
