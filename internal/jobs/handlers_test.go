package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubBookings struct {
	sweptAt time.Time
	err     error
}

func (s *stubBookings) Sweep(_ context.Context, now time.Time) (int64, int64, error) {
	s.sweptAt = now
	return 2, 1, s.err
}

type stubFinance struct {
	marked int64
}

func (s *stubFinance) SweepOverdue(_ context.Context, _ time.Time) (int64, error) {
	return s.marked, nil
}

func TestHandleCampaignSweepUsesInjectedClock(t *testing.T) {
	bookings := &stubBookings{}
	at := time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC)
	h := &Handlers{
		Bookings: bookings,
		Finance:  &stubFinance{},
		Log:      zerolog.Nop(),
		Now:      func() time.Time { return at },
	}
	require.NoError(t, h.HandleCampaignSweep(context.Background(), NewCampaignSweepTask()))
	require.Equal(t, at, bookings.sweptAt)
}

func TestHandleCampaignSweepPropagatesError(t *testing.T) {
	h := &Handlers{
		Bookings: &stubBookings{err: errors.New("db down")},
		Finance:  &stubFinance{},
		Log:      zerolog.Nop(),
	}
	require.Error(t, h.HandleCampaignSweep(context.Background(), NewCampaignSweepTask()))
}

func TestHandleInvoiceOverdueSweep(t *testing.T) {
	h := &Handlers{
		Bookings: &stubBookings{},
		Finance:  &stubFinance{marked: 3},
		Log:      zerolog.Nop(),
	}
	require.NoError(t, h.HandleInvoiceOverdueSweep(context.Background(), NewInvoiceOverdueSweepTask()))
}
