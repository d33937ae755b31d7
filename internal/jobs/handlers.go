package jobs

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type campaignSweeper interface {
	Sweep(ctx context.Context, now time.Time) (activated, completed int64, err error)
}

type overdueSweeper interface {
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Handlers executes the background sweeps against the domain services.
type Handlers struct {
	Bookings campaignSweeper
	Finance  overdueSweeper
	Log      zerolog.Logger

	// Now is swappable for tests; defaults to the UTC clock.
	Now func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// HandleCampaignSweep advances campaign statuses whose windows have opened or
// closed.
func (h *Handlers) HandleCampaignSweep(ctx context.Context, _ *asynq.Task) error {
	activated, completed, err := h.Bookings.Sweep(ctx, h.now())
	if err != nil {
		h.Log.Error().Err(err).Msg("campaign sweep failed")
		return err
	}
	h.Log.Info().
		Int64("activated", activated).
		Int64("completed", completed).
		Msg("campaign sweep done")
	return nil
}

// HandleInvoiceOverdueSweep marks unpaid invoices past their due date.
func (h *Handlers) HandleInvoiceOverdueSweep(ctx context.Context, _ *asynq.Task) error {
	marked, err := h.Finance.SweepOverdue(ctx, h.now())
	if err != nil {
		h.Log.Error().Err(err).Msg("invoice overdue sweep failed")
		return err
	}
	h.Log.Info().Int64("marked", marked).Msg("invoice overdue sweep done")
	return nil
}

// Mux returns an asynq mux with every job handler registered.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCampaignSweep, h.HandleCampaignSweep)
	mux.HandleFunc(TypeInvoiceOverdueSweep, h.HandleInvoiceOverdueSweep)
	return mux
}
