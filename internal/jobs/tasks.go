package jobs

import "github.com/hibiken/asynq"

// Task type names. The sweeps carry no payload; the handler works off the
// clock at execution time.
const (
	TypeCampaignSweep       = "campaign:sweep"
	TypeInvoiceOverdueSweep = "invoice:overdue_sweep"
)

// NewCampaignSweepTask builds the campaign status sweep task.
func NewCampaignSweepTask() *asynq.Task {
	return asynq.NewTask(TypeCampaignSweep, nil)
}

// NewInvoiceOverdueSweepTask builds the invoice overdue sweep task.
func NewInvoiceOverdueSweepTask() *asynq.Task {
	return asynq.NewTask(TypeInvoiceOverdueSweep, nil)
}
