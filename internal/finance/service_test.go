package finance

import (
	"context"
	"fmt"
	"testing"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-ooh/internal/common"
)

type stubStore struct {
	docs map[uuid.UUID]Document
	seqs map[string]int
	ops  []OperationalCost
}

func newStubStore() *stubStore {
	return &stubStore{docs: map[uuid.UUID]Document{}, seqs: map[string]int{}}
}

func (s *stubStore) Create(_ context.Context, d Document) (Document, error) {
	key := fmt.Sprintf("%s-%d", d.Kind, d.IssueDate.Year())
	s.seqs[key]++
	d.ID = uuid.New()
	d.Number = fmt.Sprintf("%s-%d-%04d", numberPrefix[d.Kind], d.IssueDate.Year(), s.seqs[key])
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	s.docs[d.ID] = d
	return d, nil
}

func (s *stubStore) List(_ context.Context, p ListParams) ([]Document, int64, error) {
	var out []Document
	for _, d := range s.docs {
		if d.Kind == p.Kind {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (Document, error) {
	d, ok := s.docs[id]
	if !ok {
		return Document{}, common.NotFound("document not found")
	}
	return d, nil
}

func (s *stubStore) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	d, ok := s.docs[id]
	if !ok {
		return common.NotFound("document not found")
	}
	d.Status = status
	s.docs[id] = d
	return nil
}

func (s *stubStore) MarkOverdueDue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, d := range s.docs {
		if d.Kind == KindInvoice && d.Status == StatusIssued && d.DueDate != nil && d.DueDate.Before(now) {
			d.Status = StatusOverdue
			s.docs[id] = d
			n++
		}
	}
	return n, nil
}

func (s *stubStore) CreateOpCost(_ context.Context, c OperationalCost) (OperationalCost, error) {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	s.ops = append(s.ops, c)
	return c, nil
}

func (s *stubStore) ListOpCosts(_ context.Context, _, _ *uuid.UUID, _, _ int) ([]OperationalCost, int64, error) {
	return s.ops, int64(len(s.ops)), nil
}

func newTestService(t *testing.T) (*Service, *stubStore) {
	t.Helper()
	store := newStubStore()
	svc := NewService(ServiceConfig{
		Store:             store,
		Validate:          validator.New(validator.WithRequiredStructEnabled()),
		DefaultGSTPercent: 18,
	})
	return svc, store
}

func invoiceRequest() DocumentRequest {
	return DocumentRequest{
		PartyName: "Acme Beverages",
		Amount:    50000,
		IssueDate: "2024-03-01",
		DueDate:   "2024-03-31",
	}
}

func TestCreateInvoiceAppliesDefaultGST(t *testing.T) {
	svc, _ := newTestService(t)
	doc, err := svc.Create(context.Background(), KindInvoice, invoiceRequest())
	require.NoError(t, err)

	require.Equal(t, "INV-2024-0001", doc.Number)
	require.Equal(t, 18.0, doc.GSTPercent)
	require.Equal(t, 9000.0, doc.GSTAmount)
	require.Equal(t, 59000.0, doc.TotalAmount)
	require.Equal(t, StatusIssued, doc.Status)
}

func TestCreateNumbersPerKind(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, KindInvoice, invoiceRequest())
	require.NoError(t, err)
	second, err := svc.Create(ctx, KindInvoice, invoiceRequest())
	require.NoError(t, err)
	require.Equal(t, "INV-2024-0002", second.Number)

	po := invoiceRequest()
	po.DueDate = ""
	doc, err := svc.Create(ctx, KindPurchaseOrder, po)
	require.NoError(t, err)
	require.Equal(t, "PO-2024-0001", doc.Number, "each kind numbers independently")
}

func TestCreateInvoiceRequiresDueDate(t *testing.T) {
	svc, _ := newTestService(t)
	req := invoiceRequest()
	req.DueDate = ""
	_, err := svc.Create(context.Background(), KindInvoice, req)
	require.True(t, common.IsAppError(err))
}

func TestCreateRejectsDueBeforeIssue(t *testing.T) {
	svc, _ := newTestService(t)
	req := invoiceRequest()
	req.DueDate = "2024-02-01"
	_, err := svc.Create(context.Background(), KindInvoice, req)
	require.True(t, common.IsAppError(err))
}

func TestCreateHonoursZeroGSTOverride(t *testing.T) {
	svc, _ := newTestService(t)
	req := invoiceRequest()
	zero := 0.0
	req.GSTPercent = &zero
	doc, err := svc.Create(context.Background(), KindInvoice, req)
	require.NoError(t, err)
	require.Equal(t, 0.0, doc.GSTAmount)
	require.Equal(t, 50000.0, doc.TotalAmount)
}

func TestMarkPaid(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	doc, err := svc.Create(ctx, KindInvoice, invoiceRequest())
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(ctx, doc.ID))
	require.Equal(t, StatusPaid, store.docs[doc.ID].Status)

	err = svc.MarkPaid(ctx, doc.ID)
	require.True(t, common.IsAppError(err), "double settlement must be refused")
}

func TestMarkPaidRejectsNonInvoice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	req := invoiceRequest()
	req.DueDate = ""
	doc, err := svc.Create(ctx, KindPurchaseOrder, req)
	require.NoError(t, err)

	err = svc.MarkPaid(ctx, doc.ID)
	require.True(t, common.IsAppError(err))
}

func TestCheckOverdue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	doc, err := svc.Create(ctx, KindInvoice, invoiceRequest())
	require.NoError(t, err)

	fresh, err := svc.CheckOverdue(ctx, doc.ID, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, StatusIssued, fresh.Status, "not yet due")

	late, err := svc.CheckOverdue(ctx, doc.ID, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, StatusOverdue, late.Status)
}

func TestSweepOverdue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, KindInvoice, invoiceRequest())
	require.NoError(t, err)

	n, err := svc.SweepOverdue(ctx, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestCreateOpCostGrossesUpGST(t *testing.T) {
	svc, _ := newTestService(t)
	c, err := svc.CreateOpCost(context.Background(), OpCostRequest{
		Description: "Flex printing for NH-8 gantry",
		Amount:      12000,
		GSTPercent:  18,
		IncurredOn:  "2024-03-05",
	})
	require.NoError(t, err)
	require.Equal(t, 14160.0, c.TotalAmount)
}
