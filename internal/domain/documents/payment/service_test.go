package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/reconcile"
	"stockbook/internal/domain/timeline"
	"stockbook/pkg/numerator"
)

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	docs map[id.ID]PurchasePayment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[id.ID]PurchasePayment)}
}

func (r *fakeRepo) Create(ctx context.Context, doc *PurchasePayment) error {
	r.docs[doc.ID] = *doc
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*PurchasePayment, error) {
	stored, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("payment", docID.String())
	}
	doc := stored
	return &doc, nil
}

func (r *fakeRepo) Update(ctx context.Context, doc *PurchasePayment) error {
	r.docs[doc.ID] = *doc
	return nil
}

func (r *fakeRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]PurchasePayment, error) {
	var out []PurchasePayment
	for _, stored := range r.docs {
		if stored.OrderID == orderID {
			out = append(out, stored)
		}
	}
	return out, nil
}

func (r *fakeRepo) SumActiveByOrder(ctx context.Context, orderID id.ID) (types.Money, error) {
	sum := types.Zero()
	for _, stored := range r.docs {
		if stored.OrderID == orderID && stored.Status == StatusActive {
			sum = sum.Add(stored.Amount)
		}
	}
	return sum, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*PurchasePayment, error) {
	return r.GetByID(ctx, docID)
}

type fakeTimelineRepo struct {
	events []timeline.PurchaseEvent
}

func (r *fakeTimelineRepo) Append(ctx context.Context, event *timeline.PurchaseEvent) error {
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeTimelineRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]timeline.PurchaseEvent, error) {
	return r.events, nil
}

func (r *fakeTimelineRepo) ListByOrderAndType(ctx context.Context, orderID id.ID, eventType reconcile.EventType) ([]timeline.PurchaseEvent, error) {
	return nil, nil
}

func newServiceFixture() (*Service, *fakeRepo, *fakeTimelineRepo) {
	repo := newFakeRepo()
	tl := &fakeTimelineRepo{}
	svc := NewService(repo, timeline.NewService(tl), &numerator.MockGenerator{}, noopTxManager{})
	return svc, repo, tl
}

func TestRecord(t *testing.T) {
	svc, _, tl := newServiceFixture()
	ctx := context.Background()

	doc := NewPurchasePayment(id.New(), types.MustMoney("30"), MethodBankTransfer)
	require.NoError(t, svc.Record(ctx, doc))

	assert.NotEmpty(t, doc.Number)

	require.Len(t, tl.events, 1)
	assert.Equal(t, reconcile.EventPaymentMade, tl.events[0].Type)
	assert.Equal(t, doc.OrderID, tl.events[0].OrderID)
	require.NotNil(t, tl.events[0].PaymentID)
	assert.Equal(t, doc.ID, *tl.events[0].PaymentID)
}

func TestRecordRejectsInvalidPayment(t *testing.T) {
	svc, _, tl := newServiceFixture()

	doc := NewPurchasePayment(id.New(), types.Zero(), MethodCash)
	err := svc.Record(context.Background(), doc)

	require.Error(t, err)
	assert.Empty(t, tl.events, "invalid payment leaves no trace")
}

func TestVoid(t *testing.T) {
	svc, repo, tl := newServiceFixture()
	ctx := context.Background()

	doc := NewPurchasePayment(id.New(), types.MustMoney("30"), MethodCash)
	require.NoError(t, svc.Record(ctx, doc))

	voided, err := svc.Void(ctx, doc.ID, "entered twice")
	require.NoError(t, err)
	assert.True(t, voided.IsVoid())

	// The row survives for audit.
	stored, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVoid())

	last := tl.events[len(tl.events)-1]
	assert.Equal(t, reconcile.EventPaymentVoided, last.Type)

	// Void payments no longer count toward the paid sum.
	sum, err := svc.AmountPaid(ctx, doc.OrderID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(types.Zero()), "sum %s", sum)
}

func TestVoidTwiceRejected(t *testing.T) {
	svc, _, _ := newServiceFixture()
	ctx := context.Background()

	doc := NewPurchasePayment(id.New(), types.MustMoney("30"), MethodCash)
	require.NoError(t, svc.Record(ctx, doc))

	_, err := svc.Void(ctx, doc.ID, "first")
	require.NoError(t, err)

	_, err = svc.Void(ctx, doc.ID, "second")
	assert.Error(t, err)
}

func TestAmountPaidSumsOnlyActive(t *testing.T) {
	svc, _, _ := newServiceFixture()
	ctx := context.Background()

	orderID := id.New()

	first := NewPurchasePayment(orderID, types.MustMoney("30"), MethodCash)
	require.NoError(t, svc.Record(ctx, first))
	second := NewPurchasePayment(orderID, types.MustMoney("20"), MethodCard)
	require.NoError(t, svc.Record(ctx, second))

	_, err := svc.Void(ctx, second.ID, "wrong order")
	require.NoError(t, err)

	sum, err := svc.AmountPaid(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(types.MustMoney("30")), "sum %s", sum)
}
