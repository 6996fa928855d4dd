package purchase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
	"stockbook/internal/domain/documents/payment"
	"stockbook/internal/domain/documents/purchase_return"
	"stockbook/internal/domain/reconcile"
	"stockbook/internal/domain/registers/stock"
	"stockbook/internal/domain/timeline"
	"stockbook/pkg/numerator"
)

// --- In-memory fakes ---

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeOrderRepo stores documents and lines separately, returning copies the
// way a real repository rehydrates rows.
type fakeOrderRepo struct {
	docs  map[id.ID]PurchaseOrder
	lines map[id.ID][]PurchaseOrderLine
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		docs:  make(map[id.ID]PurchaseOrder),
		lines: make(map[id.ID][]PurchaseOrderLine),
	}
}

func (r *fakeOrderRepo) Create(ctx context.Context, doc *PurchaseOrder) error {
	stored := *doc
	stored.Lines = nil
	r.docs[doc.ID] = stored
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	stored, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("purchase order", docID.String())
	}
	doc := stored
	return &doc, nil
}

func (r *fakeOrderRepo) GetByNumber(ctx context.Context, number string) (*PurchaseOrder, error) {
	for _, stored := range r.docs {
		if stored.Number == number {
			doc := stored
			return &doc, nil
		}
	}
	return nil, apperror.NewNotFound("purchase order", number)
}

func (r *fakeOrderRepo) Update(ctx context.Context, doc *PurchaseOrder) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("purchase order", doc.ID.String())
	}
	stored := *doc
	stored.Lines = nil
	r.docs[doc.ID] = stored
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, docID id.ID) error {
	stored, ok := r.docs[docID]
	if !ok {
		return apperror.NewNotFound("purchase order", docID.String())
	}
	stored.DeletionMark = true
	r.docs[docID] = stored
	return nil
}

func (r *fakeOrderRepo) GetLines(ctx context.Context, docID id.ID) ([]PurchaseOrderLine, error) {
	lines := make([]PurchaseOrderLine, len(r.lines[docID]))
	copy(lines, r.lines[docID])
	return lines, nil
}

func (r *fakeOrderRepo) SaveLines(ctx context.Context, docID id.ID, lines []PurchaseOrderLine) error {
	stored := make([]PurchaseOrderLine, len(lines))
	copy(stored, lines)
	r.lines[docID] = stored
	return nil
}

func (r *fakeOrderRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return domain.ListResult[*PurchaseOrder]{}, nil
}

func (r *fakeOrderRepo) GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	return r.GetByID(ctx, docID)
}

type fakeReturnRepo struct {
	docs  map[id.ID]purchase_return.PurchaseReturn
	lines map[id.ID][]purchase_return.PurchaseReturnLine
}

func newFakeReturnRepo() *fakeReturnRepo {
	return &fakeReturnRepo{
		docs:  make(map[id.ID]purchase_return.PurchaseReturn),
		lines: make(map[id.ID][]purchase_return.PurchaseReturnLine),
	}
}

func (r *fakeReturnRepo) Create(ctx context.Context, doc *purchase_return.PurchaseReturn) error {
	stored := *doc
	stored.Lines = nil
	r.docs[doc.ID] = stored
	return nil
}

func (r *fakeReturnRepo) GetByID(ctx context.Context, docID id.ID) (*purchase_return.PurchaseReturn, error) {
	stored, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("purchase return", docID.String())
	}
	doc := stored
	return &doc, nil
}

func (r *fakeReturnRepo) Update(ctx context.Context, doc *purchase_return.PurchaseReturn) error {
	stored := *doc
	stored.Lines = nil
	r.docs[doc.ID] = stored
	return nil
}

func (r *fakeReturnRepo) GetLines(ctx context.Context, docID id.ID) ([]purchase_return.PurchaseReturnLine, error) {
	return r.lines[docID], nil
}

func (r *fakeReturnRepo) SaveLines(ctx context.Context, docID id.ID, lines []purchase_return.PurchaseReturnLine) error {
	r.lines[docID] = lines
	return nil
}

func (r *fakeReturnRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]purchase_return.PurchaseReturn, error) {
	var out []purchase_return.PurchaseReturn
	for _, stored := range r.docs {
		if stored.OrderID == orderID {
			out = append(out, stored)
		}
	}
	return out, nil
}

func (r *fakeReturnRepo) GetForUpdate(ctx context.Context, docID id.ID) (*purchase_return.PurchaseReturn, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeReturnRepo) CreateTransaction(ctx context.Context, tx *purchase_return.RefundTransaction) error {
	return nil
}

func (r *fakeReturnRepo) GetTransaction(ctx context.Context, txID id.ID) (*purchase_return.RefundTransaction, error) {
	return nil, apperror.NewNotFound("refund transaction", txID.String())
}

func (r *fakeReturnRepo) UpdateTransaction(ctx context.Context, tx *purchase_return.RefundTransaction) error {
	return nil
}

func (r *fakeReturnRepo) ListTransactions(ctx context.Context, returnID id.ID) ([]purchase_return.RefundTransaction, error) {
	return nil, nil
}

type fakePaymentRepo struct {
	payment.Repository
	amountPaid types.Money
}

func (r *fakePaymentRepo) SumActiveByOrder(ctx context.Context, orderID id.ID) (types.Money, error) {
	return r.amountPaid, nil
}

type fakeTimelineRepo struct {
	events []timeline.PurchaseEvent
}

func (r *fakeTimelineRepo) Append(ctx context.Context, event *timeline.PurchaseEvent) error {
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeTimelineRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]timeline.PurchaseEvent, error) {
	var out []timeline.PurchaseEvent
	for _, ev := range r.events {
		if ev.OrderID == orderID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *fakeTimelineRepo) ListByOrderAndType(ctx context.Context, orderID id.ID, eventType reconcile.EventType) ([]timeline.PurchaseEvent, error) {
	var out []timeline.PurchaseEvent
	for _, ev := range r.events {
		if ev.OrderID == orderID && ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *fakeTimelineRepo) typesFor(orderID id.ID) []reconcile.EventType {
	var out []reconcile.EventType
	for _, ev := range r.events {
		if ev.OrderID == orderID {
			out = append(out, ev.Type)
		}
	}
	return out
}

// fakeStockRepo embeds the interface so only the methods the service touches
// need an implementation.
type fakeStockRepo struct {
	stock.Repository
	movements []entity.StockMovement
}

func (r *fakeStockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

// --- Fixture ---

type fixture struct {
	svc      *Service
	orders   *fakeOrderRepo
	returns  *fakeReturnRepo
	payments *fakePaymentRepo
	timeline *fakeTimelineRepo
	stock    *fakeStockRepo
}

func newFixture() *fixture {
	f := &fixture{
		orders:   newFakeOrderRepo(),
		returns:  newFakeReturnRepo(),
		payments: &fakePaymentRepo{amountPaid: types.Zero()},
		timeline: &fakeTimelineRepo{},
		stock:    &fakeStockRepo{},
	}

	f.svc = NewService(
		f.orders,
		f.returns,
		f.payments,
		timeline.NewService(f.timeline),
		stock.NewService(f.stock),
		&numerator.MockGenerator{},
		noopTxManager{},
	)

	return f
}

func (f *fixture) createOrder(t *testing.T, lines ...PurchaseOrderLine) *PurchaseOrder {
	t.Helper()

	doc := newTestOrder()
	if len(lines) == 0 {
		doc.AddLine(id.New(), qty(10), types.MustMoney("5"))
	} else {
		for _, l := range lines {
			doc.AddLine(l.ProductID, l.Quantity, l.PurchasePrice)
		}
	}

	require.NoError(t, f.svc.Create(context.Background(), doc))
	return doc
}

// --- Tests ---

func TestServiceCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := f.createOrder(t)

	assert.NotEmpty(t, doc.Number)
	assert.Equal(t, reconcile.StatusPending, doc.Status)

	stored, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 1)
	assert.True(t, stored.TotalAmount.Equal(types.MustMoney("50")))

	assert.Equal(t, []reconcile.EventType{reconcile.EventOrderPlaced}, f.timeline.typesFor(doc.ID))
}

func TestServiceCreateRejectsEmptyOrder(t *testing.T) {
	f := newFixture()

	doc := newTestOrder()
	err := f.svc.Create(context.Background(), doc)

	require.Error(t, err)
	assert.Empty(t, f.timeline.events)
}

func TestServiceReceivePartialThenFull(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	productID := id.New()
	doc := f.createOrder(t, PurchaseOrderLine{ProductID: productID, Quantity: qty(10), PurchasePrice: types.MustMoney("5")})

	doc, err := f.svc.Receive(ctx, doc.ID, []ReceiptLine{{ProductID: productID, Quantity: qty(4)}})
	require.NoError(t, err)
	assert.Equal(t, reconcile.StatusPartiallyReceived, doc.Status)
	assert.Equal(t, qty(4), doc.Lines[0].ReceivedQuantity)

	doc, err = f.svc.Receive(ctx, doc.ID, []ReceiptLine{{ProductID: productID, Quantity: qty(6)}})
	require.NoError(t, err)
	assert.Equal(t, reconcile.StatusReceived, doc.Status)
	assert.Equal(t, qty(10), doc.Lines[0].ReceivedQuantity)

	assert.Equal(t, []reconcile.EventType{
		reconcile.EventOrderPlaced,
		reconcile.EventPartialReceipt,
		reconcile.EventStatusChange,
		reconcile.EventFullReceipt,
		reconcile.EventStatusChange,
	}, f.timeline.typesFor(doc.ID))

	require.Len(t, f.stock.movements, 2)
	assert.Equal(t, entity.RecordTypeReceipt, f.stock.movements[0].RecordType)
	assert.Equal(t, doc.WarehouseID, f.stock.movements[0].WarehouseID)
}

func TestServiceReceiveExceedsOrdered(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	productID := id.New()
	doc := f.createOrder(t, PurchaseOrderLine{ProductID: productID, Quantity: qty(10), PurchasePrice: types.MustMoney("5")})

	_, err := f.svc.Receive(ctx, doc.ID, []ReceiptLine{{ProductID: productID, Quantity: qty(11)}})
	require.Error(t, err)

	stored, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.Lines[0].ReceivedQuantity.IsZero(), "failed receive must not change quantities")
	assert.Empty(t, f.stock.movements)
}

func TestServiceReceiveUnknownProduct(t *testing.T) {
	f := newFixture()

	doc := f.createOrder(t)

	_, err := f.svc.Receive(context.Background(), doc.ID, []ReceiptLine{{ProductID: id.New(), Quantity: qty(1)}})
	assert.Error(t, err)
}

func TestServiceReceiveOnCancelledOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := f.createOrder(t)
	_, err := f.svc.Cancel(ctx, doc.ID)
	require.NoError(t, err)

	_, err = f.svc.Receive(ctx, doc.ID, []ReceiptLine{{ProductID: doc.Lines[0].ProductID, Quantity: qty(1)}})
	assert.Error(t, err)
}

func TestServiceReturnItems(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	productID := id.New()
	doc := f.createOrder(t, PurchaseOrderLine{ProductID: productID, Quantity: qty(10), PurchasePrice: types.MustMoney("5")})

	_, err := f.svc.Receive(ctx, doc.ID, []ReceiptLine{{ProductID: productID, Quantity: qty(10)}})
	require.NoError(t, err)

	ret, err := f.svc.ReturnItems(ctx, doc.ID, []ReturnLine{{ProductID: productID, Quantity: qty(4)}})
	require.NoError(t, err)

	assert.NotEmpty(t, ret.Number)
	assert.Equal(t, doc.ID, ret.OrderID)
	assert.True(t, ret.TotalAmount.Equal(types.MustMoney("20")), "return amount %s", ret.TotalAmount)
	assert.Equal(t, reconcile.RefundPending, ret.RefundStatus)

	stored, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, reconcile.StatusPartiallyReturned, stored.Status)
	assert.Equal(t, qty(4), stored.Lines[0].ReturnedQuantity)
	assert.True(t, stored.TotalAmount.Equal(types.MustMoney("50")), "order total stays fixed")

	// Last movement is the return expense.
	last := f.stock.movements[len(f.stock.movements)-1]
	assert.Equal(t, entity.RecordTypeExpense, last.RecordType)
}

func TestServiceReturnExceedsReceived(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	productID := id.New()
	doc := f.createOrder(t, PurchaseOrderLine{ProductID: productID, Quantity: qty(10), PurchasePrice: types.MustMoney("5")})

	_, err := f.svc.Receive(ctx, doc.ID, []ReceiptLine{{ProductID: productID, Quantity: qty(4)}})
	require.NoError(t, err)

	_, err = f.svc.ReturnItems(ctx, doc.ID, []ReturnLine{{ProductID: productID, Quantity: qty(5)}})
	require.Error(t, err)
}

func TestServiceFullUnwindResetsToPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	productID := id.New()
	doc := f.createOrder(t, PurchaseOrderLine{ProductID: productID, Quantity: qty(10), PurchasePrice: types.MustMoney("5")})

	_, err := f.svc.Receive(ctx, doc.ID, []ReceiptLine{{ProductID: productID, Quantity: qty(4)}})
	require.NoError(t, err)

	_, err = f.svc.ReturnItems(ctx, doc.ID, []ReturnLine{{ProductID: productID, Quantity: qty(4)}})
	require.NoError(t, err)

	stored, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, reconcile.StatusPending, stored.Status, "order can be received again from scratch")

	eventTypes := f.timeline.typesFor(doc.ID)
	assert.Contains(t, eventTypes, reconcile.EventBalanceResolved)
	assert.Contains(t, eventTypes, reconcile.EventFullReturn)
}

func TestServiceCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t.Run("pending order cancels", func(t *testing.T) {
		doc := f.createOrder(t)

		cancelled, err := f.svc.Cancel(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, reconcile.StatusCancelled, cancelled.Status)
		assert.Contains(t, f.timeline.typesFor(doc.ID), reconcile.EventCancelled)
	})

	t.Run("received order does not cancel", func(t *testing.T) {
		productID := id.New()
		doc := f.createOrder(t, PurchaseOrderLine{ProductID: productID, Quantity: qty(10), PurchasePrice: types.MustMoney("5")})

		_, err := f.svc.Receive(ctx, doc.ID, []ReceiptLine{{ProductID: productID, Quantity: qty(1)}})
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, doc.ID)
		assert.Error(t, err)
	})
}

func TestServiceUpdateOnlyPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	productID := id.New()
	doc := f.createOrder(t, PurchaseOrderLine{ProductID: productID, Quantity: qty(10), PurchasePrice: types.MustMoney("5")})

	_, err := f.svc.Receive(ctx, doc.ID, []ReceiptLine{{ProductID: productID, Quantity: qty(1)}})
	require.NoError(t, err)

	doc.Comment = "edited"
	err = f.svc.Update(ctx, doc)
	assert.Error(t, err)
}

func TestServiceDeleteOnlyPendingOrCancelled(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	productID := id.New()
	doc := f.createOrder(t, PurchaseOrderLine{ProductID: productID, Quantity: qty(10), PurchasePrice: types.MustMoney("5")})

	_, err := f.svc.Receive(ctx, doc.ID, []ReceiptLine{{ProductID: productID, Quantity: qty(1)}})
	require.NoError(t, err)

	assert.Error(t, f.svc.Delete(ctx, doc.ID))

	pending := f.createOrder(t)
	assert.NoError(t, f.svc.Delete(ctx, pending.ID))
}

func TestServiceReconcile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	productID := id.New()
	doc := f.createOrder(t, PurchaseOrderLine{ProductID: productID, Quantity: qty(10), PurchasePrice: types.MustMoney("5")})

	_, err := f.svc.Receive(ctx, doc.ID, []ReceiptLine{{ProductID: productID, Quantity: qty(10)}})
	require.NoError(t, err)

	// Paid in full before the return.
	f.payments.amountPaid = types.MustMoney("50")
	paid := timeline.NewPurchaseEvent(doc.ID, reconcile.EventPaymentMade)
	require.NoError(t, f.timeline.Append(ctx, paid))

	_, err = f.svc.ReturnItems(ctx, doc.ID, []ReturnLine{{ProductID: productID, Quantity: qty(4)}})
	require.NoError(t, err)

	result, err := f.svc.Reconcile(ctx, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, reconcile.StatusPartiallyReturned, result.Status)
	assert.True(t, result.ReturnAmount.Equal(types.MustMoney("20")))
	assert.True(t, result.NetAmount.Equal(types.MustMoney("30")))
	assert.Equal(t, reconcile.PaymentPaid, result.Payment.Status)
	assert.True(t, result.Refund.RefundDue.Equal(types.MustMoney("20")), "due %s", result.Refund.RefundDue)
	assert.True(t, result.DisplayStatus.ShowRefundSection)
}
