package purchase_return

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/reconcile"
)

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	docs  map[id.ID]PurchaseReturn
	lines map[id.ID][]PurchaseReturnLine
	txs   map[id.ID]RefundTransaction
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]PurchaseReturn),
		lines: make(map[id.ID][]PurchaseReturnLine),
		txs:   make(map[id.ID]RefundTransaction),
	}
}

func (r *fakeRepo) Create(ctx context.Context, doc *PurchaseReturn) error {
	stored := *doc
	stored.Lines = nil
	r.docs[doc.ID] = stored
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*PurchaseReturn, error) {
	stored, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("purchase return", docID.String())
	}
	doc := stored
	return &doc, nil
}

func (r *fakeRepo) Update(ctx context.Context, doc *PurchaseReturn) error {
	stored := *doc
	stored.Lines = nil
	r.docs[doc.ID] = stored
	return nil
}

func (r *fakeRepo) GetLines(ctx context.Context, docID id.ID) ([]PurchaseReturnLine, error) {
	return r.lines[docID], nil
}

func (r *fakeRepo) SaveLines(ctx context.Context, docID id.ID, lines []PurchaseReturnLine) error {
	r.lines[docID] = lines
	return nil
}

func (r *fakeRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]PurchaseReturn, error) {
	var out []PurchaseReturn
	for _, stored := range r.docs {
		if stored.OrderID == orderID {
			out = append(out, stored)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseReturn, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) CreateTransaction(ctx context.Context, tx *RefundTransaction) error {
	r.txs[tx.ID] = *tx
	return nil
}

func (r *fakeRepo) GetTransaction(ctx context.Context, txID id.ID) (*RefundTransaction, error) {
	stored, ok := r.txs[txID]
	if !ok {
		return nil, apperror.NewNotFound("refund transaction", txID.String())
	}
	tx := stored
	return &tx, nil
}

func (r *fakeRepo) UpdateTransaction(ctx context.Context, tx *RefundTransaction) error {
	r.txs[tx.ID] = *tx
	return nil
}

func (r *fakeRepo) ListTransactions(ctx context.Context, returnID id.ID) ([]RefundTransaction, error) {
	var out []RefundTransaction
	for _, tx := range r.txs {
		if tx.ReturnID == returnID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func newServiceFixture(t *testing.T) (*Service, *fakeRepo, *PurchaseReturn) {
	t.Helper()

	repo := newFakeRepo()
	svc := NewService(repo, noopTxManager{})

	doc := NewPurchaseReturn(id.New(), id.New())
	doc.Number = "PR-00001"
	doc.AddLine(id.New(), qty(4), types.MustMoney("5"))
	require.NoError(t, repo.Create(context.Background(), doc))
	require.NoError(t, repo.SaveLines(context.Background(), doc.ID, doc.Lines))

	return svc, repo, doc
}

func TestUpdateRefundStatus(t *testing.T) {
	svc, _, doc := newServiceFixture(t)
	ctx := context.Background()

	updated, err := svc.UpdateRefundStatus(ctx, doc.ID, reconcile.RefundProcessing)
	require.NoError(t, err)
	assert.Equal(t, reconcile.RefundProcessing, updated.RefundStatus)

	// Processing cannot jump back to pending.
	_, err = svc.UpdateRefundStatus(ctx, doc.ID, reconcile.RefundPending)
	assert.Error(t, err)
}

func TestAddRefundTransaction(t *testing.T) {
	svc, _, doc := newServiceFixture(t)
	ctx := context.Background()

	tx, err := svc.AddRefundTransaction(ctx, doc.ID, nil, types.MustMoney("12"))
	require.NoError(t, err)
	assert.Equal(t, reconcile.RefundPending, tx.Status)
	assert.True(t, tx.Amount.Equal(types.MustMoney("12")))

	// First transaction moves the return into processing.
	updated, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, reconcile.RefundProcessing, updated.RefundStatus)
}

func TestAddRefundTransactionRejectsOverCommitment(t *testing.T) {
	svc, _, doc := newServiceFixture(t)
	ctx := context.Background()

	_, err := svc.AddRefundTransaction(ctx, doc.ID, nil, types.MustMoney("15"))
	require.NoError(t, err)

	// 15 + 10 > 20 total.
	_, err = svc.AddRefundTransaction(ctx, doc.ID, nil, types.MustMoney("10"))
	require.Error(t, err)

	// 15 + 5 fits exactly.
	_, err = svc.AddRefundTransaction(ctx, doc.ID, nil, types.MustMoney("5"))
	assert.NoError(t, err)
}

func TestAddRefundTransactionRejectsNonPositiveAmount(t *testing.T) {
	svc, _, doc := newServiceFixture(t)

	_, err := svc.AddRefundTransaction(context.Background(), doc.ID, nil, types.Zero())
	assert.Error(t, err)
}

func TestAddRefundTransactionOnCompletedReturn(t *testing.T) {
	svc, repo, doc := newServiceFixture(t)
	ctx := context.Background()

	stored, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	stored.RefundStatus = reconcile.RefundCompleted
	require.NoError(t, repo.Update(ctx, stored))

	_, err = svc.AddRefundTransaction(ctx, doc.ID, nil, types.MustMoney("1"))
	assert.Error(t, err)
}

func TestCompleteRefundTransaction(t *testing.T) {
	svc, _, doc := newServiceFixture(t)
	ctx := context.Background()

	tx, err := svc.AddRefundTransaction(ctx, doc.ID, nil, types.MustMoney("12"))
	require.NoError(t, err)

	updated, err := svc.CompleteRefundTransaction(ctx, doc.ID, tx.ID)
	require.NoError(t, err)
	assert.True(t, updated.RefundAmount.Equal(types.MustMoney("12")))
	assert.Equal(t, reconcile.RefundProcessing, updated.RefundStatus, "partial refund keeps the return processing")

	stored, err := svc.ListTransactions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, reconcile.RefundCompleted, stored[0].Status)
	assert.NotNil(t, stored[0].CompletedAt)
}

func TestCompleteRefundTransactionFinishesReturn(t *testing.T) {
	svc, _, doc := newServiceFixture(t)
	ctx := context.Background()

	first, err := svc.AddRefundTransaction(ctx, doc.ID, nil, types.MustMoney("12"))
	require.NoError(t, err)
	second, err := svc.AddRefundTransaction(ctx, doc.ID, nil, types.MustMoney("8"))
	require.NoError(t, err)

	_, err = svc.CompleteRefundTransaction(ctx, doc.ID, first.ID)
	require.NoError(t, err)

	updated, err := svc.CompleteRefundTransaction(ctx, doc.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, updated.RefundAmount.Equal(types.MustMoney("20")))
	assert.Equal(t, reconcile.RefundCompleted, updated.RefundStatus)
}

func TestCompleteRefundTransactionIsNotIdempotent(t *testing.T) {
	svc, _, doc := newServiceFixture(t)
	ctx := context.Background()

	tx, err := svc.AddRefundTransaction(ctx, doc.ID, nil, types.MustMoney("5"))
	require.NoError(t, err)

	_, err = svc.CompleteRefundTransaction(ctx, doc.ID, tx.ID)
	require.NoError(t, err)

	_, err = svc.CompleteRefundTransaction(ctx, doc.ID, tx.ID)
	assert.Error(t, err, "completing twice would double-count the refund")
}

func TestCompleteRefundTransactionWrongReturn(t *testing.T) {
	svc, repo, doc := newServiceFixture(t)
	ctx := context.Background()

	other := NewPurchaseReturn(id.New(), id.New())
	other.Number = "PR-00002"
	other.AddLine(id.New(), qty(1), types.MustMoney("5"))
	require.NoError(t, repo.Create(ctx, other))

	tx, err := svc.AddRefundTransaction(ctx, other.ID, nil, types.MustMoney("5"))
	require.NoError(t, err)

	_, err = svc.CompleteRefundTransaction(ctx, doc.ID, tx.ID)
	assert.Error(t, err)
}
