package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/documents/purchase_return"
	"stockbook/internal/infrastructure/storage/postgres"
)

const (
	purchaseReturnsTable     = "doc_purchase_returns"
	purchaseReturnLinesTable = "doc_purchase_return_lines"
	refundTransactionsTable  = "doc_refund_transactions"
)

// PurchaseReturnRepo implements purchase_return.Repository.
type PurchaseReturnRepo struct {
	*BaseDocumentRepo[*purchase_return.PurchaseReturn]
}

// NewPurchaseReturnRepo creates a new purchase return repository.
func NewPurchaseReturnRepo(txm *postgres.TxManager) *PurchaseReturnRepo {
	return &PurchaseReturnRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*purchase_return.PurchaseReturn](
			txm,
			purchaseReturnsTable,
			postgres.ExtractDBColumns[purchase_return.PurchaseReturn](),
			func() *purchase_return.PurchaseReturn { return &purchase_return.PurchaseReturn{} },
		),
	}
}

// GetLines retrieves lines for a purchase return.
func (r *PurchaseReturnRepo) GetLines(ctx context.Context, docID id.ID) ([]purchase_return.PurchaseReturnLine, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "product_id",
			"quantity", "purchase_price", "amount",
		).
		From(purchaseReturnLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase_return.PurchaseReturnLine
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a purchase return (delete existing + insert new).
func (r *PurchaseReturnRepo) SaveLines(ctx context.Context, docID id.ID, lines []purchase_return.PurchaseReturnLine) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + purchaseReturnLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(purchaseReturnLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "product_id",
			"quantity", "purchase_price", "amount",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ProductID,
			line.Quantity, line.PurchasePrice, line.Amount,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// ListByOrder returns all returns for an order in chronological order.
func (r *PurchaseReturnRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]purchase_return.PurchaseReturn, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"order_id": orderID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("date", "created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var returns []purchase_return.PurchaseReturn
	if err := pgxscan.Select(ctx, r.querier(ctx), &returns, sql, args...); err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}

	return returns, nil
}

// --- Refund transactions ---

// CreateTransaction inserts a refund transaction.
func (r *PurchaseReturnRepo) CreateTransaction(ctx context.Context, refundTx *purchase_return.RefundTransaction) error {
	q := r.Builder().
		Insert(refundTransactionsTable).
		Columns("id", "return_id", "payment_id", "amount", "status", "created_at", "completed_at").
		Values(refundTx.ID, refundTx.ReturnID, refundTx.PaymentID, refundTx.Amount,
			refundTx.Status, refundTx.CreatedAt, refundTx.CompletedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert refund transaction: %w", err)
	}

	return nil
}

// GetTransaction retrieves a refund transaction by ID.
func (r *PurchaseReturnRepo) GetTransaction(ctx context.Context, txID id.ID) (*purchase_return.RefundTransaction, error) {
	q := r.Builder().
		Select("id", "return_id", "payment_id", "amount", "status", "created_at", "completed_at").
		From(refundTransactionsTable).
		Where(squirrel.Eq{"id": txID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	refundTx := &purchase_return.RefundTransaction{}
	if err := pgxscan.Get(ctx, r.querier(ctx), refundTx, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("refund transaction", txID.String())
		}
		return nil, fmt.Errorf("get refund transaction: %w", err)
	}

	return refundTx, nil
}

// UpdateTransaction updates a refund transaction's status fields.
func (r *PurchaseReturnRepo) UpdateTransaction(ctx context.Context, refundTx *purchase_return.RefundTransaction) error {
	q := r.Builder().
		Update(refundTransactionsTable).
		Set("status", refundTx.Status).
		Set("completed_at", refundTx.CompletedAt).
		Where(squirrel.Eq{"id": refundTx.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update refund transaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("refund transaction", refundTx.ID.String())
	}

	return nil
}

// ListTransactions returns all refund transactions for a return.
func (r *PurchaseReturnRepo) ListTransactions(ctx context.Context, returnID id.ID) ([]purchase_return.RefundTransaction, error) {
	q := r.Builder().
		Select("id", "return_id", "payment_id", "amount", "status", "created_at", "completed_at").
		From(refundTransactionsTable).
		Where(squirrel.Eq{"return_id": returnID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var txs []purchase_return.RefundTransaction
	if err := pgxscan.Select(ctx, r.querier(ctx), &txs, sql, args...); err != nil {
		return nil, fmt.Errorf("list refund transactions: %w", err)
	}

	return txs, nil
}
