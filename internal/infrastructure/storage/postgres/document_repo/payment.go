package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/documents/payment"
	"stockbook/internal/infrastructure/storage/postgres"
)

const paymentsTable = "doc_purchase_payments"

// PaymentRepo implements payment.Repository.
type PaymentRepo struct {
	*BaseDocumentRepo[*payment.PurchasePayment]
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txm *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*payment.PurchasePayment](
			txm,
			paymentsTable,
			postgres.ExtractDBColumns[payment.PurchasePayment](),
			func() *payment.PurchasePayment { return &payment.PurchasePayment{} },
		),
	}
}

// ListByOrder returns all payments for an order in chronological order.
func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]payment.PurchasePayment, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"order_id": orderID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("date", "created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []payment.PurchasePayment
	if err := pgxscan.Select(ctx, r.querier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	return payments, nil
}

// SumActiveByOrder returns the paid total excluding void payments.
func (r *PaymentRepo) SumActiveByOrder(ctx context.Context, orderID id.ID) (types.Money, error) {
	q := r.Builder().
		Select("COALESCE(SUM(amount), 0)").
		From(paymentsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		Where(squirrel.Eq{"status": payment.StatusActive}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var total types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum payments: %w", err)
	}

	return total, nil
}
