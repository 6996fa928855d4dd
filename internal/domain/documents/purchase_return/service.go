// Package purchase_return provides the PurchaseReturn document service.
package purchase_return

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/reconcile"
	"stockbook/pkg/logger"
)

// Service provides refund lifecycle operations for purchase returns.
// Return documents themselves are created by the purchase order service as
// part of its return operation; this service owns what happens afterwards.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new purchase return service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// GetByID retrieves a return with lines.
func (s *Service) GetByID(ctx context.Context, returnID id.ID) (*PurchaseReturn, error) {
	doc, err := s.repo.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, returnID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// ListByOrder returns all returns for an order.
func (s *Service) ListByOrder(ctx context.Context, orderID id.ID) ([]PurchaseReturn, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

// Snapshots returns the engine's refund view of an order's returns.
func (s *Service) Snapshots(ctx context.Context, orderID id.ID) ([]reconcile.Return, error) {
	returns, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	out := make([]reconcile.Return, 0, len(returns))
	for i := range returns {
		out = append(out, returns[i].Snapshot())
	}
	return out, nil
}

// UpdateRefundStatus applies a guarded refund status transition.
func (s *Service) UpdateRefundStatus(ctx context.Context, returnID id.ID, next reconcile.RefundStatus) (*PurchaseReturn, error) {
	var doc *PurchaseReturn

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, returnID)
		if err != nil {
			return err
		}

		if err := doc.TransitionTo(next); err != nil {
			return err
		}

		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "refund status updated",
		"return_id", returnID,
		"status", next)

	return doc, nil
}

// AddRefundTransaction registers a pending partial refund. The sum of all
// transactions may not exceed the return's total.
func (s *Service) AddRefundTransaction(ctx context.Context, returnID id.ID, paymentID *id.ID, amount types.Money) (*RefundTransaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("refund amount must be positive").
			WithDetail("field", "amount")
	}

	var refundTx *RefundTransaction

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, returnID)
		if err != nil {
			return err
		}

		switch doc.RefundStatus {
		case reconcile.RefundCompleted, reconcile.RefundCancelled:
			return apperror.NewRefundStateInvalid(string(doc.RefundStatus), string(reconcile.RefundProcessing))
		}

		existing, err := s.repo.ListTransactions(ctx, returnID)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}

		committed := types.Zero()
		for _, t := range existing {
			if t.Status != reconcile.RefundCancelled && t.Status != reconcile.RefundFailed {
				committed = committed.Add(t.Amount)
			}
		}
		if committed.Add(amount).GreaterThan(doc.TotalAmount) {
			return apperror.NewBusinessRule("REFUND_EXCEEDS_RETURN", "refund transactions exceed return total").
				WithDetail("returnTotal", doc.TotalAmount).
				WithDetail("committed", committed).
				WithDetail("requested", amount)
		}

		refundTx = NewRefundTransaction(returnID, paymentID, amount)
		if err := s.repo.CreateTransaction(ctx, refundTx); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		// First transaction moves the return into processing.
		if doc.RefundStatus == reconcile.RefundPending || doc.RefundStatus == reconcile.RefundFailed {
			if err := doc.TransitionTo(reconcile.RefundProcessing); err != nil {
				return err
			}
			return s.repo.Update(ctx, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "refund transaction added",
		"return_id", returnID,
		"transaction_id", refundTx.ID,
		"amount", amount)

	return refundTx, nil
}

// CompleteRefundTransaction marks a transaction completed and accrues the
// return's RefundAmount. When accrued refunds cover the total, the return
// itself completes.
func (s *Service) CompleteRefundTransaction(ctx context.Context, returnID, txID id.ID) (*PurchaseReturn, error) {
	var doc *PurchaseReturn

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, returnID)
		if err != nil {
			return err
		}

		refundTx, err := s.repo.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if refundTx.ReturnID != returnID {
			return apperror.NewNotFound("refund transaction", txID.String())
		}
		if refundTx.Status == reconcile.RefundCompleted {
			return apperror.NewRefundStateInvalid(string(refundTx.Status), string(reconcile.RefundCompleted))
		}

		now := time.Now().UTC()
		refundTx.Status = reconcile.RefundCompleted
		refundTx.CompletedAt = &now
		if err := s.repo.UpdateTransaction(ctx, refundTx); err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}

		doc.RefundAmount = doc.RefundAmount.Add(refundTx.Amount)
		if doc.RefundAmount.GreaterThanOrEqual(doc.TotalAmount) {
			if err := doc.TransitionTo(reconcile.RefundCompleted); err != nil {
				return err
			}
		}

		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "refund transaction completed",
		"return_id", returnID,
		"transaction_id", txID,
		"refunded", doc.RefundAmount)

	return doc, nil
}

// ListTransactions returns all refund transactions for a return.
func (s *Service) ListTransactions(ctx context.Context, returnID id.ID) ([]RefundTransaction, error) {
	return s.repo.ListTransactions(ctx, returnID)
}
