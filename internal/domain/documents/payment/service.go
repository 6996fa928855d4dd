// Package payment provides the PurchasePayment document service.
package payment

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/apperror"
	corecontext "stockbook/internal/core/context"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/reconcile"
	"stockbook/internal/domain/timeline"
	"stockbook/pkg/logger"
	"stockbook/pkg/numerator"
)

// Service provides business operations for purchase payments.
type Service struct {
	repo      Repository
	timeline  *timeline.Service
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	timelineSvc *timeline.Service,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		timeline:  timelineSvc,
		numerator: gen,
		txManager: txManager,
	}
}

// Record validates and stores a payment, appending the payment_made event
// in the same transaction.
func (s *Service) Record(ctx context.Context, doc *PurchasePayment) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		event := timeline.NewPurchaseEvent(doc.OrderID, reconcile.EventPaymentMade).
			WithPayment(doc.ID).
			WithPayload(map[string]any{
				"amount": doc.Amount,
				"method": doc.Method,
			})
		return s.timeline.Record(ctx, event)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "payment recorded",
		"id", doc.ID,
		"number", doc.Number,
		"order_id", doc.OrderID,
		"amount", doc.Amount)

	return nil
}

// Void marks a payment void and appends the payment_voided event.
// Voiding an already void payment is rejected.
func (s *Service) Void(ctx context.Context, paymentID id.ID, reason string) (*PurchasePayment, error) {
	var doc *PurchasePayment

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}

		if doc.IsVoid() {
			return apperror.NewPaymentAlreadyVoid(paymentID.String())
		}

		doc.MarkVoid(reason, corecontext.GetUserID(ctx))
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}

		event := timeline.NewPurchaseEvent(doc.OrderID, reconcile.EventPaymentVoided).
			WithPayment(doc.ID).
			WithPayload(map[string]any{
				"amount": doc.Amount,
				"reason": reason,
			})
		return s.timeline.Record(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment voided",
		"id", doc.ID,
		"order_id", doc.OrderID,
		"reason", reason)

	return doc, nil
}

// GetByID retrieves a payment.
func (s *Service) GetByID(ctx context.Context, paymentID id.ID) (*PurchasePayment, error) {
	return s.repo.GetByID(ctx, paymentID)
}

// ListByOrder returns all payments for an order.
func (s *Service) ListByOrder(ctx context.Context, orderID id.ID) ([]PurchasePayment, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

// AmountPaid returns the active-payment total for an order.
func (s *Service) AmountPaid(ctx context.Context, orderID id.ID) (types.Money, error) {
	return s.repo.SumActiveByOrder(ctx, orderID)
}
