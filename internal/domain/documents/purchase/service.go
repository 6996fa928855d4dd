// Package purchase provides the PurchaseOrder document service.
package purchase

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
	"stockbook/internal/domain/documents/payment"
	"stockbook/internal/domain/documents/purchase_return"
	"stockbook/internal/domain/reconcile"
	"stockbook/internal/domain/registers/stock"
	"stockbook/internal/domain/timeline"
	"stockbook/pkg/logger"
	"stockbook/pkg/numerator"
)

// ReceiptLine is one received position in a Receive operation.
type ReceiptLine struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// ReturnLine is one returned position in a ReturnItems operation.
type ReturnLine struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// Service provides business operations for purchase orders.
// All mutations run in a single transaction: document, lines, timeline
// events and stock movements commit together.
type Service struct {
	repo      Repository
	returns   purchase_return.Repository
	payments  payment.Repository
	timeline  *timeline.Service
	stock     *stock.Service
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*PurchaseOrder]
}

// NewService creates a new purchase order service.
func NewService(
	repo Repository,
	returns purchase_return.Repository,
	payments payment.Repository,
	timelineSvc *timeline.Service,
	stockSvc *stock.Service,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		returns:   returns,
		payments:  payments,
		timeline:  timelineSvc,
		stock:     stockSvc,
		numerator: gen,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*PurchaseOrder](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*PurchaseOrder] {
	return s.hooks
}

// Create creates a new purchase order and appends the order_placed event.
func (s *Service) Create(ctx context.Context, doc *PurchaseOrder) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	doc.RecalculateTotal()
	doc.Status = doc.DeriveStatus()

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
			return fmt.Errorf("create document: %w", err)
		}

		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		event := timeline.NewPurchaseEvent(doc.ID, reconcile.EventOrderPlaced).
			WithPayload(map[string]any{
				"number":      doc.Number,
				"totalAmount": doc.TotalAmount,
			})
		return s.timeline.Record(ctx, event)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "purchase order created",
		"id", doc.ID,
		"number", doc.Number,
		"total", doc.TotalAmount)

	return nil
}

// GetByID retrieves a purchase order with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update updates a purchase order. Only pending orders are editable; once
// anything was received, returned or paid the order is settled through its
// operations, not edits.
func (s *Service) Update(ctx context.Context, doc *PurchaseOrder) error {
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	doc.RecalculateTotal()

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetForUpdate(ctx, doc.ID)
		if err != nil {
			return err
		}
		if existing.Status != reconcile.StatusPending {
			return apperror.NewBusinessRule("ORDER_NOT_EDITABLE", "only pending orders can be edited").
				WithDetail("orderId", doc.ID.String()).
				WithDetail("status", string(existing.Status))
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
}

// Delete soft-deletes a purchase order. Orders with receipts or returns on
// record stay; cancel them instead.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if doc.Status != reconcile.StatusPending && doc.Status != reconcile.StatusCancelled {
		return apperror.NewBusinessRule("ORDER_NOT_DELETABLE", "only pending or cancelled orders can be deleted").
			WithDetail("orderId", docID.String()).
			WithDetail("status", string(doc.Status))
	}

	return s.repo.Delete(ctx, docID)
}

// List retrieves purchase orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return s.repo.List(ctx, filter)
}

// Receive records goods arrival against order lines: increments received
// quantities, posts stock receipts, appends the receipt event and recomputes
// the order status.
func (s *Service) Receive(ctx context.Context, orderID id.ID, receipts []ReceiptLine) (*PurchaseOrder, error) {
	if len(receipts) == 0 {
		return nil, apperror.NewValidation("at least one receipt line is required").
			WithDetail("field", "lines")
	}

	var doc *PurchaseOrder

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.lockWithLines(ctx, orderID)
		if err != nil {
			return err
		}

		if doc.Status == reconcile.StatusCancelled {
			return apperror.NewBusinessRule("ORDER_CANCELLED", "cannot receive against a cancelled order").
				WithDetail("orderId", orderID.String())
		}

		movements := make([]entity.StockMovement, 0, len(receipts))
		for _, rc := range receipts {
			line := doc.FindLine(rc.ProductID)
			if line == nil {
				return apperror.NewNotFound("order line", rc.ProductID.String())
			}
			if !rc.Quantity.IsPositive() {
				return apperror.NewValidation("receipt quantity must be positive").
					WithDetail("productId", rc.ProductID.String())
			}
			if line.ReceivedQuantity+rc.Quantity > line.Quantity {
				return apperror.NewReceiveExceedsOrdered(
					rc.ProductID.String(),
					line.Quantity.Float64(),
					line.ReceivedQuantity.Float64(),
					rc.Quantity.Float64(),
				)
			}

			line.ReceivedQuantity += rc.Quantity

			movements = append(movements, entity.NewStockMovement(
				doc.ID,
				doc.GetDocumentType(),
				doc.Version+1,
				doc.Date,
				entity.RecordTypeReceipt,
				doc.WarehouseID,
				rc.ProductID,
				rc.Quantity,
			))
		}

		if err := s.stock.RecordMovements(ctx, movements); err != nil {
			return err
		}

		eventType := reconcile.EventPartialReceipt
		if doc.IsFullyReceived() {
			eventType = reconcile.EventFullReceipt
		}
		event := timeline.NewPurchaseEvent(doc.ID, eventType).
			WithPayload(receiptPayload(receipts))
		if err := s.timeline.Record(ctx, event); err != nil {
			return err
		}

		if err := s.applyStatus(ctx, doc); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "goods received",
		"order_id", orderID,
		"lines", len(receipts),
		"status", doc.Status)

	return doc, nil
}

// ReturnItems sends received goods back: increments returned quantities,
// creates the PurchaseReturn document, posts stock expenses and appends the
// return event. When the net received quantity reaches zero a
// balance_resolved marker is appended as well.
func (s *Service) ReturnItems(ctx context.Context, orderID id.ID, returnLines []ReturnLine) (*purchase_return.PurchaseReturn, error) {
	if len(returnLines) == 0 {
		return nil, apperror.NewValidation("at least one return line is required").
			WithDetail("field", "lines")
	}

	var ret *purchase_return.PurchaseReturn

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.lockWithLines(ctx, orderID)
		if err != nil {
			return err
		}

		ret = purchase_return.NewPurchaseReturn(doc.ID, doc.WarehouseID)

		movements := make([]entity.StockMovement, 0, len(returnLines))
		for _, rl := range returnLines {
			line := doc.FindLine(rl.ProductID)
			if line == nil {
				return apperror.NewNotFound("order line", rl.ProductID.String())
			}
			if !rl.Quantity.IsPositive() {
				return apperror.NewValidation("return quantity must be positive").
					WithDetail("productId", rl.ProductID.String())
			}
			if line.ReturnedQuantity+rl.Quantity > line.ReceivedQuantity {
				return apperror.NewReturnExceedsReceived(
					rl.ProductID.String(),
					line.ReceivedQuantity.Float64(),
					line.ReturnedQuantity.Float64(),
					rl.Quantity.Float64(),
				)
			}

			line.ReturnedQuantity += rl.Quantity
			ret.AddLine(rl.ProductID, rl.Quantity, line.PurchasePrice)

			movements = append(movements, entity.NewStockMovement(
				doc.ID,
				doc.GetDocumentType(),
				doc.Version+1,
				doc.Date,
				entity.RecordTypeExpense,
				doc.WarehouseID,
				rl.ProductID,
				rl.Quantity,
			))
		}

		if ret.Number == "" {
			cfg := numerator.DefaultConfig(purchase_return.NumberPrefix)
			number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: purchase_return.NumeratorStrategy}, time.Now())
			if err != nil {
				return fmt.Errorf("generate return number: %w", err)
			}
			ret.Number = number
		}

		if err := ret.Validate(ctx); err != nil {
			return err
		}
		if err := s.returns.Create(ctx, ret); err != nil {
			return fmt.Errorf("create return: %w", err)
		}
		if err := s.returns.SaveLines(ctx, ret.ID, ret.Lines); err != nil {
			return fmt.Errorf("save return lines: %w", err)
		}

		if err := s.stock.RecordMovements(ctx, movements); err != nil {
			return err
		}

		eventType := reconcile.EventPartialReturn
		if doc.IsFullyReturned() {
			eventType = reconcile.EventFullReturn
		}
		event := timeline.NewPurchaseEvent(doc.ID, eventType).
			WithReturn(ret.ID).
			WithPayload(map[string]any{
				"returnNumber": ret.Number,
				"returnAmount": ret.TotalAmount,
			})
		if err := s.timeline.Record(ctx, event); err != nil {
			return err
		}

		if netReceived(doc) == 0 {
			marker := timeline.NewPurchaseEvent(doc.ID, reconcile.EventBalanceResolved).
				WithReturn(ret.ID)
			if err := s.timeline.Record(ctx, marker); err != nil {
				return err
			}
		}

		if err := s.applyStatus(ctx, doc); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "goods returned",
		"order_id", orderID,
		"return_id", ret.ID,
		"amount", ret.TotalAmount)

	return ret, nil
}

// Cancel cancels a pending order. Orders with receipts on record cannot be
// cancelled; they unwind through returns.
func (s *Service) Cancel(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	var doc *PurchaseOrder

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.lockWithLines(ctx, orderID)
		if err != nil {
			return err
		}

		if doc.Status != reconcile.StatusPending {
			return apperror.NewOrderNotCancellable(orderID.String(), string(doc.Status))
		}

		doc.Status = reconcile.StatusCancelled
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		event := timeline.NewPurchaseEvent(doc.ID, reconcile.EventCancelled)
		return s.timeline.Record(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order cancelled", "order_id", orderID)

	return doc, nil
}

// Reconcile assembles the order snapshot and runs the engine over it.
func (s *Service) Reconcile(ctx context.Context, orderID id.ID) (reconcile.Result, error) {
	doc, err := s.GetByID(ctx, orderID)
	if err != nil {
		return reconcile.Result{}, err
	}

	amountPaid, err := s.payments.SumActiveByOrder(ctx, orderID)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("sum payments: %w", err)
	}

	returns, err := s.returns.ListByOrder(ctx, orderID)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("list returns: %w", err)
	}
	snapshots := make([]reconcile.Return, 0, len(returns))
	for i := range returns {
		snapshots = append(snapshots, returns[i].Snapshot())
	}

	events, err := s.timeline.ChronologyForOrder(ctx, orderID)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("load timeline: %w", err)
	}

	return reconcile.Reconcile(reconcile.Input{
		TotalAmount: doc.TotalAmount,
		Items:       doc.ReconcileItems(),
		AmountPaid:  amountPaid,
		Returns:     snapshots,
		Events:      events,
	}), nil
}

// lockWithLines fetches the order with a row lock plus its lines.
func (s *Service) lockWithLines(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	doc, err := s.repo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// applyStatus recomputes the derived status and appends a status_change
// event when it moved.
func (s *Service) applyStatus(ctx context.Context, doc *PurchaseOrder) error {
	next := doc.DeriveStatus()
	if next == doc.Status {
		return nil
	}

	event := timeline.NewPurchaseEvent(doc.ID, reconcile.EventStatusChange).
		WithPayload(map[string]any{
			"from": doc.Status,
			"to":   next,
		})
	doc.Status = next

	return s.timeline.Record(ctx, event)
}

// netReceived sums received minus returned across all lines.
func netReceived(doc *PurchaseOrder) types.Quantity {
	var net types.Quantity
	for _, line := range doc.Lines {
		net += line.ReceivedQuantity - line.ReturnedQuantity
	}
	return net
}

func receiptPayload(receipts []ReceiptLine) map[string]any {
	lines := make([]map[string]any, 0, len(receipts))
	for _, rc := range receipts {
		lines = append(lines, map[string]any{
			"productId": rc.ProductID,
			"quantity":  rc.Quantity,
		})
	}
	return map[string]any{"lines": lines}
}
