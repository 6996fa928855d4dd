package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/documents/purchase"
	"stockbook/internal/domain/reconcile"
	"stockbook/internal/domain/timeline"
	"stockbook/internal/infrastructure/cache"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler handles HTTP requests for purchase orders.
type PurchaseOrderHandler struct {
	*BaseHandler
	service  *purchase.Service
	timeline *timeline.Service
	cache    *cache.Loader
}

// NewPurchaseOrderHandler creates a new purchase order handler. The loader
// deduplicates concurrent reconciliation reads; mutations invalidate it.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchase.Service, tl *timeline.Service, loader *cache.Loader) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		BaseHandler: base,
		service:     service,
		timeline:    tl,
		cache:       loader,
	}
}

// ReconciliationKey is the cache key for one order's derived state.
func ReconciliationKey(orderID id.ID) string {
	return "reconciliation:" + orderID.String()
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := purchase.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if supplierStr := c.Query("supplierId"); supplierStr != "" {
		parsed, err := id.Parse(supplierStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return
		}
		filter.SupplierID = &parsed
	}

	if whStr := c.Query("warehouseId"); whStr != "" {
		parsed, err := id.Parse(whStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid warehouseId format"))
			return
		}
		filter.WarehouseID = &parsed
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := reconcile.Status(statusStr)
		filter.Status = &status
	}

	if fromStr := c.Query("dateFrom"); fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateFrom format, expected RFC3339"))
			return
		}
		filter.DateFrom = &parsed
	}

	if toStr := c.Query("dateTo"); toStr != "" {
		parsed, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateTo format, expected RFC3339"))
			return
		}
		filter.DateTo = &parsed
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromPurchaseOrder(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPurchaseOrder(doc))
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromPurchaseOrder(doc))
}

// Update handles PUT /purchase-orders/:id
// Only pending orders accept edits; the service enforces that.
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(doc); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	h.cache.Invalidate(ReconciliationKey(orderID))
	c.JSON(http.StatusOK, dto.FromPurchaseOrder(doc))
}

// Delete handles DELETE /purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, orderID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Receive handles POST /purchase-orders/:id/receive
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ReceiveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	receipts, err := req.ToReceiptLines()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.Receive(ctx, orderID, receipts)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.cache.Invalidate(ReconciliationKey(orderID))
	c.JSON(http.StatusOK, dto.FromPurchaseOrder(doc))
}

// Return handles POST /purchase-orders/:id/return
// Creates a purchase return document and responds with it.
func (h *PurchaseOrderHandler) Return(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	returnLines, err := req.ToReturnLines()
	if err != nil {
		h.Error(c, err)
		return
	}

	ret, err := h.service.ReturnItems(ctx, orderID, returnLines)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.cache.Invalidate(ReconciliationKey(orderID))
	c.JSON(http.StatusCreated, dto.FromPurchaseReturn(ret))
}

// Cancel handles POST /purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.Cancel(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.cache.Invalidate(ReconciliationKey(orderID))
	c.JSON(http.StatusOK, dto.FromPurchaseOrder(doc))
}

// Reconciliation handles GET /purchase-orders/:id/reconciliation
// Returns the full derived financial state for one order.
func (h *PurchaseOrderHandler) Reconciliation(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	// Reconciliation is pure over stored snapshots, so concurrent reads for
	// the same order share one computation and the value stays cached until
	// a mutation invalidates it.
	val, err := h.cache.Fetch(ctx, ReconciliationKey(orderID), func(ctx context.Context) (any, error) {
		return h.service.Reconcile(ctx, orderID)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	result, ok := val.(reconcile.Result)
	if !ok {
		h.Error(c, apperror.NewInternal(fmt.Errorf("unexpected cached value type %T for key %s", val, ReconciliationKey(orderID))))
		return
	}

	c.JSON(http.StatusOK, dto.ReconciliationResponse{
		OrderID: orderID.String(),
		Result:  result,
	})
}

// Timeline handles GET /purchase-orders/:id/timeline
func (h *PurchaseOrderHandler) Timeline(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	events, err := h.timeline.ListByOrder(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.TimelineEventResponse, len(events))
	for i, ev := range events {
		items[i] = dto.FromTimelineEvent(ev)
	}

	c.JSON(http.StatusOK, dto.TimelineResponse{Items: items})
}

// RegisterRoutes registers purchase order routes.
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/receive", h.Receive)
	rg.POST("/:id/return", h.Return)
	rg.POST("/:id/cancel", h.Cancel)
	rg.GET("/:id/reconciliation", h.Reconciliation)
	rg.GET("/:id/timeline", h.Timeline)
}
