package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/documents/purchase_return"
	"stockbook/internal/infrastructure/cache"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// PurchaseReturnHandler handles HTTP requests for purchase returns.
// Returns are created through the order's return endpoint; this handler
// covers reading them and driving the refund lifecycle.
type PurchaseReturnHandler struct {
	*BaseHandler
	service *purchase_return.Service
	cache   *cache.Loader
}

// NewPurchaseReturnHandler creates a new purchase return handler.
func NewPurchaseReturnHandler(base *BaseHandler, service *purchase_return.Service, loader *cache.Loader) *PurchaseReturnHandler {
	return &PurchaseReturnHandler{
		BaseHandler: base,
		service:     service,
		cache:       loader,
	}
}

// Get handles GET /purchase-returns/:id
func (h *PurchaseReturnHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	returnID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(ctx, returnID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPurchaseReturn(doc))
}

// ListByOrder handles GET /purchase-orders/:id/returns
func (h *PurchaseReturnHandler) ListByOrder(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	returns, err := h.service.ListByOrder(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(returns))
	for i := range returns {
		items[i] = dto.FromPurchaseReturn(&returns[i])
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UpdateRefundStatus handles POST /purchase-returns/:id/refund-status
func (h *PurchaseReturnHandler) UpdateRefundStatus(c *gin.Context) {
	ctx := c.Request.Context()

	returnID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateRefundStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.UpdateRefundStatus(ctx, returnID, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.cache.Invalidate(ReconciliationKey(doc.OrderID))
	c.JSON(http.StatusOK, dto.FromPurchaseReturn(doc))
}

// AddTransaction handles POST /purchase-returns/:id/transactions
func (h *PurchaseReturnHandler) AddTransaction(c *gin.Context) {
	ctx := c.Request.Context()

	returnID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AddRefundTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	paymentID, err := req.ParsePaymentID()
	if err != nil {
		h.Error(c, err)
		return
	}

	tx, err := h.service.AddRefundTransaction(ctx, returnID, paymentID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}

	if doc, err := h.service.GetByID(ctx, returnID); err == nil {
		h.cache.Invalidate(ReconciliationKey(doc.OrderID))
	}
	c.JSON(http.StatusCreated, dto.FromRefundTransaction(tx))
}

// CompleteTransaction handles POST /purchase-returns/:id/transactions/:txId/complete
func (h *PurchaseReturnHandler) CompleteTransaction(c *gin.Context) {
	ctx := c.Request.Context()

	returnID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	txID, err := id.Parse(c.Param("txId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid txId format"))
		return
	}

	doc, err := h.service.CompleteRefundTransaction(ctx, returnID, txID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.cache.Invalidate(ReconciliationKey(doc.OrderID))
	c.JSON(http.StatusOK, dto.FromPurchaseReturn(doc))
}

// ListTransactions handles GET /purchase-returns/:id/transactions
func (h *PurchaseReturnHandler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	returnID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	txs, err := h.service.ListTransactions(ctx, returnID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.RefundTransactionResponse, len(txs))
	for i := range txs {
		items[i] = dto.FromRefundTransaction(&txs[i])
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// RegisterRoutes registers purchase return routes.
func (h *PurchaseReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.Get)
	rg.POST("/:id/refund-status", h.UpdateRefundStatus)
	rg.GET("/:id/transactions", h.ListTransactions)
	rg.POST("/:id/transactions", h.AddTransaction)
	rg.POST("/:id/transactions/:txId/complete", h.CompleteTransaction)
}
