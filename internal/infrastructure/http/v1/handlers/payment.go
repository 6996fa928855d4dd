package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/documents/payment"
	"stockbook/internal/infrastructure/cache"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// PaymentHandler handles HTTP requests for purchase payments.
type PaymentHandler struct {
	*BaseHandler
	service *payment.Service
	cache   *cache.Loader
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(base *BaseHandler, service *payment.Service, loader *cache.Loader) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler: base,
		service:     service,
		cache:       loader,
	}
}

// Record handles POST /payments
func (h *PaymentHandler) Record(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Record(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	h.cache.Invalidate(ReconciliationKey(doc.OrderID))
	c.JSON(http.StatusCreated, dto.FromPayment(doc))
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	paymentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(ctx, paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPayment(doc))
}

// Void handles POST /payments/:id/void
// The payment row survives for audit; only its status changes.
func (h *PaymentHandler) Void(c *gin.Context) {
	ctx := c.Request.Context()

	paymentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.VoidPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Void(ctx, paymentID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.cache.Invalidate(ReconciliationKey(doc.OrderID))
	c.JSON(http.StatusOK, dto.FromPayment(doc))
}

// ListByOrder handles GET /purchase-orders/:id/payments
func (h *PaymentHandler) ListByOrder(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	payments, err := h.service.ListByOrder(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	amountPaid, err := h.service.AmountPaid(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.PaymentResponse, len(payments))
	for i := range payments {
		items[i] = dto.FromPayment(&payments[i])
	}

	c.JSON(http.StatusOK, dto.PaymentListResponse{
		Items:      items,
		AmountPaid: amountPaid,
	})
}

// RegisterRoutes registers payment routes.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Record)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/void", h.Void)
}
