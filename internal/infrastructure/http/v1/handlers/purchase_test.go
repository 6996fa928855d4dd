package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/reconcile"
	"stockbook/internal/infrastructure/cache"
)

func newReconciliationContext(t *testing.T, orderID id.ID) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/purchase-orders/"+orderID.String()+"/reconciliation", nil)
	c.Params = gin.Params{{Key: "id", Value: orderID.String()}}
	return c, rec
}

func TestReconciliationServesCachedResult(t *testing.T) {
	loader := cache.NewLoader(nil)
	h := NewPurchaseOrderHandler(NewBaseHandler(), nil, nil, loader)

	orderID := id.New()
	cached := reconcile.Result{Status: reconcile.StatusPending}
	_, err := loader.Fetch(context.Background(), ReconciliationKey(orderID), func(ctx context.Context) (any, error) {
		return cached, nil
	})
	require.NoError(t, err)

	c, rec := newReconciliationContext(t, orderID)
	h.Reconciliation(c)

	require.Empty(t, c.Errors)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), orderID.String())
}

func TestReconciliationRejectsForeignCachedValue(t *testing.T) {
	loader := cache.NewLoader(nil)
	h := NewPurchaseOrderHandler(NewBaseHandler(), nil, nil, loader)

	orderID := id.New()
	// A value of the wrong type under the reconciliation key must surface
	// as an internal error, not a panic.
	_, err := loader.Fetch(context.Background(), ReconciliationKey(orderID), func(ctx context.Context) (any, error) {
		return "not a result", nil
	})
	require.NoError(t, err)

	c, _ := newReconciliationContext(t, orderID)
	assert.NotPanics(t, func() {
		h.Reconciliation(c)
	})

	require.Len(t, c.Errors, 1)
	var appErr *apperror.AppError
	require.ErrorAs(t, c.Errors[0].Err, &appErr)
	assert.Equal(t, apperror.CodeInternal, appErr.Code)
}
