package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "stockbook/internal/core/context"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderUserName  = "X-User-Name"
	HeaderUserEmail = "X-User-Email"
)

// Actor extracts the acting user from request headers and adds it to the
// request context. Identity is established upstream (gateway or reverse
// proxy); the domain layer reads it via context for audit fields.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID != "" {
			user := &appctx.UserContext{
				UserID: userID,
				Name:   c.GetHeader(HeaderUserName),
				Email:  c.GetHeader(HeaderUserEmail),
			}
			ctx := appctx.WithUser(c.Request.Context(), user)
			c.Request = c.Request.WithContext(ctx)
			c.Set("user_id", userID)
		}
		c.Next()
	}
}
