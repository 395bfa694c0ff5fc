package middleware

import (
	"github.com/gin-gonic/gin"

	"orderdesk/internal/infrastructure/dataloader"
)

// Loaders middleware gives every request its own loader set.
// Loaders cache for the life of the request only and are never shared.
func Loaders(newLoaders func() *dataloader.Loaders) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := dataloader.WithLoaders(c.Request.Context(), newLoaders())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
