package v1

import (
	"github.com/gin-gonic/gin"
)

// ResourceRouteHandler defines the routes every resource handler serves.
type ResourceRouteHandler interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
}

// ResourceLister is an optional interface for resources that can be listed.
type ResourceLister interface {
	List(c *gin.Context)
}

// ResourceUpdater is an optional interface for resources that can be replaced.
type ResourceUpdater interface {
	Update(c *gin.Context)
}

// ResourceDeleter is an optional interface for resources that can be removed.
type ResourceDeleter interface {
	Delete(c *gin.Context)
}

// RegisterResourceRoutes registers the CRUD routes handler supports.
// Optional routes are registered only when the handler implements them.
//
// Usage:
//
//	handler := handlers.NewUserHandler(userService)
//	RegisterResourceRoutes(api.Group("/users"), handler)
func RegisterResourceRoutes(group *gin.RouterGroup, handler ResourceRouteHandler) {
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)

	if h, ok := handler.(ResourceLister); ok {
		group.GET("", h.List)
	}
	if h, ok := handler.(ResourceUpdater); ok {
		group.PUT("/:id", h.Update)
	}
	if h, ok := handler.(ResourceDeleter); ok {
		group.DELETE("/:id", h.Delete)
	}
}
