// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"orderdesk/internal/infrastructure/storage/postgres"
)

// PoolChecker is the view of the connection pool health checks need.
// *postgres.Pool satisfies it.
type PoolChecker interface {
	Ping(ctx context.Context) error
	Stats() postgres.PoolStats
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	pool    PoolChecker
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pool PoolChecker, version string) *HealthHandler {
	return &HealthHandler{pool: pool, version: version}
}

// Live handles liveness check (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness check (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.pool.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"database": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"database": "healthy",
		},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	stat := h.pool.Stats()

	c.JSON(http.StatusOK, gin.H{
		"app":     "orderdesk",
		"version": h.version,
		"database": map[string]any{
			"total_conns":      stat.TotalConns,
			"acquired_conns":   stat.AcquiredConns,
			"idle_conns":       stat.IdleConns,
			"max_conns":        stat.MaxConns,
			"empty_acquires":   stat.EmptyAcquires,
			"acquire_duration": stat.AcquireDuration.String(),
		},
	})
}
