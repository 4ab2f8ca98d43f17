package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	env     string
	started time.Time
	pingDB  func() error
}

func NewHealthHandler(env string, pingDB func() error) *HealthHandler {
	return &HealthHandler{
		env:     env,
		started: time.Now(),
		pingDB:  pingDB,
	}
}

// Health is the liveness probe; it never touches dependencies.
func (h *HealthHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.started).Seconds(),
		"environment": h.env,
	})
}

// Readyz also checks the database connection.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.pingDB != nil {
		if err := h.pingDB(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     "down",
			})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
