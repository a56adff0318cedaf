package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heliograph/heliograph/internal/snapshot"
)

// SnapshotHandler exposes live plant telemetry snapshots
type SnapshotHandler struct {
	provider snapshot.Provider
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(p snapshot.Provider) *SnapshotHandler {
	return &SnapshotHandler{provider: p}
}

// GetSnapshot handles GET /api/v1/snapshot
func (h *SnapshotHandler) GetSnapshot(c *gin.Context) {
	snap, err := h.provider.Fetch(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
