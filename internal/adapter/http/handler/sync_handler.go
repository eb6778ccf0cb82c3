package handler

import (
	"context"

	"vendorledger/internal/core/ports"
	"vendorledger/pkg/apperror"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// SyncHandler exposes the sync coordinator: status, diff, settings and the
// manual push/pull triggers.
type SyncHandler struct {
	sync ports.SyncService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(sync ports.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// Status handles GET /v1/sync/status.
func (h *SyncHandler) Status(c *gin.Context) {
	response.OK(c, h.sync.Status())
}

// Diff handles GET /v1/sync/diff.
func (h *SyncHandler) Diff(c *gin.Context) {
	response.OK(c, h.sync.Diff())
}

// UpdateSettings handles POST /v1/sync/settings.
func (h *SyncHandler) UpdateSettings(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	settings, err := h.sync.UpdateSettings(fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}

// Force handles POST /v1/sync/force. The push runs in the background; a
// concurrent trigger is a clean no-op inside the coordinator.
func (h *SyncHandler) Force(c *gin.Context) {
	// Detached from the request context: the push outlives the response.
	go h.sync.SyncNow(context.Background())
	response.Accepted(c, gin.H{"message": "sync started"})
}

// Pull handles POST /v1/sync/pull.
func (h *SyncHandler) Pull(c *gin.Context) {
	go h.sync.PullFromRemote(context.Background())
	response.Accepted(c, gin.H{"message": "pull started"})
}
