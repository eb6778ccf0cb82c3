package handler

import (
	"vendorledger/internal/core/domain"
	"vendorledger/internal/core/ports"
	"vendorledger/pkg/apperror"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// resourceHandler provides the read, patch and delete endpoints shared by
// all resource kinds. Kind-specific creation rules live in the concrete
// handlers embedding it.
type resourceHandler struct {
	ledger ports.LedgerService
	kind   domain.Kind
}

// List handles GET /v1/<kind>.
func (h resourceHandler) List(c *gin.Context) {
	response.OK(c, h.ledger.GetAll(h.kind))
}

// Get handles GET /v1/<kind>/:id.
func (h resourceHandler) Get(c *gin.Context) {
	rec, ok := h.ledger.GetByID(h.kind, c.Param("id"))
	if !ok {
		response.Error(c, apperror.ErrNotFound(h.kind.Singular()))
		return
	}
	response.OK(c, rec)
}

// Patch handles PATCH /v1/<kind>/:id with a shallow field merge.
func (h resourceHandler) Patch(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	rec, err := h.ledger.Update(c.Request.Context(), h.kind, c.Param("id"), fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

// Delete handles DELETE /v1/<kind>/:id. Dependency checks and financial
// reversal happen inside the ledger.
func (h resourceHandler) Delete(c *gin.Context) {
	if err := h.ledger.Delete(c.Request.Context(), h.kind, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": c.Param("id")})
}
