package handler

import (
	"vendorledger/internal/adapter/http/dto"
	"vendorledger/internal/core/domain"
	"vendorledger/internal/core/ports"
	"vendorledger/pkg/apperror"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// VendorHandler handles vendor endpoints.
type VendorHandler struct {
	resourceHandler
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(ledger ports.LedgerService) *VendorHandler {
	return &VendorHandler{resourceHandler{ledger: ledger, kind: domain.KindVendors}}
}

// Create handles POST /v1/vendors.
func (h *VendorHandler) Create(c *gin.Context) {
	var req dto.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	rec, err := h.ledger.Create(c.Request.Context(), domain.KindVendors, domain.Record{
		"name":    req.Name,
		"phone":   req.Phone,
		"address": req.Address,
		"notes":   req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}
