package handler

import (
	"vendorledger/internal/adapter/http/dto"
	"vendorledger/internal/core/domain"
	"vendorledger/internal/core/ports"
	"vendorledger/pkg/apperror"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles expense endpoints.
type ExpenseHandler struct {
	resourceHandler
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(ledger ports.LedgerService) *ExpenseHandler {
	return &ExpenseHandler{resourceHandler{ledger: ledger, kind: domain.KindExpenses}}
}

// Create handles POST /v1/expenses. The expense opens with its balance equal
// to the total and status Unpaid; the referenced vendor must exist.
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if _, ok := h.ledger.GetByID(domain.KindVendors, req.VendorID); !ok {
		response.Error(c, apperror.ErrNotFound("Vendor"))
		return
	}

	total := decimal.NewFromFloat(req.Total)
	rec, err := h.ledger.Create(c.Request.Context(), domain.KindExpenses, domain.Record{
		"description": req.Description,
		"vendorId":    req.VendorID,
		"date":        req.Date,
		"category":    req.Category,
		"total":       total,
		"balance":     total,
		"status":      domain.ExpenseStatusUnpaid,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}
