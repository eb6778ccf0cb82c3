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

// PaymentHandler handles the payments endpoint, which covers both payments
// and deposits: a transaction with type "deposit" credits the wallet instead
// of debiting it.
type PaymentHandler struct {
	resourceHandler
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ledger ports.LedgerService) *PaymentHandler {
	return &PaymentHandler{resourceHandler{ledger: ledger, kind: domain.KindPayments}}
}

// Create handles POST /v1/payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if req.Type == "deposit" {
		rec, err := h.ledger.ProcessDeposit(c.Request.Context(), ports.DepositRequest{
			Date:     req.Date,
			Amount:   decimal.NewFromFloat(req.Amount),
			WalletID: req.WalletID,
			VendorID: req.VendorID,
			Notes:    req.Notes,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, rec)
		return
	}

	allocs := make([]domain.Allocation, 0, len(req.Refs))
	for _, ref := range req.Refs {
		if _, ok := h.ledger.GetByID(domain.KindExpenses, ref.ID); !ok {
			response.Error(c, apperror.ErrNotFound("Expense"))
			return
		}
		allocs = append(allocs, domain.Allocation{
			ExpenseID: ref.ID,
			Amount:    decimal.NewFromFloat(ref.Amount),
		})
	}

	rec, err := h.ledger.ProcessPayment(c.Request.Context(), ports.PaymentRequest{
		Date:        req.Date,
		Amount:      decimal.NewFromFloat(req.Amount),
		WalletID:    req.WalletID,
		VendorID:    req.VendorID,
		Allocations: allocs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// DepositHandler serves the read and delete endpoints for deposits. New
// deposits are created through the payments endpoint.
type DepositHandler struct {
	resourceHandler
}

// NewDepositHandler creates a new DepositHandler.
func NewDepositHandler(ledger ports.LedgerService) *DepositHandler {
	return &DepositHandler{resourceHandler{ledger: ledger, kind: domain.KindDeposits}}
}
