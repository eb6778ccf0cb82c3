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

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	resourceHandler
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger ports.LedgerService) *WalletHandler {
	return &WalletHandler{resourceHandler{ledger: ledger, kind: domain.KindWallets}}
}

// Create handles POST /v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "NGN"
	}

	rec, err := h.ledger.Create(c.Request.Context(), domain.KindWallets, domain.Record{
		"name":     req.Name,
		"balance":  decimal.NewFromFloat(req.Balance),
		"currency": currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}
