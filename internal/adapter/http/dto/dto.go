package dto

// CreateVendorRequest is the request body for vendor creation.
type CreateVendorRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// CreateWalletRequest is the request body for wallet creation.
type CreateWalletRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=100"`
	Balance  float64 `json:"balance" binding:"gte=0"`
	Currency string  `json:"currency,omitempty"`
}

// CreateExpenseRequest is the request body for expense creation. The
// expense opens with balance equal to total and status Unpaid.
type CreateExpenseRequest struct {
	Description string  `json:"description" binding:"required,min=1,max=200"`
	VendorID    string  `json:"vendorId" binding:"required"`
	Total       float64 `json:"total" binding:"required,gt=0"`
	Date        string  `json:"date,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// AllocationRequest applies part of a payment to one expense.
type AllocationRequest struct {
	ID     string  `json:"id" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// CreateTransactionRequest is the request body for the payments endpoint.
// Type selects payment (default) or deposit.
type CreateTransactionRequest struct {
	Type     string              `json:"type,omitempty" binding:"omitempty,oneof=payment deposit"`
	Date     string              `json:"date,omitempty"`
	Amount   float64             `json:"amount" binding:"required,gt=0"`
	WalletID string              `json:"walletId" binding:"required"`
	VendorID string              `json:"vendorId,omitempty"`
	Refs     []AllocationRequest `json:"refs,omitempty" binding:"omitempty,dive"`
	Notes    string              `json:"notes,omitempty"`
}
