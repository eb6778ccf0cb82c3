package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Kind identifies one of the five resource collections kept in the ledger.
type Kind string

const (
	KindVendors  Kind = "Vendors"
	KindWallets  Kind = "Wallets"
	KindExpenses Kind = "Expenses"
	KindPayments Kind = "Payments"
	KindDeposits Kind = "Deposits"
)

// Kinds returns all resource kinds in their canonical order.
func Kinds() []Kind {
	return []Kind{KindVendors, KindWallets, KindExpenses, KindPayments, KindDeposits}
}

// ParseKind maps a collection name to its Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Singular returns the entity name used in error messages ("Wallet", "Expense").
func (k Kind) Singular() string {
	return strings.TrimSuffix(string(k), "s")
}

// IDPrefix returns the id prefix assigned to new records of this kind.
func (k Kind) IDPrefix() string {
	switch k {
	case KindVendors:
		return "VND"
	case KindWallets:
		return "WLT"
	case KindExpenses:
		return "AEX"
	case KindPayments:
		return "PAY"
	case KindDeposits:
		return "DEP"
	}
	return "RES"
}

// NewID generates a kind-prefixed id such as "VND-483920". Ids are assigned
// once at creation and never reused.
func NewID(k Kind) string {
	return fmt.Sprintf("%s-%06d", k.IDPrefix(), 100000+rand.Intn(900000))
}

// CanonicalID normalizes an id value to its canonical string form. Remote
// rows may carry ids as numbers, so every comparison goes through this.
func CanonicalID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", id))
	}
}
