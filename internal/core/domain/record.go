package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Record is one ledger resource: a flat mapping of field name to value.
// Values are whatever JSON decoding produced (string, float64, bool, nested
// slices/maps), so typed access goes through the helpers below.
type Record map[string]any

// ID returns the record's id in canonical string form.
func (r Record) ID() string {
	return CanonicalID(r["id"])
}

// String returns the named field as a string, or "" when absent.
func (r Record) String(key string) string {
	return CanonicalID(r[key])
}

// Decimal parses the named field as a decimal amount. Missing or
// unparseable values yield zero — matching how the spreadsheet rows and
// hand-edited cache files are tolerated.
func (r Record) Decimal(key string) decimal.Decimal {
	return toDecimal(r[key])
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Allocation links a Payment to one Expense and the amount applied to it.
type Allocation struct {
	ExpenseID string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
}

// ParseAllocations decodes a payment's "refs" field. The cache holds the
// allocation list natively; rows pulled from the remote store carry it as a
// JSON-encoded cell, and pre-allocation data used a bare list of expense ids.
// Anything unreadable decodes to an empty list.
func ParseAllocations(v any) []Allocation {
	switch refs := v.(type) {
	case nil:
		return nil
	case []Allocation:
		return refs
	case string:
		if refs == "" {
			return nil
		}
		var raw []any
		if err := json.Unmarshal([]byte(refs), &raw); err != nil {
			return nil
		}
		return ParseAllocations(raw)
	case []any:
		out := make([]Allocation, 0, len(refs))
		for _, item := range refs {
			switch ref := item.(type) {
			case map[string]any:
				out = append(out, Allocation{
					ExpenseID: CanonicalID(ref["id"]),
					Amount:    toDecimal(ref["amount"]),
				})
			default:
				// Legacy shape: list of expense ids, no amounts.
				out = append(out, Allocation{ExpenseID: CanonicalID(item)})
			}
		}
		return out
	default:
		return nil
	}
}
