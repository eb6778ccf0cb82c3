package sheets

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"vendorledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// encodeCell turns a record field into a spreadsheet cell value. Structured
// values (allocation lists, nested maps) are stored as JSON-encoded strings;
// decimals are written as plain strings so no precision is lost in transit.
func encodeCell(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string, bool, float64, int, int64:
		return val
	case decimal.Decimal:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// decodeCell reverses encodeCell for values read back from a row. JSON-looking
// strings decode to their structured form; everything else is kept as-is and
// interpreted lazily by the record helpers.
func decodeCell(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded
		}
	}
	return s
}

// headerFor derives the column header for a record: id first, remaining
// fields in sorted order so independently created sheets agree on layout.
func headerFor(rec domain.Record) []string {
	fields := make([]string, 0, len(rec))
	for k := range rec {
		if k != "id" {
			fields = append(fields, k)
		}
	}
	sort.Strings(fields)
	return append([]string{"id"}, fields...)
}

// rowFor lays the record out in header order. Fields missing from the
// header are dropped; the header is the remote schema.
func rowFor(header []string, rec domain.Record) []any {
	row := make([]any, len(header))
	for i, col := range header {
		row[i] = encodeCell(rec[col])
	}
	return row
}

// recordFor builds a Record from a row using the sheet's header. Blank
// cells are skipped so absent fields stay absent.
func recordFor(header []any, row []any) domain.Record {
	rec := make(domain.Record, len(header))
	for i, col := range header {
		name, ok := col.(string)
		if !ok || name == "" || i >= len(row) {
			continue
		}
		if s, isStr := row[i].(string); isStr && s == "" {
			continue
		}
		rec[name] = decodeCell(row[i])
	}
	return rec
}
