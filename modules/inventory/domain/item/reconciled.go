package item

import (
	"strings"

	"github.com/shopspring/decimal"
)

// IsFullyReconciled reports whether a batch has been completely delivered:
// it has logistic entries, every entry carries a completed date, and the
// units of those entries add up exactly to the batch's purchase unit.
// Amounts are compared as decimals so "0.1"+"0.2" equals "0.3".
func IsFullyReconciled(purchaseUnit Text, entries []*LogisticEntry) bool {
	if len(entries) == 0 {
		return false
	}
	target, err := decimal.NewFromString(strings.TrimSpace(purchaseUnit.String()))
	if err != nil {
		return false
	}
	sum := decimal.Zero
	for _, e := range entries {
		if e == nil || e.CompletedDate.Blank() {
			return false
		}
		unit, err := decimal.NewFromString(strings.TrimSpace(e.Unit.String()))
		if err != nil {
			return false
		}
		sum = sum.Add(unit)
	}
	return sum.Equal(target)
}

// Visible drops hidden batches, keeping order.
func Visible(infos []*AdditionalInfo) []*AdditionalInfo {
	if infos == nil {
		return nil
	}
	out := make([]*AdditionalInfo, 0, len(infos))
	for _, info := range infos {
		if info != nil && !info.Hidden {
			out = append(out, info)
		}
	}
	return out
}
