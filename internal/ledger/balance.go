package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"tracker/internal/models"
)

// Entry is a ledger row carrying a stored running balance.
type Entry interface {
	LedgerKey() (date string, createdAt time.Time, id string)
	SignedAmount() float64
}

// BalancedEntry is the pointer form of an Entry whose balance can be set.
type BalancedEntry[T any] interface {
	*T
	Entry
	SetBalance(float64)
}

// RecomputeRunningBalances assigns the running balance to every entry
// selected by include, accumulating in chronological order over the whole
// selection. Entries keep their stored order. It returns the final balance.
// A nil include selects every entry.
func RecomputeRunningBalances[T any, P BalancedEntry[T]](entries []T, include func(*T) bool) float64 {
	idx := make([]int, 0, len(entries))
	for i := range entries {
		if include == nil || include(&entries[i]) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return entryBefore(P(&entries[idx[a]]), P(&entries[idx[b]]))
	})

	balance := decimal.Zero
	for _, i := range idx {
		p := P(&entries[i])
		balance = balance.Add(dec(p.SignedAmount()))
		p.SetBalance(float(balance))
	}
	return float(balance)
}

func entryBefore(a, b Entry) bool {
	ad, ac, aid := a.LedgerKey()
	bd, bc, bid := b.LedgerKey()
	if ad != bd {
		return ad < bd
	}
	if !ac.Equal(bc) {
		return ac.Before(bc)
	}
	return aid < bid
}

// Balance sums the signed amounts of the selected entries.
func Balance[T Entry](entries []T, include func(T) bool) float64 {
	total := decimal.Zero
	for _, e := range entries {
		if include == nil || include(e) {
			total = total.Add(dec(e.SignedAmount()))
		}
	}
	return float(total)
}

// SupplierBalance derives what the business owes a supplier (negative) or
// has prepaid (positive), in EUR.
func SupplierBalance(entries []models.SupplierLedgerEntry, supplierID string) float64 {
	return Balance(entries, func(e models.SupplierLedgerEntry) bool { return e.SupplierID == supplierID })
}

// RecomputeSupplierLedger refreshes the running balances of one supplier.
func RecomputeSupplierLedger(entries []models.SupplierLedgerEntry, supplierID string) float64 {
	return RecomputeRunningBalances(entries, func(e *models.SupplierLedgerEntry) bool {
		return e.SupplierID == supplierID
	})
}

// RecomputePartnerLedger refreshes the running balances of one partner and
// returns the partner's balance.
func RecomputePartnerLedger(txs []models.PartnerTransaction, partnerID string) float64 {
	return RecomputeRunningBalances(txs, func(t *models.PartnerTransaction) bool {
		return t.PartnerID == partnerID
	})
}

// RecomputeCashLedger refreshes the running balances of the cash ledger and
// returns the cash position.
func RecomputeCashLedger(txs []models.CashTransaction) float64 {
	return RecomputeRunningBalances[models.CashTransaction](txs, nil)
}
