package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tracker/internal/models"
)

func at(minute int) time.Time {
	return time.Date(2024, 1, 1, 9, minute, 0, 0, time.UTC)
}

func TestRecomputeSupplierLedger_ChronologicalOrder(t *testing.T) {
	entries := []models.SupplierLedgerEntry{
		{ID: "e3", SupplierID: "s1", Amount: 100, Date: "2024-03-01", CreatedAt: at(1)},
		{ID: "x1", SupplierID: "s2", Amount: -999, Date: "2024-01-01", CreatedAt: at(0)},
		{ID: "e1", SupplierID: "s1", Amount: -250, Date: "2024-01-15", CreatedAt: at(5)},
		{ID: "e2b", SupplierID: "s1", Amount: 50, Date: "2024-02-01", CreatedAt: at(9)},
		{ID: "e2a", SupplierID: "s1", Amount: 75, Date: "2024-02-01", CreatedAt: at(2)},
	}

	final := RecomputeSupplierLedger(entries, "s1")

	assert.Equal(t, -25.0, final)
	// stored order is kept
	assert.Equal(t, []string{"e3", "x1", "e1", "e2b", "e2a"}, []string{entries[0].ID, entries[1].ID, entries[2].ID, entries[3].ID, entries[4].ID})
	assert.Equal(t, -250.0, entries[2].Balance)
	assert.Equal(t, -175.0, entries[4].Balance)
	assert.Equal(t, -125.0, entries[3].Balance)
	assert.Equal(t, -25.0, entries[0].Balance)
	// other suppliers are untouched
	assert.Zero(t, entries[1].Balance)
	assert.Equal(t, -25.0, SupplierBalance(entries, "s1"))
	assert.Equal(t, -999.0, SupplierBalance(entries, "s2"))
}

func TestRecomputeRunningBalances_Idempotent(t *testing.T) {
	txs := []models.CashTransaction{
		{ID: "a", Amount: 10.1, Date: "2024-01-03", CreatedAt: at(1)},
		{ID: "b", Amount: -3.3, Date: "2024-01-01", CreatedAt: at(1)},
		{ID: "c", Amount: 0.2, Date: "2024-01-03", CreatedAt: at(1)},
		{ID: "d", Amount: 7, Date: "2024-01-02", CreatedAt: at(4)},
	}

	first := RecomputeCashLedger(txs)
	snapshot := append([]models.CashTransaction(nil), txs...)
	second := RecomputeCashLedger(txs)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, txs)
	assert.InDelta(t, 14.0, first, Epsilon)
	// same date and time falls back to id
	assert.InDelta(t, 13.8, txs[0].Balance, Epsilon)
	assert.InDelta(t, 14.0, txs[2].Balance, Epsilon)
}

func TestRecomputeRunningBalances_EditInThePastShiftsLaterBalances(t *testing.T) {
	txs := []models.PartnerTransaction{
		{ID: "1", PartnerID: "p", Type: models.PartnerInjection, AmountUSD: 100, Date: "2024-01-01"},
		{ID: "2", PartnerID: "p", Type: models.PartnerWithdrawal, AmountUSD: 30, Date: "2024-01-05"},
		{ID: "3", PartnerID: "p", Type: models.PartnerInjection, AmountUSD: 10, Date: "2024-01-09"},
	}
	require.Equal(t, 80.0, RecomputePartnerLedger(txs, "p"))
	assert.Equal(t, 70.0, txs[1].Balance)

	txs[0].AmountUSD = 50
	assert.Equal(t, 30.0, RecomputePartnerLedger(txs, "p"))
	assert.Equal(t, 20.0, txs[1].Balance)
	assert.Equal(t, 30.0, txs[2].Balance)
}

func TestRecomputeRunningBalances_Empty(t *testing.T) {
	assert.Zero(t, RecomputeCashLedger(nil))
	assert.Zero(t, RecomputeSupplierLedger([]models.SupplierLedgerEntry{{SupplierID: "x", Amount: 5}}, "s1"))
}
