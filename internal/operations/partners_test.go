package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tracker/internal/ledger"
	"tracker/internal/models"
)

func TestPartnerTransactions(t *testing.T) {
	f := newFixture(t)
	ana := f.ok(f.svc.CreatePartner(f.ctx, PartnerInput{Name: "Ana"}))
	ben := f.ok(f.svc.CreatePartner(f.ctx, PartnerInput{Name: "Ben"}))
	partner := func(id string) models.Partner {
		return find(f, models.Partners, func(p models.Partner) bool { return p.ID == id })
	}

	in := f.ok(f.svc.CreatePartnerTransaction(f.ctx, PartnerTransactionInput{
		PartnerID: ana, Type: models.PartnerInjection, AmountUSD: 500, Date: "2024-06-01",
	}))
	out := f.ok(f.svc.CreatePartnerTransaction(f.ctx, PartnerTransactionInput{
		PartnerID: ana, Type: models.PartnerWithdrawal, AmountUSD: 800, Date: "2024-06-05",
	}))

	assert.Equal(t, -300.0, partner(ana).Balance, "withdrawals may exceed the balance")
	assert.Equal(t, -300.0, f.cashBalance())
	withdrawal := find(f, models.CashTransactions, func(c models.CashTransaction) bool { return c.RelatedID == out })
	assert.Equal(t, models.CashPartnerWithdrawal, withdrawal.Type)
	assert.Equal(t, -800.0, withdrawal.Amount)

	// moving the injection to Ben rebalances both partners
	f.ok(f.svc.UpdatePartnerTransaction(f.ctx, in, PartnerTransactionInput{
		PartnerID: ben, Type: models.PartnerInjection, AmountUSD: 500, Date: "2024-06-01",
	}))
	assert.Equal(t, -800.0, partner(ana).Balance)
	assert.Equal(t, 500.0, partner(ben).Balance)
	assert.Len(t, get[models.CashTransaction](f, models.CashTransactions), 2)

	f.ok(f.svc.DeletePartnerTransaction(f.ctx, out))
	assert.Zero(t, partner(ana).Balance)
	assert.Equal(t, 500.0, f.cashBalance())
}

func TestPartnerTransaction_Validation(t *testing.T) {
	f := newFixture(t)
	ana := f.ok(f.svc.CreatePartner(f.ctx, PartnerInput{Name: "Ana"}))

	bad := []PartnerTransactionInput{
		{PartnerID: ana, Type: models.PartnerInjection, AmountUSD: 0, Date: "2024-06-01"},
		{PartnerID: ana, Type: "loan", AmountUSD: 1, Date: "2024-06-01"},
		{PartnerID: ana, Type: models.PartnerInjection, AmountUSD: 1, Date: "June"},
		{Type: models.PartnerInjection, AmountUSD: 1, Date: "2024-06-01"},
	}
	for _, in := range bad {
		assert.True(t, ledger.IsValidation(f.failed(f.svc.CreatePartnerTransaction(f.ctx, in))), "%+v", in)
	}
	require.True(t, IsNotFound(f.failed(f.svc.CreatePartnerTransaction(f.ctx, PartnerTransactionInput{
		PartnerID: "ghost", Type: models.PartnerInjection, AmountUSD: 1, Date: "2024-06-01",
	}))))
	assert.Empty(t, get[models.PartnerTransaction](f, models.PartnerTransactions))
}
