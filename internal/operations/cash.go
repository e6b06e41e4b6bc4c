package operations

import (
	"tracker/internal/ledger"
	"tracker/internal/models"
	"tracker/internal/store"
)

// cashBook is the cash ledger loaded into a batch. Every mutation is
// followed by a full running balance recomputation on save.
type cashBook struct {
	txs []models.CashTransaction
}

func loadCash(b *store.Batch) (*cashBook, error) {
	txs, err := store.Get[models.CashTransaction](b, models.CashTransactions)
	if err != nil {
		return nil, err
	}
	return &cashBook{txs: txs}, nil
}

// upsert replaces the transaction with the same id or appends ct.
func (c *cashBook) upsert(ct models.CashTransaction) {
	if i := indexOf(c.txs, func(t *models.CashTransaction) bool { return t.ID == ct.ID }); i >= 0 {
		ct.CreatedAt = c.txs[i].CreatedAt
		c.txs[i] = ct
		return
	}
	c.txs = append(c.txs, ct)
}

// mirror keeps one cash transaction in lockstep with a domain record. An
// empty id creates a new transaction; a zero amount removes it. It returns
// the id to store on the domain record.
func (c *cashBook) mirror(id string, ct models.CashTransaction) string {
	if ct.Amount == 0 {
		c.remove(id)
		return ""
	}
	if id == "" {
		id = models.NewID()
	}
	ct.ID = id
	c.upsert(ct)
	return id
}

func (c *cashBook) remove(id string) {
	if id == "" {
		return
	}
	c.txs = removeWhere(c.txs, func(t *models.CashTransaction) bool { return t.ID == id })
}

func (c *cashBook) save(b *store.Batch) error {
	ledger.RecomputeCashLedger(c.txs)
	return store.Put(b, models.CashTransactions, c.txs)
}
