package operations

import (
	"context"

	"tracker/internal/ledger"
	"tracker/internal/models"
	"tracker/internal/store"
)

// PartnerTransactionInput is the form state of a partner cash movement.
type PartnerTransactionInput struct {
	PartnerID   string                        `json:"partnerId"`
	Type        models.PartnerTransactionType `json:"type"`
	AmountUSD   float64                       `json:"amountUSD"`
	Date        string                        `json:"date"`
	Description string                        `json:"description"`
}

func (in PartnerTransactionInput) validate() error {
	if in.PartnerID == "" {
		return ledger.NewValidationError("partnerId", nil, "is required")
	}
	if in.Type != models.PartnerInjection && in.Type != models.PartnerWithdrawal {
		return ledger.NewValidationError("type", in.Type, "must be injection or withdrawal")
	}
	if in.AmountUSD <= 0 {
		return ledger.NewValidationError("amountUSD", in.AmountUSD, "must be positive")
	}
	return ledger.ValidateDate("date", in.Date)
}

type partnerTx struct {
	b        *store.Batch
	partners []models.Partner
	txs      []models.PartnerTransaction
	cash     *cashBook
}

func loadPartnerTx(b *store.Batch) (*partnerTx, error) {
	t := &partnerTx{b: b}
	var err error
	if t.partners, err = store.Get[models.Partner](b, models.Partners); err != nil {
		return nil, err
	}
	if t.txs, err = store.Get[models.PartnerTransaction](b, models.PartnerTransactions); err != nil {
		return nil, err
	}
	if t.cash, err = loadCash(b); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *partnerTx) partner(id string) int {
	return indexOf(t.partners, func(p *models.Partner) bool { return p.ID == id })
}

// rebalance recomputes the running balances and the stored rollup of each
// given partner.
func (t *partnerTx) rebalance(ids ...string) {
	for _, id := range ids {
		balance := ledger.RecomputePartnerLedger(t.txs, id)
		if i := t.partner(id); i >= 0 {
			t.partners[i].Balance = balance
		}
	}
}

func (t *partnerTx) mirror(tx *models.PartnerTransaction) {
	kind := models.CashPartnerInjection
	if tx.Type == models.PartnerWithdrawal {
		kind = models.CashPartnerWithdrawal
	}
	tx.CashTransactionID = t.cash.mirror(tx.CashTransactionID, models.CashTransaction{
		Type:        kind,
		Amount:      tx.SignedAmount(),
		Date:        tx.Date,
		Description: tx.Description,
		RelatedID:   tx.ID,
		CreatedAt:   tx.CreatedAt,
	})
}

func (t *partnerTx) save() error {
	if err := store.Put(t.b, models.Partners, t.partners); err != nil {
		return err
	}
	if err := store.Put(t.b, models.PartnerTransactions, t.txs); err != nil {
		return err
	}
	return t.cash.save(t.b)
}

// CreatePartnerTransaction records an injection or withdrawal with its cash
// mirror. Withdrawals may take a partner's balance below zero.
func (s *Service) CreatePartnerTransaction(ctx context.Context, in PartnerTransactionInput) Result {
	const op = "CreatePartnerTransaction"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		if err := in.validate(); err != nil {
			return "", err
		}
		t, err := loadPartnerTx(b)
		if err != nil {
			return "", err
		}
		if t.partner(in.PartnerID) < 0 {
			return "", notFound(op, models.Partners, in.PartnerID)
		}
		tx := models.PartnerTransaction{
			ID:          models.NewID(),
			PartnerID:   in.PartnerID,
			Type:        in.Type,
			AmountUSD:   ledger.Round(in.AmountUSD),
			Date:        in.Date,
			Description: in.Description,
			CreatedAt:   s.stamp(),
		}
		t.mirror(&tx)
		t.txs = append(t.txs, tx)
		t.rebalance(tx.PartnerID)
		return tx.ID, t.save()
	})
}

func (s *Service) UpdatePartnerTransaction(ctx context.Context, id string, in PartnerTransactionInput) Result {
	const op = "UpdatePartnerTransaction"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		if err := in.validate(); err != nil {
			return "", err
		}
		t, err := loadPartnerTx(b)
		if err != nil {
			return "", err
		}
		k := indexOf(t.txs, func(x *models.PartnerTransaction) bool { return x.ID == id })
		if k < 0 {
			return "", notFound(op, models.PartnerTransactions, id)
		}
		if t.partner(in.PartnerID) < 0 {
			return "", notFound(op, models.Partners, in.PartnerID)
		}
		tx := t.txs[k]
		previous := tx.PartnerID
		tx.PartnerID = in.PartnerID
		tx.Type = in.Type
		tx.AmountUSD = ledger.Round(in.AmountUSD)
		tx.Date = in.Date
		tx.Description = in.Description
		t.mirror(&tx)
		t.txs[k] = tx
		t.rebalance(previous, tx.PartnerID)
		return id, t.save()
	})
}

func (s *Service) DeletePartnerTransaction(ctx context.Context, id string) Result {
	const op = "DeletePartnerTransaction"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		t, err := loadPartnerTx(b)
		if err != nil {
			return "", err
		}
		k := indexOf(t.txs, func(x *models.PartnerTransaction) bool { return x.ID == id })
		if k < 0 {
			return "", notFound(op, models.PartnerTransactions, id)
		}
		tx := t.txs[k]
		t.cash.remove(tx.CashTransactionID)
		t.txs = removeWhere(t.txs, func(x *models.PartnerTransaction) bool { return x.ID == id })
		t.rebalance(tx.PartnerID)
		return id, t.save()
	})
}
