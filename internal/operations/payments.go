package operations

import (
	"context"

	"tracker/internal/ledger"
	"tracker/internal/models"
	"tracker/internal/store"
)

// PaymentInput is the form state of a supplier payment.
type PaymentInput struct {
	SupplierID        string  `json:"supplierId"`
	Date              string  `json:"date"`
	AmountEUR         float64 `json:"amountEUR"`
	ExchangeRate      float64 `json:"exchangeRate"`
	CommissionPercent float64 `json:"commissionPercent"`
	Description       string  `json:"description"`
}

func (in PaymentInput) apply(p models.Payment) models.Payment {
	p.SupplierID = in.SupplierID
	p.Date = in.Date
	p.AmountEUR = ledger.Round(in.AmountEUR)
	p.ExchangeRate = in.ExchangeRate
	p.CommissionPercent = in.CommissionPercent
	p.Description = in.Description
	return p
}

func paymentLabel(p models.Payment) string {
	if p.Description != "" {
		return p.Description
	}
	return "Payment " + p.Date
}

// postPayment keeps the payment's ledger credit and cash outflow in line with
// the payment and recomputes the affected running balances.
func (t *containerTx) postPayment(p *models.Payment, cash *cashBook, previousSupplier string) {
	entry := models.SupplierLedgerEntry{
		ID:               p.LedgerEntryID,
		CreatedAt:        p.UpdatedAt,
		SupplierID:       p.SupplierID,
		Type:             models.LedgerPayment,
		Amount:           p.AmountEUR,
		Date:             p.Date,
		Description:      paymentLabel(*p),
		RelatedPaymentID: p.ID,
	}
	if i := indexOf(t.entries, func(e *models.SupplierLedgerEntry) bool { return e.ID == p.LedgerEntryID && e.ID != "" }); i >= 0 {
		entry.CreatedAt = t.entries[i].CreatedAt
		t.entries[i] = entry
	} else {
		entry.ID = models.NewID()
		t.entries = append(t.entries, entry)
	}
	p.LedgerEntryID = entry.ID
	ledger.RecomputeSupplierLedger(t.entries, p.SupplierID)
	if previousSupplier != "" && previousSupplier != p.SupplierID {
		ledger.RecomputeSupplierLedger(t.entries, previousSupplier)
	}

	p.CashTransactionID = cash.mirror(p.CashTransactionID, models.CashTransaction{
		Type:        models.CashPayment,
		Amount:      -p.AmountUSD,
		Date:        p.Date,
		Description: paymentLabel(*p),
		RelatedID:   p.ID,
		CreatedAt:   p.UpdatedAt,
	})
}

func (t *containerTx) checkSupplier(op, id string) error {
	if indexOf(t.suppliers, func(s *models.Supplier) bool { return s.ID == id }) < 0 {
		return notFound(op, models.Suppliers, id)
	}
	return nil
}

// CreatePayment records a supplier payment with its ledger credit and cash
// outflow. Allocations are made from the container side.
func (s *Service) CreatePayment(ctx context.Context, in PaymentInput) Result {
	const op = "CreatePayment"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		t, err := loadContainerTx(b)
		if err != nil {
			return "", err
		}
		cash, err := loadCash(b)
		if err != nil {
			return "", err
		}
		now := s.stamp()
		p := in.apply(models.Payment{ID: models.NewID(), Allocations: []models.PaymentAllocation{}, CreatedAt: now, UpdatedAt: now})
		if err := ledger.ValidatePayment(p); err != nil {
			return "", err
		}
		if err := t.checkSupplier(op, p.SupplierID); err != nil {
			return "", err
		}
		if p, err = ledger.RescaleAllocations(p); err != nil {
			return "", err
		}

		t.postPayment(&p, cash, "")
		t.payments = append(t.payments, p)
		if err := t.save(); err != nil {
			return "", err
		}
		return p.ID, cash.save(b)
	})
}

// UpdatePayment applies the new form state of a payment. Changed amounts
// rescale the USD side of its allocations and reprice the containers that
// hold them.
func (s *Service) UpdatePayment(ctx context.Context, id string, in PaymentInput) Result {
	const op = "UpdatePayment"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		t, err := loadContainerTx(b)
		if err != nil {
			return "", err
		}
		cash, err := loadCash(b)
		if err != nil {
			return "", err
		}
		k := t.payment(id)
		if k < 0 {
			return "", notFound(op, models.Payments, id)
		}
		old := t.payments[k]

		p := in.apply(old)
		p.UpdatedAt = s.stamp()
		if err := ledger.ValidatePayment(p); err != nil {
			return "", err
		}
		if err := t.checkSupplier(op, p.SupplierID); err != nil {
			return "", err
		}
		if p.SupplierID != old.SupplierID && len(old.Allocations) > 0 {
			return "", ledger.NewValidationError("supplierId", p.SupplierID, "cannot change while the payment is allocated")
		}
		if p, err = ledger.RescaleAllocations(p); err != nil {
			return "", err
		}
		if err := t.refreshContainers(p, p.UpdatedAt); err != nil {
			return "", err
		}

		t.postPayment(&p, cash, old.SupplierID)
		t.payments[k] = p
		if err := t.save(); err != nil {
			return "", err
		}
		return id, cash.save(b)
	})
}

// DeletePayment removes an unallocated payment with its ledger credit and
// cash outflow.
func (s *Service) DeletePayment(ctx context.Context, id string) Result {
	const op = "DeletePayment"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		t, err := loadContainerTx(b)
		if err != nil {
			return "", err
		}
		cash, err := loadCash(b)
		if err != nil {
			return "", err
		}
		k := t.payment(id)
		if k < 0 {
			return "", notFound(op, models.Payments, id)
		}
		p := t.payments[k]
		if len(p.Allocations) > 0 {
			return "", ledger.Invalidf("payment is allocated to %d container(s); remove the allocations first", len(p.Allocations))
		}

		t.entries = removeWhere(t.entries, func(e *models.SupplierLedgerEntry) bool {
			return e.ID == p.LedgerEntryID || (e.Type == models.LedgerPayment && e.RelatedPaymentID == p.ID)
		})
		ledger.RecomputeSupplierLedger(t.entries, p.SupplierID)
		cash.remove(p.CashTransactionID)
		t.payments = removeWhere(t.payments, func(x *models.Payment) bool { return x.ID == id })
		if err := t.save(); err != nil {
			return "", err
		}
		return id, cash.save(b)
	})
}
