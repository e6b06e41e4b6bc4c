package operations

import (
	"context"
	"strings"

	"tracker/internal/ledger"
	"tracker/internal/models"
	"tracker/internal/store"
)

type ExpenseInput struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	AmountUSD   float64 `json:"amountUSD"`
	Date        string  `json:"date"`
}

func (s *Service) CreateExpense(ctx context.Context, in ExpenseInput) Result {
	const op = "CreateExpense"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		category := strings.TrimSpace(in.Category)
		if category == "" {
			return "", ledger.NewValidationError("category", nil, "is required")
		}
		if in.AmountUSD <= 0 {
			return "", ledger.NewValidationError("amountUSD", in.AmountUSD, "must be positive")
		}
		if err := ledger.ValidateDate("date", in.Date); err != nil {
			return "", err
		}
		expenses, err := store.Get[models.Expense](b, models.Expenses)
		if err != nil {
			return "", err
		}
		cash, err := loadCash(b)
		if err != nil {
			return "", err
		}

		e := models.Expense{
			ID:          models.NewID(),
			Category:    category,
			Description: in.Description,
			AmountUSD:   ledger.Round(in.AmountUSD),
			Date:        in.Date,
			CreatedAt:   s.stamp(),
		}
		label := category
		if e.Description != "" {
			label += ": " + e.Description
		}
		e.CashTransactionID = cash.mirror("", models.CashTransaction{
			Type:        models.CashExpense,
			Amount:      -e.AmountUSD,
			Date:        e.Date,
			Description: label,
			RelatedID:   e.ID,
			CreatedAt:   e.CreatedAt,
		})

		if err := store.Put(b, models.Expenses, append(expenses, e)); err != nil {
			return "", err
		}
		return e.ID, cash.save(b)
	})
}

func (s *Service) DeleteExpense(ctx context.Context, id string) Result {
	const op = "DeleteExpense"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		expenses, err := store.Get[models.Expense](b, models.Expenses)
		if err != nil {
			return "", err
		}
		cash, err := loadCash(b)
		if err != nil {
			return "", err
		}
		k := indexOf(expenses, func(e *models.Expense) bool { return e.ID == id })
		if k < 0 {
			return "", notFound(op, models.Expenses, id)
		}
		cash.remove(expenses[k].CashTransactionID)
		expenses = removeWhere(expenses, func(e *models.Expense) bool { return e.ID == id })
		if err := store.Put(b, models.Expenses, expenses); err != nil {
			return "", err
		}
		return id, cash.save(b)
	})
}
