package ledger_test

import (
	"fmt"

	"tracker/internal/ledger"
	"tracker/internal/models"
)

func ExampleForwardWAC() {
	// 100 bags at $20 receive 50 bags at $26.
	stock, cost := ledger.ForwardWAC(100, 20, 50, 26)
	fmt.Println(stock, cost)
	// Output: 150 22
}

func ExampleReverseWAC() {
	// Undo the credit of ExampleForwardWAC.
	stock, cost := ledger.ReverseWAC(150, 22, 50, 26)
	fmt.Println(stock, cost)
	// Output: 100 20
}

func ExampleAllocate() {
	p := models.Payment{ID: "pay-1", AmountEUR: 1000, ExchangeRate: 1.1, CommissionPercent: 1}
	p.AmountUSD = ledger.PaymentAmountUSD(p.AmountEUR, p.ExchangeRate, p.CommissionPercent)

	p, alloc, err := ledger.Allocate(p, "container-1", 400)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(p.AmountUSD, alloc.AmountEUR, alloc.AmountUSD, p.UnallocatedEUR)

	_, _, err = ledger.Allocate(p, "container-2", 700)
	fmt.Println(ledger.IsValidation(err))
	// Output:
	// 1111 400 444.4 600
	// true
}

func ExampleDeriveStatus() {
	fmt.Println(ledger.DeriveStatus(1000, 1000, 0))
	fmt.Println(ledger.DeriveStatus(1000, 1000, 250))
	// Output:
	// paid pending open
	// paid paid closed
}
