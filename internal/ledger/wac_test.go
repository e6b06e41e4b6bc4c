package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForwardWAC(t *testing.T) {
	tests := []struct {
		name                       string
		stock, cost, qty, unitCost float64
		wantStock, wantCost        float64
	}{
		{name: "empty stock takes incoming cost", stock: 0, cost: 0, qty: 10, unitCost: 5, wantStock: 10, wantCost: 5},
		{name: "stale cost on empty stock is ignored", stock: 0, cost: 9, qty: 4, unitCost: 2, wantStock: 4, wantCost: 2},
		{name: "blend", stock: 10, cost: 4, qty: 5, unitCost: 7, wantStock: 15, wantCost: 5},
		{name: "zero incoming cost dilutes", stock: 10, cost: 6, qty: 10, unitCost: 0, wantStock: 20, wantCost: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock, cost := ForwardWAC(tt.stock, tt.cost, tt.qty, tt.unitCost)
			assert.InDelta(t, tt.wantStock, stock, Epsilon)
			assert.InDelta(t, tt.wantCost, cost, Epsilon)
		})
	}
}

func TestReverseWAC(t *testing.T) {
	tests := []struct {
		name                       string
		stock, cost, qty, unitCost float64
		wantStock, wantCost        float64
	}{
		{name: "back to empty", stock: 10, cost: 5, qty: 10, unitCost: 5, wantStock: 0, wantCost: 0},
		{name: "unblend", stock: 15, cost: 5, qty: 5, unitCost: 7, wantStock: 10, wantCost: 4},
		{name: "more removed than held", stock: 3, cost: 5, qty: 10, unitCost: 5, wantStock: -7, wantCost: 0},
		{name: "value would go negative", stock: 10, cost: 1, qty: 5, unitCost: 10, wantStock: 5, wantCost: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock, cost := ReverseWAC(tt.stock, tt.cost, tt.qty, tt.unitCost)
			assert.InDelta(t, tt.wantStock, stock, Epsilon)
			assert.InDelta(t, tt.wantCost, cost, Epsilon)
		})
	}
}

func TestWACRoundTrip(t *testing.T) {
	starts := []struct{ stock, cost float64 }{{0, 0}, {10, 4}, {7, 3.3333333}, {0.5, 12.75}}
	credits := []struct{ qty, cost float64 }{{10, 5}, {3, 0}, {12.5, 1.0 / 3.0}, {100, 7.77}}

	for _, s := range starts {
		for _, c := range credits {
			stock, cost := ForwardWAC(s.stock, s.cost, c.qty, c.cost)
			stock, cost = ReverseWAC(stock, cost, c.qty, c.cost)
			assert.InDelta(t, s.stock, stock, Epsilon, "stock %v credit %v", s, c)
			assert.InDelta(t, s.cost, cost, Epsilon, "cost %v credit %v", s, c)
		}
	}
}
