// Package models holds the records persisted in the data document.
//
// Every collection is an ordered list of one of these types. Fields named
// "derived" are cached projections: they are recomputed by the ledger
// package on every write that could affect them and never on read.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection names a top-level key of the data document.
type Collection string

const (
	Products            Collection = "products"
	Suppliers           Collection = "suppliers"
	Containers          Collection = "containers"
	Payments            Collection = "payments"
	SupplierLedger      Collection = "supplierLedger"
	Sales               Collection = "sales"
	Expenses            Collection = "expenses"
	CashTransactions    Collection = "cashTransactions"
	Partners            Collection = "partners"
	PartnerTransactions Collection = "partnerTransactions"
	StockAdjustments    Collection = "stockAdjustments"
)

// AllCollections lists every collection a fresh document is initialized with.
var AllCollections = []Collection{
	Products, Suppliers, Containers, Payments, SupplierLedger, Sales,
	Expenses, CashTransactions, Partners, PartnerTransactions, StockAdjustments,
}

// IsKnown reports whether c is one of AllCollections.
func IsKnown(c Collection) bool {
	for _, known := range AllCollections {
		if c == known {
			return true
		}
	}
	return false
}

// DateLayout is the layout of every business date in the document.
const DateLayout = "2006-01-02"

// NewID returns a time-sortable record identifier.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Metadata is stamped on the document on every successful save.
type Metadata struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Version     int64     `json:"version"`
}

// Product is a stocked item counted in bags.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Quantity      float64   `json:"quantity"`
	CostPerBagUSD float64   `json:"costPerBagUSD"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Supplier sells containers. Its balance lives in the supplier ledger.
type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

type CustomsStatus string

const (
	CustomsPending CustomsStatus = "pending"
	CustomsPaid    CustomsStatus = "paid"
)

type ContainerStatus string

const (
	ContainerOpen   ContainerStatus = "open"
	ContainerClosed ContainerStatus = "closed"
)

// ProductLine is one product received in a container.
type ProductLine struct {
	ProductID    string  `json:"productId"`
	QuantityBags float64 `json:"quantityBags"`
	PriceEUR     float64 `json:"priceEUR"`
	LineTotal    float64 `json:"lineTotal"`
}

// ContainerAllocation is the container-side view of a payment allocation.
type ContainerAllocation struct {
	PaymentID string  `json:"paymentId"`
	AmountEUR float64 `json:"amountEUR"`
	AmountUSD float64 `json:"amountUSD"`
}

// StockCredit records the stock movement caused by closing a container.
// It is the only input used to undo that movement.
type StockCredit struct {
	QuantityAdded float64 `json:"quantityAdded"`
	StockBefore   float64 `json:"stockBefore"`
	CostBefore    float64 `json:"costBefore"`
	UnitCostUSD   float64 `json:"unitCostUSD,omitempty"`
}

// Container is a supplier shipment.
type Container struct {
	ID                 string                `json:"id"`
	SupplierID         string                `json:"supplierId"`
	Reference          string                `json:"reference,omitempty"`
	Date               string                `json:"date"`
	ProductLines       []ProductLine         `json:"productLines"`
	FreightCostEUR     float64               `json:"freightCostEUR"`
	CustomsDutiesUSD   float64               `json:"customsDutiesUSD"`
	PaymentAllocations []ContainerAllocation `json:"paymentAllocations"`

	// derived
	ProductsTotalEUR float64         `json:"productsTotalEUR"`
	GrandTotalEUR    float64         `json:"grandTotalEUR"`
	TotalEURPaid     float64         `json:"totalEURPaid"`
	TotalUSDPaid     float64         `json:"totalUSDPaid"`
	TotalCostUSD     float64         `json:"totalCostUSD"`
	CostPerBagUSD    float64         `json:"costPerBagUSD"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	CustomsStatus    CustomsStatus   `json:"customsStatus"`
	ContainerStatus  ContainerStatus `json:"containerStatus"`

	QuantityAddedToStock map[string]StockCredit `json:"quantityAddedToStock,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StockCredited reports whether closing this container already moved stock.
func (c *Container) StockCredited() bool {
	return c.QuantityAddedToStock != nil
}

// PaymentAllocation is the payment-side view of an allocation.
type PaymentAllocation struct {
	ContainerID string  `json:"containerId"`
	AmountEUR   float64 `json:"amountEUR"`
	AmountUSD   float64 `json:"amountUSD"`
}

// Payment is money sent to a supplier in EUR, bought with USD.
type Payment struct {
	ID                string              `json:"id"`
	SupplierID        string              `json:"supplierId"`
	Date              string              `json:"date"`
	AmountEUR         float64             `json:"amountEUR"`
	ExchangeRate      float64             `json:"exchangeRate"`
	CommissionPercent float64             `json:"commissionPercent"`
	Description       string              `json:"description,omitempty"`
	Allocations       []PaymentAllocation `json:"allocations"`

	// derived
	AmountUSD      float64 `json:"amountUSD"`
	UnallocatedEUR float64 `json:"unallocatedEUR"`

	LedgerEntryID     string    `json:"ledgerEntryId,omitempty"`
	CashTransactionID string    `json:"cashTransactionId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type LedgerEntryType string

const (
	LedgerContainer LedgerEntryType = "container"
	LedgerPayment   LedgerEntryType = "payment"
)

// SupplierLedgerEntry is a signed EUR movement on a supplier account:
// payments are positive, container purchases negative.
type SupplierLedgerEntry struct {
	ID                 string          `json:"id"`
	SupplierID         string          `json:"supplierId"`
	Type               LedgerEntryType `json:"type"`
	Amount             float64         `json:"amount"`
	Date               string          `json:"date"`
	Description        string          `json:"description,omitempty"`
	RelatedContainerID string          `json:"relatedContainerId,omitempty"`
	RelatedPaymentID   string          `json:"relatedPaymentId,omitempty"`
	Balance            float64         `json:"balance"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// Partner is an owner who injects or withdraws cash.
type Partner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
}

type PartnerTransactionType string

const (
	PartnerInjection  PartnerTransactionType = "injection"
	PartnerWithdrawal PartnerTransactionType = "withdrawal"
)

// PartnerTransaction moves partner money in or out of the business cash.
type PartnerTransaction struct {
	ID                string                 `json:"id"`
	PartnerID         string                 `json:"partnerId"`
	Type              PartnerTransactionType `json:"type"`
	AmountUSD         float64                `json:"amountUSD"`
	Date              string                 `json:"date"`
	Description       string                 `json:"description,omitempty"`
	Balance           float64                `json:"balance"`
	CashTransactionID string                 `json:"cashTransactionId,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
}

// SignedAmount is the effect on the partner balance.
func (t PartnerTransaction) SignedAmount() float64 {
	if t.Type == PartnerWithdrawal {
		return -t.AmountUSD
	}
	return t.AmountUSD
}

type CashTransactionType string

const (
	CashPayment           CashTransactionType = "supplier_payment"
	CashPartnerInjection  CashTransactionType = "partner_injection"
	CashPartnerWithdrawal CashTransactionType = "partner_withdrawal"
	CashSale              CashTransactionType = "sale"
	CashExpense           CashTransactionType = "expense"
	CashStockAdjustment   CashTransactionType = "stock_adjustment"
)

// CashTransaction is one signed USD movement of business cash.
type CashTransaction struct {
	ID          string              `json:"id"`
	Type        CashTransactionType `json:"type"`
	Amount      float64             `json:"amount"`
	Date        string              `json:"date"`
	Description string              `json:"description,omitempty"`
	RelatedID   string              `json:"relatedId,omitempty"`
	Balance     float64             `json:"balance"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// SaleItem is one product line of a sale.
type SaleItem struct {
	ProductID      string  `json:"productId"`
	QuantityBags   float64 `json:"quantityBags"`
	PricePerBagUSD float64 `json:"pricePerBagUSD"`
	CostPerBagUSD  float64 `json:"costPerBagUSD"`
	LineTotalUSD   float64 `json:"lineTotalUSD"`
}

// Sale debits stock and brings cash in.
type Sale struct {
	ID                string     `json:"id"`
	Customer          string     `json:"customer,omitempty"`
	Date              string     `json:"date"`
	Items             []SaleItem `json:"items"`
	TotalUSD          float64    `json:"totalUSD"`
	TotalCostUSD      float64    `json:"totalCostUSD"`
	ProfitUSD         float64    `json:"profitUSD"`
	CashTransactionID string     `json:"cashTransactionId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Expense is an operating cost paid in cash.
type Expense struct {
	ID                string    `json:"id"`
	Category          string    `json:"category"`
	Description       string    `json:"description,omitempty"`
	AmountUSD         float64   `json:"amountUSD"`
	Date              string    `json:"date"`
	CashTransactionID string    `json:"cashTransactionId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

type AdjustmentType string

const (
	AdjustmentIncrease AdjustmentType = "increase"
	AdjustmentDecrease AdjustmentType = "decrease"
)

// StockAdjustment corrects product stock outside of containers and sales.
type StockAdjustment struct {
	ID            string         `json:"id"`
	ProductID     string         `json:"productId"`
	Type          AdjustmentType `json:"type"`
	Quantity      float64        `json:"quantity"`
	UnitCostUSD   float64        `json:"unitCostUSD,omitempty"`
	CashAmountUSD float64        `json:"cashAmountUSD,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Date          string         `json:"date"`

	StockBefore float64 `json:"stockBefore"`
	CostBefore  float64 `json:"costBefore"`
	StockAfter  float64 `json:"stockAfter"`
	CostAfter   float64 `json:"costAfter"`

	CashTransactionID string    `json:"cashTransactionId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// LedgerKey orders entries chronologically: date, then creation time, then id.
func (e SupplierLedgerEntry) LedgerKey() (string, time.Time, string) {
	return e.Date, e.CreatedAt, e.ID
}

func (e SupplierLedgerEntry) SignedAmount() float64 { return e.Amount }

func (e *SupplierLedgerEntry) SetBalance(b float64) { e.Balance = b }

func (t PartnerTransaction) LedgerKey() (string, time.Time, string) {
	return t.Date, t.CreatedAt, t.ID
}

func (t *PartnerTransaction) SetBalance(b float64) { t.Balance = b }

func (t CashTransaction) LedgerKey() (string, time.Time, string) {
	return t.Date, t.CreatedAt, t.ID
}

func (t CashTransaction) SignedAmount() float64 { return t.Amount }

func (t *CashTransaction) SetBalance(b float64) { t.Balance = b }
