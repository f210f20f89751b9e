package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleKind string

const (
	SaleKindPriced   SaleKind = "priced"
	SaleKindCustomer SaleKind = "customer"
)

// Sale is immutable once written. Amount is null for customer sales.
type Sale struct {
	ID            string
	PartID        string
	Quantity      int
	Amount        decimal.NullDecimal
	PaymentMethod string
	SoldAt        time.Time
}

// SaleLine is a sale joined with the current price of its part. UnitPrice is
// null when the part has since been deleted.
type SaleLine struct {
	Sale
	PartName  string
	UnitPrice decimal.NullDecimal
}

type SaleRequest struct {
	PartID        string
	Quantity      int
	PaymentMethod string
	RequestID     string // optional idempotency key
}

func (r SaleRequest) Validate() error {
	if r.PartID == "" {
		return &ValidationError{Field: "part_id", Reason: "must not be empty"}
	}
	if r.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}
	return nil
}

type SaleReceipt struct {
	SaleID         string
	Kind           SaleKind
	PartID         string
	PartName       string
	Quantity       int
	Amount         decimal.NullDecimal
	RemainingStock int
	Reorders       []ReorderEvent
}

type SalesFilter struct {
	PartID string
	Period *Period
}
