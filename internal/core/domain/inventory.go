package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part is a spare-parts inventory item.
type Part struct {
	ID           string
	Name         string
	Manufacturer string
	VehicleType  string
	Stock        int
	Price        decimal.Decimal
	InitialStock int // reorder baseline, immutable after creation
	Version      int // optimistic locking
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PriceScale is the number of decimal places a stored price keeps.
const PriceScale = 2

type NewPart struct {
	Name         string
	Manufacturer string
	VehicleType  string
	Stock        int
	Price        decimal.Decimal
}

func (p NewPart) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Stock < 0 {
		return &ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	if p.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if !p.Price.Equal(p.Price.Round(PriceScale)) {
		return &ValidationError{Field: "price", Reason: "at most 2 decimal places"}
	}
	return nil
}

type PartFilter struct {
	InStockOnly bool
}

type Vendor struct {
	ID        string
	Name      string
	Contact   string
	Parts     string // free text
	CreatedAt time.Time
}

type NewVendor struct {
	Name    string
	Contact string
	Parts   string
}

func (v NewVendor) Validate() error {
	if v.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

// ReorderEvent describes one automatic replenishment.
type ReorderEvent struct {
	PartID   string
	PartName string
	OldStock int
	NewStock int
	At       time.Time
}
