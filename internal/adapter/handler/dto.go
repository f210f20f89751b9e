package handler

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/rl1809/aspas/internal/core/domain"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type AddPartRequest struct {
	Name         string          `json:"name"`
	Manufacturer string          `json:"manufacturer"`
	VehicleType  string          `json:"vehicle_type"`
	Stock        int             `json:"stock"`
	Price        decimal.Decimal `json:"price"`
}

type PartResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Manufacturer string          `json:"manufacturer"`
	VehicleType  string          `json:"vehicle_type"`
	Stock        int             `json:"stock"`
	Price        decimal.Decimal `json:"price"`
	InitialStock int             `json:"initial_stock"`
}

type AddVendorRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Parts   string `json:"parts"`
}

type VendorResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Parts   string `json:"parts"`
}

type SaleRequest struct {
	RequestID     string `json:"request_id"`
	PartID        string `json:"part_id"`
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"payment_method"`
}

type ReorderResponse struct {
	PartID   string `json:"part_id"`
	PartName string `json:"part_name"`
	OldStock int    `json:"old_stock"`
	NewStock int    `json:"new_stock"`
}

type SaleReceiptResponse struct {
	SaleID         string              `json:"sale_id"`
	Kind           string              `json:"kind"`
	PartID         string              `json:"part_id"`
	PartName       string              `json:"part_name"`
	Quantity       int                 `json:"quantity"`
	Amount         decimal.NullDecimal `json:"amount"`
	RemainingStock int                 `json:"remaining_stock"`
	Reorders       []ReorderResponse   `json:"reorders,omitempty"`
}

type SaleResponse struct {
	ID            string              `json:"id"`
	PartID        string              `json:"part_id"`
	Quantity      int                 `json:"quantity"`
	Amount        decimal.NullDecimal `json:"amount"`
	PaymentMethod string              `json:"payment_method"`
	SoldAt        time.Time           `json:"sold_at"`
}

type SaleLineResponse struct {
	SaleResponse
	PartName  string              `json:"part_name"`
	UnitPrice decimal.NullDecimal `json:"unit_price"`
}

type AuditEntryResponse struct {
	ID       string    `json:"id"`
	Action   string    `json:"action_type"`
	Details  string    `json:"details"`
	LoggedAt time.Time `json:"logged_at"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

type RecordAuditRequest struct {
	Action  string `json:"action_type"`
	Details string `json:"details"`
}

type RowsResponse struct {
	Rows [][]string `json:"rows"`
}

type MonthlySalesResponse struct {
	Month         string          `json:"month"`
	SaleCount     int             `json:"sale_count"`
	TotalQuantity int             `json:"total_quantity"`
	Revenue       decimal.Decimal `json:"revenue"`
}

type WeeklyDemandResponse struct {
	PartID        string  `json:"part_id"`
	PartName      string  `json:"part_name"`
	Week          string  `json:"week"`
	TotalQuantity int     `json:"total_quantity"`
	AvgQuantity   float64 `json:"avg_quantity"`
	MaxDay        int     `json:"max_day"`
	MinDay        int     `json:"min_day"`
	Trend         string  `json:"trend"`
}

type IDResponse struct {
	ID string `json:"id"`
}

// StatusResponse is the envelope for failures and bodiless successes.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func toPartResponses(parts []domain.Part) []PartResponse {
	return lo.Map(parts, func(p domain.Part, _ int) PartResponse {
		return PartResponse{
			ID:           p.ID,
			Name:         p.Name,
			Manufacturer: p.Manufacturer,
			VehicleType:  p.VehicleType,
			Stock:        p.Stock,
			Price:        p.Price,
			InitialStock: p.InitialStock,
		}
	})
}

func toVendorResponses(vendors []domain.Vendor) []VendorResponse {
	return lo.Map(vendors, func(v domain.Vendor, _ int) VendorResponse {
		return VendorResponse{ID: v.ID, Name: v.Name, Contact: v.Contact, Parts: v.Parts}
	})
}

func toReceiptResponse(r *domain.SaleReceipt) SaleReceiptResponse {
	return SaleReceiptResponse{
		SaleID:         r.SaleID,
		Kind:           string(r.Kind),
		PartID:         r.PartID,
		PartName:       r.PartName,
		Quantity:       r.Quantity,
		Amount:         r.Amount,
		RemainingStock: r.RemainingStock,
		Reorders: lo.Map(r.Reorders, func(e domain.ReorderEvent, _ int) ReorderResponse {
			return ReorderResponse{PartID: e.PartID, PartName: e.PartName, OldStock: e.OldStock, NewStock: e.NewStock}
		}),
	}
}

func toSaleResponse(s domain.Sale) SaleResponse {
	return SaleResponse{
		ID:            s.ID,
		PartID:        s.PartID,
		Quantity:      s.Quantity,
		Amount:        s.Amount,
		PaymentMethod: s.PaymentMethod,
		SoldAt:        s.SoldAt,
	}
}

func toSaleResponses(sales []domain.Sale) []SaleResponse {
	return lo.Map(sales, func(s domain.Sale, _ int) SaleResponse { return toSaleResponse(s) })
}

func toSaleLineResponses(lines []domain.SaleLine) []SaleLineResponse {
	return lo.Map(lines, func(l domain.SaleLine, _ int) SaleLineResponse {
		return SaleLineResponse{SaleResponse: toSaleResponse(l.Sale), PartName: l.PartName, UnitPrice: l.UnitPrice}
	})
}

func toAuditResponses(entries []domain.AuditEntry) []AuditEntryResponse {
	return lo.Map(entries, func(e domain.AuditEntry, _ int) AuditEntryResponse {
		return AuditEntryResponse{
			ID:       e.ID,
			Action:   string(e.Action),
			Details:  e.Details,
			LoggedAt: e.LoggedAt,
			Username: e.Username,
			Role:     string(e.Role),
		}
	})
}

func toMonthlyResponses(months []domain.MonthlySales) []MonthlySalesResponse {
	return lo.Map(months, func(m domain.MonthlySales, _ int) MonthlySalesResponse {
		return MonthlySalesResponse{Month: m.Month, SaleCount: m.SaleCount, TotalQuantity: m.TotalQuantity, Revenue: m.Revenue}
	})
}

func toWeeklyResponses(demand []domain.WeeklyDemand) []WeeklyDemandResponse {
	return lo.Map(demand, func(d domain.WeeklyDemand, _ int) WeeklyDemandResponse {
		return WeeklyDemandResponse{
			PartID:        d.PartID,
			PartName:      d.PartName,
			Week:          d.Week,
			TotalQuantity: d.TotalQuantity,
			AvgQuantity:   d.AvgQuantity,
			MaxDay:        d.MaxDay,
			MinDay:        d.MinDay,
			Trend:         string(d.Trend),
		}
	})
}
