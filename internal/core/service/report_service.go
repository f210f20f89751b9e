package service

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/port"
)

const defaultDemandWindowDays = 28

var (
	monthlyExportHeader = []string{"Month", "Total Sales", "Total Qty", "Revenue"}
	weeklyExportHeader  = []string{"Part ID", "Part Name", "Week", "Total Quantity", "Average Quantity", "Max Day", "Min Day", "Trend"}
)

// ReportService runs the read-only aggregate queries behind the admin
// reports. Viewing and exporting are audited.
type ReportService struct {
	store    port.LedgerStore
	audit    *AuditService
	settings Settings
}

func NewReportService(store port.LedgerStore, audit *AuditService, settings Settings) *ReportService {
	return &ReportService{store: store, audit: audit, settings: settings.withDefaults()}
}

func (s *ReportService) SalesReport(ctx context.Context, sess domain.Session, datePrefix string) ([]domain.Sale, error) {
	const op = "service.ReportService.SalesReport"

	if err := requireAdmin(sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	period, err := domain.PeriodFromPrefix(datePrefix, s.settings.Location)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sales, err := s.store.ListSales(ctx, domain.SalesFilter{Period: period})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.audit.Record(ctx, sess, domain.ActionViewReport, "Viewed sales report"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sales, nil
}

// MonthlySales totals every sale by calendar month, oldest month first.
// Customer sales carry no amount and add to quantity only.
func (s *ReportService) MonthlySales(ctx context.Context, sess domain.Session) ([]domain.MonthlySales, error) {
	const op = "service.ReportService.MonthlySales"

	if err := requireAdmin(sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	months, err := s.monthly(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return months, nil
}

// MonthlySalesRows is MonthlySales laid out for export under target.
func (s *ReportService) MonthlySalesRows(ctx context.Context, sess domain.Session, target string) ([][]string, error) {
	const op = "service.ReportService.MonthlySalesRows"

	if err := requireAdmin(sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	months, err := s.monthly(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows := make([][]string, 0, len(months)+1)
	rows = append(rows, append([]string(nil), monthlyExportHeader...))
	for _, m := range months {
		rows = append(rows, []string{
			m.Month,
			strconv.Itoa(m.SaleCount),
			strconv.Itoa(m.TotalQuantity),
			m.Revenue.StringFixed(2),
		})
	}

	details := "Exported monthly sales report as PDF: " + target
	if err := s.audit.Record(ctx, sess, domain.ActionExportPDF, details); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

func (s *ReportService) monthly(ctx context.Context) ([]domain.MonthlySales, error) {
	sales, err := s.store.ListSales(ctx, domain.SalesFilter{})
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*domain.MonthlySales)
	for _, sale := range sales {
		key := sale.SoldAt.In(s.settings.Location).Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &domain.MonthlySales{Month: key, Revenue: decimal.Zero}
			byMonth[key] = m
		}
		m.SaleCount++
		m.TotalQuantity += sale.Quantity
		if sale.Amount.Valid {
			m.Revenue = m.Revenue.Add(sale.Amount.Decimal)
		}
	}

	months := lo.Map(lo.Values(byMonth), func(m *domain.MonthlySales, _ int) domain.MonthlySales { return *m })
	slices.SortFunc(months, func(a, b domain.MonthlySales) int { return cmp.Compare(a.Month, b.Month) })
	return months, nil
}

func (s *ReportService) WeeklyDemand(ctx context.Context, sess domain.Session, filter domain.WeeklyDemandFilter) ([]domain.WeeklyDemand, error) {
	const op = "service.ReportService.WeeklyDemand"

	if err := requireAdmin(sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	demand, err := s.weekly(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.audit.Record(ctx, sess, domain.ActionViewWeeklyDemand, "Analyzed weekly demand for parts"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return demand, nil
}

// WeeklyDemandRows is WeeklyDemand laid out for export under target.
func (s *ReportService) WeeklyDemandRows(
	ctx context.Context,
	sess domain.Session,
	filter domain.WeeklyDemandFilter,
	target string,
) ([][]string, error) {
	const op = "service.ReportService.WeeklyDemandRows"

	if err := requireAdmin(sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	demand, err := s.weekly(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows := make([][]string, 0, len(demand)+1)
	rows = append(rows, append([]string(nil), weeklyExportHeader...))
	for _, d := range demand {
		rows = append(rows, []string{
			d.PartID,
			d.PartName,
			d.Week,
			strconv.Itoa(d.TotalQuantity),
			strconv.FormatFloat(d.AvgQuantity, 'f', 2, 64),
			strconv.Itoa(d.MaxDay),
			strconv.Itoa(d.MinDay),
			string(d.Trend),
		})
	}

	details := "Exported weekly demand report to CSV: " + target
	if err := s.audit.Record(ctx, sess, domain.ActionExportWeeklyDemand, details); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

type demandBucket struct {
	demand domain.WeeklyDemand
	sales  int
	days   map[string]int
}

func (s *ReportService) weekly(ctx context.Context, filter domain.WeeklyDemandFilter) ([]domain.WeeklyDemand, error) {
	loc := s.settings.Location

	end := filter.EndDate
	if end == "" {
		end = s.settings.Now().In(loc).Format(domain.DateLayout)
	}
	start := filter.StartDate
	if start == "" {
		endDay, err := time.ParseInLocation(domain.DateLayout, end, loc)
		if err != nil {
			return nil, &domain.ValidationError{Field: "end_date", Reason: "expected YYYY-MM-DD"}
		}
		start = endDay.AddDate(0, 0, -defaultDemandWindowDays).Format(domain.DateLayout)
	}

	period, err := domain.DayRange(start, end, loc)
	if err != nil {
		return nil, err
	}

	// Day extremes look at the whole calendar week, totals only at the range.
	span := domain.WeekSpan(period, loc)
	lines, err := s.store.ListSaleLines(ctx, domain.SalesFilter{PartID: filter.PartID, Period: &span})
	if err != nil {
		return nil, err
	}

	buckets := make(map[[2]string]*demandBucket)
	for _, line := range lines {
		// Sales of deleted parts have no current row to name them.
		if !line.UnitPrice.Valid {
			continue
		}

		at := line.SoldAt.In(loc)
		key := [2]string{line.PartID, domain.WeekKey(at)}
		b, ok := buckets[key]
		if !ok {
			b = &demandBucket{
				demand: domain.WeeklyDemand{PartID: line.PartID, PartName: line.PartName, Week: key[1]},
				days:   make(map[string]int),
			}
			buckets[key] = b
		}
		b.days[at.Format(domain.DateLayout)] += line.Quantity
		if period.Contains(line.SoldAt) {
			b.sales++
			b.demand.TotalQuantity += line.Quantity
		}
	}

	demand := make([]domain.WeeklyDemand, 0, len(buckets))
	for _, b := range buckets {
		if b.sales == 0 {
			continue
		}
		d := b.demand
		d.AvgQuantity = math.Round(float64(d.TotalQuantity)/float64(b.sales)*100) / 100
		dayTotals := lo.Values(b.days)
		d.MaxDay = lo.Max(dayTotals)
		d.MinDay = lo.Min(dayTotals)
		demand = append(demand, d)
	}

	slices.SortFunc(demand, func(a, b domain.WeeklyDemand) int {
		return cmp.Or(cmp.Compare(a.PartID, b.PartID), cmp.Compare(a.Week, b.Week))
	})

	for i := range demand {
		demand[i].Trend = domain.TrendFlat
		if i == 0 || demand[i-1].PartID != demand[i].PartID {
			continue
		}
		switch prev := demand[i-1].TotalQuantity; {
		case demand[i].TotalQuantity > prev:
			demand[i].Trend = domain.TrendUp
		case demand[i].TotalQuantity < prev:
			demand[i].Trend = domain.TrendDown
		}
	}
	return demand, nil
}
