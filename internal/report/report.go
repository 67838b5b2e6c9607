// Package report builds the product sales report of a date range.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pos-backend/internal/apperr"
	"pos-backend/internal/policy"
)

const dateLayout = "2006-01-02"

// Line is one order line of the range with the current price of its
// product.
type Line struct {
	LineID    uint
	ProductID uint
	Name      string
	Price     decimal.Decimal
	Quantity  uint
}

// Source reads the order lines of orders created in [from, to) within
// scope, ordered by line id.
type Source interface {
	ReportLines(ctx context.Context, scope policy.Scope, from, to time.Time) ([]Line, error)
}

type ProductSales struct {
	ProductID    uint
	Name         string
	QuantitySold uint
	TotalRevenue decimal.Decimal
}

type Report struct {
	Date         time.Time
	From, To     time.Time
	TotalRevenue decimal.Decimal
	Products     []ProductSales
}

// Aggregate groups lines by product. Products are sorted by quantity sold,
// descending; ties keep the order in which the product first appears.
func Aggregate(lines []Line) ([]ProductSales, decimal.Decimal) {
	total := decimal.Zero
	index := map[uint]int{}
	products := []ProductSales{}

	for _, l := range lines {
		revenue := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(revenue)

		i, ok := index[l.ProductID]
		if !ok {
			i = len(products)
			index[l.ProductID] = i
			products = append(products, ProductSales{ProductID: l.ProductID, Name: l.Name, TotalRevenue: decimal.Zero})
		}
		products[i].QuantitySold += l.Quantity
		products[i].TotalRevenue = products[i].TotalRevenue.Add(revenue)
	}

	sort.SliceStable(products, func(a, b int) bool {
		return products[a].QuantitySold > products[b].QuantitySold
	})
	return products, total
}

// Range is an inclusive span of calendar days.
type Range struct {
	From, To time.Time
}

// ParseRange reads start and end dates as YYYY-MM-DD. Each defaults to
// today.
func ParseRange(start, end string, now time.Time) (Range, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	r := Range{From: today, To: today}

	var err error
	if start != "" {
		if r.From, err = time.ParseInLocation(dateLayout, start, now.Location()); err != nil {
			return r, apperr.Validation(apperr.FieldError{Field: "start_date", Code: "invalid", Message: "Date has wrong format. Use YYYY-MM-DD."})
		}
	}
	if end != "" {
		if r.To, err = time.ParseInLocation(dateLayout, end, now.Location()); err != nil {
			return r, apperr.Validation(apperr.FieldError{Field: "end_date", Code: "invalid", Message: "Date has wrong format. Use YYYY-MM-DD."})
		}
	}
	return r, nil
}

// Empty reports an end before the start.
func (r Range) Empty() bool {
	return r.To.Before(r.From)
}

type Service struct {
	source Source
	now    func() time.Time
}

func NewService(source Source) *Service {
	return &Service{source: source, now: time.Now}
}

// Build runs the report of r within scope. An empty range yields an empty
// report without touching the store.
func (s *Service) Build(ctx context.Context, scope policy.Scope, r Range) (*Report, error) {
	rep := &Report{
		Date:         s.now(),
		From:         r.From,
		To:           r.To,
		TotalRevenue: decimal.Zero,
		Products:     []ProductSales{},
	}
	if r.Empty() {
		return rep, nil
	}

	lines, err := s.source.ReportLines(ctx, scope, r.From, r.To.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	rep.Products, rep.TotalRevenue = Aggregate(lines)
	return rep, nil
}
