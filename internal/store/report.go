package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pos-backend/internal/policy"
	"pos-backend/internal/report"
)

// ReportLines returns the order lines of orders created in [from, to)
// within scope, priced at the current product price.
func (s *Store) ReportLines(ctx context.Context, scope policy.Scope, from, to time.Time) ([]report.Line, error) {
	var rows []struct {
		LineID    uint
		ProductID uint
		Name      string
		Price     decimal.Decimal
		Quantity  uint
	}
	err := s.Scoped(ctx, policy.EntityReport, scope).
		Select("order_lines.id AS line_id, products.id AS product_id, products.name, products.price, order_lines.quantity").
		Joins("JOIN order_lines ON order_lines.order_id = orders.id").
		Joins("JOIN products ON products.id = order_lines.product_id").
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Order("order_lines.id").
		Scan(&rows).Error
	if err != nil {
		return nil, read(err)
	}

	lines := make([]report.Line, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, report.Line{
			LineID:    r.LineID,
			ProductID: r.ProductID,
			Name:      r.Name,
			Price:     r.Price,
			Quantity:  r.Quantity,
		})
	}
	return lines, nil
}
