package report

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"pos-backend/internal/access"
	"pos-backend/internal/apperr"
	"pos-backend/internal/policy"
)

type ProductResponse struct {
	Name         string `json:"name"`
	QuantitySold uint   `json:"quantity_sold"`
	TotalRevenue string `json:"total_revenue"`
}

type Response struct {
	CreationReportDate string            `json:"creation_report_date"`
	StartDate          string            `json:"start_date"`
	EndDate            string            `json:"end_date"`
	TotalRevenue       string            `json:"total_revenue"`
	Products           []ProductResponse `json:"products"`
}

func toResponse(r *Report) Response {
	res := Response{
		CreationReportDate: r.Date.Format(dateLayout),
		StartDate:          r.From.Format(dateLayout),
		EndDate:            r.To.Format(dateLayout),
		TotalRevenue:       r.TotalRevenue.StringFixed(2),
		Products:           make([]ProductResponse, 0, len(r.Products)),
	}
	for _, p := range r.Products {
		res.Products = append(res.Products, ProductResponse{
			Name:         p.Name,
			QuantitySold: p.QuantitySold,
			TotalRevenue: p.TotalRevenue.StringFixed(2),
		})
	}
	return res
}

// GET /api/daily-report/products?start_date=&end_date=&restaurant=&format=json|xlsx|pdf
//
// Without a restaurant the report covers the caller's own restaurants, for
// superusers too.
func DailyProductsHandler(guard *access.Guard, svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurantID, err := access.QueryID(c, "restaurant")
		if err != nil {
			return err
		}
		scope, err := guard.ScopeFor(c, policy.EntityReport, restaurantID)
		if err != nil {
			return err
		}

		r, err := ParseRange(c.Query("start_date"), c.Query("end_date"), svc.now())
		if err != nil {
			return err
		}
		rep, err := svc.Build(c.UserContext(), scope.OwnedOnly(), r)
		if err != nil {
			return err
		}

		name := fmt.Sprintf("sales_%s_%s", r.From.Format(dateLayout), r.To.Format(dateLayout))
		switch c.Query("format", "json") {
		case "json":
			return c.JSON(toResponse(rep))
		case "xlsx":
			data, err := XLSX(rep)
			if err != nil {
				return apperr.Internal(err)
			}
			c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.xlsx", name))
			return c.Send(data)
		case "pdf":
			data, err := PDF(rep)
			if err != nil {
				return apperr.Internal(err)
			}
			c.Set(fiber.HeaderContentType, "application/pdf")
			c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.pdf", name))
			return c.Send(data)
		default:
			return apperr.Validation(apperr.FieldError{Field: "format", Code: "invalid_choice", Message: "Format must be one of json, xlsx, pdf."})
		}
	}
}
