package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"pos-backend/internal/apperr"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	numericOutOfRange   = "22003"
)

// constraintFields maps constraint names to the field error the validator
// reports for the same rule, so a lost race answers like a failed pre-check.
var constraintFields = map[string]apperr.FieldError{
	"idx_users_email":                {Field: "email", Code: "unique", Message: "A user with this email already exists."},
	"idx_employees_restaurant_email": {Field: "email", Code: "unique", Message: "An employee with this email already exists in this restaurant."},
	"idx_tables_restaurant_number":   {Field: "table_number", Code: "unique", Message: "This table number already exists in this restaurant."},
	"idx_customers_restaurant_email": {Field: "email", Code: "unique", Message: "A customer with this email already exists in this restaurant."},
	"idx_categories_name":            {Field: "name", Code: "unique", Message: "A category with this name already exists."},
	"idx_product_restaurants_name":   {Field: "name", Code: "unique", Message: "A product with this name already exists in this restaurant."},
	"idx_order_lines_order_product":  {Field: "product", Code: "unique", Message: "This product is already part of the order."},

	"fk_order_tables_table":             {Field: "tables", Code: "invalid_reference", Message: "Table does not belong to the order's restaurant."},
	"fk_orders_employee":                {Field: "employee", Code: "invalid_reference", Message: "Employee does not belong to the order's restaurant."},
	"fk_orders_customer":                {Field: "customer", Code: "invalid_reference", Message: "Customer does not belong to the order's restaurant."},
	"fk_order_lines_order":              {Field: "order", Code: "invalid_reference", Message: "Order does not exist."},
	"fk_order_lines_product_restaurant": {Field: "product", Code: "invalid_reference", Message: "Product is not available in the order's restaurant."},
	"fk_product_categories_category":    {Field: "categories", Code: "invalid_reference", Message: "Category does not exist."},
	"fk_restaurants_products":           {Field: "restaurants", Code: "invalid_reference", Message: "Restaurant does not exist."},

	"chk_orders_total":         {Field: "total", Code: "mismatch", Message: "Total must equal subtotal + tax - discount + tips."},
	"chk_orders_amounts":       {Field: "total", Code: "min_value", Message: "Amounts must be greater than or equal to 0."},
	"chk_order_lines_quantity": {Field: "quantity", Code: "min_value", Message: "Quantity must be greater than zero."},
	"chk_tables_capacity":      {Field: "capacity", Code: "min_value", Message: "Capacity must be a positive integer."},
	"chk_tables_table_number":  {Field: "table_number", Code: "min_value", Message: "Table number must be a positive integer."},
	"chk_products_price":       {Field: "price", Code: "min_value", Message: "Price must be greater than zero."},
}

// TranslateError turns a Postgres constraint violation into a validation
// error. Any other error is returned unchanged.
func TranslateError(err error) error {
	var pgErr *pgconn.PgError
	if err == nil || !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation, foreignKeyViolation, checkViolation:
	case numericOutOfRange:
		return validationErr(err, apperr.FieldError{
			Field:   "non_field_errors",
			Code:    "max_digits",
			Message: "A numeric value does not fit its column.",
		})
	default:
		return err
	}

	// Removing a restaurant from a product that still has order lines there
	// is reported on the referenced side.
	if pgErr.ConstraintName == "fk_order_lines_product_restaurant" && pgErr.TableName == "product_restaurants" {
		return validationErr(err, apperr.FieldError{
			Field:   "restaurants",
			Code:    "protected",
			Message: "The product is still part of orders in this restaurant.",
		})
	}

	if fe, ok := constraintFields[pgErr.ConstraintName]; ok {
		return validationErr(err, fe)
	}

	fe := apperr.FieldError{Field: "non_field_errors"}
	switch pgErr.Code {
	case uniqueViolation:
		fe.Code, fe.Message = "unique", "This record already exists."
	case foreignKeyViolation:
		fe.Code, fe.Message = "invalid_reference", "A referenced record does not exist."
	default:
		fe.Code, fe.Message = "invalid", "The record violates a constraint."
	}
	return validationErr(err, fe)
}

func validationErr(cause error, fe apperr.FieldError) error {
	e := apperr.Validation(fe)
	e.Err = cause
	return e
}
