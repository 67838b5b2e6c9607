// Package validation runs the referential and consistency checks that must
// hold before a write reaches the database. Every check here is backed by a
// database constraint as well; the validator only gives the friendly answer
// first.
package validation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pos-backend/internal/apperr"
	"pos-backend/internal/models"
)

// Store is the read side the validator needs. Find* return (nil, nil) when
// the row does not exist.
type Store interface {
	EmployeeEmailTaken(ctx context.Context, restaurantID uint, email string, excludeID uint) (bool, error)
	TableNumberTaken(ctx context.Context, restaurantID, number, excludeID uint) (bool, error)
	CustomerEmailTaken(ctx context.Context, restaurantID uint, email string, excludeID uint) (bool, error)
	// ProductNameConflicts returns the restaurants among restaurantIDs that
	// already carry a product named name, other than excludeID.
	ProductNameConflicts(ctx context.Context, restaurantIDs []uint, name string, excludeID uint) ([]uint, error)
	OrderLineExists(ctx context.Context, orderID, productID, excludeID uint) (bool, error)

	FindTable(ctx context.Context, id uint) (*models.Table, error)
	FindEmployee(ctx context.Context, id uint) (*models.Employee, error)
	FindCustomer(ctx context.Context, id uint) (*models.Customer, error)
	FindOrder(ctx context.Context, id uint) (*models.Order, error)
	// FindProduct preloads the product's restaurant links.
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
}

type Validator struct {
	store Store
}

func New(store Store) *Validator {
	return &Validator{store: store}
}

// Errors collects field errors of one pass.
type Errors []apperr.FieldError

func (e *Errors) add(field, code, format string, args ...any) {
	*e = append(*e, apperr.FieldError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

// money adds an error when d does not fit a numeric(digits, places)
// column and reports whether it did.
func (e *Errors) money(field string, d decimal.Decimal, digits, places int32) bool {
	scale := int32(0)
	for !d.Truncate(scale).Equal(d) {
		scale++
	}
	whole := int32(0)
	if w := d.Abs().Truncate(0); !w.IsZero() {
		whole = int32(len(w.String()))
	}
	switch {
	case whole+scale > digits:
		e.add(field, "max_digits", "Ensure that there are no more than %d digits in total.", digits)
	case scale > places:
		e.add(field, "max_decimal_places", "Ensure that there are no more than %d decimal places.", places)
	case whole > digits-places:
		e.add(field, "max_whole_digits", "Ensure that there are no more than %d digits before the decimal point.", digits-places)
	default:
		return true
	}
	return false
}

// Err is nil when nothing was collected.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apperr.Validation(e...)
}

func (v *Validator) Employee(ctx context.Context, e *models.Employee) error {
	var errs Errors
	if e.Name == "" {
		errs.add("name", "required", "This field is required.")
	}
	if e.Email == "" {
		errs.add("email", "required", "This field is required.")
	} else {
		taken, err := v.store.EmployeeEmailTaken(ctx, e.RestaurantID, e.Email, e.ID)
		if err != nil {
			return err
		}
		if taken {
			errs.add("email", "unique", "An employee with this email already exists in this restaurant.")
		}
	}
	if !e.Role.Valid() {
		errs.add("role", "invalid_choice", "%q is not a valid choice.", e.Role)
	}
	return errs.Err()
}

func (v *Validator) Table(ctx context.Context, t *models.Table) error {
	var errs Errors
	if t.TableNumber == 0 {
		errs.add("table_number", "min_value", "Table number must be a positive integer.")
	} else {
		taken, err := v.store.TableNumberTaken(ctx, t.RestaurantID, t.TableNumber, t.ID)
		if err != nil {
			return err
		}
		if taken {
			errs.add("table_number", "unique", "Table number %d already exists in this restaurant.", t.TableNumber)
		}
	}
	if t.Capacity == 0 {
		errs.add("capacity", "min_value", "Capacity must be a positive integer.")
	}
	if !t.Status.Valid() {
		errs.add("status", "invalid_choice", "%q is not a valid choice.", t.Status)
	}
	return errs.Err()
}

func (v *Validator) Customer(ctx context.Context, c *models.Customer) error {
	var errs Errors
	if c.Name == "" {
		errs.add("name", "required", "This field is required.")
	}
	if c.Email != nil {
		taken, err := v.store.CustomerEmailTaken(ctx, c.RestaurantID, *c.Email, c.ID)
		if err != nil {
			return err
		}
		if taken {
			errs.add("email", "unique", "A customer with this email already exists in this restaurant.")
		}
	}
	return errs.Err()
}

// Product checks a product against the restaurant set it will be assigned
// to. One name error is reported per conflicting restaurant.
func (v *Validator) Product(ctx context.Context, p *models.Product, restaurantIDs []uint) error {
	var errs Errors
	if p.Name == "" {
		errs.add("name", "required", "This field is required.")
	}
	if !p.Price.IsPositive() {
		errs.add("price", "min_value", "Price must be greater than zero.")
	} else {
		errs.money("price", p.Price, 10, 2)
	}
	if !p.Status.Valid() {
		errs.add("status", "invalid_choice", "%q is not a valid choice.", p.Status)
	}
	if len(restaurantIDs) == 0 {
		errs.add("restaurants", "required", "A product must be assigned to at least one restaurant.")
	} else if p.Name != "" {
		conflicts, err := v.store.ProductNameConflicts(ctx, restaurantIDs, p.Name, p.ID)
		if err != nil {
			return err
		}
		for _, id := range conflicts {
			errs.add("name", "unique", "A product named %q already exists in restaurant %d.", p.Name, id)
		}
	}
	return errs.Err()
}

// Order checks the references of an order first and stops at the first one
// that does not belong to the order's restaurant. Field and amount checks
// are aggregated afterwards.
func (v *Validator) Order(ctx context.Context, o *models.Order, tableIDs []uint) error {
	var errs Errors

	for _, id := range tableIDs {
		t, err := v.store.FindTable(ctx, id)
		if err != nil {
			return err
		}
		if t == nil || t.RestaurantID != o.RestaurantID {
			errs.add("tables", "invalid_reference", "Table %d does not belong to restaurant %d.", id, o.RestaurantID)
			return errs.Err()
		}
	}

	if o.EmployeeID == 0 {
		errs.add("employee", "required", "This field is required.")
		return errs.Err()
	}
	emp, err := v.store.FindEmployee(ctx, o.EmployeeID)
	if err != nil {
		return err
	}
	if emp == nil || emp.RestaurantID != o.RestaurantID {
		errs.add("employee", "invalid_reference", "Employee %d does not belong to restaurant %d.", o.EmployeeID, o.RestaurantID)
		return errs.Err()
	}

	if o.CustomerID != nil {
		cust, err := v.store.FindCustomer(ctx, *o.CustomerID)
		if err != nil {
			return err
		}
		if cust == nil || cust.RestaurantID != o.RestaurantID {
			errs.add("customer", "invalid_reference", "Customer %d does not belong to restaurant %d.", *o.CustomerID, o.RestaurantID)
			return errs.Err()
		}
	}

	if !o.Status.Valid() {
		errs.add("status", "invalid_choice", "%q is not a valid choice.", o.Status)
	}
	if o.PaymentMethod != nil && !o.PaymentMethod.Valid() {
		errs.add("payment_method", "invalid_choice", "%q is not a valid choice.", *o.PaymentMethod)
	}

	// subtotal and total are numeric(10,2), the adjustments numeric(5,2).
	amounts := []struct {
		field  string
		value  *decimal.Decimal
		digits int32
	}{
		{"subtotal", &o.Subtotal, 10},
		{"discount", o.Discount, 5},
		{"tax", o.Tax, 5},
		{"tips", o.Tips, 5},
		{"total", &o.Total, 10},
	}
	invalid := false
	for _, a := range amounts {
		switch {
		case a.value == nil:
		case a.value.IsNegative():
			errs.add(a.field, "min_value", "Ensure this value is greater than or equal to 0.")
			invalid = true
		case !errs.money(a.field, *a.value, a.digits, 2):
			invalid = true
		}
	}
	if !invalid {
		if want := ExpectedTotal(o); !want.Equal(o.Total.Round(2)) {
			errs.add("total", "mismatch", "Total must equal subtotal + tax - discount + tips (%s), got %s.",
				want.StringFixed(2), o.Total.StringFixed(2))
		}
	}
	return errs.Err()
}

// ExpectedTotal is round(subtotal + tax - discount + tips, 2) with absent
// amounts counted as zero.
func ExpectedTotal(o *models.Order) decimal.Decimal {
	sum := o.Subtotal
	if o.Tax != nil {
		sum = sum.Add(*o.Tax)
	}
	if o.Discount != nil {
		sum = sum.Sub(*o.Discount)
	}
	if o.Tips != nil {
		sum = sum.Add(*o.Tips)
	}
	return sum.Round(2)
}

// OrderLine checks a line against its order. Availability is only enforced
// when checkAvailability is set, which callers do on create and when the
// product of an existing line changes.
func (v *Validator) OrderLine(ctx context.Context, l *models.OrderLine, checkAvailability bool) error {
	var errs Errors
	if l.Quantity == 0 {
		errs.add("quantity", "min_value", "Quantity must be greater than zero.")
	}

	order, err := v.store.FindOrder(ctx, l.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		errs.add("order", "does_not_exist", "Order %d does not exist.", l.OrderID)
		return errs.Err()
	}

	product, err := v.store.FindProduct(ctx, l.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		errs.add("product", "does_not_exist", "Product %d does not exist.", l.ProductID)
		return errs.Err()
	}

	assigned := false
	for _, id := range product.RestaurantIDs() {
		if id == order.RestaurantID {
			assigned = true
			break
		}
	}
	if !assigned {
		errs.add("product", "invalid_reference", "Product %q is not available in restaurant %d.", product.Name, order.RestaurantID)
	}
	if checkAvailability && product.Status != models.ProductAvailable {
		errs.add("product", "unavailable", "Product %q is not available.", product.Name)
	}

	dup, err := v.store.OrderLineExists(ctx, l.OrderID, l.ProductID, l.ID)
	if err != nil {
		return err
	}
	if dup {
		errs.add("product", "unique", "This product is already part of the order.")
	}
	return errs.Err()
}
