package validation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-backend/internal/apperr"
	"pos-backend/internal/models"
)

func fields(t *testing.T, err error) []apperr.FieldError {
	t.Helper()
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %T", err)
	require.Equal(t, apperr.KindValidation, e.Kind)
	return e.Fields
}

func codes(fs []apperr.FieldError) map[string]string {
	m := make(map[string]string, len(fs))
	for _, f := range fs {
		m[f.Field] = f.Code
	}
	return m
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestEmployeeEmailUniquePerRestaurant(t *testing.T) {
	ctx := context.Background()
	store := &memStore{employees: []models.Employee{
		{ID: 1, RestaurantID: 10, Name: "Ana", Email: "ana@pos.test", Role: models.RoleWaiter},
	}}
	v := New(store)

	dup := &models.Employee{RestaurantID: 10, Name: "Ana B", Email: "ana@pos.test", Role: models.RoleChef}
	assert.Equal(t, "unique", codes(fields(t, v.Employee(ctx, dup)))["email"])

	other := &models.Employee{RestaurantID: 20, Name: "Ana", Email: "ana@pos.test", Role: models.RoleChef}
	assert.NoError(t, v.Employee(ctx, other))

	// case-sensitive exact match
	upper := &models.Employee{RestaurantID: 10, Name: "Ana", Email: "ANA@pos.test", Role: models.RoleChef}
	assert.NoError(t, v.Employee(ctx, upper))

	self := store.employees[0]
	self.Name = "Ana Updated"
	assert.NoError(t, v.Employee(ctx, &self))
}

func TestEmployeeAggregatesErrors(t *testing.T) {
	v := New(&memStore{})
	fs := fields(t, v.Employee(context.Background(), &models.Employee{RestaurantID: 1, Role: "Boss"}))
	c := codes(fs)
	assert.Equal(t, "required", c["name"])
	assert.Equal(t, "required", c["email"])
	assert.Equal(t, "invalid_choice", c["role"])
}

func TestTableNumberConflict(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	v := New(store)

	first := models.Table{ID: 1, RestaurantID: 10, TableNumber: 5, Capacity: 4, Status: models.TableAvailable}
	require.NoError(t, v.Table(ctx, &first))
	store.tables = append(store.tables, first)

	second := &models.Table{RestaurantID: 10, TableNumber: 5, Capacity: 2, Status: models.TableAvailable}
	fs := fields(t, v.Table(ctx, second))
	require.Len(t, fs, 1)
	assert.Equal(t, "table_number", fs[0].Field)
	assert.Equal(t, "unique", fs[0].Code)

	// updating the first table keeps its own number
	first.Capacity = 6
	assert.NoError(t, v.Table(ctx, &first))
}

func TestTablePositiveNumbers(t *testing.T) {
	v := New(&memStore{})
	c := codes(fields(t, v.Table(context.Background(), &models.Table{RestaurantID: 1, Status: "Broken"})))
	assert.Equal(t, "min_value", c["table_number"])
	assert.Equal(t, "min_value", c["capacity"])
	assert.Equal(t, "invalid_choice", c["status"])
}

func TestCustomerEmailOptional(t *testing.T) {
	ctx := context.Background()
	email := "c@pos.test"
	store := &memStore{customers: []models.Customer{
		{ID: 1, RestaurantID: 10, Name: "A", Email: &email},
		{ID: 2, RestaurantID: 10, Name: "B"},
	}}
	v := New(store)

	assert.NoError(t, v.Customer(ctx, &models.Customer{RestaurantID: 10, Name: "C"}))
	assert.Equal(t, "unique", codes(fields(t, v.Customer(ctx, &models.Customer{RestaurantID: 10, Name: "D", Email: &email})))["email"])
	assert.NoError(t, v.Customer(ctx, &models.Customer{ID: 1, RestaurantID: 10, Name: "A", Email: &email}))
}

func TestProductNamePerRestaurantSet(t *testing.T) {
	ctx := context.Background()
	store := &memStore{products: []models.Product{
		product(1, "Burger", models.ProductAvailable, 10, 20),
	}}
	v := New(store)

	p := &models.Product{Name: "Burger", Price: dec("9.50"), Status: models.ProductAvailable}
	fs := fields(t, v.Product(ctx, p, []uint{10, 20, 30}))
	require.Len(t, fs, 2)
	for _, f := range fs {
		assert.Equal(t, "name", f.Field)
		assert.Equal(t, "unique", f.Code)
	}

	assert.NoError(t, v.Product(ctx, p, []uint{30}))

	self := &models.Product{ID: 1, Name: "Burger", Price: dec("9.50"), Status: models.ProductAvailable}
	assert.NoError(t, v.Product(ctx, self, []uint{10, 20}))
}

func TestProductRequiresRestaurantAndPrice(t *testing.T) {
	v := New(&memStore{})
	p := &models.Product{Name: "Soup", Price: dec("0"), Status: models.ProductAvailable}
	c := codes(fields(t, v.Product(context.Background(), p, nil)))
	assert.Equal(t, "required", c["restaurants"])
	assert.Equal(t, "min_value", c["price"])
}

func orderStore() *memStore {
	return &memStore{
		tables: []models.Table{
			{ID: 1, RestaurantID: 10, TableNumber: 1, Capacity: 2},
			{ID: 2, RestaurantID: 10, TableNumber: 2, Capacity: 4},
			{ID: 3, RestaurantID: 20, TableNumber: 1, Capacity: 4},
		},
		employees: []models.Employee{
			{ID: 1, RestaurantID: 10, Email: "w@pos.test", Role: models.RoleWaiter},
			{ID: 2, RestaurantID: 20, Email: "w@pos.test", Role: models.RoleWaiter},
		},
		customers: []models.Customer{
			{ID: 1, RestaurantID: 10, Name: "Guest"},
			{ID: 2, RestaurantID: 20, Name: "Other"},
		},
	}
}

func TestOrderTotalReconciles(t *testing.T) {
	ctx := context.Background()
	v := New(orderStore())

	o := &models.Order{
		RestaurantID: 10,
		EmployeeID:   1,
		Status:       models.OrderPending,
		Subtotal:     dec("100.00"),
		Tax:          decp("8.00"),
		Discount:     decp("10.00"),
		Tips:         decp("5.00"),
		Total:        dec("103.00"),
	}
	require.NoError(t, v.Order(ctx, o, []uint{1, 2}))

	o.Total = dec("100.00")
	fs := fields(t, v.Order(ctx, o, []uint{1, 2}))
	require.Len(t, fs, 1)
	assert.Equal(t, "total", fs[0].Field)
	assert.Equal(t, "mismatch", fs[0].Code)
}

func TestOrderTotalAbsentAmountsAreZero(t *testing.T) {
	v := New(orderStore())
	o := &models.Order{RestaurantID: 10, EmployeeID: 1, Status: models.OrderPending, Subtotal: dec("12.35"), Total: dec("12.35")}
	assert.NoError(t, v.Order(context.Background(), o, nil))

	o.Total = dec("12.36")
	assert.Error(t, v.Order(context.Background(), o, nil))
}

func TestOrderReferencesShortCircuit(t *testing.T) {
	ctx := context.Background()
	v := New(orderStore())
	base := models.Order{RestaurantID: 10, EmployeeID: 1, Status: models.OrderPending, Subtotal: dec("1"), Total: dec("99")}

	o := base
	fs := fields(t, v.Order(ctx, &o, []uint{1, 3, 42}))
	require.Len(t, fs, 1)
	assert.Equal(t, "tables", fs[0].Field)
	assert.Contains(t, fs[0].Message, "Table 3")

	o = base
	o.EmployeeID = 2
	fs = fields(t, v.Order(ctx, &o, []uint{1}))
	require.Len(t, fs, 1)
	assert.Equal(t, "employee", fs[0].Field)

	o = base
	o.EmployeeID = 0
	assert.Equal(t, "required", codes(fields(t, v.Order(ctx, &o, nil)))["employee"])

	o = base
	foreign := uint(2)
	o.CustomerID = &foreign
	fs = fields(t, v.Order(ctx, &o, nil))
	require.Len(t, fs, 1)
	assert.Equal(t, "customer", fs[0].Field)
}

func TestOrderChoicesAndNegativeAmounts(t *testing.T) {
	v := New(orderStore())
	pm := models.PaymentMethod("Barter")
	o := &models.Order{
		RestaurantID:  10,
		EmployeeID:    1,
		Status:        "Lost",
		PaymentMethod: &pm,
		Subtotal:      dec("10"),
		Discount:      decp("-1"),
		Total:         dec("11"),
	}
	c := codes(fields(t, v.Order(context.Background(), o, nil)))
	assert.Equal(t, "invalid_choice", c["status"])
	assert.Equal(t, "invalid_choice", c["payment_method"])
	assert.Equal(t, "min_value", c["discount"])
	assert.NotContains(t, c, "total")
}

func TestOrderAmountsFitColumns(t *testing.T) {
	ctx := context.Background()
	v := New(orderStore())

	o := &models.Order{
		RestaurantID: 10,
		EmployeeID:   1,
		Status:       models.OrderPending,
		Subtotal:     dec("10.00"),
		Tax:          decp("1000.00"),
		Total:        dec("1010.00"),
	}
	fs := fields(t, v.Order(ctx, o, nil))
	require.Len(t, fs, 1)
	assert.Equal(t, "tax", fs[0].Field)
	assert.Equal(t, "max_whole_digits", fs[0].Code)

	o.Tax = decp("999.99")
	o.Total = dec("1009.99")
	assert.NoError(t, v.Order(ctx, o, nil))

	// sub-cent amounts are rejected before they could be rounded apart
	o = &models.Order{
		RestaurantID: 10,
		EmployeeID:   1,
		Status:       models.OrderPending,
		Subtotal:     dec("0.004"),
		Tax:          decp("0.004"),
		Total:        dec("0.01"),
	}
	c := codes(fields(t, v.Order(ctx, o, nil)))
	assert.Equal(t, "max_decimal_places", c["subtotal"])
	assert.Equal(t, "max_decimal_places", c["tax"])
	assert.NotContains(t, c, "total")

	o = &models.Order{RestaurantID: 10, EmployeeID: 1, Status: models.OrderPending, Subtotal: dec("12345678901"), Total: dec("12345678901")}
	c = codes(fields(t, v.Order(ctx, o, nil)))
	assert.Equal(t, "max_digits", c["subtotal"])
	assert.Equal(t, "max_digits", c["total"])
}

func TestProductPriceFitsColumn(t *testing.T) {
	v := New(&memStore{})
	p := &models.Product{Name: "Soup", Price: dec("4.999"), Status: models.ProductAvailable}
	assert.Equal(t, "max_decimal_places", codes(fields(t, v.Product(context.Background(), p, []uint{10})))["price"])

	p.Price = dec("4.50")
	assert.NoError(t, v.Product(context.Background(), p, []uint{10}))

	p.Price = dec("123456789.00")
	assert.Equal(t, "max_whole_digits", codes(fields(t, v.Product(context.Background(), p, []uint{10})))["price"])
}

func lineStore() *memStore {
	return &memStore{
		orders: []models.Order{{ID: 1, RestaurantID: 10}},
		products: []models.Product{
			product(1, "Pizza", models.ProductAvailable, 10),
			product(2, "Pasta", models.ProductOutOfStock, 10),
			product(3, "Sushi", models.ProductAvailable, 20),
		},
	}
}

func TestOrderLineQuantityBoundary(t *testing.T) {
	ctx := context.Background()
	v := New(lineStore())

	zero := &models.OrderLine{OrderID: 1, ProductID: 1, Quantity: 0}
	fs := fields(t, v.OrderLine(ctx, zero, true))
	assert.Equal(t, "min_value", codes(fs)["quantity"])

	one := &models.OrderLine{OrderID: 1, ProductID: 1, Quantity: 1}
	assert.NoError(t, v.OrderLine(ctx, one, true))
}

func TestOrderLineProductMembershipAndAvailability(t *testing.T) {
	ctx := context.Background()
	v := New(lineStore())

	foreign := &models.OrderLine{OrderID: 1, ProductID: 3, Quantity: 1}
	assert.Equal(t, "invalid_reference", codes(fields(t, v.OrderLine(ctx, foreign, true)))["product"])

	outOfStock := &models.OrderLine{OrderID: 1, ProductID: 2, Quantity: 1}
	assert.Equal(t, "unavailable", codes(fields(t, v.OrderLine(ctx, outOfStock, true)))["product"])

	// an existing line keeps its product when only the quantity changes
	existing := &models.OrderLine{ID: 7, OrderID: 1, ProductID: 2, Quantity: 3}
	assert.NoError(t, v.OrderLine(ctx, existing, false))
}

func TestOrderLineDuplicateAndMissingOrder(t *testing.T) {
	ctx := context.Background()
	store := lineStore()
	store.lines = []models.OrderLine{{ID: 1, OrderID: 1, ProductID: 1, Quantity: 2}}
	v := New(store)

	dup := &models.OrderLine{OrderID: 1, ProductID: 1, Quantity: 1}
	assert.Equal(t, "unique", codes(fields(t, v.OrderLine(ctx, dup, true)))["product"])

	self := &models.OrderLine{ID: 1, OrderID: 1, ProductID: 1, Quantity: 5}
	assert.NoError(t, v.OrderLine(ctx, self, false))

	orphan := &models.OrderLine{OrderID: 99, ProductID: 1, Quantity: 1}
	assert.Equal(t, "does_not_exist", codes(fields(t, v.OrderLine(ctx, orphan, true)))["order"])
}
