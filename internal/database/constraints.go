package database

// Every tenant-scoped table gets a unique (id, restaurant_id) index so child
// rows can reference the pair and can never point into another restaurant.
var tenantIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_id_restaurant ON employees (id, restaurant_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tables_id_restaurant ON tables (id, restaurant_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_id_restaurant ON customers (id, restaurant_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_id_restaurant ON orders (id, restaurant_id)`,
}

type constraint struct {
	table      string
	name       string
	definition string
}

// ON DELETE SET NULL with a column list needs PostgreSQL 15.
var tenantConstraints = []constraint{
	{
		table:      "order_tables",
		name:       "fk_order_tables_order",
		definition: "FOREIGN KEY (order_id, restaurant_id) REFERENCES orders (id, restaurant_id) ON DELETE CASCADE",
	},
	{
		table:      "order_tables",
		name:       "fk_order_tables_table",
		definition: "FOREIGN KEY (table_id, restaurant_id) REFERENCES tables (id, restaurant_id) ON DELETE CASCADE",
	},
	{
		table:      "orders",
		name:       "fk_orders_employee",
		definition: "FOREIGN KEY (employee_id, restaurant_id) REFERENCES employees (id, restaurant_id) ON DELETE CASCADE",
	},
	{
		table:      "orders",
		name:       "fk_orders_customer",
		definition: "FOREIGN KEY (customer_id, restaurant_id) REFERENCES customers (id, restaurant_id) ON DELETE SET NULL (customer_id)",
	},
	{
		table:      "order_lines",
		name:       "fk_order_lines_order",
		definition: "FOREIGN KEY (order_id, restaurant_id) REFERENCES orders (id, restaurant_id) ON DELETE CASCADE",
	},
	{
		table:      "order_lines",
		name:       "fk_order_lines_product_restaurant",
		definition: "FOREIGN KEY (product_id, restaurant_id) REFERENCES product_restaurants (product_id, restaurant_id)",
	},
	{
		table: "orders",
		name:  "chk_orders_amounts",
		definition: `CHECK (subtotal >= 0 AND total >= 0
			AND COALESCE(discount, 0) >= 0 AND COALESCE(tax, 0) >= 0 AND COALESCE(tips, 0) >= 0)`,
	},
	{
		table:      "orders",
		name:       "chk_orders_total",
		definition: "CHECK (total = ROUND(subtotal + COALESCE(tax, 0) - COALESCE(discount, 0) + COALESCE(tips, 0), 2))",
	},
}
