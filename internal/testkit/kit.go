// Package testkit provides deterministic fixture tables and recipes for
// tests. Everything here is hand-written data, no randomness, so tests
// asserting on exact output stay stable.
package testkit

import (
	"reportauto/domain/recipe"
	"reportauto/domain/table"
)

// SalesTable is a small retail dataset exercising most analysis kinds:
// a categorical region, numeric amounts with currency formatting, a
// multi-valued tag column, dates, and a deliberate missing cell.
func SalesTable() *table.Table {
	return table.New(
		[]string{"Region", "Product", "Amount", "Units", "Tags", "Order Date"},
		[][]string{
			{"North", "Widget", "$1,200.50", "10", "new; promo", "2024-01-03"},
			{"North", "Gadget", "$800.00", "8", "promo", "2024-01-05"},
			{"South", "Widget", "$450.25", "4", "clearance", "2024-01-10"},
			{"South", "Gadget", "", "6", "new", "2024-01-17"},
			{"East", "Widget", "$2,000.00", "20", "promo; clearance", "2024-02-02"},
			{"East", "Widget", "$150.75", "2", "new", "2024-02-09"},
		},
	)
}

// Rows builds a table from headers and rows.
func Rows(headers []string, rows [][]string) *table.Table {
	return table.New(headers, rows)
}

// NumericColumn builds a one-column table from float-formatted strings.
func NumericColumn(name string, values ...string) *table.Table {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return Rows([]string{name}, rows)
}

// Recipe wraps steps into a validated recipe, panicking on invalid
// fixtures.
func Recipe(steps ...recipe.Step) *recipe.Recipe {
	r := &recipe.Recipe{Steps: steps}
	if err := r.Validate(); err != nil {
		panic(err)
	}
	return r
}

// FloatPtr returns a pointer for optional threshold fields.
func FloatPtr(v float64) *float64 { return &v }

// BoolPtr returns a pointer for optional boolean fields.
func BoolPtr(v bool) *bool { return &v }
