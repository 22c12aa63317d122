package validation

import (
	"strings"
	"testing"

	"bistrocore/pkg/finance"
)

func validMenuItem() finance.MenuItem {
	return finance.MenuItem{
		ID: "dish", Name: "Dish", Price: 10, MixShare: 0.5,
		Ingredients: []finance.IngredientLine{{Name: "stuff", Quantity: 1, Unit: "kg", UnitCost: 4}},
	}
}

func TestMenuItem(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*finance.MenuItem)
		wantErr string
	}{
		{"valid", func(*finance.MenuItem) {}, ""},
		{"missing id", func(m *finance.MenuItem) { m.ID = " " }, "id is required"},
		{"missing name", func(m *finance.MenuItem) { m.Name = "" }, "name is required"},
		{"zero price", func(m *finance.MenuItem) { m.Price = 0 }, "price must be positive"},
		{"mix share out of range", func(m *finance.MenuItem) { m.MixShare = 1.5 }, "mix share"},
		{"bad ingredient quantity", func(m *finance.MenuItem) { m.Ingredients[0].Quantity = 0 }, "quantity must be positive"},
		{"negative unit cost", func(m *finance.MenuItem) { m.Ingredients[0].UnitCost = -1 }, "unit cost cannot be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := validMenuItem()
			tc.mutate(&item)
			res := MenuItem(item)
			if tc.wantErr == "" {
				if !res.Valid {
					t.Fatalf("expected valid, got errors %v", res.Errors)
				}
				return
			}
			if res.Valid {
				t.Fatal("expected invalid")
			}
			if !strings.Contains(strings.Join(res.Errors, "; "), tc.wantErr) {
				t.Fatalf("errors %v missing %q", res.Errors, tc.wantErr)
			}
		})
	}
}

func TestMenuItemMarginWarning(t *testing.T) {
	item := validMenuItem()
	item.Price = 4 // equals ingredient cost
	res := MenuItem(item)
	if !res.Valid {
		t.Fatalf("expected valid with warning, got errors %v", res.Errors)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a margin warning")
	}
}

func TestSalesModel(t *testing.T) {
	cases := []struct {
		name  string
		model finance.SalesModel
		valid bool
	}{
		{"valid", finance.SalesModel{CoversPerDay: 80, AverageTicket: 12, DaysOpenPerMonth: 26}, true},
		{"zero covers", finance.SalesModel{AverageTicket: 12, DaysOpenPerMonth: 26}, false},
		{"zero ticket", finance.SalesModel{CoversPerDay: 80, DaysOpenPerMonth: 26}, false},
		{"days too high", finance.SalesModel{CoversPerDay: 80, AverageTicket: 12, DaysOpenPerMonth: 32}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SalesModel(tc.model).Valid; got != tc.valid {
				t.Fatalf("valid = %v, want %v", got, tc.valid)
			}
		})
	}
}

func TestListValidators(t *testing.T) {
	if res := Utility(finance.UtilityCost{Name: "Power", MonthlyCost: 100}); !res.Valid {
		t.Fatalf("utility: %v", res.Errors)
	}
	if res := Utility(finance.UtilityCost{Name: "", MonthlyCost: -5}); res.Valid || len(res.Errors) != 2 {
		t.Fatalf("utility should report both failures, got %v", res.Errors)
	}
	if res := LaborRole(finance.LaborRole{Role: "Cook", HourlyWage: 15, HoursPerDay: 8, Headcount: 1}); !res.Valid {
		t.Fatalf("labor: %v", res.Errors)
	}
	if res := LaborRole(finance.LaborRole{Role: "Cook", HourlyWage: 15, HoursPerDay: 25, Headcount: 0}); res.Valid {
		t.Fatal("labor should reject 25h day and zero headcount")
	}
	if res := FixedCost(finance.FixedCost{Name: "Rent", MonthlyCost: 1000}); !res.Valid {
		t.Fatalf("fixed: %v", res.Errors)
	}
	if res := FixedCost(finance.FixedCost{Name: "Rent", MonthlyCost: -1}); res.Valid {
		t.Fatal("fixed should reject negative cost")
	}
}

func TestDataset(t *testing.T) {
	ds := finance.Dataset{
		Menus: []finance.MenuItem{validMenuItem()},
		Sales: finance.SalesModel{CoversPerDay: 80, AverageTicket: 12, DaysOpenPerMonth: 26},
	}
	res := Dataset(ds)
	if !res.Valid {
		t.Fatalf("expected valid dataset, got %v", res.Errors)
	}
	// Mix shares sum to 0.5, expect the aggregate warning.
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "mix shares sum") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected mix share warning, got %v", res.Warnings)
	}
}

func TestDatasetRejectsEmptyAndDuplicates(t *testing.T) {
	if res := Dataset(finance.Dataset{}); res.Valid {
		t.Fatal("empty dataset should be invalid")
	}
	dup := validMenuItem()
	ds := finance.Dataset{
		Menus: []finance.MenuItem{validMenuItem(), dup},
		Sales: finance.SalesModel{CoversPerDay: 80, AverageTicket: 12, DaysOpenPerMonth: 26},
	}
	res := Dataset(ds)
	if res.Valid {
		t.Fatal("duplicate menu ids should be invalid")
	}
	if !strings.Contains(strings.Join(res.Errors, "; "), "duplicate menu id") {
		t.Fatalf("errors %v missing duplicate message", res.Errors)
	}
}
