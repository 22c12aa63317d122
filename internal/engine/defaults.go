package engine

import "bistrocore/pkg/finance"

// DefaultDataset returns the starter financial model loaded when no
// persisted snapshot exists.
func DefaultDataset() finance.Dataset {
	return finance.Dataset{
		Menus: []finance.MenuItem{
			{
				ID: "margherita", Name: "Margherita Pizza", Category: "main",
				Price: 12.50, MixShare: 0.35,
				Ingredients: []finance.IngredientLine{
					{Name: "dough ball", Quantity: 1, Unit: "pc", UnitCost: 0.60},
					{Name: "tomato sauce", Quantity: 0.12, Unit: "kg", UnitCost: 3.20},
					{Name: "mozzarella", Quantity: 0.15, Unit: "kg", UnitCost: 7.80},
					{Name: "basil", Quantity: 0.01, Unit: "kg", UnitCost: 18.00},
				},
			},
			{
				ID: "carbonara", Name: "Spaghetti Carbonara", Category: "main",
				Price: 14.00, MixShare: 0.25,
				Ingredients: []finance.IngredientLine{
					{Name: "spaghetti", Quantity: 0.12, Unit: "kg", UnitCost: 2.10},
					{Name: "guanciale", Quantity: 0.06, Unit: "kg", UnitCost: 16.50},
					{Name: "egg yolk", Quantity: 2, Unit: "pc", UnitCost: 0.35},
					{Name: "pecorino", Quantity: 0.04, Unit: "kg", UnitCost: 14.00},
				},
			},
			{
				ID: "house-salad", Name: "House Salad", Category: "starter",
				Price: 7.50, MixShare: 0.20,
				Ingredients: []finance.IngredientLine{
					{Name: "mixed greens", Quantity: 0.15, Unit: "kg", UnitCost: 6.00},
					{Name: "vinaigrette", Quantity: 0.04, Unit: "l", UnitCost: 5.50},
					{Name: "cherry tomatoes", Quantity: 0.08, Unit: "kg", UnitCost: 4.20},
				},
			},
			{
				ID: "tiramisu", Name: "Tiramisu", Category: "dessert",
				Price: 6.50, MixShare: 0.20,
				Ingredients: []finance.IngredientLine{
					{Name: "mascarpone", Quantity: 0.08, Unit: "kg", UnitCost: 9.50},
					{Name: "ladyfingers", Quantity: 0.05, Unit: "kg", UnitCost: 6.80},
					{Name: "espresso", Quantity: 0.05, Unit: "l", UnitCost: 4.00},
				},
			},
		},
		Sales: finance.SalesModel{
			CoversPerDay:     90,
			AverageTicket:    11.20,
			DaysOpenPerMonth: 26,
		},
		Utilities: []finance.UtilityCost{
			{ID: "power", Name: "Electricity", MonthlyCost: 850, Variable: true},
			{ID: "gas", Name: "Gas", MonthlyCost: 420, Variable: true},
			{ID: "water", Name: "Water", MonthlyCost: 180},
			{ID: "waste", Name: "Waste collection", MonthlyCost: 120},
		},
		Labor: []finance.LaborRole{
			{ID: "chef", Role: "Head chef", HourlyWage: 22.00, HoursPerDay: 9, Headcount: 1},
			{ID: "cook", Role: "Line cook", HourlyWage: 15.50, HoursPerDay: 8, Headcount: 2},
			{ID: "server", Role: "Server", HourlyWage: 12.00, HoursPerDay: 7, Headcount: 3},
			{ID: "dish", Role: "Dishwasher", HourlyWage: 11.00, HoursPerDay: 6, Headcount: 1},
		},
		FixedCosts: []finance.FixedCost{
			{ID: "rent", Name: "Rent", MonthlyCost: 3800},
			{ID: "insurance", Name: "Insurance", MonthlyCost: 350},
			{ID: "licenses", Name: "Licenses & permits", MonthlyCost: 150},
			{ID: "pos", Name: "POS subscription", MonthlyCost: 90},
		},
		Metadata: finance.Metadata{Name: "Trattoria Esempio", Currency: "EUR", Version: 1},
	}
}

// DefaultScenarios returns the scenario set shipped with the default
// dataset. The "base" scenario is always present.
func DefaultScenarios() map[string]finance.Scenario {
	return map[string]finance.Scenario{
		"base": {ID: "base", Name: "Base plan", SalesMultiplier: 1, PriceMultiplier: 1, CostMultiplier: 1},
		"weekend-push": {
			ID: "weekend-push", Name: "Weekend push",
			SalesMultiplier: 1.2, PriceMultiplier: 1, CostMultiplier: 1.05,
			Notes: "extra covers from weekend promotion, slightly higher prep cost",
		},
		"lean-winter": {
			ID: "lean-winter", Name: "Lean winter",
			SalesMultiplier: 0.8, PriceMultiplier: 1, CostMultiplier: 1,
			Notes: "seasonal dip in covers",
		},
	}
}
