package engine

import (
	"math"
	"testing"

	"bistrocore/pkg/finance"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// fixtureDataset builds a hand-checkable single-item model:
// revenue 1000/day, COGS 400, labor 100, utilities 10, fixed 20.
func fixtureDataset() finance.Dataset {
	return finance.Dataset{
		Menus: []finance.MenuItem{{
			ID: "dish", Name: "Dish", Price: 10, MixShare: 1,
			Ingredients: []finance.IngredientLine{{Name: "stuff", Quantity: 1, Unit: "kg", UnitCost: 4}},
		}},
		Sales:      finance.SalesModel{CoversPerDay: 100, AverageTicket: 10, DaysOpenPerMonth: 20},
		Utilities:  []finance.UtilityCost{{ID: "power", Name: "Power", MonthlyCost: 200}},
		Labor:      []finance.LaborRole{{ID: "cook", Role: "Cook", HourlyWage: 10, HoursPerDay: 10, Headcount: 1}},
		FixedCosts: []finance.FixedCost{{ID: "rent", Name: "Rent", MonthlyCost: 400}},
		Metadata:   finance.Metadata{Version: 1},
	}
}

func fixtureEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(nil)
	e.dataset = fixtureDataset()
	e.scenarios = map[string]finance.Scenario{
		"base":  {ID: "base", Name: "Base"},
		"surge": {ID: "surge", Name: "Surge", SalesMultiplier: 1.2},
	}
	return e
}

func TestComputeBaseScenario(t *testing.T) {
	e := fixtureEngine(t)
	res, err := e.Compute("base")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !almostEqual(res.Daily.Revenue, 1000) {
		t.Fatalf("daily revenue = %v, want 1000", res.Daily.Revenue)
	}
	if !almostEqual(res.Daily.CostOfGoods, 400) {
		t.Fatalf("daily cogs = %v, want 400", res.Daily.CostOfGoods)
	}
	if !almostEqual(res.Daily.Labor, 100) {
		t.Fatalf("daily labor = %v, want 100", res.Daily.Labor)
	}
	if !almostEqual(res.Daily.Utilities, 10) {
		t.Fatalf("daily utilities = %v, want 10", res.Daily.Utilities)
	}
	if !almostEqual(res.Daily.FixedCosts, 20) {
		t.Fatalf("daily fixed = %v, want 20", res.Daily.FixedCosts)
	}
	if !almostEqual(res.Daily.OperatingProfit, 470) {
		t.Fatalf("daily operating profit = %v, want 470", res.Daily.OperatingProfit)
	}
	if !almostEqual(res.Monthly.Revenue, 20000) {
		t.Fatalf("monthly revenue = %v, want 20000", res.Monthly.Revenue)
	}

	if !almostEqual(res.KPIs.FoodCostPct, 40) {
		t.Fatalf("food cost pct = %v, want 40", res.KPIs.FoodCostPct)
	}
	if !almostEqual(res.KPIs.LaborCostPct, 10) {
		t.Fatalf("labor pct = %v, want 10", res.KPIs.LaborCostPct)
	}
	if !almostEqual(res.KPIs.PrimeCostPct, 50) {
		t.Fatalf("prime cost pct = %v, want 50", res.KPIs.PrimeCostPct)
	}
	wantBE := 130.0 / 6.0
	if !almostEqual(res.KPIs.BreakEvenUnits, wantBE) {
		t.Fatalf("break-even units = %v, want %v", res.KPIs.BreakEvenUnits, wantBE)
	}
	if !almostEqual(res.KPIs.SafetyMarginPct, (100-wantBE)/100*100) {
		t.Fatalf("safety margin = %v", res.KPIs.SafetyMarginPct)
	}

	if len(res.Contributions) != 1 {
		t.Fatalf("contributions = %d, want 1", len(res.Contributions))
	}
	cm := res.Contributions[0]
	if !almostEqual(cm.Margin, 6) || !almostEqual(cm.MarginRatio, 0.6) {
		t.Fatalf("contribution margin = %+v", cm)
	}
	if len(res.Projections) != 2 {
		t.Fatalf("projections = %d, want 2", len(res.Projections))
	}
}

func TestComputeScenarioMultipliers(t *testing.T) {
	e := fixtureEngine(t)
	res, err := e.Compute("surge")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !almostEqual(res.Daily.Revenue, 1200) {
		t.Fatalf("surge revenue = %v, want 1200", res.Daily.Revenue)
	}
	if !almostEqual(res.Daily.CostOfGoods, 480) {
		t.Fatalf("surge cogs = %v, want 480", res.Daily.CostOfGoods)
	}
	// Non-variable utility stays flat under the sales multiplier.
	if !almostEqual(res.Daily.Utilities, 10) {
		t.Fatalf("surge utilities = %v, want 10", res.Daily.Utilities)
	}
}

func TestComputeVariableUtilityScales(t *testing.T) {
	e := fixtureEngine(t)
	e.dataset.Utilities[0].Variable = true
	res, err := e.Compute("surge")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !almostEqual(res.Daily.Utilities, 12) {
		t.Fatalf("variable utilities = %v, want 12", res.Daily.Utilities)
	}
}

func TestComputeUnknownScenario(t *testing.T) {
	e := fixtureEngine(t)
	if _, err := e.Compute("missing"); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

func TestComputeEmptyDataset(t *testing.T) {
	e := New(nil)
	e.scenarios = map[string]finance.Scenario{"base": {ID: "base", Name: "Base"}}
	if _, err := e.Compute("base"); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

func TestComputeDeterministic(t *testing.T) {
	e := fixtureEngine(t)
	a, err := e.Compute("base")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	b, err := e.Compute("base")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	a.ComputedAt = b.ComputedAt
	if !almostEqual(a.Daily.OperatingProfit, b.Daily.OperatingProfit) ||
		a.KPIs != b.KPIs {
		t.Fatalf("compute not deterministic: %+v vs %+v", a.KPIs, b.KPIs)
	}
}
