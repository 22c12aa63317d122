package finance

import "time"

// ValidationResult reports the outcome of validating one data fragment.
// Errors block the mutation that produced them; warnings do not.
type ValidationResult struct {
	Category Category `json:"category"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Merge appends messages from another result, demoting Valid when the
// other result is invalid.
func (r *ValidationResult) Merge(other ValidationResult) {
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// MenuContribution is the per-item profitability breakdown.
type MenuContribution struct {
	MenuID         string  `json:"menu_id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	IngredientCost float64 `json:"ingredient_cost"`
	Margin         float64 `json:"margin"`
	MarginRatio    float64 `json:"margin_ratio"`
	UnitsPerDay    float64 `json:"units_per_day"`
}

// ProfitAndLoss aggregates revenue and cost lines over one period.
type ProfitAndLoss struct {
	Revenue         float64 `json:"revenue"`
	CostOfGoods     float64 `json:"cost_of_goods"`
	GrossProfit     float64 `json:"gross_profit"`
	Labor           float64 `json:"labor"`
	Utilities       float64 `json:"utilities"`
	FixedCosts      float64 `json:"fixed_costs"`
	OperatingProfit float64 `json:"operating_profit"`
}

// KPISet holds the derived profitability indicators for one scenario.
type KPISet struct {
	FoodCostPct        float64 `json:"food_cost_pct"`
	LaborCostPct       float64 `json:"labor_cost_pct"`
	PrimeCostPct       float64 `json:"prime_cost_pct"`
	BreakEvenUnits     float64 `json:"break_even_units_per_day"`
	BreakEvenRevenue   float64 `json:"break_even_revenue_per_day"`
	SafetyMarginPct    float64 `json:"safety_margin_pct"`
	AvgContribution    float64 `json:"avg_contribution_margin"`
	TotalUnitsPerDay   float64 `json:"total_units_per_day"`
	OperatingMarginPct float64 `json:"operating_margin_pct"`
}

// ScenarioProjection summarizes one scenario's monthly outlook.
type ScenarioProjection struct {
	ScenarioID      string  `json:"scenario_id"`
	Name            string  `json:"name"`
	MonthlyRevenue  float64 `json:"monthly_revenue"`
	MonthlyProfit   float64 `json:"monthly_profit"`
	PrimeCostPct    float64 `json:"prime_cost_pct"`
	BreakEvenUnits  float64 `json:"break_even_units_per_day"`
	SafetyMarginPct float64 `json:"safety_margin_pct"`
}

// ComputationResult is the full output of one engine computation pass,
// attributed to the dataset and scenario current at computation time.
type ComputationResult struct {
	ScenarioID     string               `json:"scenario_id"`
	DatasetVersion int                  `json:"dataset_version"`
	Daily          ProfitAndLoss        `json:"daily"`
	Monthly        ProfitAndLoss        `json:"monthly"`
	KPIs           KPISet               `json:"kpis"`
	Contributions  []MenuContribution   `json:"contributions"`
	Projections    []ScenarioProjection `json:"projections"`
	ComputedAt     time.Time            `json:"computed_at"`
}

// ImportResult reports the outcome of an import request to the caller.
type ImportResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
