package engine

import (
	"fmt"
	"sort"

	"bistrocore/pkg/finance"
)

// Compute derives the full computation result for the given scenario id.
// It is a pure function of the engine's current dataset and scenario map.
func (e *Engine) Compute(scenarioID string) (finance.ComputationResult, error) {
	e.mu.Lock()
	ds := finance.CloneDataset(e.dataset)
	scs := finance.CloneScenarios(e.scenarios)
	now := e.nowFn()
	e.mu.Unlock()

	active, ok := scs[scenarioID]
	if !ok {
		return finance.ComputationResult{}, fmt.Errorf("scenario %q not defined", scenarioID)
	}
	if len(ds.Menus) == 0 {
		return finance.ComputationResult{}, fmt.Errorf("dataset has no menu items")
	}
	if ds.Sales.DaysOpenPerMonth <= 0 {
		return finance.ComputationResult{}, fmt.Errorf("days open per month must be positive")
	}

	daily, kpis, contributions := computeScenario(ds, active)
	monthly := scaleToMonthly(daily, ds)

	projections := make([]finance.ScenarioProjection, 0, len(scs))
	for _, sc := range scs {
		d, k, _ := computeScenario(ds, sc)
		m := scaleToMonthly(d, ds)
		projections = append(projections, finance.ScenarioProjection{
			ScenarioID:      sc.ID,
			Name:            sc.Name,
			MonthlyRevenue:  m.Revenue,
			MonthlyProfit:   m.OperatingProfit,
			PrimeCostPct:    k.PrimeCostPct,
			BreakEvenUnits:  k.BreakEvenUnits,
			SafetyMarginPct: k.SafetyMarginPct,
		})
	}
	sort.Slice(projections, func(i, j int) bool { return projections[i].ScenarioID < projections[j].ScenarioID })

	return finance.ComputationResult{
		ScenarioID:     scenarioID,
		DatasetVersion: ds.Metadata.Version,
		Daily:          daily,
		Monthly:        monthly,
		KPIs:           kpis,
		Contributions:  contributions,
		Projections:    projections,
		ComputedAt:     now,
	}, nil
}

// computeScenario derives the daily P&L, KPI set, and per-item
// contribution margins for one scenario parameterization.
func computeScenario(ds finance.Dataset, sc finance.Scenario) (finance.ProfitAndLoss, finance.KPISet, []finance.MenuContribution) {
	sc = sc.Normalized()
	covers := ds.Sales.CoversPerDay * sc.SalesMultiplier
	days := float64(ds.Sales.DaysOpenPerMonth)

	var (
		revenue, cogs float64
		totalUnits    float64
		weightedCM    float64
		contributions = make([]finance.MenuContribution, 0, len(ds.Menus))
	)
	for _, m := range ds.Menus {
		price := m.Price * sc.PriceMultiplier
		cost := m.IngredientCost() * sc.CostMultiplier
		units := covers * m.MixShare
		revenue += units * price
		cogs += units * cost
		totalUnits += units
		weightedCM += units * (price - cost)
		ratio := 0.0
		if price > 0 {
			ratio = (price - cost) / price
		}
		contributions = append(contributions, finance.MenuContribution{
			MenuID:         m.ID,
			Name:           m.Name,
			Price:          price,
			IngredientCost: cost,
			Margin:         price - cost,
			MarginRatio:    ratio,
			UnitsPerDay:    units,
		})
	}

	var labor float64
	for _, r := range ds.Labor {
		labor += r.DailyCost()
	}
	var utilities float64
	for _, u := range ds.Utilities {
		daily := u.MonthlyCost / days
		if u.Variable {
			daily *= sc.SalesMultiplier
		}
		utilities += daily
	}
	var fixed float64
	for _, f := range ds.FixedCosts {
		fixed += f.MonthlyCost / days
	}

	pnl := finance.ProfitAndLoss{
		Revenue:     revenue,
		CostOfGoods: cogs,
		GrossProfit: revenue - cogs,
		Labor:       labor,
		Utilities:   utilities,
		FixedCosts:  fixed,
	}
	pnl.OperatingProfit = pnl.GrossProfit - labor - utilities - fixed

	avgCM := 0.0
	if totalUnits > 0 {
		avgCM = weightedCM / totalUnits
	}
	// Break-even covers the daily burden that does not vary with volume.
	burden := labor + utilities + fixed
	beUnits := 0.0
	if avgCM > 0 {
		beUnits = burden / avgCM
	}
	avgPrice := 0.0
	if totalUnits > 0 {
		avgPrice = revenue / totalUnits
	}
	safety := 0.0
	if totalUnits > 0 {
		safety = (totalUnits - beUnits) / totalUnits * 100
	}

	kpis := finance.KPISet{
		AvgContribution:  avgCM,
		BreakEvenUnits:   beUnits,
		BreakEvenRevenue: beUnits * avgPrice,
		SafetyMarginPct:  safety,
		TotalUnitsPerDay: totalUnits,
	}
	if revenue > 0 {
		kpis.FoodCostPct = cogs / revenue * 100
		kpis.LaborCostPct = labor / revenue * 100
		kpis.PrimeCostPct = (cogs + labor) / revenue * 100
		kpis.OperatingMarginPct = pnl.OperatingProfit / revenue * 100
	}
	return pnl, kpis, contributions
}

// scaleToMonthly expands a daily P&L to the monthly horizon.
func scaleToMonthly(daily finance.ProfitAndLoss, ds finance.Dataset) finance.ProfitAndLoss {
	days := float64(ds.Sales.DaysOpenPerMonth)
	monthly := finance.ProfitAndLoss{
		Revenue:     daily.Revenue * days,
		CostOfGoods: daily.CostOfGoods * days,
		Labor:       daily.Labor * days,
		Utilities:   daily.Utilities * days,
		FixedCosts:  daily.FixedCosts * days,
	}
	monthly.GrossProfit = monthly.Revenue - monthly.CostOfGoods
	monthly.OperatingProfit = monthly.GrossProfit - monthly.Labor - monthly.Utilities - monthly.FixedCosts
	return monthly
}
