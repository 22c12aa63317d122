// Package validation holds the pure predicate rules that gate dataset
// mutations. Each rule checks a single fragment and reports a structured
// pass/fail plus error and warning message lists; none keeps state.
package validation

import (
	"fmt"
	"math"
	"strings"

	"bistrocore/pkg/finance"
)

// MenuItem validates one menu item and its BOM lines.
func MenuItem(m finance.MenuItem) finance.ValidationResult {
	res := finance.ValidationResult{Category: finance.CategoryMenu, Valid: true}
	if strings.TrimSpace(m.ID) == "" {
		fail(&res, "menu item id is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		fail(&res, "menu item name is required")
	}
	if m.Price <= 0 {
		fail(&res, fmt.Sprintf("price must be positive, got %.2f", m.Price))
	}
	if m.MixShare < 0 || m.MixShare > 1 {
		fail(&res, fmt.Sprintf("mix share must be within [0,1], got %.3f", m.MixShare))
	}
	for i, line := range m.Ingredients {
		if strings.TrimSpace(line.Name) == "" {
			fail(&res, fmt.Sprintf("ingredient %d: name is required", i+1))
		}
		if line.Quantity <= 0 {
			fail(&res, fmt.Sprintf("ingredient %d: quantity must be positive", i+1))
		}
		if line.UnitCost < 0 {
			fail(&res, fmt.Sprintf("ingredient %d: unit cost cannot be negative", i+1))
		}
	}
	if res.Valid && m.IngredientCost() >= m.Price {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: ingredient cost %.2f meets or exceeds price %.2f", m.Name, m.IngredientCost(), m.Price))
	}
	return res
}

// SalesModel validates the demand forecast.
func SalesModel(s finance.SalesModel) finance.ValidationResult {
	res := finance.ValidationResult{Category: finance.CategorySales, Valid: true}
	if s.CoversPerDay <= 0 {
		fail(&res, "covers per day must be positive")
	}
	if s.AverageTicket <= 0 {
		fail(&res, "average ticket must be positive")
	}
	if s.DaysOpenPerMonth < 1 || s.DaysOpenPerMonth > 31 {
		fail(&res, fmt.Sprintf("days open per month must be within [1,31], got %d", s.DaysOpenPerMonth))
	}
	return res
}

// Utility validates one utility cost line.
func Utility(u finance.UtilityCost) finance.ValidationResult {
	res := finance.ValidationResult{Category: finance.CategoryUtilities, Valid: true}
	if strings.TrimSpace(u.Name) == "" {
		fail(&res, "utility name is required")
	}
	if u.MonthlyCost < 0 {
		fail(&res, fmt.Sprintf("%s: monthly cost cannot be negative", u.Name))
	}
	return res
}

// LaborRole validates one labor role entry.
func LaborRole(r finance.LaborRole) finance.ValidationResult {
	res := finance.ValidationResult{Category: finance.CategoryLabor, Valid: true}
	if strings.TrimSpace(r.Role) == "" {
		fail(&res, "labor role name is required")
	}
	if r.HourlyWage <= 0 {
		fail(&res, fmt.Sprintf("%s: hourly wage must be positive", r.Role))
	}
	if r.HoursPerDay <= 0 || r.HoursPerDay > 24 {
		fail(&res, fmt.Sprintf("%s: hours per day must be within (0,24]", r.Role))
	}
	if r.Headcount < 1 {
		fail(&res, fmt.Sprintf("%s: headcount must be at least 1", r.Role))
	}
	return res
}

// FixedCost validates one fixed cost line.
func FixedCost(f finance.FixedCost) finance.ValidationResult {
	res := finance.ValidationResult{Category: finance.CategoryFixedCosts, Valid: true}
	if strings.TrimSpace(f.Name) == "" {
		fail(&res, "fixed cost name is required")
	}
	if f.MonthlyCost < 0 {
		fail(&res, fmt.Sprintf("%s: monthly cost cannot be negative", f.Name))
	}
	return res
}

// Dataset validates the whole financial model, aggregating the
// per-category rules and cross-cutting checks into a single outcome.
func Dataset(d finance.Dataset) finance.ValidationResult {
	res := finance.ValidationResult{Category: finance.CategoryDataset, Valid: true}
	if len(d.Menus) == 0 {
		fail(&res, "dataset must contain at least one menu item")
	}
	seen := make(map[string]bool, len(d.Menus))
	var mixTotal float64
	for _, m := range d.Menus {
		if seen[m.ID] {
			fail(&res, fmt.Sprintf("duplicate menu id %q", m.ID))
		}
		seen[m.ID] = true
		mixTotal += m.MixShare
		res.Merge(MenuItem(m))
	}
	res.Merge(SalesModel(d.Sales))
	for _, u := range d.Utilities {
		res.Merge(Utility(u))
	}
	for _, r := range d.Labor {
		res.Merge(LaborRole(r))
	}
	for _, f := range d.FixedCosts {
		res.Merge(FixedCost(f))
	}
	if len(d.Menus) > 0 && math.Abs(mixTotal-1) > 0.01 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("menu mix shares sum to %.3f, expected 1.000", mixTotal))
	}
	return res
}

func fail(r *finance.ValidationResult, msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}
