package finance

// Clone helpers produce value copies whose slices and maps are detached
// from the source, so snapshots handed to callers can never alias
// container-owned state.

// CloneMenuItem returns a deep copy of a menu item.
func CloneMenuItem(m MenuItem) MenuItem {
	cp := m
	cp.Ingredients = append([]IngredientLine(nil), m.Ingredients...)
	return cp
}

// CloneDataset returns a deep copy of a dataset.
func CloneDataset(d Dataset) Dataset {
	cp := d
	cp.Menus = make([]MenuItem, 0, len(d.Menus))
	for _, m := range d.Menus {
		cp.Menus = append(cp.Menus, CloneMenuItem(m))
	}
	cp.Utilities = append([]UtilityCost(nil), d.Utilities...)
	cp.Labor = append([]LaborRole(nil), d.Labor...)
	cp.FixedCosts = append([]FixedCost(nil), d.FixedCosts...)
	return cp
}

// CloneScenarios returns a detached copy of a scenario map.
func CloneScenarios(in map[string]Scenario) map[string]Scenario {
	out := make(map[string]Scenario, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// CloneValidationResult returns a detached copy of a validation result.
func CloneValidationResult(r ValidationResult) ValidationResult {
	cp := r
	cp.Errors = append([]string(nil), r.Errors...)
	cp.Warnings = append([]string(nil), r.Warnings...)
	return cp
}

// CloneComputationResult returns a deep copy of a computation result.
func CloneComputationResult(r ComputationResult) ComputationResult {
	cp := r
	cp.Contributions = append([]MenuContribution(nil), r.Contributions...)
	cp.Projections = append([]ScenarioProjection(nil), r.Projections...)
	return cp
}
