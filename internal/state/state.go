// Package state owns the single authoritative in-memory snapshot of the
// financial model and orchestrates the mutate → validate → compute →
// persist → notify pipeline around it.
package state

import (
	"time"

	"bistrocore/pkg/finance"
)

// UpdateKind identifies one of the closed set of snapshot transitions.
type UpdateKind string

// Supported transition kinds.
const (
	// UpdateData replaces the dataset and scenario map.
	UpdateData UpdateKind = "data"
	// UpdateScenario replaces the active scenario id.
	UpdateScenario UpdateKind = "scenario"
	// UpdateComputation replaces the last computation result.
	UpdateComputation UpdateKind = "computation"
	// UpdateValidation replaces the last validation results.
	UpdateValidation UpdateKind = "validation"
	// UpdateError records an error message and halts loading.
	UpdateError UpdateKind = "error"
	// UpdateLoading toggles the in-flight flag; entering loading clears
	// any prior error.
	UpdateLoading UpdateKind = "loading"
)

// AppState is the immutable snapshot fanned out to subscribers. Loading
// true implies LastError empty; CurrentScenarioID is always a key of
// Scenarios.
type AppState struct {
	Dataset           finance.Dataset
	Scenarios         map[string]finance.Scenario
	CurrentScenarioID string
	LastComputation   *finance.ComputationResult
	LastValidations   []finance.ValidationResult
	Loading           bool
	LastError         string
	UpdatedAt         time.Time
}

// update is the internal transition payload consumed by applyUpdate.
type update struct {
	kind        UpdateKind
	dataset     finance.Dataset
	scenarios   map[string]finance.Scenario
	scenarioID  string
	computation *finance.ComputationResult
	validations []finance.ValidationResult
	errMsg      string
	loading     bool
}

func cloneState(s AppState) AppState {
	cp := s
	cp.Dataset = finance.CloneDataset(s.Dataset)
	cp.Scenarios = finance.CloneScenarios(s.Scenarios)
	if s.LastComputation != nil {
		c := finance.CloneComputationResult(*s.LastComputation)
		cp.LastComputation = &c
	}
	if s.LastValidations != nil {
		cp.LastValidations = make([]finance.ValidationResult, 0, len(s.LastValidations))
		for _, v := range s.LastValidations {
			cp.LastValidations = append(cp.LastValidations, finance.CloneValidationResult(v))
		}
	}
	return cp
}
