// Package engine derives P&L statements, profitability KPIs, and
// scenario projections from a restaurant's financial dataset. The engine
// owns its internal dataset and scenario map; every mutation applies
// atomically and returns the resulting dataset so callers never observe
// a half-applied model.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bistrocore/internal/kv"
	"bistrocore/pkg/finance"
)

// exportVersion is the envelope version accepted by ImportJSON.
const exportVersion = 1

// envelope frames the dataset and scenarios for import/export.
type envelope struct {
	Version   int                         `json:"version"`
	Dataset   finance.Dataset             `json:"dataset"`
	Scenarios map[string]finance.Scenario `json:"scenarios"`
}

// Engine holds the mutable financial model and computes derived results.
type Engine struct {
	mu        sync.Mutex
	dataset   finance.Dataset
	scenarios map[string]finance.Scenario
	store     kv.Store
	nowFn     func() time.Time
}

// New constructs an engine persisting snapshots through store. A nil
// store disables persistence.
func New(store kv.Store) *Engine {
	return &Engine{
		scenarios: make(map[string]finance.Scenario),
		store:     store,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the engine clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.nowFn = now
	return e
}

// Init loads the persisted snapshot when one exists, falling back to the
// default dataset and scenario set.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.dataset = DefaultDataset()
	e.scenarios = DefaultScenarios()

	if e.store == nil {
		return nil
	}
	if data, ok, err := e.store.Get(ctx, kv.KeyDataset); err != nil {
		return fmt.Errorf("load dataset snapshot: %w", err)
	} else if ok {
		var ds finance.Dataset
		if err := json.Unmarshal(data, &ds); err != nil {
			return fmt.Errorf("decode dataset snapshot: %w", err)
		}
		e.dataset = ds
	}
	if data, ok, err := e.store.Get(ctx, kv.KeyScenarios); err != nil {
		return fmt.Errorf("load scenario snapshot: %w", err)
	} else if ok {
		var sc map[string]finance.Scenario
		if err := json.Unmarshal(data, &sc); err != nil {
			return fmt.Errorf("decode scenario snapshot: %w", err)
		}
		if len(sc) > 0 {
			e.scenarios = sc
		}
	}
	return nil
}

// Data returns a deep copy of the current dataset.
func (e *Engine) Data() finance.Dataset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return finance.CloneDataset(e.dataset)
}

// Scenarios returns a detached copy of the scenario map.
func (e *Engine) Scenarios() map[string]finance.Scenario {
	e.mu.Lock()
	defer e.mu.Unlock()
	return finance.CloneScenarios(e.scenarios)
}

// UpdateMenu mutates the menu item with the given id through mutator and
// returns the resulting dataset. The internal dataset is untouched when
// the mutator fails or the id is unknown.
func (e *Engine) UpdateMenu(id string, mutator func(*finance.MenuItem) error) (finance.Dataset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := finance.CloneDataset(e.dataset)
	idx := -1
	for i := range next.Menus {
		if next.Menus[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return finance.Dataset{}, fmt.Errorf("menu item %q not found", id)
	}
	if err := mutator(&next.Menus[idx]); err != nil {
		return finance.Dataset{}, err
	}
	next.Menus[idx].ID = id
	return e.commit(next), nil
}

// UpdateSalesModel mutates the sales model through mutator and returns
// the resulting dataset.
func (e *Engine) UpdateSalesModel(mutator func(*finance.SalesModel) error) (finance.Dataset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := finance.CloneDataset(e.dataset)
	if err := mutator(&next.Sales); err != nil {
		return finance.Dataset{}, err
	}
	return e.commit(next), nil
}

// ReplaceUtilities swaps the utility cost list and returns the resulting
// dataset.
func (e *Engine) ReplaceUtilities(items []finance.UtilityCost) (finance.Dataset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := finance.CloneDataset(e.dataset)
	next.Utilities = append([]finance.UtilityCost(nil), items...)
	return e.commit(next), nil
}

// ReplaceLabor swaps the labor role list and returns the resulting
// dataset.
func (e *Engine) ReplaceLabor(items []finance.LaborRole) (finance.Dataset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := finance.CloneDataset(e.dataset)
	next.Labor = append([]finance.LaborRole(nil), items...)
	return e.commit(next), nil
}

// ReplaceFixedCosts swaps the fixed cost list and returns the resulting
// dataset.
func (e *Engine) ReplaceFixedCosts(items []finance.FixedCost) (finance.Dataset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := finance.CloneDataset(e.dataset)
	next.FixedCosts = append([]finance.FixedCost(nil), items...)
	return e.commit(next), nil
}

// commit installs next as the current dataset, bumping version metadata.
// Caller holds e.mu.
func (e *Engine) commit(next finance.Dataset) finance.Dataset {
	next.Metadata.Version = e.dataset.Metadata.Version + 1
	next.Metadata.UpdatedAt = e.nowFn()
	e.dataset = next
	return finance.CloneDataset(next)
}

// ImportJSON replaces the dataset and scenarios from an export envelope.
// The internal model is untouched when decoding or shape checks fail.
func (e *Engine) ImportJSON(text string) error {
	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return fmt.Errorf("decode import payload: %w", err)
	}
	if env.Version != exportVersion {
		return fmt.Errorf("unsupported export version %d", env.Version)
	}
	if len(env.Scenarios) == 0 {
		return fmt.Errorf("import payload has no scenarios")
	}
	for id, sc := range env.Scenarios {
		if sc.ID == "" || sc.Name == "" {
			return fmt.Errorf("scenario %q missing id or name", id)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	env.Dataset.Metadata.UpdatedAt = e.nowFn()
	e.dataset = env.Dataset
	e.scenarios = env.Scenarios
	return nil
}

// ExportJSON serializes the dataset and scenarios to the canonical
// envelope.
func (e *Engine) ExportJSON() (string, error) {
	e.mu.Lock()
	env := envelope{
		Version:   exportVersion,
		Dataset:   finance.CloneDataset(e.dataset),
		Scenarios: finance.CloneScenarios(e.scenarios),
	}
	e.mu.Unlock()
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export payload: %w", err)
	}
	return string(data), nil
}

// Save persists the current dataset and scenarios through the snapshot
// store. A nil store makes Save a no-op.
func (e *Engine) Save(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	e.mu.Lock()
	ds := finance.CloneDataset(e.dataset)
	sc := finance.CloneScenarios(e.scenarios)
	e.mu.Unlock()

	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := e.store.Set(ctx, kv.KeyDataset, data); err != nil {
		return fmt.Errorf("persist dataset: %w", err)
	}
	data, err = json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode scenarios: %w", err)
	}
	if err := e.store.Set(ctx, kv.KeyScenarios, data); err != nil {
		return fmt.Errorf("persist scenarios: %w", err)
	}
	return nil
}
