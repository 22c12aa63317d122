package state

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"bistrocore/internal/blob"
	"bistrocore/internal/engine"
	"bistrocore/internal/kv"
	"bistrocore/internal/validation"
	"bistrocore/pkg/finance"
)

// DefaultScenarioID is the scenario selected at construction.
const DefaultScenarioID = "base"

// Manager owns the application snapshot and runs every mutation through
// the validate → mutate → compute → validate → notify pipeline. All
// public methods are exception-safe boundaries: failures become an
// error transition and the method returns normally, except ExportData
// whose error is returned to the caller by design.
//
// The manager assumes a single logical thread of control; a mutex
// guards against accidental cross-goroutine use, and re-entrant
// mutations issued from subscriber callbacks are legal: their
// notifications are queued and drained in order after the current
// fan-out completes.
type Manager struct {
	mu     sync.Mutex
	engine *engine.Engine
	store  kv.Store

	state          AppState
	datasetVersion uint64
	cache          *lru.Cache[uint64, finance.ValidationResult]

	subscribers map[int]func(AppState)
	nextSubID   int
	notifyQueue []AppState
	draining    bool

	opts managerOptions
}

// New constructs a manager backed by store (nil disables persistence),
// creates a fresh computation engine, and runs the initialization
// sequence: engine init, default or persisted dataset load, first
// compute-and-validate pass. Initialization failures surface as an
// error state; the manager stays usable.
func New(store kv.Store, options ...Option) *Manager {
	opts := defaultManagerOptions()
	for _, apply := range options {
		apply(&opts)
	}
	cache, _ := lru.New[uint64, finance.ValidationResult](opts.cacheSize)
	m := &Manager{
		engine: engine.New(store),
		store:  store,
		state: AppState{
			Scenarios:         map[string]finance.Scenario{},
			CurrentScenarioID: DefaultScenarioID,
		},
		cache:       cache,
		subscribers: make(map[int]func(AppState)),
		opts:        opts,
	}
	m.initialize(context.Background())
	return m
}

func (m *Manager) initialize(ctx context.Context) {
	if err := m.engine.Init(ctx); err != nil {
		m.opts.logger.Error("initialization failed", "error", err)
		m.applyUpdate(update{kind: UpdateError, errMsg: "Initialization failed: " + err.Error()})
		return
	}
	m.applyUpdate(update{
		kind:      UpdateData,
		dataset:   m.engine.Data(),
		scenarios: m.engine.Scenarios(),
	})
	m.computeAndValidate(ctx)
}

// Subscribe registers cb to receive every state transition. The
// returned function removes exactly this registration; calling it more
// than once is a no-op. A panicking subscriber is logged and isolated
// from remaining subscribers.
func (m *Manager) Subscribe(cb func(AppState)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = cb
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// applyUpdate applies one transition to the snapshot, stamps the
// timestamp, and queues a fan-out notification. DATA transitions also
// trigger a best-effort persist (failure logged, never surfaced).
func (m *Manager) applyUpdate(u update) {
	m.mu.Lock()
	switch u.kind {
	case UpdateData:
		m.state.Dataset = u.dataset
		m.state.Scenarios = u.scenarios
		m.datasetVersion++
	case UpdateScenario:
		m.state.CurrentScenarioID = u.scenarioID
	case UpdateComputation:
		m.state.LastComputation = u.computation
	case UpdateValidation:
		m.state.LastValidations = u.validations
	case UpdateError:
		m.state.LastError = u.errMsg
		m.state.Loading = false
	case UpdateLoading:
		m.state.Loading = u.loading
		if u.loading {
			m.state.LastError = ""
		}
	default:
		m.mu.Unlock()
		m.opts.logger.Error("unknown update kind", "kind", string(u.kind))
		m.applyUpdate(update{kind: UpdateError, errMsg: fmt.Sprintf("Unknown update kind %q", u.kind)})
		return
	}
	m.state.UpdatedAt = m.opts.clock()
	m.notifyQueue = append(m.notifyQueue, cloneState(m.state))
	alreadyDraining := m.draining
	m.draining = true
	m.mu.Unlock()

	if u.kind == UpdateData {
		if err := m.engine.Save(context.Background()); err != nil {
			m.opts.logger.Warn("snapshot persist failed", "error", err)
		}
	}
	if alreadyDraining {
		return
	}
	m.drainNotifications()
}

// drainNotifications delivers queued snapshots in order. Transitions
// applied re-entrantly by subscriber callbacks append to the queue and
// are delivered by this same drain, preserving strict ordering.
func (m *Manager) drainNotifications() {
	for {
		m.mu.Lock()
		if len(m.notifyQueue) == 0 {
			m.draining = false
			m.mu.Unlock()
			return
		}
		snap := m.notifyQueue[0]
		m.notifyQueue = m.notifyQueue[1:]
		ids := make([]int, 0, len(m.subscribers))
		for id := range m.subscribers {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		cbs := make([]func(AppState), 0, len(ids))
		for _, id := range ids {
			cbs = append(cbs, m.subscribers[id])
		}
		m.mu.Unlock()

		for _, cb := range cbs {
			m.notifyOne(cb, snap)
		}
	}
}

func (m *Manager) notifyOne(cb func(AppState), snap AppState) {
	defer func() {
		if r := recover(); r != nil {
			m.opts.logger.Error("subscriber panicked", "panic", r)
		}
	}()
	cb(cloneState(snap))
}

// runMutation executes the shared mutation pipeline: loading on,
// payload validation plus engine mutation through fn, DATA emission
// with the previous scenario map, then compute-and-validate. Any
// failure becomes an error transition prefixed with failMsg.
func (m *Manager) runMutation(ctx context.Context, op, failMsg string, fn func() (finance.Dataset, error)) {
	ctx, span := m.opts.tracer.Start(ctx, op)
	start := time.Now()
	var err error
	defer func() {
		span.End(err)
		m.opts.metrics.Observe(ctx, op, err == nil, time.Since(start))
	}()

	m.applyUpdate(update{kind: UpdateLoading, loading: true})
	var next finance.Dataset
	next, err = fn()
	if err != nil {
		m.opts.logger.Warn("mutation rejected", "operation", op, "error", err)
		m.applyUpdate(update{kind: UpdateError, errMsg: failMsg + ": " + err.Error()})
		return
	}
	m.applyUpdate(update{
		kind:      UpdateData,
		dataset:   next,
		scenarios: m.Scenarios(),
	})
	err = m.computeAndValidate(ctx)
}

// UpdateMenu applies mutator to the menu item with the given id. The
// resulting item must pass menu validation or the dataset is left
// untouched and the joined rule messages surface as the error state.
func (m *Manager) UpdateMenu(ctx context.Context, id string, mutator func(*finance.MenuItem) error) {
	m.runMutation(ctx, "update_menu", "Failed to update menu", func() (finance.Dataset, error) {
		item, ok := m.engine.Data().FindMenu(id)
		if !ok {
			return finance.Dataset{}, fmt.Errorf("menu item %q not found", id)
		}
		if err := mutator(&item); err != nil {
			return finance.Dataset{}, err
		}
		item.ID = id
		if res := validation.MenuItem(item); !res.Valid {
			return finance.Dataset{}, fmt.Errorf("%s", strings.Join(res.Errors, ", "))
		}
		return m.engine.UpdateMenu(id, mutator)
	})
}

// UpdateSalesModel applies mutator to the sales forecast.
func (m *Manager) UpdateSalesModel(ctx context.Context, mutator func(*finance.SalesModel) error) {
	m.runMutation(ctx, "update_sales_model", "Failed to update sales model", func() (finance.Dataset, error) {
		sales := m.engine.Data().Sales
		if err := mutator(&sales); err != nil {
			return finance.Dataset{}, err
		}
		if res := validation.SalesModel(sales); !res.Valid {
			return finance.Dataset{}, fmt.Errorf("%s", strings.Join(res.Errors, ", "))
		}
		return m.engine.UpdateSalesModel(mutator)
	})
}

// UpdateUtilities replaces the utility cost list. Every element is
// validated; failing elements' messages are aggregated into one error.
func (m *Manager) UpdateUtilities(ctx context.Context, items []finance.UtilityCost) {
	m.runMutation(ctx, "update_utilities", "Failed to update utilities", func() (finance.Dataset, error) {
		var msgs []string
		for _, u := range items {
			if res := validation.Utility(u); !res.Valid {
				msgs = append(msgs, res.Errors...)
			}
		}
		if len(msgs) > 0 {
			return finance.Dataset{}, fmt.Errorf("%s", strings.Join(msgs, ", "))
		}
		return m.engine.ReplaceUtilities(items)
	})
}

// UpdateLabor replaces the labor role list with element-wise validation.
func (m *Manager) UpdateLabor(ctx context.Context, items []finance.LaborRole) {
	m.runMutation(ctx, "update_labor", "Failed to update labor", func() (finance.Dataset, error) {
		var msgs []string
		for _, r := range items {
			if res := validation.LaborRole(r); !res.Valid {
				msgs = append(msgs, res.Errors...)
			}
		}
		if len(msgs) > 0 {
			return finance.Dataset{}, fmt.Errorf("%s", strings.Join(msgs, ", "))
		}
		return m.engine.ReplaceLabor(items)
	})
}

// UpdateFixedCosts replaces the fixed cost list with element-wise
// validation.
func (m *Manager) UpdateFixedCosts(ctx context.Context, items []finance.FixedCost) {
	m.runMutation(ctx, "update_fixed_costs", "Failed to update fixed costs", func() (finance.Dataset, error) {
		var msgs []string
		for _, f := range items {
			if res := validation.FixedCost(f); !res.Valid {
				msgs = append(msgs, res.Errors...)
			}
		}
		if len(msgs) > 0 {
			return finance.Dataset{}, fmt.Errorf("%s", strings.Join(msgs, ", "))
		}
		return m.engine.ReplaceFixedCosts(items)
	})
}

// computeAndValidate recomputes derived results for the active scenario,
// refreshes the cached whole-dataset validation outcome, and clears the
// loading flag. A computation failure aborts with an error transition;
// a validator failure is logged and skipped, never fatal.
func (m *Manager) computeAndValidate(_ context.Context) error {
	res, err := m.engine.Compute(m.CurrentScenario())
	if err != nil {
		m.applyUpdate(update{kind: UpdateError, errMsg: "Computation failed: " + err.Error()})
		return err
	}
	m.applyUpdate(update{kind: UpdateComputation, computation: &res})

	if vres, ok := m.validateDataset(); ok {
		m.applyUpdate(update{kind: UpdateValidation, validations: []finance.ValidationResult{vres}})
	}
	m.applyUpdate(update{kind: UpdateLoading, loading: false})
	return nil
}

// validateDataset consults the version-keyed cache before invoking the
// whole-dataset validator. The reported ok is false only when the
// validator itself failed.
func (m *Manager) validateDataset() (res finance.ValidationResult, ok bool) {
	m.mu.Lock()
	version := m.datasetVersion
	dataset := finance.CloneDataset(m.state.Dataset)
	m.mu.Unlock()

	if cached, hit := m.cache.Get(version); hit {
		return cached, true
	}
	defer func() {
		if r := recover(); r != nil {
			m.opts.logger.Error("dataset validation failed", "panic", r)
			ok = false
		}
	}()
	res = m.opts.validator(dataset)
	m.cache.Add(version, res)
	return res, true
}

// Recompute re-runs the compute-and-validate pipeline against the
// current dataset and scenario, e.g. after switching scenarios.
func (m *Manager) Recompute(ctx context.Context) {
	ctx, span := m.opts.tracer.Start(ctx, "recompute")
	start := time.Now()
	var err error
	defer func() {
		span.End(err)
		m.opts.metrics.Observe(ctx, "recompute", err == nil, time.Since(start))
	}()

	m.applyUpdate(update{kind: UpdateLoading, loading: true})
	err = m.computeAndValidate(ctx)
}

// SetCurrentScenario switches the active scenario when id exists;
// otherwise records an error and leaves the selection unchanged.
func (m *Manager) SetCurrentScenario(id string) {
	m.mu.Lock()
	_, ok := m.state.Scenarios[id]
	m.mu.Unlock()
	if !ok {
		m.applyUpdate(update{kind: UpdateError, errMsg: fmt.Sprintf("Scenario %s not found", id)})
		return
	}
	m.applyUpdate(update{kind: UpdateScenario, scenarioID: id})
}

// ImportData replaces the model from an export envelope. On success the
// validation cache is cleared wholesale; on failure the error state is
// recorded. The outcome is also returned to the caller.
func (m *Manager) ImportData(ctx context.Context, text string) finance.ImportResult {
	ctx, span := m.opts.tracer.Start(ctx, "import_data")
	start := time.Now()
	var err error
	defer func() {
		span.End(err)
		m.opts.metrics.Observe(ctx, "import_data", err == nil, time.Since(start))
	}()

	m.applyUpdate(update{kind: UpdateLoading, loading: true})
	if err = m.engine.ImportJSON(text); err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Import failed"
		}
		m.applyUpdate(update{kind: UpdateError, errMsg: msg})
		return finance.ImportResult{Success: false, Error: msg}
	}
	m.applyUpdate(update{
		kind:      UpdateData,
		dataset:   m.engine.Data(),
		scenarios: m.engine.Scenarios(),
	})
	m.ensureScenarioSelection()
	err = m.computeAndValidate(ctx)
	m.cache.Purge()
	if err != nil {
		return finance.ImportResult{Success: false, Error: err.Error()}
	}
	return finance.ImportResult{Success: true}
}

// ensureScenarioSelection repoints the active scenario at the default
// (or any remaining scenario) when an import dropped the selected id.
func (m *Manager) ensureScenarioSelection() {
	m.mu.Lock()
	_, ok := m.state.Scenarios[m.state.CurrentScenarioID]
	fallback := ""
	if !ok {
		if _, hasBase := m.state.Scenarios[DefaultScenarioID]; hasBase {
			fallback = DefaultScenarioID
		} else {
			ids := make([]string, 0, len(m.state.Scenarios))
			for id := range m.state.Scenarios {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			if len(ids) > 0 {
				fallback = ids[0]
			}
		}
	}
	m.mu.Unlock()
	if fallback != "" {
		m.applyUpdate(update{kind: UpdateScenario, scenarioID: fallback})
	}
}

// ExportData serializes the model to the canonical envelope. Export is
// a read path: errors are logged and returned to the caller instead of
// entering the error state.
func (m *Manager) ExportData() (string, error) {
	text, err := m.engine.ExportJSON()
	if err != nil {
		m.opts.logger.Error("export failed", "error", err)
		return "", err
	}
	return text, nil
}

// ArchiveExport writes the current export envelope to the configured
// archive store under a dated key and returns the stored object info.
func (m *Manager) ArchiveExport(ctx context.Context) (blob.Info, error) {
	if m.opts.archive == nil {
		return blob.Info{}, fmt.Errorf("no archive store configured")
	}
	text, err := m.ExportData()
	if err != nil {
		return blob.Info{}, err
	}
	key := fmt.Sprintf("exports/%s-%s.json", m.opts.clock().Format("20060102T150405Z"), uuid.NewString())
	info, err := m.opts.archive.Put(ctx, key, strings.NewReader(text), "application/json")
	if err != nil {
		return blob.Info{}, fmt.Errorf("archive export: %w", err)
	}
	m.opts.logger.Info("export archived", "key", info.Key, "bytes", info.Size)
	return info, nil
}

// Reset wipes the persisted snapshot keys, discards the engine for a
// fresh one loaded with defaults, and re-runs the compute-and-validate
// pipeline. Failures surface as the error state.
func (m *Manager) Reset(ctx context.Context) {
	ctx, span := m.opts.tracer.Start(ctx, "reset")
	start := time.Now()
	var err error
	defer func() {
		span.End(err)
		m.opts.metrics.Observe(ctx, "reset", err == nil, time.Since(start))
	}()

	m.applyUpdate(update{kind: UpdateLoading, loading: true})
	if m.store != nil {
		for _, key := range []string{kv.KeyDataset, kv.KeyScenarios} {
			if err = m.store.Delete(ctx, key); err != nil {
				m.applyUpdate(update{kind: UpdateError, errMsg: "Reset failed: " + err.Error()})
				return
			}
		}
	}
	fresh := engine.New(m.store)
	if err = fresh.Init(ctx); err != nil {
		m.applyUpdate(update{kind: UpdateError, errMsg: "Reset failed: " + err.Error()})
		return
	}
	m.mu.Lock()
	m.engine = fresh
	m.mu.Unlock()
	m.applyUpdate(update{
		kind:      UpdateData,
		dataset:   fresh.Data(),
		scenarios: fresh.Scenarios(),
	})
	m.ensureScenarioSelection()
	err = m.computeAndValidate(ctx)
	m.cache.Purge()
}

// ClearError dismisses the recorded error without touching the model.
func (m *Manager) ClearError() {
	m.applyUpdate(update{kind: UpdateError, errMsg: ""})
}

// State returns a deep copy of the current snapshot.
func (m *Manager) State() AppState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneState(m.state)
}

// Data returns a deep copy of the current dataset.
func (m *Manager) Data() finance.Dataset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return finance.CloneDataset(m.state.Dataset)
}

// ComputationResult returns the last successful computation, or nil.
func (m *Manager) ComputationResult() *finance.ComputationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.LastComputation == nil {
		return nil
	}
	cp := finance.CloneComputationResult(*m.state.LastComputation)
	return &cp
}

// ValidationResults returns the most recent validation outcomes.
func (m *Manager) ValidationResults() []finance.ValidationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]finance.ValidationResult, 0, len(m.state.LastValidations))
	for _, v := range m.state.LastValidations {
		out = append(out, finance.CloneValidationResult(v))
	}
	return out
}

// LastError returns the recorded error message, empty when none.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.LastError
}

// Loading reports whether a mutation pipeline is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Loading
}

// CurrentScenario returns the active scenario id.
func (m *Manager) CurrentScenario() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CurrentScenarioID
}

// Scenarios returns a detached copy of the scenario map.
func (m *Manager) Scenarios() map[string]finance.Scenario {
	m.mu.Lock()
	defer m.mu.Unlock()
	return finance.CloneScenarios(m.state.Scenarios)
}
