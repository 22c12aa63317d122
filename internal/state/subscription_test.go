package state

import (
	"context"
	"testing"

	"bistrocore/pkg/finance"
)

// recorder collects every snapshot a subscriber receives.
type recorder struct {
	snaps []AppState
}

func (r *recorder) callback() func(AppState) {
	return func(s AppState) { r.snaps = append(r.snaps, s) }
}

func TestMutationPipelineNotificationOrder(t *testing.T) {
	m := newManager(t)
	rec := &recorder{}
	defer m.Subscribe(rec.callback())()

	beforeVersion := m.Data().Metadata.Version
	m.UpdateFixedCosts(context.Background(), []finance.FixedCost{
		{ID: "rent", Name: "Rent", MonthlyCost: 4200},
	})

	if len(rec.snaps) != 5 {
		t.Fatalf("received %d notifications, want 5", len(rec.snaps))
	}
	// loading on, dataset swap, computation, validation, loading off.
	if !rec.snaps[0].Loading || rec.snaps[0].Dataset.Metadata.Version != beforeVersion {
		t.Fatalf("snap 0 = loading=%v version=%d", rec.snaps[0].Loading, rec.snaps[0].Dataset.Metadata.Version)
	}
	if rec.snaps[1].Dataset.Metadata.Version != beforeVersion+1 {
		t.Fatalf("snap 1 version = %d, want %d", rec.snaps[1].Dataset.Metadata.Version, beforeVersion+1)
	}
	if len(rec.snaps[1].Dataset.FixedCosts) != 1 || rec.snaps[1].Dataset.FixedCosts[0].MonthlyCost != 4200 {
		t.Fatalf("snap 1 fixed costs = %+v", rec.snaps[1].Dataset.FixedCosts)
	}
	if rec.snaps[2].LastComputation == nil || rec.snaps[2].LastComputation.DatasetVersion != beforeVersion+1 {
		t.Fatalf("snap 2 computation = %+v", rec.snaps[2].LastComputation)
	}
	if len(rec.snaps[3].LastValidations) != 1 {
		t.Fatalf("snap 3 validations = %+v", rec.snaps[3].LastValidations)
	}
	if rec.snaps[4].Loading {
		t.Fatal("snap 4 should clear loading")
	}
	for i, s := range rec.snaps {
		if s.LastError != "" {
			t.Fatalf("snap %d carries error %q", i, s.LastError)
		}
	}
}

func TestRejectedMutationNotifications(t *testing.T) {
	m := newManager(t)
	rec := &recorder{}
	defer m.Subscribe(rec.callback())()

	m.UpdateFixedCosts(context.Background(), []finance.FixedCost{
		{ID: "bad", Name: "", MonthlyCost: -1},
	})

	// loading on, then the error transition.
	if len(rec.snaps) != 2 {
		t.Fatalf("received %d notifications, want 2", len(rec.snaps))
	}
	if !rec.snaps[0].Loading || rec.snaps[0].LastError != "" {
		t.Fatalf("snap 0 = %+v", rec.snaps[0])
	}
	if rec.snaps[1].Loading || rec.snaps[1].LastError == "" {
		t.Fatalf("snap 1 = loading=%v error=%q", rec.snaps[1].Loading, rec.snaps[1].LastError)
	}
}

func TestUnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	m := newManager(t)
	rec := &recorder{}
	unsubscribe := m.Subscribe(rec.callback())

	m.ClearError()
	if len(rec.snaps) != 1 {
		t.Fatalf("received %d notifications before unsubscribe, want 1", len(rec.snaps))
	}

	unsubscribe()
	unsubscribe() // second call is a no-op
	m.ClearError()
	if len(rec.snaps) != 1 {
		t.Fatalf("received %d notifications after unsubscribe, want 1", len(rec.snaps))
	}
}

func TestSubscriberPanicIsIsolated(t *testing.T) {
	m := newManager(t)
	defer m.Subscribe(func(AppState) { panic("angry subscriber") })()
	rec := &recorder{}
	defer m.Subscribe(rec.callback())()

	m.ClearError()
	if len(rec.snaps) != 1 {
		t.Fatalf("later subscriber received %d notifications, want 1", len(rec.snaps))
	}
}

func TestSubscriberReceivesDetachedSnapshot(t *testing.T) {
	m := newManager(t)
	defer m.Subscribe(func(s AppState) {
		s.Dataset.Menus[0].Price = -1
		s.Scenarios["base"] = finance.Scenario{ID: "base", Name: "tampered"}
	})()

	m.ClearError()
	if m.Data().Menus[0].Price == -1 {
		t.Fatal("subscriber mutation leaked into the dataset")
	}
	if m.Scenarios()["base"].Name == "tampered" {
		t.Fatal("subscriber mutation leaked into the scenario map")
	}
}

func TestReentrantTransitionFromSubscriber(t *testing.T) {
	m := newManager(t)
	rec := &recorder{}
	defer m.Subscribe(rec.callback())()
	fired := false
	defer m.Subscribe(func(AppState) {
		if !fired {
			fired = true
			m.SetCurrentScenario("lean-winter")
		}
	})()

	m.ClearError()

	// The re-entrant scenario switch is queued behind the triggering
	// transition and delivered afterwards, in order.
	if len(rec.snaps) != 2 {
		t.Fatalf("received %d notifications, want 2", len(rec.snaps))
	}
	if rec.snaps[0].CurrentScenarioID != DefaultScenarioID {
		t.Fatalf("snap 0 scenario = %q, want %q", rec.snaps[0].CurrentScenarioID, DefaultScenarioID)
	}
	if rec.snaps[1].CurrentScenarioID != "lean-winter" {
		t.Fatalf("snap 1 scenario = %q, want lean-winter", rec.snaps[1].CurrentScenarioID)
	}
	if got := m.CurrentScenario(); got != "lean-winter" {
		t.Fatalf("CurrentScenario = %q", got)
	}
}

func TestReentrantMutationFromSubscriber(t *testing.T) {
	m := newManager(t)
	fired := false
	defer m.Subscribe(func(AppState) {
		if !fired {
			fired = true
			m.UpdateSalesModel(context.Background(), func(s *finance.SalesModel) error {
				s.AverageTicket = 13.40
				return nil
			})
		}
	})()

	m.ClearError()

	if got := m.Data().Sales.AverageTicket; got != 13.40 {
		t.Fatalf("AverageTicket = %.2f, want 13.40", got)
	}
	if m.Loading() {
		t.Fatal("loading should be cleared after the re-entrant pipeline")
	}
	if m.LastError() != "" {
		t.Fatalf("unexpected error %q", m.LastError())
	}
}
