package state

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"bistrocore/pkg/finance"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatal("expected a generated export name")
	}
	m := newManager(t, WithMetricsRecorder(rec))

	m.UpdateSalesModel(context.Background(), func(s *finance.SalesModel) error {
		s.CoversPerDay = 95
		return nil
	})
	m.UpdateSalesModel(context.Background(), func(s *finance.SalesModel) error {
		s.CoversPerDay = -1
		return nil
	})

	snap := rec.Snapshot()
	counts := snap.Results["update_sales_model"]
	if counts["success"] != 1 || counts["error"] != 1 {
		t.Fatalf("result counts = %+v", counts)
	}
	if snap.DurationsMS["update_sales_model"] < 0 {
		t.Fatalf("durations = %+v", snap.DurationsMS)
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("NewPrometheusMetricsRecorder: %v", err)
	}
	m := newManager(t, WithMetricsRecorder(rec))

	m.SetCurrentScenario("weekend-push")
	m.Recompute(context.Background())

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var total float64
	for _, fam := range families {
		if fam.GetName() != "bistrocore_operations_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if metricLabel(metric, "operation") == "recompute" && metricLabel(metric, "status") == "success" {
				total = metric.GetCounter().GetValue()
			}
		}
	}
	if total != 1 {
		t.Fatalf("recompute success counter = %v, want 1", total)
	}

	// Duplicate registration surfaces from the registry.
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func metricLabel(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	m := newManager(t, WithTracer(tracer))

	m.UpdateSalesModel(context.Background(), func(s *finance.SalesModel) error {
		s.AverageTicket = 11.80
		return nil
	})
	m.UpdateSalesModel(context.Background(), func(s *finance.SalesModel) error {
		s.AverageTicket = 0
		return nil
	})

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(entries))
	}
	if entries[0].Operation != "update_sales_model" || entries[0].Status != "success" {
		t.Fatalf("entry 0 = %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error == "" {
		t.Fatalf("entry 1 = %+v", entries[1])
	}
	if !strings.Contains(buf.String(), `"operation":"update_sales_model"`) {
		t.Fatalf("encoded output = %q", buf.String())
	}
}
