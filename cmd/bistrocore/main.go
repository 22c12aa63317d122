// Command bistrocore loads the restaurant financial model, applies the
// requested operation, and prints the resulting P&L and KPI summary.
//
// Usage:
//
//	bistrocore [-scenario id] [-export file] [-import file] [-archive] [-reset] [-trace file]
//
// Storage and archive backends are selected through BISTROCORE_* env
// variables (see internal/kv and internal/blob).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"bistrocore/internal/blob"
	"bistrocore/internal/kv"
	"bistrocore/internal/state"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bistrocore: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		scenario   = flag.String("scenario", "", "switch to the named scenario before computing")
		exportPath = flag.String("export", "", "write the export envelope to a file and exit")
		importPath = flag.String("import", "", "import an export envelope from a file")
		archive    = flag.Bool("archive", false, "archive the export envelope to the blob store")
		reset      = flag.Bool("reset", false, "wipe persisted snapshots and restore defaults")
		tracePath  = flag.String("trace", "", "append operation spans as JSON lines to a file")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()
	ctx := context.Background()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := kv.Open()
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	opts := []state.Option{
		state.WithLogger(logger),
		state.WithMetricsRecorder(state.NewExpvarMetricsRecorder("bistrocore_operations")),
	}
	if *tracePath != "" {
		traceFile, err := os.OpenFile(*tracePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer func() { _ = traceFile.Close() }()
		opts = append(opts, state.WithTracer(state.NewJSONTracer(traceFile)))
	}
	if *archive {
		archiveStore, err := blob.Open(ctx)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		opts = append(opts, state.WithArchive(archiveStore))
	}

	mgr := state.New(store, opts...)
	if msg := mgr.LastError(); msg != "" {
		return fmt.Errorf("%s", msg)
	}

	if *reset {
		mgr.Reset(ctx)
		if msg := mgr.LastError(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		fmt.Println("restored default dataset and scenarios")
	}

	if *importPath != "" {
		data, err := os.ReadFile(*importPath)
		if err != nil {
			return err
		}
		if res := mgr.ImportData(ctx, string(data)); !res.Success {
			return fmt.Errorf("import: %s", res.Error)
		}
		fmt.Printf("imported %s\n", *importPath)
	}

	if *scenario != "" {
		mgr.SetCurrentScenario(*scenario)
		if msg := mgr.LastError(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		mgr.Recompute(ctx)
	}

	if *exportPath != "" {
		text, err := mgr.ExportData()
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.WriteFile(*exportPath, []byte(text), 0o644); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", *exportPath)
		return nil
	}

	if *archive {
		info, err := mgr.ArchiveExport(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("archived export as %s (%d bytes)\n", info.Key, info.Size)
	}

	printSummary(mgr)
	return nil
}

func printSummary(mgr *state.Manager) {
	st := mgr.State()
	res := st.LastComputation
	if res == nil {
		fmt.Println("no computation available")
		return
	}
	cur := st.Scenarios[st.CurrentScenarioID]
	fmt.Printf("scenario: %s (%s)\n\n", cur.Name, st.CurrentScenarioID)
	fmt.Printf("%-22s %12s %14s\n", "", "daily", "monthly")
	rows := []struct {
		label          string
		daily, monthly float64
	}{
		{"revenue", res.Daily.Revenue, res.Monthly.Revenue},
		{"cost of goods", res.Daily.CostOfGoods, res.Monthly.CostOfGoods},
		{"gross profit", res.Daily.GrossProfit, res.Monthly.GrossProfit},
		{"labor", res.Daily.Labor, res.Monthly.Labor},
		{"utilities", res.Daily.Utilities, res.Monthly.Utilities},
		{"fixed costs", res.Daily.FixedCosts, res.Monthly.FixedCosts},
		{"operating profit", res.Daily.OperatingProfit, res.Monthly.OperatingProfit},
	}
	for _, r := range rows {
		fmt.Printf("%-22s %12.2f %14.2f\n", r.label, r.daily, r.monthly)
	}
	fmt.Printf("\nfood cost %.1f%%  labor %.1f%%  prime cost %.1f%%\n",
		res.KPIs.FoodCostPct, res.KPIs.LaborCostPct, res.KPIs.PrimeCostPct)
	fmt.Printf("break-even %.1f units/day (%.2f revenue)  safety margin %.1f%%\n",
		res.KPIs.BreakEvenUnits, res.KPIs.BreakEvenRevenue, res.KPIs.SafetyMarginPct)

	fmt.Println("\ncontribution margins:")
	for _, c := range res.Contributions {
		fmt.Printf("  %-24s price %7.2f  cost %6.2f  margin %6.2f (%.0f%%)  %5.1f units/day\n",
			c.Name, c.Price, c.IngredientCost, c.Margin, c.MarginRatio*100, c.UnitsPerDay)
	}

	fmt.Println("\nscenario projections (monthly):")
	for _, p := range res.Projections {
		fmt.Printf("  %-16s revenue %10.2f  profit %10.2f  prime %.1f%%  safety %.1f%%\n",
			p.ScenarioID, p.MonthlyRevenue, p.MonthlyProfit, p.PrimeCostPct, p.SafetyMarginPct)
	}

	for _, v := range st.LastValidations {
		for _, w := range v.Warnings {
			fmt.Printf("\nwarning: %s\n", w)
		}
	}
}
