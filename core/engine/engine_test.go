package engine

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"aurora-quote/core/catalog"
	"aurora-quote/core/diagnostics"
	"aurora-quote/core/equipment"
	"aurora-quote/core/quote"
	"aurora-quote/core/selfcheck"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestNewDefaults(t *testing.T) {
	e := New(nil)

	assert.Equal(t, float64(catalog.DefaultRatePerHour), e.Rate())
	assert.Len(t, e.GetCatalog(), 15)
	assert.Len(t, e.Expectations(), 4)
	assert.False(t, e.CatalogBroken())
}

func TestQuoteFlow(t *testing.T) {
	e := New(catalog.Builtin())

	lines, diag := e.ResolvePreset("retail_only")
	require.Nil(t, diag)

	e.ApplyEquipmentToServices(lines, "retail_only", equipment.Snapshot{Regular: 1, Scanners: 1})
	totals, diags := e.ComputeTotals(lines)
	assert.Empty(t, diags)
	assert.InDelta(t, 9.0, totals.TotalHours, 1e-9)
	assert.Equal(t, int64(44550), totals.TotalPrice)

	e.ApplyEquipmentToServices(lines, "retail_only", equipment.Snapshot{Regular: 3, Scanners: 1})
	totals, _ = e.ComputeTotals(lines)
	// two more registrations, two more firmware updates, two extra connections
	assert.InDelta(t, 15.0, totals.TotalHours, 1e-9)
}

func TestApplyEquipmentUnknownPackage(t *testing.T) {
	e := New(nil)
	lines := []*quote.ServiceLine{{ID: "x", Basis: catalog.BasisKktTotal, Mode: quote.ModeAuto, Quantity: 2}}

	e.ApplyEquipmentToServices(lines, "nowhere", equipment.Snapshot{Regular: 9})
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestResetLineToPreset(t *testing.T) {
	e := New(nil)
	lines, _ := e.ResolvePreset("producer_retail")
	line, ok := quote.Find(lines, "kkt_registration")
	require.True(t, ok)

	quote.SetManualQuantity(line, 12)
	e.ResetLineToPreset(line, "producer_retail", equipment.Snapshot{Regular: 2})

	assert.Equal(t, 2, line.Quantity)
	assert.False(t, line.ManualOverride)
}

func TestResolvePresetLogsUnknownPackage(t *testing.T) {
	logger, logs := observed()
	e := New(nil, WithLogger(logger))

	lines, diag := e.ResolvePreset("enterprise")

	assert.Empty(t, lines)
	require.NotNil(t, diag)
	assert.Equal(t, 1, logs.FilterMessage("preset not resolved").Len())
}

func TestComputeTotalsRateFallback(t *testing.T) {
	tests := []struct {
		name string
		rate float64
	}{
		{name: "zero", rate: 0},
		{name: "negative", rate: -1},
		{name: "nan", rate: math.NaN()},
		{name: "infinite", rate: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observed()
			e := New(nil, WithRate(tt.rate), WithLogger(logger))

			lines, _ := e.ResolvePreset("wholesale_only")
			totals, diags := e.ComputeTotals(lines)

			assert.True(t, totals.RateFallback)
			assert.Equal(t, int64(34650), totals.TotalPrice)
			require.Len(t, diags, 1)
			assert.Equal(t, diagnostics.KindRateFallback, diags[0].Kind)
			assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
		})
	}
}

func TestComputeTotalsReportsSkippedLines(t *testing.T) {
	e := New(nil)
	lines := []*quote.ServiceLine{
		{ID: "ok", Quantity: 1, UnitHours: 1},
		{ID: "broken", Quantity: 1, UnitHours: math.NaN()},
	}

	totals, diags := e.ComputeTotals(lines)

	assert.Equal(t, int64(4950), totals.TotalPrice)
	require.Len(t, diags, 1)
	assert.Equal(t, "broken", diags[0].ServiceID)
}

func TestStartupCleanCatalog(t *testing.T) {
	logger, logs := observed()
	e := New(nil, WithLogger(logger))

	report := e.Startup()

	assert.Empty(t, report.All())
	assert.False(t, report.Broken)
	assert.False(t, e.CatalogBroken())
	assert.Equal(t, 1, logs.FilterMessage("engine started").Len())
}

func TestStartupBrokenCatalog(t *testing.T) {
	contents := catalog.BuiltinContents()
	for i := range contents.Services {
		if contents.Services[i].ID == "reg_chz" {
			contents.Services[i].UnitHours[catalog.RetailOnly] = math.NaN()
		}
	}
	logger, logs := observed()
	e := New(catalog.New(contents), WithLogger(logger))

	report := e.Startup()

	assert.True(t, report.Broken)
	assert.True(t, e.CatalogBroken())
	assert.Len(t, report.Defects, 1)
	require.Len(t, report.SelfCheck, 1)
	assert.Equal(t, catalog.RetailOnly, report.SelfCheck[0].PackageID)
	assert.Equal(t, 1, logs.FilterMessage("self-check mismatch").Len())

	// pricing still works on a broken catalog
	lines, _ := e.ResolvePreset("retail_only")
	totals, _ := e.ComputeTotals(lines)
	assert.Equal(t, int64(39600), totals.TotalPrice)
}

func TestHealthIsPerEngine(t *testing.T) {
	broken := New(nil, WithExpectations([]selfcheck.Expectation{
		{PackageID: catalog.RetailOnly, Rate: 4950, Hours: 1, Price: 1},
	}))
	healthy := New(nil)

	broken.Startup()
	healthy.Startup()

	assert.True(t, broken.CatalogBroken())
	assert.False(t, healthy.CatalogBroken())
}

func TestStartupClearsPreviousFailure(t *testing.T) {
	e := New(nil)
	e.health.MarkBroken()

	e.Startup()
	assert.False(t, e.CatalogBroken())
}

func TestConcurrentSessions(t *testing.T) {
	e := New(nil)
	var wg sync.WaitGroup
	prices := make([]int64, 16)

	for i := range prices {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := e.NewSession()
			s.SelectPackage(catalog.RetailOnly)
			s.UpdateEquipment(equipment.Snapshot{Regular: 1 + i%3, Scanners: 1})
			prices[i] = s.Totals(e.Rate()).TotalPrice
		}(i)
	}
	wg.Wait()

	for i, price := range prices {
		regular := 1 + i%3
		// each register past the first adds registration, firmware and an extra connection
		expected := int64(44550 + (regular-1)*3*4950)
		assert.Equal(t, expected, price, "session %d", i)
	}
}
