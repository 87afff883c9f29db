package finops

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/emenda-labs/warden/core/evidence"
	"github.com/emenda-labs/warden/core/model"
	"github.com/stretchr/testify/require"
)

func fixedClock() model.Timestamp {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestTrackUsage_AccumulatesCost(t *testing.T) {
	l := New(nil, fixedClock, nil)
	l.CreateBudget(model.Budget{
		ID: "b1", MaxCost: 100, AlertThreshold: 80,
		Models: []model.BudgetModel{{ModelID: "warden-mini", Priority: 1}},
	})

	require.NoError(t, l.TrackUsage("warden-mini", 1000, 1000))
	b, err := l.GetBudget("b1")
	require.NoError(t, err)
	require.InDelta(t, 0.75, b.CurrentCost, 1e-9)

	require.NoError(t, l.TrackUsage("warden-mini", 1000, 1000))
	b, err = l.GetBudget("b1")
	require.NoError(t, err)
	require.InDelta(t, 1.5, b.CurrentCost, 1e-9)
}

func TestTrackUsage_BudgetExceeded(t *testing.T) {
	log := evidence.New("", fixedClock)
	l := New(nil, fixedClock, log)
	l.CreateBudget(model.Budget{
		ID: "b1", MaxCost: 0.01, AlertThreshold: 80,
		Models: []model.BudgetModel{{ModelID: "warden-mini", Priority: 1}},
	})

	err := l.TrackUsage("warden-mini", 100, 100)
	require.Error(t, err)
	require.True(t, errors.Is(err, model.ErrBudgetExceeded))

	events := log.AllEvents()
	require.Len(t, events, 1)
	require.Equal(t, model.EventBudgetBreached, events[0].Type)
	require.Equal(t, "b1", events[0].Data["budgetId"])
}

func TestTrackUsage_ConcurrentCallsSerializeCost(t *testing.T) {
	l := New(nil, fixedClock, nil)
	l.CreateBudget(model.Budget{
		ID: "b1", MaxCost: 1000,
		Models: []model.BudgetModel{{ModelID: "warden-mini", Priority: 1}},
	})

	const calls = 200
	var wg sync.WaitGroup
	wg.Add(calls)
	for i := 0; i < calls; i++ {
		go func() {
			defer wg.Done()
			_ = l.TrackUsage("warden-mini", 100, 100)
		}()
	}
	wg.Wait()

	b, err := l.GetBudget("b1")
	require.NoError(t, err)

	pricing, err := l.rate("warden-mini")
	require.NoError(t, err)
	want := float64(calls) * computeCost(pricing, 100, 100)
	require.InDelta(t, want, b.CurrentCost, 1e-9)
}

func TestRouteRequest_PicksPremiumWhenBudgetAllows(t *testing.T) {
	l := New(nil, fixedClock, nil)
	l.CreateBudget(model.Budget{
		ID: "b1", MaxCost: 10,
		Models: []model.BudgetModel{
			{ModelID: "warden-mini", Priority: 1},
			{ModelID: "warden-pro", Priority: 2},
		},
	})

	got, err := l.RouteRequest("b1", 1000)
	require.NoError(t, err)
	require.Equal(t, "warden-pro", got)
}

func TestRouteRequest_FallsBackToCheapWhenBudgetTight(t *testing.T) {
	l := New(nil, fixedClock, nil)
	// warden-pro's projected cost for 1000 tokens (3.00) exceeds this
	// budget's headroom, but warden-mini's (0.15) fits.
	l.CreateBudget(model.Budget{
		ID: "b1", MaxCost: 0.20,
		Models: []model.BudgetModel{
			{ModelID: "warden-mini", Priority: 1},
			{ModelID: "warden-pro", Priority: 2},
		},
	})

	got, err := l.RouteRequest("b1", 1000)
	require.NoError(t, err)
	require.Equal(t, "warden-mini", got)
}

func TestRouteRequest_NoViableModel(t *testing.T) {
	l := New(nil, fixedClock, nil)
	l.CreateBudget(model.Budget{
		ID: "b1", MaxCost: 0.0001,
		Models: []model.BudgetModel{{ModelID: "warden-pro", Priority: 1}},
	})

	_, err := l.RouteRequest("b1", 1000)
	require.True(t, errors.Is(err, model.ErrNoViableModel))
}

func TestForecastCost(t *testing.T) {
	l := New(nil, fixedClock, nil)
	f, err := l.ForecastCost("warden-mini", 1000, 1000)
	require.NoError(t, err)
	require.InDelta(t, 0.75, f.EstimatedCost, 1e-9)
	require.Equal(t, 0.95, f.Confidence)
	require.Len(t, f.Breakdown, 1)
}

func TestPricing_ReturnsSnapshot(t *testing.T) {
	l := New(nil, fixedClock, nil)
	l.RegisterModel("warden-nano", model.ModelPricing{InputTokenCost: 0.01, OutputTokenCost: 0.02})

	pricing := l.Pricing()
	require.Contains(t, pricing, "warden-mini")
	require.Contains(t, pricing, "warden-nano")

	pricing["warden-mini"] = model.ModelPricing{}
	require.NotEqual(t, model.ModelPricing{}, l.Pricing()["warden-mini"])
}

func TestAlertFiresOncePerThreshold(t *testing.T) {
	l := New(nil, fixedClock, nil)
	l.CreateBudget(model.Budget{
		ID: "b1", MaxCost: 100, AlertThreshold: 50,
		Models: []model.BudgetModel{{ModelID: "warden-mini", Priority: 1}},
	})

	require.NoError(t, l.TrackUsage("warden-mini", 500000, 0))
	b1, _ := l.GetBudget("b1")
	require.True(t, b1.CurrentCost >= 50)

	require.NoError(t, l.TrackUsage("warden-mini", 1000, 0))
}
