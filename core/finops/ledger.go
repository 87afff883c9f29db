// Package finops implements the Cost Ledger: a per-model pricing table,
// budget tracking with monotonic threshold alerts, priority-based model
// routing, and pure-function cost forecasting.
package finops

import (
	"fmt"
	"sort"
	"sync"

	"github.com/emenda-labs/warden/core/evidence"
	"github.com/emenda-labs/warden/core/model"
)

// DefaultPricing ships at least two tiers so routing has something to
// choose between: a cheap tier and a premium tier.
func DefaultPricing() map[string]model.ModelPricing {
	return map[string]model.ModelPricing{
		"warden-mini": {InputTokenCost: 0.15, OutputTokenCost: 0.60},
		"warden-pro":  {InputTokenCost: 3.00, OutputTokenCost: 15.00},
	}
}

// Ledger tracks pricing, budgets, and usage history. Each map is guarded
// by its own lock; no cross-component lock is held during I/O.
type Ledger struct {
	mu      sync.RWMutex
	pricing map[string]model.ModelPricing

	budgetsMu sync.RWMutex
	budgets   map[string]*model.Budget

	usageMu sync.Mutex
	usage   []model.UsageRecord

	now func() model.Timestamp
	log *evidence.Log
}

// New creates a Ledger seeded with pricing. now supplies the clock used to
// timestamp usage records (see pkg/clock). log receives a BudgetBreached
// event whenever TrackUsage crosses a budget's cap; a nil log disables
// this (usage tracking still works, it just isn't recorded to the
// Evidence Log).
func New(pricing map[string]model.ModelPricing, now func() model.Timestamp, log *evidence.Log) *Ledger {
	if pricing == nil {
		pricing = DefaultPricing()
	}
	return &Ledger{
		pricing: pricing,
		budgets: make(map[string]*model.Budget),
		now:     now,
		log:     log,
	}
}

// RegisterModel adds or replaces a pricing tier.
func (l *Ledger) RegisterModel(modelID string, pricing model.ModelPricing) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pricing[modelID] = pricing
}

// Pricing returns a snapshot of the current pricing table.
func (l *Ledger) Pricing() map[string]model.ModelPricing {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]model.ModelPricing, len(l.pricing))
	for k, v := range l.pricing {
		out[k] = v
	}
	return out
}

// CreateBudget registers a new budget under the ledger.
func (l *Ledger) CreateBudget(b model.Budget) *model.Budget {
	l.budgetsMu.Lock()
	defer l.budgetsMu.Unlock()
	stored := b
	l.budgets[b.ID] = &stored
	return &stored
}

// GetBudget returns the budget with the given id.
func (l *Ledger) GetBudget(id string) (*model.Budget, error) {
	l.budgetsMu.RLock()
	defer l.budgetsMu.RUnlock()
	b, ok := l.budgets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrBudgetNotFound, id)
	}
	cp := *b
	return &cp, nil
}

func (l *Ledger) rate(modelID string) (model.ModelPricing, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.pricing[modelID]
	if !ok {
		return model.ModelPricing{}, fmt.Errorf("%w: unknown model %q", model.ErrNoViableModel, modelID)
	}
	return p, nil
}

func computeCost(p model.ModelPricing, inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1000*p.InputTokenCost + float64(outputTokens)/1000*p.OutputTokenCost
}

// TrackUsage records one usage event and applies its cost to every budget
// whose models[] lists modelID. Concurrent calls against the same budget
// serialize through budgetsMu so currentCost always equals the sum of
// individual costs. Returns model.ErrBudgetExceeded once a budget crosses
// its cap; the usage is recorded regardless.
func (l *Ledger) TrackUsage(modelID string, inputTokens, outputTokens int) error {
	pricing, err := l.rate(modelID)
	if err != nil {
		return err
	}
	cost := computeCost(pricing, inputTokens, outputTokens)

	l.usageMu.Lock()
	l.usage = append(l.usage, model.UsageRecord{
		ModelID:      modelID,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost,
		Timestamp:    l.now(),
	})
	l.usageMu.Unlock()

	l.budgetsMu.Lock()
	var breached []string
	for _, b := range l.budgets {
		if !budgetTracksModel(b, modelID) {
			continue
		}
		b.CurrentCost += cost
		threshold := b.AlertThreshold / 100 * b.MaxCost
		if b.AlertThreshold > 0 && b.CurrentCost >= threshold {
			b.MarkAlertCrossed(threshold)
		}
		if b.Breached() {
			breached = append(breached, b.ID)
		}
	}
	l.budgetsMu.Unlock()

	if len(breached) == 0 {
		return nil
	}
	for _, budgetID := range breached {
		l.emitBudgetBreached(budgetID, modelID, cost)
	}
	return fmt.Errorf("%w: budget %s", model.ErrBudgetExceeded, breached[0])
}

// emitBudgetBreached appends a BudgetBreached event to the Evidence Log.
// A nil log or an append failure never blocks the caller; TrackUsage's
// own error return is what surfaces the breach.
func (l *Ledger) emitBudgetBreached(budgetID, modelID string, cost float64) {
	if l.log == nil {
		return
	}
	_, _ = l.log.Append(model.Event{
		Type: model.EventBudgetBreached,
		Data: map[string]interface{}{
			"budgetId": budgetID,
			"modelId":  modelID,
			"cost":     cost,
		},
	})
}

func budgetTracksModel(b *model.Budget, modelID string) bool {
	for _, m := range b.Models {
		if m.ModelID == modelID {
			return true
		}
	}
	return false
}

// RouteRequest picks the highest-priority model whose projected cost fits
// within the budget's remaining headroom and its own sub-cap.
func (l *Ledger) RouteRequest(budgetID string, estimatedInputTokens int) (string, error) {
	l.budgetsMu.RLock()
	b, ok := l.budgets[budgetID]
	if !ok {
		l.budgetsMu.RUnlock()
		return "", fmt.Errorf("%w: %s", model.ErrBudgetNotFound, budgetID)
	}
	remaining := b.MaxCost - b.CurrentCost
	models := make([]model.BudgetModel, len(b.Models))
	copy(models, b.Models)
	l.budgetsMu.RUnlock()

	sort.Slice(models, func(i, j int) bool { return models[i].Priority > models[j].Priority })

	for _, m := range models {
		pricing, err := l.rate(m.ModelID)
		if err != nil {
			continue
		}
		projected := float64(estimatedInputTokens) / 1000 * pricing.InputTokenCost
		if projected > remaining {
			continue
		}
		if m.MaxCost != nil && projected > *m.MaxCost {
			continue
		}
		return m.ModelID, nil
	}
	return "", model.ErrNoViableModel
}

// ForecastCost is a pure function over the pricing table.
func (l *Ledger) ForecastCost(modelID string, inputTokens, outputTokens int) (model.Forecast, error) {
	pricing, err := l.rate(modelID)
	if err != nil {
		return model.Forecast{}, err
	}
	cost := computeCost(pricing, inputTokens, outputTokens)
	return model.Forecast{
		EstimatedCost: cost,
		Confidence:    0.95,
		Breakdown: []model.ForecastBreakdown{
			{ModelID: modelID, Tokens: inputTokens + outputTokens, Cost: cost},
		},
	}, nil
}
